package cmd

import (
	"fmt"
	"io"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"zkarena/internal/app"
	"zkarena/internal/phase"
)

const (
	flagHome       = "home"
	flagLogLevel   = "log_level"
	flagLogFormat  = "log_format"
	flagSavePolicy = "save_policy"
	flagCircuit    = "circuit"
	flagWorkers    = "workers"
)

// Config is the resolved command configuration: flags, then ZKARENA_*
// environment, then defaults.
type Config struct {
	Home       string
	LogLevel   zerolog.Level
	JSONLogs   bool
	SavePolicy phase.SavePolicy
	Circuit    bool
	Workers    int64
}

func addPersistentFlags(fs *pflag.FlagSet) {
	fs.String(flagHome, app.DefaultHome, "directory for board and proof files")
	fs.String(flagLogLevel, "info", "log level (trace|debug|info|warn|error)")
	fs.String(flagLogFormat, "plain", "log format (plain|json)")
	fs.String(flagSavePolicy, phase.SaveRolled.String(), "save policy for attacks (rolled|disabled)")
	fs.Bool(flagCircuit, false, "attach a groth16 proof to every move step")
	fs.Int64(flagWorkers, 2, "concurrent proof workers")
}

func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(app.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	return v, nil
}

func readConfig(v *viper.Viper) (Config, error) {
	lvl, err := zerolog.ParseLevel(v.GetString(flagLogLevel))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", flagLogLevel, err)
	}
	var jsonLogs bool
	switch f := strings.ToLower(v.GetString(flagLogFormat)); f {
	case "", "plain":
	case "json":
		jsonLogs = true
	default:
		return Config{}, fmt.Errorf("%s: unknown format %q", flagLogFormat, f)
	}
	policy, err := phase.ParseSavePolicy(v.GetString(flagSavePolicy))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", flagSavePolicy, err)
	}
	workers := v.GetInt64(flagWorkers)
	if workers < 1 {
		return Config{}, fmt.Errorf("%s must be positive, got %d", flagWorkers, workers)
	}
	return Config{
		Home:       v.GetString(flagHome),
		LogLevel:   lvl,
		JSONLogs:   jsonLogs,
		SavePolicy: policy,
		Circuit:    v.GetBool(flagCircuit),
		Workers:    workers,
	}, nil
}

func (c Config) Logger(w io.Writer) log.Logger {
	opts := []log.Option{log.LevelOption(c.LogLevel)}
	if c.JSONLogs {
		opts = append(opts, log.OutputJSONOption())
	} else {
		opts = append(opts, log.ColorOption(false))
	}
	return log.NewLogger(w, opts...)
}
