package app

import (
	"os"
	"path/filepath"
)

const (
	AppName = "zkarena"

	// BinaryName is the name of the command built from cmd/zkarenad.
	BinaryName = "zkarenad"

	// EnvPrefix is the environment variable prefix for every config key.
	// Example: ZKARENA_HOME, ZKARENA_LOG_LEVEL.
	EnvPrefix = "ZKARENA"
)

// DefaultHome is where the command keeps board and proof files.
var DefaultHome = func() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(dir, "."+AppName)
}()
