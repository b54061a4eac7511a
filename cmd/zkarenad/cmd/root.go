package cmd

import (
	"github.com/spf13/cobra"

	"zkarena/internal/app"
)

// NewRootCmd creates the zkarenad root command. It is called once in main.
func NewRootCmd() *cobra.Command {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:           app.BinaryName,
		Short:         "Authenticated turn core for the zkarena tactics game",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err = readConfig(v)
			return err
		},
	}
	addPersistentFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		keysCmd(),
		demoCmd(&cfg),
		verifyCmd(&cfg),
		boardCmd(&cfg),
	)
	return rootCmd
}
