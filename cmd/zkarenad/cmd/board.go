package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"zkarena/internal/board"
	"zkarena/internal/keys"
)

func boardCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Print the board saved under --home",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := board.Load(cfg.Home)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			pr, ar := b.PiecesRoot(), b.ArenaRoot()
			fmt.Fprintf(out, "pieces root: %s\narena root:  %s\n", pr.String(), ar.String())
			for _, p := range b.Pieces() {
				fmt.Fprintf(out, "%3d  (%2d,%2d)  hp=%d  %s\n", p.ID, p.Position.X, p.Position.Y, p.Stats.Health, keys.MustEncode(p.Owner))
			}
			return nil
		},
	}
}
