package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"zkarena/internal/keys"
)

func keysCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "keys",
		Short: "Key utilities",
	}
	c.AddCommand(&cobra.Command{
		Use:   "gen",
		Short: "Generate an ed25519 key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			priv, pub := keys.Generate()
			addr, err := keys.Encode(pub)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "public:  %s\nprivate: %s\n", addr, hex.EncodeToString(priv))
			return nil
		},
	})
	return c
}
