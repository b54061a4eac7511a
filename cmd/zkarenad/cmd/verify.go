package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zkarena/internal/codec"
	"zkarena/internal/keys"
	"zkarena/internal/turnproof"
)

func verifyCmd(cfg *Config) *cobra.Command {
	var attestor string
	c := &cobra.Command{
		Use:   "verify <proof.json>",
		Short: "Verify a turn proof envelope against an attestor key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cfg.Logger(cmd.ErrOrStderr())
			bz, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			proof, who, err := codec.DecodeProof(bz)
			if err != nil {
				return err
			}
			want, err := keys.Decode(attestor)
			if err != nil {
				return err
			}
			if !bytes.Equal(want, who) {
				return fmt.Errorf("envelope attested by %s, expected %s", keys.MustEncode(who), attestor)
			}
			// Move circuit keys are per process, so only the attested chain is checked here.
			if err := turnproof.NewVerifier(want, nil).Verify(proof); err != nil {
				return err
			}
			logger.Debug("proof verified", "depth", proof.Depth, "attestor", keys.MustEncode(who))
			fmt.Fprintf(cmd.OutOrStdout(), "ok: depth %d, %s\n", proof.Depth, proof.State)
			return nil
		},
	}
	c.Flags().StringVar(&attestor, "attestor", "", "bech32 key of the trusted attestor")
	if err := c.MarkFlagRequired("attestor"); err != nil {
		panic(err)
	}
	return c
}
