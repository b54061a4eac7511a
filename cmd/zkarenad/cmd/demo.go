package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"zkarena/internal/app"
	"zkarena/internal/board"
	"zkarena/internal/circuit"
	"zkarena/internal/codec"
	"zkarena/internal/game"
	"zkarena/internal/keys"
	"zkarena/internal/phase"
	"zkarena/internal/roll"
	"zkarena/internal/turnproof"
)

const proofFile = "proof.json"

func demoCmd(cfg *Config) *cobra.Command {
	var save bool
	c := &cobra.Command{
		Use:   "demo",
		Short: "Play a scripted move and ranged attack on the default scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, *cfg, save)
		},
	}
	c.Flags().BoolVar(&save, "save", false, "write board.json and proof.json to --home")
	return c
}

func runDemo(cmd *cobra.Command, cfg Config, save bool) error {
	logger := cfg.Logger(cmd.ErrOrStderr())
	ctx := cmd.Context()

	p1, pub1 := keys.FromSeed("demo/player-1")
	_, pub2 := keys.FromSeed("demo/player-2")
	authPriv, _ := keys.FromSeed("demo/authority")
	attestor, attestorPub := keys.FromSeed("demo/attestor")

	b, err := board.DefaultScenario(pub1, pub2)
	if err != nil {
		return err
	}
	authority := roll.NewAuthority(authPriv, nil)
	arb, err := roll.GenerateArbiter(nil)
	if err != nil {
		return err
	}
	opts := []turnproof.Option{
		turnproof.WithArbiter(arb),
		turnproof.WithLogger(logger),
	}
	var moves *circuit.MoveProver
	if cfg.Circuit {
		logger.Info("running move circuit setup")
		if moves, err = circuit.NewMoveProver(); err != nil {
			return err
		}
		logger.Info("move circuit ready", "constraints", moves.Constraints())
		opts = append(opts, turnproof.WithMoveProver(moves))
	}
	rules := phase.Rules{RollAuthority: authority.PubKey(), SavePolicy: cfg.SavePolicy}
	prover := turnproof.NewProver(attestor, rules, opts...)

	s, err := app.NewSession(logger, b, 1, pub1, authority, prover, cfg.Workers)
	if err != nil {
		return err
	}
	defer s.Close()

	dest := game.Position{X: 15, Y: 5}
	mv := game.NewMove(s.State().Nonce, 1, 0, dest)
	sig, err := mv.Sign(p1)
	if err != nil {
		return err
	}
	if _, err := s.Move(ctx, app.MoveRequest{PieceID: 0, Dest: dest, Distance: 3, Action: mv, Signature: sig}); err != nil {
		return err
	}

	target, _ := b.Piece(3)
	atk := game.NewAttack(s.State().Nonce, 2, game.ActionRanged, 0, target)
	if sig, err = atk.Sign(p1); err != nil {
		return err
	}
	rep, err := s.Attack(ctx, app.AttackRequest{
		Kind: game.ActionRanged, AttackerID: 0, TargetID: 3, Distance: 12, Action: atk, Signature: sig,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stateJSON, err := codec.EncodeState(s.State())
	if err != nil {
		return err
	}
	proofJSON, err := codec.EncodeProof(rep.Proof, attestorPub)
	if err != nil {
		return err
	}
	revealJSON, err := codec.EncodeReveal(rep.Roll, rep.Reveal)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "state:\n%s\n\nproof:\n%s\n\nreveal:\n%s\n", stateJSON, proofJSON, revealJSON)
	fmt.Fprintf(out, "\noutcome: hit=%t wound=%t saved=%t health %d -> %d\n",
		rep.Outcome.Hit, rep.Outcome.Wound, rep.Outcome.Saved, rep.Outcome.HealthBefore, rep.Outcome.HealthAfter)

	// Round-trip through the envelope so the printed bytes are what gets checked.
	decoded, who, err := codec.DecodeProof(proofJSON)
	if err != nil {
		return err
	}
	if err := turnproof.NewVerifier(who, moves).Verify(decoded); err != nil {
		return fmt.Errorf("demo proof does not verify: %w", err)
	}
	fmt.Fprintln(out, "proof verified")

	if !save {
		return nil
	}
	if err := b.Save(cfg.Home); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(cfg.Home, proofFile), proofJSON, 0o644); err != nil {
		return fmt.Errorf("write proof: %w", err)
	}
	logger.Info("saved demo output", "home", cfg.Home)
	return nil
}
