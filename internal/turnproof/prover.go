package turnproof

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"github.com/cometbft/cometbft/crypto/ed25519"

	"zkarena/internal/circuit"
	"zkarena/internal/game"
	"zkarena/internal/phase"
	"zkarena/internal/roll"
)

// Prover re-executes actions and signs the results with the attestor key.
type Prover struct {
	attestor ed25519.PrivKey
	rules    phase.Rules
	arbiter  *roll.Arbiter
	moves    *circuit.MoveProver
	logger   log.Logger
	verifier *Verifier
}

type Option func(*Prover)

// WithArbiter supplies the decryption capability attacks need.
func WithArbiter(a *roll.Arbiter) Option { return func(p *Prover) { p.arbiter = a } }

// WithMoveProver attaches a groth16 proof to every move step and requires
// one when verifying move steps.
func WithMoveProver(m *circuit.MoveProver) Option { return func(p *Prover) { p.moves = m } }

func WithLogger(l log.Logger) Option { return func(p *Prover) { p.logger = l } }

func NewProver(attestor ed25519.PrivKey, rules phase.Rules, opts ...Option) *Prover {
	if len(attestor) != ed25519.PrivateKeySize {
		panic(fmt.Sprintf("turnproof: attestor key must be %d bytes", ed25519.PrivateKeySize))
	}
	p := &Prover{attestor: attestor, rules: rules, logger: log.NewNopLogger()}
	for _, o := range opts {
		o(p)
	}
	p.logger = p.logger.With("module", "turnproof")
	p.verifier = NewVerifier(p.AttestorKey(), p.moves)
	return p
}

func (p *Prover) AttestorKey() ed25519.PubKey {
	return p.attestor.PubKey().(ed25519.PubKey)
}

func (p *Prover) Rules() phase.Rules { return p.rules }

func (p *Prover) Arbiter() *roll.Arbiter { return p.arbiter }

// Verifier returns a verifier bound to this prover's attestor and circuit.
func (p *Prover) Verifier() *Verifier { return p.verifier }

func (p *Prover) sign(out *Proof) error {
	sig, err := p.attestor.Sign(out.SignBytes())
	if err != nil {
		return fmt.Errorf("sign turn proof: %w", err)
	}
	out.Signature = sig
	return nil
}

// Init attests a turn-start state as the base of a chain.
func (p *Prover) Init(s phase.PhaseState) (*Proof, error) {
	if !s.AtTurnStart() {
		return nil, ErrNotTurnStart.Wrapf("%s", s)
	}
	anchor := s.Digest()
	out := &Proof{State: s, Anchor: anchor, Accumulator: seed(anchor)}
	if err := p.sign(out); err != nil {
		return nil, err
	}
	p.logger.Info("turn opened", "turn", s.Nonce, "anchor", fmt.Sprintf("%x", anchor[:8]))
	return out, nil
}

// Step extends prior by one action. claimed must be exactly the state the
// evidence produces from prior.State.
func (p *Prover) Step(ctx context.Context, prior *Proof, claimed phase.PhaseState, ev Evidence) (*Proof, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if isNil(ev) {
		return nil, ErrUnsupportedAction.Wrap("nil evidence")
	}
	if err := p.verifier.Verify(prior); err != nil {
		return nil, errorsmod.Wrap(err, "prior")
	}
	next, err := ev.apply(p, prior.State)
	if err != nil {
		return nil, errorsmod.Wrapf(err, "step %d (%s)", prior.Depth+1, ev.Kind())
	}
	if !next.Equal(claimed) {
		return nil, ErrClaimMismatch.Wrapf("evidence yields %s, claimed %s", next, claimed)
	}

	prevDigest, nextDigest := prior.State.Digest(), next.Digest()
	tr := &Transition{
		Kind:            ev.Kind(),
		Prev:            prior.State,
		PrevAccumulator: prior.Accumulator,
	}
	if p.moves != nil && tr.Kind == game.ActionMove {
		mv, ok := asMove(ev)
		if !ok {
			return nil, ErrMissingMoveProof.Wrapf("no move witness in %T", ev)
		}
		if tr.MoveProof, err = p.moves.Prove(mv.circuitWitness(prior.State, next)); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Proof{
		State:       next,
		Depth:       prior.Depth + 1,
		Anchor:      prior.Anchor,
		Accumulator: fold(prior.Accumulator, prevDigest, nextDigest),
		Transition:  tr,
	}
	if err := p.sign(out); err != nil {
		return nil, err
	}
	p.logger.Debug("step attested", "turn", next.Nonce, "depth", out.Depth, "kind", ev.Kind().String(), "actions_nonce", next.ActionsNonce)
	return out, nil
}

func statement(prev, next phase.PhaseState) circuit.MoveStatement {
	return circuit.MoveStatement{
		OldPiecesRoot: prev.CurrentPiecesRoot,
		NewPiecesRoot: next.CurrentPiecesRoot,
		OldArenaRoot:  prev.CurrentArenaRoot,
		NewArenaRoot:  next.CurrentArenaRoot,
	}
}

// Verifier checks proofs signed by one attestor.
type Verifier struct {
	attestor ed25519.PubKey
	moves    *circuit.MoveProver
}

// NewVerifier binds the attestor key. When moves is non-nil, move steps
// must carry a valid circuit proof.
func NewVerifier(attestor ed25519.PubKey, moves *circuit.MoveProver) *Verifier {
	return &Verifier{attestor: attestor, moves: moves}
}

func (v *Verifier) Verify(p *Proof) error {
	if p == nil {
		return ErrInvalidProof.Wrap("nil proof")
	}
	if !v.attestor.VerifySignature(p.SignBytes(), p.Signature) {
		return ErrInvalidProof.Wrap("attestor signature")
	}
	if p.Depth == 0 {
		return v.verifyBase(p)
	}
	return v.verifyStep(p)
}

func (v *Verifier) verifyBase(p *Proof) error {
	switch {
	case p.Transition != nil:
		return ErrInvalidProof.Wrap("base proof carries a transition")
	case !p.State.AtTurnStart():
		return ErrNotTurnStart.Wrapf("%s", p.State)
	case p.Anchor != p.State.Digest():
		return ErrInvalidProof.Wrap("anchor is not the base state digest")
	case p.Accumulator != seed(p.Anchor):
		return ErrInvalidProof.Wrap("base accumulator")
	}
	return nil
}

func (v *Verifier) verifyStep(p *Proof) error {
	tr := p.Transition
	if tr == nil {
		return ErrInvalidProof.Wrapf("depth %d without transition", p.Depth)
	}
	if p.State.ActionsNonce == 0 {
		return ErrInvalidProof.Wrap("step proof with no applied action")
	}
	if !tr.continues(p.State) {
		return ErrInvalidProof.Wrapf("%s does not follow %s", p.State, tr.Prev)
	}
	prevDigest := tr.PrevDigest()
	if p.Depth == 1 && (prevDigest != p.Anchor || tr.PrevAccumulator != seed(p.Anchor)) {
		return ErrInvalidProof.Wrap("first step does not extend the anchor")
	}
	if p.Accumulator != fold(tr.PrevAccumulator, prevDigest, p.State.Digest()) {
		return ErrInvalidProof.Wrap("accumulator does not fold the last transition")
	}
	if tr.Kind != game.ActionMove {
		if len(tr.MoveProof) != 0 {
			return ErrInvalidProof.Wrapf("%s step carries a move proof", tr.Kind)
		}
		return nil
	}
	if v.moves == nil {
		return nil
	}
	if len(tr.MoveProof) == 0 {
		return ErrMissingMoveProof.Wrapf("depth %d", p.Depth)
	}
	if err := v.moves.Verify(tr.MoveProof, statement(tr.Prev, p.State)); err != nil {
		return ErrInvalidProof.Wrap(err.Error())
	}
	return nil
}
