package turnproof

import (
	"context"
	"testing"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/stretchr/testify/require"

	"zkarena/internal/board"
	"zkarena/internal/game"
	"zkarena/internal/keys"
	"zkarena/internal/phase"
	"zkarena/internal/roll"
)

type chainFixture struct {
	t         *testing.T
	board     *board.Board
	player    ed25519.PrivKey
	authority *roll.Authority
	arbiter   *roll.Arbiter
	prover    *Prover
	base      *Proof
}

func newChainFixture(t *testing.T, opts ...Option) *chainFixture {
	t.Helper()
	p1, pub1 := keys.FromSeed("alice")
	_, pub2 := keys.FromSeed("bob")
	b, err := board.DefaultScenario(pub1, pub2)
	require.NoError(t, err)

	authPriv, _ := keys.FromSeed("authority")
	authority := roll.NewAuthority(authPriv, roll.NewHashStream([]byte("dice")))
	arb, err := roll.GenerateArbiter(roll.NewHashStream([]byte("arbiter")))
	require.NoError(t, err)
	attestor, _ := keys.FromSeed("attestor")

	rules := phase.Rules{RollAuthority: authority.PubKey(), SavePolicy: phase.SaveDisabled}
	prover := NewProver(attestor, rules, append([]Option{WithArbiter(arb)}, opts...)...)
	base, err := prover.Init(phase.Init(1, b.PiecesRoot(), b.ArenaRoot(), pub1))
	require.NoError(t, err)

	return &chainFixture{t: t, board: b, player: p1, authority: authority, arbiter: arb, prover: prover, base: base}
}

// move builds move evidence against the fixture board and the state it
// produces from prior.
func (f *chainFixture) move(prior *Proof, id uint64, dest game.Position, dist, nonce uint64) (MoveEvidence, phase.PhaseState) {
	f.t.Helper()
	p, _ := f.board.Piece(id)
	w, err := f.board.MoveWitnesses(id, dest)
	require.NoError(f.t, err)
	a := game.NewMove(prior.State.Nonce, nonce, id, dest)
	sig, err := a.Sign(f.player)
	require.NoError(f.t, err)
	ev := MoveEvidence{phase.MoveInput{
		Piece: p, PieceWitness: w.Piece, OldCellWitness: w.OldCell, NewCellWitness: w.NewCell,
		Dest: dest, Distance: dist, Action: a, Signature: sig,
	}}
	next, err := prior.State.ApplyMove(ev.MoveInput)
	require.NoError(f.t, err)
	return ev, next
}

func (f *chainFixture) attack(prior *Proof, att, tgt uint64, dist, nonce uint64) (AttackEvidence, phase.PhaseState) {
	f.t.Helper()
	ap, _ := f.board.Piece(att)
	tp, _ := f.board.Piece(tgt)
	aw, tw, err := f.board.AttackWitnesses(att, tgt)
	require.NoError(f.t, err)
	a := game.NewAttack(prior.State.Nonce, nonce, game.ActionRanged, att, tp)
	sig, err := a.Sign(f.player)
	require.NoError(f.t, err)
	r, err := f.authority.Seal(f.arbiter.PublicKey(), roll.Binding{Turn: prior.State.Nonce, ActionNonce: nonce, PieceID: att}, roll.Roll{Hit: 6, Wound: 6, Save: 6})
	require.NoError(f.t, err)
	ev := AttackEvidence{Type: game.ActionRanged, AttackInput: phase.AttackInput{
		Attacker: ap, AttackerWitness: aw, Target: tp, TargetWitness: tw,
		Distance: dist, Action: a, Signature: sig, Roll: r,
	}}
	next, out, err := prior.State.ApplyRangedAttack(f.prover.rules, f.arbiter, ev.AttackInput)
	require.NoError(f.t, err)
	require.NoError(f.t, f.board.SetHealth(tgt, out.HealthAfter))
	return ev, next
}

func TestInit_RejectsMidTurnState(t *testing.T) {
	f := newChainFixture(t)
	require.NoError(t, f.prover.Verifier().Verify(f.base))

	mid := f.base.State
	mid.ActionsNonce = 3
	_, err := f.prover.Init(mid)
	require.ErrorIs(t, err, ErrNotTurnStart)
}

func TestStep_ChainsMoveAndAttack(t *testing.T) {
	f := newChainFixture(t)
	ctx := context.Background()

	ev, s1 := f.move(f.base, 0, game.Position{X: 15, Y: 5}, 3, 1)
	p1, err := f.prover.Step(ctx, f.base, s1, ev)
	require.NoError(t, err)
	require.NoError(t, f.board.ApplyMove(0, game.Position{X: 15, Y: 5}))
	require.Equal(t, uint64(1), p1.Depth)
	require.Equal(t, f.base.Anchor, p1.Anchor)

	aev, s2 := f.attack(p1, 0, 3, 12, 2)
	p2, err := f.prover.Step(ctx, p1, s2, aev)
	require.NoError(t, err)
	require.Equal(t, uint64(2), p2.Depth)
	require.NotEqual(t, p1.Accumulator, p2.Accumulator)

	v := NewVerifier(f.prover.AttestorKey(), nil)
	require.NoError(t, v.Verify(p2))
	require.True(t, p2.State.StartingPiecesRoot.Equal(&f.base.State.StartingPiecesRoot))
	pr := f.board.PiecesRoot()
	require.True(t, p2.State.CurrentPiecesRoot.Equal(&pr))
}

func TestStep_RejectsWrongClaim(t *testing.T) {
	f := newChainFixture(t)
	ev, s1 := f.move(f.base, 0, game.Position{X: 15, Y: 5}, 3, 1)
	s1.ActionsNonce = 7
	_, err := f.prover.Step(context.Background(), f.base, s1, ev)
	require.ErrorIs(t, err, ErrClaimMismatch)
}

func TestStep_PropagatesTransitionErrors(t *testing.T) {
	f := newChainFixture(t)
	ev, s1 := f.move(f.base, 0, game.Position{X: 15, Y: 5}, 3, 1)
	ev.Distance = 4
	_, err := f.prover.Step(context.Background(), f.base, s1, ev)
	require.ErrorIs(t, err, phase.ErrRange)
}

func TestStep_RejectsForgedPrior(t *testing.T) {
	f := newChainFixture(t)
	forged := *f.base
	forged.State.Nonce = 2
	ev, s1 := f.move(f.base, 0, game.Position{X: 15, Y: 5}, 3, 1)
	_, err := f.prover.Step(context.Background(), &forged, s1, ev)
	require.ErrorIs(t, err, ErrInvalidProof)

	// A chain from another attestor is not accepted either.
	other := NewProver(ed25519.GenPrivKey(), f.prover.rules, WithArbiter(f.arbiter))
	foreign, err := other.Init(f.base.State)
	require.NoError(t, err)
	_, err = f.prover.Step(context.Background(), foreign, s1, ev)
	require.ErrorIs(t, err, ErrInvalidProof)
}

func TestStep_Cancelled(t *testing.T) {
	f := newChainFixture(t)
	ev, s1 := f.move(f.base, 0, game.Position{X: 15, Y: 5}, 3, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, err := f.prover.Step(ctx, f.base, s1, ev)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, p)
}

func TestVerify_DetectsTampering(t *testing.T) {
	f := newChainFixture(t)
	ev, s1 := f.move(f.base, 0, game.Position{X: 15, Y: 5}, 3, 1)
	p1, err := f.prover.Step(context.Background(), f.base, s1, ev)
	require.NoError(t, err)
	v := f.prover.Verifier()

	tampered := *p1
	tampered.State.CurrentArenaRoot = f.base.State.CurrentArenaRoot
	require.ErrorIs(t, v.Verify(&tampered), ErrInvalidProof)

	tampered = *p1
	tampered.Depth = 5
	require.ErrorIs(t, v.Verify(&tampered), ErrInvalidProof)

	tampered = *p1
	tampered.Signature = append([]byte(nil), p1.Signature...)
	tampered.Signature[0] ^= 1
	require.ErrorIs(t, v.Verify(&tampered), ErrInvalidProof)

	require.ErrorIs(t, v.Verify(nil), ErrInvalidProof)
}

// A correctly signed proof whose accumulator skips a fold is still
// rejected, so the attestor cannot silently drop history.
func TestVerify_AccumulatorStructure(t *testing.T) {
	f := newChainFixture(t)
	ev, s1 := f.move(f.base, 0, game.Position{X: 15, Y: 5}, 3, 1)
	p1, err := f.prover.Step(context.Background(), f.base, s1, ev)
	require.NoError(t, err)

	skip := *p1
	skip.Accumulator = f.base.Accumulator
	require.NoError(t, f.prover.sign(&skip))
	require.ErrorIs(t, f.prover.Verifier().Verify(&skip), ErrInvalidProof)

	// Swapping the previous roots breaks the link to the anchor even when
	// the accumulator is refolded over the new previous state.
	detached := *p1
	tr := *p1.Transition
	tr.Prev.CurrentArenaRoot = p1.State.CurrentArenaRoot
	detached.Transition = &tr
	detached.Accumulator = fold(tr.PrevAccumulator, tr.PrevDigest(), detached.State.Digest())
	require.NoError(t, f.prover.sign(&detached))
	require.ErrorContains(t, f.prover.Verifier().Verify(&detached), "anchor")
}

func TestVerify_TransitionMustContinuePrev(t *testing.T) {
	f := newChainFixture(t)
	ev, s1 := f.move(f.base, 0, game.Position{X: 15, Y: 5}, 3, 1)
	p1, err := f.prover.Step(context.Background(), f.base, s1, ev)
	require.NoError(t, err)

	for name, mutate := range map[string]func(prev *phase.PhaseState){
		"other turn":          func(prev *phase.PhaseState) { prev.Nonce++ },
		"no nonce progress":   func(prev *phase.PhaseState) { prev.ActionsNonce = p1.State.ActionsNonce },
		"other starting root": func(prev *phase.PhaseState) { prev.StartingArenaRoot = p1.State.CurrentArenaRoot },
		"other player": func(prev *phase.PhaseState) {
			_, pub := keys.FromSeed("mallory")
			prev.ActivePlayer = pub
		},
	} {
		t.Run(name, func(t *testing.T) {
			bad := *p1
			tr := *p1.Transition
			mutate(&tr.Prev)
			bad.Transition = &tr
			require.NoError(t, f.prover.sign(&bad))
			require.ErrorIs(t, f.prover.Verifier().Verify(&bad), ErrInvalidProof)
		})
	}
}

func TestStep_AcceptsPointerEvidence(t *testing.T) {
	f := newChainFixture(t)
	ctx := context.Background()

	ev, s1 := f.move(f.base, 0, game.Position{X: 15, Y: 5}, 3, 1)
	p1, err := f.prover.Step(ctx, f.base, s1, &ev)
	require.NoError(t, err)
	require.NoError(t, f.board.ApplyMove(0, game.Position{X: 15, Y: 5}))
	require.Equal(t, f.base.State, p1.Transition.Prev)

	aev, s2 := f.attack(p1, 0, 3, 12, 2)
	p2, err := f.prover.Step(ctx, p1, s2, &aev)
	require.NoError(t, err)
	require.NoError(t, f.prover.Verifier().Verify(p2))

	var nilMove *MoveEvidence
	_, err = f.prover.Step(ctx, p2, s2, nilMove)
	require.ErrorIs(t, err, ErrUnsupportedAction)
}
