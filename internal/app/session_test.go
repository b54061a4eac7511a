package app

import (
	"bytes"
	"context"
	"testing"

	"cosmossdk.io/log"
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/stretchr/testify/require"

	"zkarena/internal/board"
	"zkarena/internal/game"
	"zkarena/internal/keys"
	"zkarena/internal/phase"
	"zkarena/internal/roll"
	"zkarena/internal/turnproof"
)

type testSession struct {
	*Session
	player ed25519.PrivKey
	logs   *bytes.Buffer
}

func newTestSession(t *testing.T) testSession {
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
	prover := turnproof.NewProver(attestor, phase.Rules{RollAuthority: authority.PubKey()}, turnproof.WithArbiter(arb))

	var buf bytes.Buffer
	logger := log.NewLogger(&buf, log.ColorOption(false))
	s, err := NewSession(logger, b, 1, pub1, authority, prover, 2)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return testSession{Session: s, player: p1, logs: &buf}
}

func (ts testSession) signedMove(t *testing.T, nonce, id uint64, dest game.Position, dist uint64) MoveRequest {
	t.Helper()
	a := game.NewMove(ts.State().Nonce, nonce, id, dest)
	sig, err := a.Sign(ts.player)
	require.NoError(t, err)
	return MoveRequest{PieceID: id, Dest: dest, Distance: dist, Action: a, Signature: sig}
}

func (ts testSession) signedAttack(t *testing.T, nonce uint64, kind game.ActionType, att, tgt, dist uint64) AttackRequest {
	t.Helper()
	target, ok := ts.Board().Piece(tgt)
	require.True(t, ok)
	a := game.NewAttack(ts.State().Nonce, nonce, kind, att, target)
	sig, err := a.Sign(ts.player)
	require.NoError(t, err)
	return AttackRequest{Kind: kind, AttackerID: att, TargetID: tgt, Distance: dist, Action: a, Signature: sig}
}

func TestSession_FullTurn(t *testing.T) {
	ts := newTestSession(t)
	ctx := context.Background()

	p1, err := ts.Move(ctx, ts.signedMove(t, 1, 0, game.Position{X: 15, Y: 5}, 3))
	require.NoError(t, err)
	require.Equal(t, uint64(1), p1.Depth)

	rep, err := ts.Attack(ctx, ts.signedAttack(t, 2, game.ActionRanged, 0, 3, 12))
	require.NoError(t, err)
	require.Equal(t, uint64(2), rep.Proof.Depth)

	// The published reveal matches the outcome that was applied.
	dice, err := roll.VerifyReveal(rep.Roll, rep.Reveal)
	require.NoError(t, err)
	unit := game.DefaultUnit()
	require.Equal(t, phase.ResolveAttack(game.ActionRanged, unit, unit, dice, phase.SaveRolled), rep.Outcome)

	tgt, _ := ts.Board().Piece(3)
	require.Equal(t, rep.Outcome.HealthAfter, tgt.Stats.Health)

	st := ts.State()
	pr, ar := ts.Board().PiecesRoot(), ts.Board().ArenaRoot()
	require.True(t, st.CurrentPiecesRoot.Equal(&pr))
	require.True(t, st.CurrentArenaRoot.Equal(&ar))
	require.NoError(t, ts.prover.Verifier().Verify(ts.Proof()))

	require.Contains(t, ts.logs.String(), "attack applied")
}

func TestSession_RejectedActionLeavesStateAlone(t *testing.T) {
	ts := newTestSession(t)
	ctx := context.Background()
	before := ts.State()

	_, err := ts.Move(ctx, ts.signedMove(t, 1, 0, game.Position{X: 19, Y: 5}, 7))
	require.ErrorIs(t, err, phase.ErrRange)
	_, err = ts.Attack(ctx, ts.signedAttack(t, 1, game.ActionRanged, 0, 3, 15))
	require.ErrorIs(t, err, phase.ErrRange)
	_, err = ts.Move(ctx, ts.signedMove(t, 1, 9, game.Position{X: 1, Y: 1}, 1))
	require.ErrorIs(t, err, phase.ErrInvalidInput)

	require.True(t, before.Equal(ts.State()))
	require.Zero(t, ts.Proof().Depth)
	require.Contains(t, ts.logs.String(), "move rejected")
}

func TestSession_CancelledContext(t *testing.T) {
	ts := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ts.Move(ctx, ts.signedMove(t, 1, 0, game.Position{X: 15, Y: 5}, 3))
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, ts.State().ActionsNonce)
	p, _ := ts.Board().Piece(0)
	require.Equal(t, game.Position{X: 12, Y: 5}, p.Position)
}
