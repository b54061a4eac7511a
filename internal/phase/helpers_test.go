package phase_test

import (
	"testing"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/stretchr/testify/require"

	"zkarena/internal/board"
	"zkarena/internal/game"
	"zkarena/internal/keys"
	"zkarena/internal/phase"
	"zkarena/internal/roll"
)

type harness struct {
	t         *testing.T
	board     *board.Board
	state     phase.PhaseState
	p1        ed25519.PrivKey
	p2        ed25519.PrivKey
	authority *roll.Authority
	arbiter   *roll.Arbiter
	rules     phase.Rules
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	p1, pub1 := keys.FromSeed("alice")
	p2, pub2 := keys.FromSeed("bob")
	b, err := board.DefaultScenario(pub1, pub2)
	require.NoError(t, err)

	authPriv, _ := keys.FromSeed("authority")
	authority := roll.NewAuthority(authPriv, roll.NewHashStream([]byte("dice")))
	arb, err := roll.GenerateArbiter(roll.NewHashStream([]byte("arbiter")))
	require.NoError(t, err)

	return &harness{
		t:         t,
		board:     b,
		state:     phase.Init(1, b.PiecesRoot(), b.ArenaRoot(), pub1),
		p1:        p1,
		p2:        p2,
		authority: authority,
		arbiter:   arb,
		rules:     phase.Rules{RollAuthority: authority.PubKey(), SavePolicy: phase.SaveRolled},
	}
}

func (h *harness) sign(priv ed25519.PrivKey, a game.Action) []byte {
	h.t.Helper()
	sig, err := a.Sign(priv)
	require.NoError(h.t, err)
	return sig
}

func (h *harness) moveInput(id uint64, dest game.Position, dist, nonce uint64) phase.MoveInput {
	h.t.Helper()
	p, ok := h.board.Piece(id)
	require.True(h.t, ok)
	w, err := h.board.MoveWitnesses(id, dest)
	require.NoError(h.t, err)
	a := game.NewMove(h.state.Nonce, nonce, id, dest)
	return phase.MoveInput{
		Piece:          p,
		PieceWitness:   w.Piece,
		OldCellWitness: w.OldCell,
		NewCellWitness: w.NewCell,
		Dest:           dest,
		Distance:       dist,
		Action:         a,
		Signature:      h.sign(h.p1, a),
	}
}

func (h *harness) attackInput(kind game.ActionType, att, tgt uint64, dist, nonce uint64, dice roll.Roll) phase.AttackInput {
	h.t.Helper()
	ap, _ := h.board.Piece(att)
	tp, _ := h.board.Piece(tgt)
	aw, tw, err := h.board.AttackWitnesses(att, tgt)
	require.NoError(h.t, err)
	a := game.NewAttack(h.state.Nonce, nonce, kind, att, tp)
	r, err := h.authority.Seal(h.arbiter.PublicKey(), roll.Binding{Turn: h.state.Nonce, ActionNonce: nonce, PieceID: att}, dice)
	require.NoError(h.t, err)
	return phase.AttackInput{
		Attacker:        ap,
		AttackerWitness: aw,
		Target:          tp,
		TargetWitness:   tw,
		Distance:        dist,
		Action:          a,
		Signature:       h.sign(h.p1, a),
		Roll:            r,
	}
}

// advance applies a move to both the state and the board.
func (h *harness) advance(id uint64, dest game.Position, dist, nonce uint64) {
	h.t.Helper()
	next, err := h.state.ApplyMove(h.moveInput(id, dest, dist, nonce))
	require.NoError(h.t, err)
	require.NoError(h.t, h.board.ApplyMove(id, dest))
	h.state = next
	h.requireSynced()
}

func (h *harness) requireSynced() {
	h.t.Helper()
	pr, ar := h.board.PiecesRoot(), h.board.ArenaRoot()
	require.True(h.t, h.state.CurrentPiecesRoot.Equal(&pr), "pieces root diverged")
	require.True(h.t, h.state.CurrentArenaRoot.Equal(&ar), "arena root diverged")
}

// newDuelHarness replaces the stock scenario with one piece per side on row
// 5, gap cells apart. Alice's piece is id 0, Bob's is id 1.
func newDuelHarness(t *testing.T, gap uint32, targetHealth uint32) *harness {
	t.Helper()
	h := newHarness(t)
	_, pub1 := keys.FromSeed("alice")
	_, pub2 := keys.FromSeed("bob")

	b := board.New()
	a := game.Piece{ID: 0, Owner: pub1, Position: game.Position{X: 5, Y: 5}, Stats: game.DefaultUnit()}
	d := game.Piece{ID: 1, Owner: pub2, Position: game.Position{X: 5 + gap, Y: 5}, Stats: game.DefaultUnit()}
	d.Stats.Health = targetHealth
	require.NoError(t, b.Place(a))
	require.NoError(t, b.Place(d))

	h.board = b
	h.state = phase.Init(4, b.PiecesRoot(), b.ArenaRoot(), pub1)
	return h
}

func (h *harness) mustPos(x, y uint32) game.Position {
	p := game.Position{X: x, Y: y}
	require.True(h.t, p.InBounds())
	return p
}
