package phase_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"zkarena/internal/game"
	"zkarena/internal/phase"
)

func TestApplyMove_Succeeds(t *testing.T) {
	h := newHarness(t)
	start := h.state

	h.advance(0, game.Position{X: 15, Y: 9}, 5, 1)
	require.Equal(t, uint64(1), h.state.ActionsNonce)
	require.Equal(t, start.Nonce, h.state.Nonce)
	require.True(t, h.state.StartingPiecesRoot.Equal(&start.StartingPiecesRoot))
	require.True(t, h.state.StartingArenaRoot.Equal(&start.StartingArenaRoot))
	require.False(t, h.state.CurrentArenaRoot.Equal(&start.CurrentArenaRoot))
	require.True(t, start.AtTurnStart(), "input state must be untouched")
	require.False(t, h.state.AtTurnStart())

	h.advance(0, game.Position{X: 15, Y: 3}, 6, 5)
	require.Equal(t, uint64(5), h.state.ActionsNonce)
}

func TestApplyMove_MovementBoundary(t *testing.T) {
	h := newHarness(t)
	// Movement is 6: exactly at the stat is allowed.
	_, err := h.state.ApplyMove(h.moveInput(0, game.Position{X: 18, Y: 5}, 6, 1))
	require.NoError(t, err)

	_, err = h.state.ApplyMove(h.moveInput(0, game.Position{X: 19, Y: 5}, 7, 1))
	require.ErrorIs(t, err, phase.ErrRange)
}

func TestApplyMove_DistanceMustBeExact(t *testing.T) {
	h := newHarness(t)
	dest := game.Position{X: 13, Y: 6}
	for _, d := range []uint64{0, 1, 2} {
		_, err := h.state.ApplyMove(h.moveInput(0, dest, d, 1))
		require.ErrorIs(t, err, phase.ErrRange, "d=%d", d)
	}
}

func TestApplyMove_NonceOrdering(t *testing.T) {
	h := newHarness(t)
	h.advance(0, game.Position{X: 13, Y: 5}, 1, 3)

	for _, n := range []uint64{0, 2, 3} {
		_, err := h.state.ApplyMove(h.moveInput(1, game.Position{X: 13, Y: 10}, 1, n))
		require.ErrorIs(t, err, phase.ErrOrdering, "nonce=%d", n)
	}
	_, err := h.state.ApplyMove(h.moveInput(1, game.Position{X: 13, Y: 10}, 1, 4))
	require.NoError(t, err)
}

func TestApplyMove_ActionFromAnotherTurn(t *testing.T) {
	h := newHarness(t)
	in := h.moveInput(0, game.Position{X: 15, Y: 9}, 5, 1)
	_, err := h.state.ApplyMove(in)
	require.NoError(t, err)

	// Same roots, same player, later turn: actionsNonce is back to zero but
	// the signed turn no longer matches.
	later := phase.Init(h.state.Nonce+2, h.state.CurrentPiecesRoot, h.state.CurrentArenaRoot, h.state.ActivePlayer)
	_, err = later.ApplyMove(in)
	require.ErrorIs(t, err, phase.ErrOrdering)

	in.Action.Turn = later.Nonce
	_, err = later.ApplyMove(in)
	require.ErrorIs(t, err, phase.ErrAuthentication, "turn is covered by the signature")
}

func TestApplyMove_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(h *harness, in *phase.MoveInput)
		want   error
	}{
		{"bad signature", func(h *harness, in *phase.MoveInput) {
			in.Signature = h.sign(h.p2, in.Action)
		}, phase.ErrAuthentication},
		{"signed another destination", func(h *harness, in *phase.MoveInput) {
			in.Action = game.NewMove(h.state.Nonce, 1, 0, game.Position{X: 14, Y: 5})
			in.Signature = h.sign(h.p1, in.Action)
		}, phase.ErrAuthentication},
		{"signed another piece", func(h *harness, in *phase.MoveInput) {
			in.Action.PieceID = 1
			in.Signature = h.sign(h.p1, in.Action)
		}, phase.ErrAuthentication},
		{"signed an attack", func(h *harness, in *phase.MoveInput) {
			in.Action.Type = game.ActionRanged
			in.Signature = h.sign(h.p1, in.Action)
		}, phase.ErrAuthentication},
		{"forged stats", func(h *harness, in *phase.MoveInput) {
			in.Piece.Stats.Movement = 40
		}, phase.ErrAuthentication},
		{"wrong piece path", func(h *harness, in *phase.MoveInput) {
			w, err := h.board.MoveWitnesses(1, in.Dest)
			require.NoError(h.t, err)
			in.PieceWitness = w.Piece
		}, phase.ErrAuthentication},
		{"old cell path for another cell", func(h *harness, in *phase.MoveInput) {
			w, err := h.board.MoveWitnesses(1, in.Dest)
			require.NoError(h.t, err)
			in.OldCellWitness = w.OldCell
		}, phase.ErrAuthentication},
		{"foreign piece", func(h *harness, in *phase.MoveInput) {
			p, _ := h.board.Piece(3)
			in.Piece = p
		}, phase.ErrOwnership},
		{"off the board", func(h *harness, in *phase.MoveInput) {
			in.Dest = game.Position{X: game.ArenaWidth, Y: 5}
		}, phase.ErrRange},
		{"nil witness", func(h *harness, in *phase.MoveInput) {
			in.NewCellWitness = nil
		}, phase.ErrInvalidInput},
		{"truncated witness", func(h *harness, in *phase.MoveInput) {
			in.PieceWitness.Siblings = in.PieceWitness.Siblings[:3]
		}, phase.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			in := h.moveInput(0, game.Position{X: 15, Y: 5}, 3, 1)
			tc.mutate(h, &in)
			got, err := h.state.ApplyMove(in)
			require.ErrorIs(t, err, tc.want)
			require.Equal(t, phase.PhaseState{}, got)
		})
	}
}

func TestApplyMove_OccupiedDestination(t *testing.T) {
	h := newHarness(t)
	// Piece 1 holds (12,10); the path honestly reports it occupied.
	_, err := h.state.ApplyMove(h.moveInput(0, game.Position{X: 12, Y: 10}, 5, 1))
	require.ErrorIs(t, err, phase.ErrConsistency)
}

func TestApplyMove_StaleWitnessesRejected(t *testing.T) {
	h := newHarness(t)
	stale := h.moveInput(0, game.Position{X: 15, Y: 5}, 3, 2)
	h.advance(1, game.Position{X: 12, Y: 7}, 3, 1)

	_, err := h.state.ApplyMove(stale)
	require.ErrorIs(t, err, phase.ErrAuthentication)

	_, err = h.state.ApplyMove(h.moveInput(0, game.Position{X: 15, Y: 5}, 3, 2))
	require.NoError(t, err)
}

func TestApplyMove_CrossTreeConsistency(t *testing.T) {
	h := newHarness(t)
	dest := game.Position{X: 15, Y: 5}
	in := h.moveInput(0, dest, 3, 1)
	// A new-cell path taken from the unmodified arena still reports an empty
	// destination, but it chains from the wrong intermediate root.
	direct, err := h.board.MoveWitnesses(1, dest)
	require.NoError(t, err)
	in.NewCellWitness = direct.NewCell

	_, err = h.state.ApplyMove(in)
	require.ErrorIs(t, err, phase.ErrConsistency)
}

func TestApplyMove_RandomWalkStaysInSync(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness(t)
		nonce := uint64(0)
		steps := rapid.IntRange(1, 3).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			p, _ := h.board.Piece(0)
			dx := rapid.IntRange(-3, 3).Draw(rt, "dx")
			dest := game.Position{X: uint32(int(p.Position.X) + dx), Y: p.Position.Y}
			nonce += uint64(rapid.IntRange(1, 3).Draw(rt, "gap"))
			d := uint64(dx)
			if dx < 0 {
				d = uint64(-dx)
			}
			h.advance(0, dest, d, nonce)
		}
		require.Equal(rt, nonce, h.state.ActionsNonce)
	})
}
