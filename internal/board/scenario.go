package board

import (
	"github.com/cometbft/cometbft/crypto/ed25519"

	"zkarena/internal/game"
)

// DefaultScenario lines up three default units per side, fifteen cells
// apart: one short move puts the front rank in ranged reach.
func DefaultScenario(p1, p2 ed25519.PubKey) (*Board, error) {
	b := New()
	rows := []uint32{5, 10, 15}
	for i, y := range rows {
		for side, owner := range []ed25519.PubKey{p1, p2} {
			x := uint32(12)
			if side == 1 {
				x = 27
			}
			p := game.Piece{
				ID:       uint64(side*len(rows) + i),
				Owner:    owner,
				Position: game.Position{X: x, Y: y},
				Stats:    game.DefaultUnit(),
			}
			if err := b.Place(p); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}
