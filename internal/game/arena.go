// Package game defines the records a turn operates on: arena geometry,
// unit stats, pieces and signed actions.
package game

import (
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"zkarena/internal/ctree"
)

const (
	ArenaWidth  = 40
	ArenaHeight = 20

	// ArenaTreeDepth addresses 1024 cells, enough for the 800-cell grid.
	ArenaTreeDepth = 10
	// PieceTreeDepth bounds the roster to 256 piece ids.
	PieceTreeDepth = 8

	// MeleeRange is the reach of a close-combat attack.
	MeleeRange = 1

	// CoordBits bounds each coordinate inside the move circuit.
	CoordBits = 8
)

// Occupancy leaf values in the arena tree.
const (
	CellEmpty    = 0
	CellOccupied = 1
)

type Position struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}

func (p Position) InBounds() bool {
	return p.X < ArenaWidth && p.Y < ArenaHeight
}

// Key is the arena tree key for the cell.
func (p Position) Key() uint64 {
	return uint64(p.Y)*ArenaWidth + uint64(p.X)
}

func PositionFromKey(key uint64) Position {
	return Position{X: uint32(key % ArenaWidth), Y: uint32(key / ArenaWidth)}
}

func (p Position) Hash() fr.Element {
	var x, y fr.Element
	x.SetUint64(uint64(p.X))
	y.SetUint64(uint64(p.Y))
	return ctree.Hash(x, y)
}

func absDiff(a, b uint32) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}

// VerifyDistance holds iff dx² + dy² == d² exactly. Non-integer Euclidean
// distances therefore never match any d. The comparison is done in 128 bits
// so no input can overflow.
func (p Position) VerifyDistance(other Position, d uint64) bool {
	dx, dy := absDiff(p.X, other.X), absDiff(p.Y, other.Y)
	hx, lx := bits.Mul64(dx, dx)
	hy, ly := bits.Mul64(dy, dy)
	lo, carry := bits.Add64(lx, ly, 0)
	hi, _ := bits.Add64(hx, hy, carry)
	hd, ld := bits.Mul64(d, d)
	return hi == hd && lo == ld
}
