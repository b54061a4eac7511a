// Package circuit holds the gnark circuit that proves a move transition:
// the piece opens under the old roster root and re-hashes into the new one,
// its old cell is vacated and its destination filled in the arena tree, and
// the asserted distance is exact and within the piece's movement.
package circuit

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/math/bits"

	"zkarena/internal/ctree"
	"zkarena/internal/game"
)

// NumStats matches game.Stats.Fields.
const NumStats = 9

// statMovement and statHealth index into MoveCircuit.Stats.
const (
	statHealth   = 0
	statMovement = 1
)

type MoveCircuit struct {
	OldPiecesRoot frontend.Variable `gnark:",public"`
	NewPiecesRoot frontend.Variable `gnark:",public"`
	OldArenaRoot  frontend.Variable `gnark:",public"`
	NewArenaRoot  frontend.Variable `gnark:",public"`

	PieceID  frontend.Variable
	OwnerHi  frontend.Variable
	OwnerLo  frontend.Variable
	Stats    [NumStats]frontend.Variable
	OldX     frontend.Variable
	OldY     frontend.Variable
	NewX     frontend.Variable
	NewY     frontend.Variable
	Distance frontend.Variable

	PiecePath   [game.PieceTreeDepth]frontend.Variable
	OldCellPath [game.ArenaTreeDepth]frontend.Variable
	NewCellPath [game.ArenaTreeDepth]frontend.Variable
}

func (c *MoveCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	hash := func(vs ...frontend.Variable) frontend.Variable {
		h.Reset()
		h.Write(vs...)
		return h.Sum()
	}
	climb := func(leaf frontend.Variable, path []frontend.Variable, dirs []frontend.Variable) frontend.Variable {
		cur := leaf
		for i := range path {
			left := api.Select(dirs[i], path[i], cur)
			right := api.Select(dirs[i], cur, path[i])
			cur = hash(left, right)
		}
		return cur
	}

	for _, v := range []frontend.Variable{c.OldX, c.OldY, c.NewX, c.NewY, c.Distance} {
		bits.ToBinary(api, v, bits.WithNbDigits(game.CoordBits))
	}
	api.AssertIsLessOrEqual(c.OldX, game.ArenaWidth-1)
	api.AssertIsLessOrEqual(c.NewX, game.ArenaWidth-1)
	api.AssertIsLessOrEqual(c.OldY, game.ArenaHeight-1)
	api.AssertIsLessOrEqual(c.NewY, game.ArenaHeight-1)
	api.AssertIsDifferent(c.Stats[statHealth], 0)

	// Roster: same leaf slot, position fields swapped.
	leaf := func(x, y frontend.Variable) frontend.Variable {
		vs := []frontend.Variable{c.PieceID, c.OwnerHi, c.OwnerLo, x, y}
		return hash(append(vs, c.Stats[:]...)...)
	}
	idBits := bits.ToBinary(api, c.PieceID, bits.WithNbDigits(game.PieceTreeDepth))
	api.AssertIsEqual(climb(leaf(c.OldX, c.OldY), c.PiecePath[:], idBits), c.OldPiecesRoot)
	api.AssertIsEqual(climb(leaf(c.NewX, c.NewY), c.PiecePath[:], idBits), c.NewPiecesRoot)

	// Arena: vacate the old cell, then fill the destination in the
	// intermediate tree.
	cellBits := func(x, y frontend.Variable) []frontend.Variable {
		key := api.Add(api.Mul(y, game.ArenaWidth), x)
		return bits.ToBinary(api, key, bits.WithNbDigits(game.ArenaTreeDepth))
	}
	oldBits, newBits := cellBits(c.OldX, c.OldY), cellBits(c.NewX, c.NewY)
	api.AssertIsEqual(climb(game.CellOccupied, c.OldCellPath[:], oldBits), c.OldArenaRoot)
	vacated := climb(game.CellEmpty, c.OldCellPath[:], oldBits)
	api.AssertIsEqual(climb(game.CellEmpty, c.NewCellPath[:], newBits), vacated)
	api.AssertIsEqual(climb(game.CellOccupied, c.NewCellPath[:], newBits), c.NewArenaRoot)

	// Geometry: dx² + dy² == d², d <= movement.
	dx := api.Sub(c.OldX, c.NewX)
	dy := api.Sub(c.OldY, c.NewY)
	api.AssertIsEqual(api.Add(api.Mul(dx, dx), api.Mul(dy, dy)), api.Mul(c.Distance, c.Distance))
	api.AssertIsLessOrEqual(c.Distance, c.Stats[statMovement])
	return nil
}

// MoveStatement is the public part of a move proof.
type MoveStatement struct {
	OldPiecesRoot fr.Element
	NewPiecesRoot fr.Element
	OldArenaRoot  fr.Element
	NewArenaRoot  fr.Element
}

func (s MoveStatement) assign(c *MoveCircuit) {
	c.OldPiecesRoot = bigOf(s.OldPiecesRoot)
	c.NewPiecesRoot = bigOf(s.NewPiecesRoot)
	c.OldArenaRoot = bigOf(s.OldArenaRoot)
	c.NewArenaRoot = bigOf(s.NewArenaRoot)
}

// MoveWitness is everything the prover knows about one move.
type MoveWitness struct {
	Statement   MoveStatement
	Piece       game.Piece
	Dest        game.Position
	Distance    uint64
	PiecePath   *ctree.Witness
	OldCellPath *ctree.Witness
	NewCellPath *ctree.Witness
}

func bigOf(e fr.Element) *big.Int { return e.BigInt(new(big.Int)) }

// Assignment builds the full circuit assignment.
func (w MoveWitness) Assignment() (*MoveCircuit, error) {
	if err := w.PiecePath.Validate(game.PieceTreeDepth); err != nil {
		return nil, err
	}
	if err := w.OldCellPath.Validate(game.ArenaTreeDepth); err != nil {
		return nil, err
	}
	if err := w.NewCellPath.Validate(game.ArenaTreeDepth); err != nil {
		return nil, err
	}
	c := &MoveCircuit{
		PieceID:  w.Piece.ID,
		OldX:     uint64(w.Piece.Position.X),
		OldY:     uint64(w.Piece.Position.Y),
		NewX:     uint64(w.Dest.X),
		NewY:     uint64(w.Dest.Y),
		Distance: w.Distance,
	}
	w.Statement.assign(c)
	hi, lo := game.OwnerLimbs(w.Piece.Owner)
	c.OwnerHi, c.OwnerLo = bigOf(hi), bigOf(lo)
	for i, f := range w.Piece.Stats.Fields() {
		c.Stats[i] = uint64(f)
	}
	for i := range c.PiecePath {
		c.PiecePath[i] = bigOf(w.PiecePath.Siblings[i])
	}
	for i := range c.OldCellPath {
		c.OldCellPath[i] = bigOf(w.OldCellPath.Siblings[i])
		c.NewCellPath[i] = bigOf(w.NewCellPath.Siblings[i])
	}
	return c, nil
}
