// Package board is the client-side view of a match: the flat piece store
// and the two commitment trees built over it. It produces the witnesses the
// phase state machine consumes and mirrors every accepted transition.
package board

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"zkarena/internal/ctree"
	"zkarena/internal/game"
)

type Board struct {
	pieces map[uint64]game.Piece
	roster *ctree.Tree
	arena  *ctree.Tree
}

func New() *Board {
	return &Board{
		pieces: map[uint64]game.Piece{},
		roster: ctree.MustNew(game.PieceTreeDepth),
		arena:  ctree.MustNew(game.ArenaTreeDepth),
	}
}

func occupied() fr.Element {
	var e fr.Element
	e.SetUint64(game.CellOccupied)
	return e
}

func empty() fr.Element { return fr.Element{} }

// Place adds a new piece to a free in-bounds cell.
func (b *Board) Place(p game.Piece) error {
	if p.ID >= b.roster.Capacity() {
		return fmt.Errorf("piece id %d exceeds roster capacity %d", p.ID, b.roster.Capacity())
	}
	if _, ok := b.pieces[p.ID]; ok {
		return fmt.Errorf("piece %d already placed", p.ID)
	}
	if len(p.Owner) != ed25519.PubKeySize {
		return fmt.Errorf("piece %d has no owner", p.ID)
	}
	if !p.Position.InBounds() {
		return fmt.Errorf("piece %d placed outside the arena at %v", p.ID, p.Position)
	}
	if occ, ok := b.OccupantAt(p.Position); ok {
		return fmt.Errorf("cell %v already holds piece %d", p.Position, occ.ID)
	}
	return b.write(p, true)
}

// write stores p and, when occupy is set, marks its cell.
func (b *Board) write(p game.Piece, occupy bool) error {
	if err := b.roster.Set(p.ID, p.Hash()); err != nil {
		return err
	}
	if occupy {
		if err := b.arena.Set(p.Position.Key(), occupied()); err != nil {
			return err
		}
	}
	b.pieces[p.ID] = p
	return nil
}

func (b *Board) Piece(id uint64) (game.Piece, bool) {
	p, ok := b.pieces[id]
	return p, ok
}

// Pieces returns every piece ordered by id.
func (b *Board) Pieces() []game.Piece {
	out := make([]game.Piece, 0, len(b.pieces))
	for _, p := range b.pieces {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Board) OccupantAt(pos game.Position) (game.Piece, bool) {
	for _, p := range b.pieces {
		if p.Position == pos {
			return p, true
		}
	}
	return game.Piece{}, false
}

func (b *Board) PiecesRoot() fr.Element { return b.roster.Root() }

func (b *Board) ArenaRoot() fr.Element { return b.arena.Root() }

// MoveWitnesses are the three paths a move needs.
type MoveWitnesses struct {
	Piece   *ctree.Witness
	OldCell *ctree.Witness
	NewCell *ctree.Witness
}

// MoveWitnesses assembles paths for moving id to dest. The new-cell path is
// taken from a copy of the arena with the old cell already cleared.
func (b *Board) MoveWitnesses(id uint64, dest game.Position) (MoveWitnesses, error) {
	p, ok := b.pieces[id]
	if !ok {
		return MoveWitnesses{}, fmt.Errorf("unknown piece %d", id)
	}
	if !dest.InBounds() {
		return MoveWitnesses{}, fmt.Errorf("destination %v outside the arena", dest)
	}
	var (
		out MoveWitnesses
		err error
	)
	if out.Piece, err = b.roster.Witness(id); err != nil {
		return MoveWitnesses{}, err
	}
	if out.OldCell, err = b.arena.Witness(p.Position.Key()); err != nil {
		return MoveWitnesses{}, err
	}
	vacated, err := b.arena.Clone()
	if err != nil {
		return MoveWitnesses{}, err
	}
	if err := vacated.Set(p.Position.Key(), empty()); err != nil {
		return MoveWitnesses{}, err
	}
	if out.NewCell, err = vacated.Witness(dest.Key()); err != nil {
		return MoveWitnesses{}, err
	}
	return out, nil
}

// AttackWitnesses returns the attacker and target paths, both against the
// current roster root.
func (b *Board) AttackWitnesses(attacker, target uint64) (*ctree.Witness, *ctree.Witness, error) {
	for _, id := range []uint64{attacker, target} {
		if _, ok := b.pieces[id]; !ok {
			return nil, nil, fmt.Errorf("unknown piece %d", id)
		}
	}
	aw, err := b.roster.Witness(attacker)
	if err != nil {
		return nil, nil, err
	}
	tw, err := b.roster.Witness(target)
	if err != nil {
		return nil, nil, err
	}
	return aw, tw, nil
}

// ApplyMove mirrors an accepted move.
func (b *Board) ApplyMove(id uint64, dest game.Position) error {
	p, ok := b.pieces[id]
	if !ok {
		return fmt.Errorf("unknown piece %d", id)
	}
	if err := b.arena.Set(p.Position.Key(), empty()); err != nil {
		return err
	}
	return b.write(p.MovedTo(dest), true)
}

// SetHealth mirrors the result of an accepted attack. Eliminated pieces keep
// their cell.
func (b *Board) SetHealth(id uint64, health uint32) error {
	p, ok := b.pieces[id]
	if !ok {
		return fmt.Errorf("unknown piece %d", id)
	}
	return b.write(p.WithHealth(health), false)
}

// Clone returns a deep copy suitable for staging a transition.
func (b *Board) Clone() (*Board, error) {
	roster, err := b.roster.Clone()
	if err != nil {
		return nil, err
	}
	arena, err := b.arena.Clone()
	if err != nil {
		return nil, err
	}
	out := &Board{pieces: make(map[uint64]game.Piece, len(b.pieces)), roster: roster, arena: arena}
	for id, p := range b.pieces {
		out.pieces[id] = p.WithHealth(p.Stats.Health)
	}
	return out, nil
}

// MarshalJSON lists pieces by id; the trees are rebuilt on load.
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Pieces []game.Piece `json:"pieces"`
	}{Pieces: b.Pieces()})
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var in struct {
		Pieces []game.Piece `json:"pieces"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	fresh := New()
	for _, p := range in.Pieces {
		if err := fresh.Place(p); err != nil {
			return err
		}
	}
	*b = *fresh
	return nil
}

const fileName = "board.json"

func Load(home string) (*Board, error) {
	bz, err := os.ReadFile(filepath.Join(home, fileName))
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	b := New()
	if err := json.Unmarshal(bz, b); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	return b, nil
}

func (b *Board) Save(home string) error {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return fmt.Errorf("mkdir home: %w", err)
	}
	bz, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	if err := os.WriteFile(filepath.Join(home, fileName), bz, 0o644); err != nil {
		return fmt.Errorf("write board: %w", err)
	}
	return nil
}
