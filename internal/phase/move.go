package phase

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"zkarena/internal/ctree"
	"zkarena/internal/game"
)

type MoveInput struct {
	Piece        game.Piece
	PieceWitness *ctree.Witness
	// OldCellWitness opens the piece's current cell under CurrentArenaRoot.
	OldCellWitness *ctree.Witness
	// NewCellWitness opens Dest under the root left after the old cell is
	// cleared.
	NewCellWitness *ctree.Witness
	Dest           game.Position
	Distance       uint64
	Action         game.Action
	Signature      []byte
}

func cell(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func (s PhaseState) checkSigned(a game.Action, sig []byte) error {
	if !a.VerifySignature(s.ActivePlayer, sig) {
		return ErrAuthentication.Wrap("action signature does not verify against active player")
	}
	if a.Turn != s.Nonce {
		return ErrOrdering.Wrapf("action signed for turn %d, current turn %d", a.Turn, s.Nonce)
	}
	if a.Nonce <= s.ActionsNonce {
		return ErrOrdering.Wrapf("action nonce %d, last applied %d", a.Nonce, s.ActionsNonce)
	}
	return nil
}

// ApplyMove relocates one piece. The receiver is never modified; on error
// the zero state is returned.
func (s PhaseState) ApplyMove(in MoveInput) (PhaseState, error) {
	if err := in.validate(); err != nil {
		return PhaseState{}, err
	}
	piece, old, dest := in.Piece, in.Piece.Position, in.Dest

	if !piece.OwnedBy(s.ActivePlayer) {
		return PhaseState{}, ErrOwnership.Wrapf("piece %d not owned by active player", piece.ID)
	}
	if !old.InBounds() || !dest.InBounds() {
		return PhaseState{}, ErrRange.Wrapf("move %v -> %v leaves the arena", old, dest)
	}
	if !old.VerifyDistance(dest, in.Distance) {
		return PhaseState{}, ErrRange.Wrapf("distance %d does not match %v -> %v", in.Distance, old, dest)
	}
	if in.Distance > uint64(piece.Stats.Movement) {
		return PhaseState{}, ErrRange.Wrapf("distance %d exceeds movement %d", in.Distance, piece.Stats.Movement)
	}
	if err := s.checkSigned(in.Action, in.Signature); err != nil {
		return PhaseState{}, err
	}
	destHash := dest.Hash()
	if in.Action.Type != game.ActionMove || !in.Action.Params.Equal(&destHash) || in.Action.PieceID != piece.ID {
		return PhaseState{}, ErrAuthentication.Wrapf("signed action %s/piece %d does not describe this move", in.Action.Type, in.Action.PieceID)
	}
	if !in.PieceWitness.Opens(s.CurrentPiecesRoot, piece.ID, piece.Hash()) {
		return PhaseState{}, ErrAuthentication.Wrapf("piece %d not under current pieces root", piece.ID)
	}
	if !in.OldCellWitness.Opens(s.CurrentArenaRoot, old.Key(), cell(game.CellOccupied)) {
		return PhaseState{}, ErrAuthentication.Wrapf("cell %v not occupied under current arena root", old)
	}

	cleared := in.OldCellWitness.CalculateRoot(cell(game.CellEmpty))
	if !in.NewCellWitness.Opens(cleared, dest.Key(), cell(game.CellEmpty)) {
		return PhaseState{}, ErrConsistency.Wrapf("destination %v not free in the arena after vacating %v", dest, old)
	}

	newPieces := in.PieceWitness.CalculateRoot(piece.MovedTo(dest).Hash())
	newArena := in.NewCellWitness.CalculateRoot(cell(game.CellOccupied))
	return s.next(in.Action.Nonce, newPieces, newArena), nil
}

func (in MoveInput) validate() error {
	if !in.Piece.Alive() {
		return ErrInvalidInput.Wrapf("piece %d is eliminated", in.Piece.ID)
	}
	if err := in.PieceWitness.Validate(game.PieceTreeDepth); err != nil {
		return ErrInvalidInput.Wrapf("piece witness: %v", err)
	}
	if err := in.OldCellWitness.Validate(game.ArenaTreeDepth); err != nil {
		return ErrInvalidInput.Wrapf("old cell witness: %v", err)
	}
	if err := in.NewCellWitness.Validate(game.ArenaTreeDepth); err != nil {
		return ErrInvalidInput.Wrapf("new cell witness: %v", err)
	}
	return nil
}
