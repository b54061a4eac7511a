package turnproof

import (
	"zkarena/internal/circuit"
	"zkarena/internal/game"
	"zkarena/internal/phase"
)

// Evidence is the private input of one step. Both value and pointer forms
// of MoveEvidence and AttackEvidence are accepted.
type Evidence interface {
	Kind() game.ActionType
	apply(p *Prover, s phase.PhaseState) (phase.PhaseState, error)
}

type MoveEvidence struct {
	phase.MoveInput
}

func (MoveEvidence) Kind() game.ActionType { return game.ActionMove }

func (e MoveEvidence) apply(_ *Prover, s phase.PhaseState) (phase.PhaseState, error) {
	return s.ApplyMove(e.MoveInput)
}

func (e MoveEvidence) circuitWitness(prev, next phase.PhaseState) circuit.MoveWitness {
	return circuit.MoveWitness{
		Statement:   statement(prev, next),
		Piece:       e.Piece,
		Dest:        e.Dest,
		Distance:    e.Distance,
		PiecePath:   e.PieceWitness,
		OldCellPath: e.OldCellWitness,
		NewCellPath: e.NewCellWitness,
	}
}

type AttackEvidence struct {
	Type game.ActionType
	phase.AttackInput
}

func (e AttackEvidence) Kind() game.ActionType { return e.Type }

func (e AttackEvidence) apply(p *Prover, s phase.PhaseState) (phase.PhaseState, error) {
	next, _, err := s.ApplyAttack(e.Type, p.rules, p.arbiter, e.AttackInput)
	return next, err
}

func asMove(ev Evidence) (MoveEvidence, bool) {
	switch e := ev.(type) {
	case MoveEvidence:
		return e, true
	case *MoveEvidence:
		if e != nil {
			return *e, true
		}
	}
	return MoveEvidence{}, false
}

func isNil(ev Evidence) bool {
	switch e := ev.(type) {
	case nil:
		return true
	case *MoveEvidence:
		return e == nil
	case *AttackEvidence:
		return e == nil
	}
	return false
}
