// Package app runs one turn on the server side. A Session owns the board,
// the roll authority and the arbiter capability. It turns signed player
// requests into state-machine input, keeps the turn proof chain, and
// publishes verifiable dice reveals.
package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"

	"cosmossdk.io/log"
	"github.com/cometbft/cometbft/crypto/ed25519"

	"zkarena/internal/board"
	"zkarena/internal/game"
	"zkarena/internal/keys"
	"zkarena/internal/phase"
	"zkarena/internal/roll"
	"zkarena/internal/turnproof"
)

type Session struct {
	mu sync.Mutex

	logger    log.Logger
	board     *board.Board
	authority *roll.Authority
	prover    *turnproof.Prover
	pool      *turnproof.Pool

	state phase.PhaseState
	proof *turnproof.Proof
}

// NewSession opens turn `turn` for player over b. The prover must carry the
// arbiter when attacks are expected.
func NewSession(logger log.Logger, b *board.Board, turn uint64, player ed25519.PubKey, authority *roll.Authority, prover *turnproof.Prover, workers int64) (*Session, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	st := phase.Init(turn, b.PiecesRoot(), b.ArenaRoot(), player)
	base, err := prover.Init(st)
	if err != nil {
		return nil, err
	}
	s := &Session{
		logger:    logger.With("module", "app", "turn", turn),
		board:     b,
		authority: authority,
		prover:    prover,
		pool:      turnproof.NewPool(prover, workers),
		state:     st,
		proof:     base,
	}
	s.logger.Info("session opened", "player", keys.MustEncode(player))
	return s, nil
}

func (s *Session) State() phase.PhaseState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Proof() *turnproof.Proof {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proof
}

func (s *Session) Board() *board.Board { return s.board }

// attest hands the step to the proving pool and waits for it.
func (s *Session) attest(ctx context.Context, claimed phase.PhaseState, ev turnproof.Evidence) (*turnproof.Proof, error) {
	res := <-s.pool.Submit(ctx, turnproof.Job{Prior: s.proof, Claimed: claimed, Evidence: ev})
	return res.Proof, res.Err
}

// MoveRequest is a signed move from the active player.
type MoveRequest struct {
	PieceID   uint64
	Dest      game.Position
	Distance  uint64
	Action    game.Action
	Signature []byte
}

func (s *Session) Move(ctx context.Context, req MoveRequest) (*turnproof.Proof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	piece, ok := s.board.Piece(req.PieceID)
	if !ok {
		return nil, phase.ErrInvalidInput.Wrapf("unknown piece %d", req.PieceID)
	}
	w, err := s.board.MoveWitnesses(req.PieceID, req.Dest)
	if err != nil {
		return nil, phase.ErrInvalidInput.Wrap(err.Error())
	}
	in := phase.MoveInput{
		Piece:          piece,
		PieceWitness:   w.Piece,
		OldCellWitness: w.OldCell,
		NewCellWitness: w.NewCell,
		Dest:           req.Dest,
		Distance:       req.Distance,
		Action:         req.Action,
		Signature:      req.Signature,
	}
	next, err := s.state.ApplyMove(in)
	if err != nil {
		s.logger.Warn("move rejected", "piece", req.PieceID, "err", err)
		return nil, err
	}
	proof, err := s.attest(ctx, next, turnproof.MoveEvidence{MoveInput: in})
	if err != nil {
		return nil, err
	}
	if err := s.board.ApplyMove(req.PieceID, req.Dest); err != nil {
		return nil, fmt.Errorf("board out of sync after accepted move: %w", err)
	}
	s.state, s.proof = next, proof
	s.logger.Info("move applied", "piece", req.PieceID, "x", req.Dest.X, "y", req.Dest.Y, "depth", proof.Depth)
	return proof, nil
}

// AttackRequest is a signed attack from the active player.
type AttackRequest struct {
	Kind       game.ActionType
	AttackerID uint64
	TargetID   uint64
	Distance   uint64
	Action     game.Action
	Signature  []byte
}

type AttackReport struct {
	Proof   *turnproof.Proof
	Outcome phase.Outcome
	Roll    *roll.EncryptedAttackRoll
	Reveal  *roll.Reveal
}

// Attack asks the authority for a roll bound to this attack, applies it,
// and publishes the arbiter's decryption proofs.
func (s *Session) Attack(ctx context.Context, req AttackRequest) (*AttackReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	arb := s.prover.Arbiter()
	if arb == nil {
		return nil, phase.ErrInvalidInput.Wrap("session has no arbiter")
	}
	att, ok := s.board.Piece(req.AttackerID)
	if !ok {
		return nil, phase.ErrInvalidInput.Wrapf("unknown piece %d", req.AttackerID)
	}
	tgt, ok := s.board.Piece(req.TargetID)
	if !ok {
		return nil, phase.ErrInvalidInput.Wrapf("unknown piece %d", req.TargetID)
	}
	aw, tw, err := s.board.AttackWitnesses(req.AttackerID, req.TargetID)
	if err != nil {
		return nil, phase.ErrInvalidInput.Wrap(err.Error())
	}
	encRoll, err := s.authority.Issue(arb.PublicKey(), roll.Binding{
		Turn:        s.state.Nonce,
		ActionNonce: req.Action.Nonce,
		PieceID:     req.AttackerID,
	})
	if err != nil {
		return nil, err
	}
	in := phase.AttackInput{
		Attacker:        att,
		AttackerWitness: aw,
		Target:          tgt,
		TargetWitness:   tw,
		Distance:        req.Distance,
		Action:          req.Action,
		Signature:       req.Signature,
		Roll:            encRoll,
	}
	next, out, err := s.state.ApplyAttack(req.Kind, s.prover.Rules(), arb, in)
	if err != nil {
		s.logger.Warn("attack rejected", "attacker", req.AttackerID, "target", req.TargetID, "err", err)
		return nil, err
	}
	proof, err := s.attest(ctx, next, turnproof.AttackEvidence{Type: req.Kind, AttackInput: in})
	if err != nil {
		return nil, err
	}
	reveal, err := arb.Reveal(encRoll, rand.Reader)
	if err != nil {
		return nil, err
	}
	if err := s.board.SetHealth(req.TargetID, out.HealthAfter); err != nil {
		return nil, fmt.Errorf("board out of sync after accepted attack: %w", err)
	}
	s.state, s.proof = next, proof
	s.logger.Info("attack applied",
		"kind", req.Kind.String(), "attacker", req.AttackerID, "target", req.TargetID,
		"hit", out.Hit, "wound", out.Wound, "saved", out.Saved, "health", out.HealthAfter, "depth", proof.Depth)
	return &AttackReport{Proof: proof, Outcome: out, Roll: encRoll, Reveal: reveal}, nil
}

// Close waits for in-flight proofs.
func (s *Session) Close() { s.pool.Wait() }
