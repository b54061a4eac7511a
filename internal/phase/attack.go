package phase

import (
	"github.com/cometbft/cometbft/crypto/ed25519"

	"zkarena/internal/ctree"
	"zkarena/internal/game"
	"zkarena/internal/roll"
)

// Rules are the turn-independent parameters of attack resolution.
type Rules struct {
	RollAuthority ed25519.PubKey
	SavePolicy    SavePolicy
}

type AttackInput struct {
	Attacker        game.Piece
	AttackerWitness *ctree.Witness
	Target          game.Piece
	TargetWitness   *ctree.Witness
	Distance        uint64
	Action          game.Action
	Signature       []byte
	Roll            *roll.EncryptedAttackRoll
}

func (s PhaseState) ApplyRangedAttack(rules Rules, arb *roll.Arbiter, in AttackInput) (PhaseState, Outcome, error) {
	return s.applyAttack(game.ActionRanged, rules, arb, in)
}

func (s PhaseState) ApplyMeleeAttack(rules Rules, arb *roll.Arbiter, in AttackInput) (PhaseState, Outcome, error) {
	return s.applyAttack(game.ActionMelee, rules, arb, in)
}

// ApplyAttack dispatches on kind.
func (s PhaseState) ApplyAttack(kind game.ActionType, rules Rules, arb *roll.Arbiter, in AttackInput) (PhaseState, Outcome, error) {
	if !kind.IsAttack() {
		return PhaseState{}, Outcome{}, ErrInvalidInput.Wrapf("%s is not an attack", kind)
	}
	return s.applyAttack(kind, rules, arb, in)
}

func reach(kind game.ActionType, st game.Stats) uint64 {
	if kind == game.ActionMelee {
		return uint64(st.MeleeRange)
	}
	return uint64(st.RangedRange)
}

func (s PhaseState) applyAttack(kind game.ActionType, rules Rules, arb *roll.Arbiter, in AttackInput) (PhaseState, Outcome, error) {
	fail := func(err error) (PhaseState, Outcome, error) { return PhaseState{}, Outcome{}, err }

	if err := in.validate(arb); err != nil {
		return fail(err)
	}
	att, tgt := in.Attacker, in.Target

	if !att.OwnedBy(s.ActivePlayer) {
		return fail(ErrOwnership.Wrapf("attacker %d not owned by active player", att.ID))
	}
	if tgt.OwnedBy(s.ActivePlayer) {
		return fail(ErrOwnership.Wrapf("target %d belongs to the active player", tgt.ID))
	}
	if err := s.checkSigned(in.Action, in.Signature); err != nil {
		return fail(err)
	}
	tgtHash := tgt.Hash()
	if in.Action.Type != kind || !in.Action.Params.Equal(&tgtHash) || in.Action.PieceID != att.ID {
		return fail(ErrAuthentication.Wrapf("signed action %s/piece %d does not describe this %s attack", in.Action.Type, in.Action.PieceID, kind))
	}
	if att.ID == tgt.ID {
		return fail(ErrConsistency.Wrapf("piece %d cannot attack itself", att.ID))
	}
	if !in.AttackerWitness.Opens(s.CurrentPiecesRoot, att.ID, att.Hash()) {
		return fail(ErrAuthentication.Wrapf("attacker %d not under current pieces root", att.ID))
	}
	if !in.TargetWitness.Opens(s.CurrentPiecesRoot, tgt.ID, tgtHash) {
		return fail(ErrAuthentication.Wrapf("target %d not under current pieces root", tgt.ID))
	}
	if !att.Position.VerifyDistance(tgt.Position, in.Distance) {
		return fail(ErrRange.Wrapf("distance %d does not match %v -> %v", in.Distance, att.Position, tgt.Position))
	}
	if r := reach(kind, att.Stats); in.Distance > r {
		return fail(ErrRange.Wrapf("distance %d exceeds %s range %d", in.Distance, kind, r))
	}

	dice, err := s.openRoll(rules, arb, in)
	if err != nil {
		return fail(err)
	}
	out := ResolveAttack(kind, att.Stats, tgt.Stats, dice, rules.SavePolicy)

	newPieces := in.TargetWitness.CalculateRoot(tgt.WithHealth(out.HealthAfter).Hash())
	return s.next(in.Action.Nonce, newPieces, s.CurrentArenaRoot), out, nil
}

// openRoll authenticates the encrypted roll and hands it to the arbiter.
func (s PhaseState) openRoll(rules Rules, arb *roll.Arbiter, in AttackInput) (roll.Roll, error) {
	r := in.Roll
	if err := r.Verify(rules.RollAuthority); err != nil {
		return roll.Roll{}, ErrDecryptionAuthenticity.Wrap(err.Error())
	}
	want := roll.Binding{Turn: s.Nonce, ActionNonce: in.Action.Nonce, PieceID: in.Attacker.ID}
	if r.Binding != want {
		return roll.Roll{}, ErrDecryptionAuthenticity.Wrapf("roll bound to %+v, attack is %+v", r.Binding, want)
	}
	if !r.ArbiterKey.Equal(arb.PublicKey()) {
		return roll.Roll{}, ErrDecryptionAuthenticity.Wrap("roll not encrypted to this arbiter")
	}
	dice, err := arb.Decrypt(r)
	if err != nil {
		return roll.Roll{}, ErrDecryptionAuthenticity.Wrap(err.Error())
	}
	return dice, nil
}

func (in AttackInput) validate(arb *roll.Arbiter) error {
	if arb == nil {
		return ErrInvalidInput.Wrap("no arbiter")
	}
	if in.Roll == nil {
		return ErrInvalidInput.Wrap("missing encrypted roll")
	}
	if !in.Attacker.Alive() {
		return ErrInvalidInput.Wrapf("attacker %d is eliminated", in.Attacker.ID)
	}
	if !in.Target.Alive() {
		return ErrInvalidInput.Wrapf("target %d is already eliminated", in.Target.ID)
	}
	if err := in.AttackerWitness.Validate(game.PieceTreeDepth); err != nil {
		return ErrInvalidInput.Wrapf("attacker witness: %v", err)
	}
	if err := in.TargetWitness.Validate(game.PieceTreeDepth); err != nil {
		return ErrInvalidInput.Wrapf("target witness: %v", err)
	}
	return nil
}
