package roll

import (
	"crypto/rand"
	"io"

	"zkarena/internal/tcrypto"
)

// Arbiter holds the decryption secret. It is passed explicitly to the
// operations that need it and is never part of game state.
type Arbiter struct {
	sk tcrypto.Scalar
	pk tcrypto.Point
}

func NewArbiter(sk tcrypto.Scalar) *Arbiter {
	return &Arbiter{sk: sk, pk: tcrypto.BaseMul(sk)}
}

// GenerateArbiter draws a secret from rng, or crypto/rand when rng is nil.
func GenerateArbiter(rng io.Reader) (*Arbiter, error) {
	if rng == nil {
		rng = rand.Reader
	}
	sk, err := tcrypto.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	return NewArbiter(sk), nil
}

func (a *Arbiter) PublicKey() tcrypto.Point { return a.pk }

func (a *Arbiter) checkKey(r *EncryptedAttackRoll) error {
	if r == nil {
		return ErrMalformed.Wrap("nil roll")
	}
	if !r.ArbiterKey.Equal(a.pk) {
		return ErrArbiterMismatch.Wrapf("roll key %s, arbiter %s", r.ArbiterKey, a.pk)
	}
	return nil
}

func decodeDie(p tcrypto.Point) (uint8, error) {
	v, ok := tcrypto.DecodeSmall(p, DieMin, DieMax)
	if !ok {
		return 0, ErrInvalidDie
	}
	return uint8(v), nil
}

func fromDice(d [numDice]uint8) Roll {
	return Roll{Hit: d[DieHit], Wound: d[DieWound], Save: d[DieSave]}
}

// Decrypt opens the three dice. The caller is responsible for checking the
// authority signature first.
func (a *Arbiter) Decrypt(r *EncryptedAttackRoll) (Roll, error) {
	if err := a.checkKey(r); err != nil {
		return Roll{}, err
	}
	var d [numDice]uint8
	for i, ct := range r.Dice {
		v, err := decodeDie(tcrypto.Decrypt(a.sk, ct))
		if err != nil {
			return Roll{}, ErrInvalidDie.Wrapf("die %d", i)
		}
		d[i] = v
	}
	return fromDice(d), nil
}

// Reveal publishes x*C1 for each die with a DLEQ proof, so anyone holding
// the roll can check the decryption without the secret.
type Reveal struct {
	Shares [numDice]tcrypto.Point
	Proofs [numDice]tcrypto.DLEQProof
}

func (a *Arbiter) Reveal(r *EncryptedAttackRoll, rng io.Reader) (*Reveal, error) {
	if err := a.checkKey(r); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.Reader
	}
	out := &Reveal{}
	for i, ct := range r.Dice {
		w, err := tcrypto.RandomScalar(rng)
		if err != nil {
			return nil, err
		}
		out.Shares[i] = tcrypto.Blind(a.sk, ct)
		if out.Proofs[i], err = tcrypto.ProveDLEQ(a.pk, ct.C1, out.Shares[i], a.sk, w); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// VerifyReveal checks every proof against the roll's arbiter key and
// returns the revealed dice.
func VerifyReveal(r *EncryptedAttackRoll, rv *Reveal) (Roll, error) {
	if r == nil || rv == nil {
		return Roll{}, ErrMalformed.Wrap("nil roll or reveal")
	}
	var d [numDice]uint8
	for i, ct := range r.Dice {
		if !tcrypto.VerifyDLEQ(r.ArbiterKey, ct.C1, rv.Shares[i], rv.Proofs[i]) {
			return Roll{}, ErrInvalidReveal.Wrapf("die %d", i)
		}
		v, err := decodeDie(ct.C2.Sub(rv.Shares[i]))
		if err != nil {
			return Roll{}, ErrInvalidDie.Wrapf("die %d", i)
		}
		d[i] = v
	}
	return fromDice(d), nil
}
