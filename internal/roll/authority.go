package roll

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/cometbft/cometbft/crypto/ed25519"

	"zkarena/internal/tcrypto"
)

// Authority is the randomness service. It never learns the arbiter secret;
// it only encrypts to the arbiter's public key and signs.
type Authority struct {
	priv ed25519.PrivKey
	rng  io.Reader
}

// NewAuthority signs with priv and draws dice and nonces from rng. A nil
// rng means crypto/rand.
func NewAuthority(priv ed25519.PrivKey, rng io.Reader) *Authority {
	if len(priv) != ed25519.PrivateKeySize {
		panic(fmt.Sprintf("roll: authority key must be %d bytes", ed25519.PrivateKeySize))
	}
	if rng == nil {
		rng = rand.Reader
	}
	return &Authority{priv: priv, rng: rng}
}

func (a *Authority) PubKey() ed25519.PubKey {
	return a.priv.PubKey().(ed25519.PubKey)
}

// Issue rolls fresh dice for the attack named by b.
func (a *Authority) Issue(arbiter tcrypto.Point, b Binding) (*EncryptedAttackRoll, error) {
	var r Roll
	var err error
	if r.Hit, err = rollD6(a.rng); err != nil {
		return nil, err
	}
	if r.Wound, err = rollD6(a.rng); err != nil {
		return nil, err
	}
	if r.Save, err = rollD6(a.rng); err != nil {
		return nil, err
	}
	return a.Seal(arbiter, b, r)
}

// Seal encrypts and signs a caller-chosen roll.
func (a *Authority) Seal(arbiter tcrypto.Point, b Binding, r Roll) (*EncryptedAttackRoll, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	out := &EncryptedAttackRoll{ArbiterKey: arbiter, Binding: b}
	for i, d := range r.dice() {
		nonce, err := tcrypto.RandomScalar(a.rng)
		if err != nil {
			return nil, err
		}
		ct, err := tcrypto.Encrypt(arbiter, tcrypto.BaseMul(tcrypto.NewScalar(uint64(d))), nonce)
		if err != nil {
			return nil, err
		}
		out.Dice[i] = ct
	}
	c, err := out.Commitment()
	if err != nil {
		return nil, err
	}
	if out.Signature, err = a.priv.Sign(signBytes(c)); err != nil {
		return nil, fmt.Errorf("roll: sign: %w", err)
	}
	return out, nil
}
