// Package roll implements encrypted attack dice. A randomness authority
// encrypts three d6 results to an arbiter's ristretto255 key and signs a
// commitment over the ciphertexts, the arbiter key and the attack the roll
// is bound to. Only the arbiter can decrypt, and nobody can swap any part
// of the roll after signing.
package roll

import (
	"encoding/binary"
	"fmt"

	"github.com/cometbft/cometbft/crypto/ed25519"

	"zkarena/internal/tcrypto"
)

const (
	DieMin = 1
	DieMax = 6
)

// Die indexes into the three ciphertexts.
const (
	DieHit = iota
	DieWound
	DieSave
	numDice
)

type Roll struct {
	Hit   uint8 `json:"hit"`
	Wound uint8 `json:"wound"`
	Save  uint8 `json:"save"`
}

func (r Roll) dice() [numDice]uint8 { return [numDice]uint8{r.Hit, r.Wound, r.Save} }

func (r Roll) Validate() error {
	for i, d := range r.dice() {
		if d < DieMin || d > DieMax {
			return ErrInvalidDie.Wrapf("die %d = %d", i, d)
		}
	}
	return nil
}

// Binding ties a roll to exactly one attack.
type Binding struct {
	Turn        uint64 `json:"turn"`
	ActionNonce uint64 `json:"actionNonce"`
	PieceID     uint64 `json:"pieceId"`
}

func (b Binding) bytes() []byte {
	out := make([]byte, 0, 24)
	out = binary.BigEndian.AppendUint64(out, b.Turn)
	out = binary.BigEndian.AppendUint64(out, b.ActionNonce)
	return binary.BigEndian.AppendUint64(out, b.PieceID)
}

type EncryptedAttackRoll struct {
	Dice       [numDice]tcrypto.Ciphertext
	ArbiterKey tcrypto.Point
	Binding    Binding
	Signature  []byte
}

const (
	commitDomain = "zkarena/roll/commit/v0"
	signDomain   = "zkarena/roll/sig/v0"
)

// Commitment covers every field except the signature.
func (r *EncryptedAttackRoll) Commitment() (tcrypto.Scalar, error) {
	msgs := make([][]byte, 0, numDice+2)
	for _, ct := range r.Dice {
		msgs = append(msgs, ct.Bytes())
	}
	msgs = append(msgs, r.ArbiterKey.Bytes(), r.Binding.bytes())
	return tcrypto.HashToScalar(commitDomain, msgs...)
}

func signBytes(commitment tcrypto.Scalar) []byte {
	out := make([]byte, 0, len(signDomain)+1+tcrypto.ScalarSize)
	out = append(out, signDomain...)
	out = append(out, 0)
	return append(out, commitment.Bytes()...)
}

// Verify checks the authority signature over the recomputed commitment.
func (r *EncryptedAttackRoll) Verify(authority ed25519.PubKey) error {
	if r == nil {
		return ErrMalformed.Wrap("nil roll")
	}
	if len(authority) != ed25519.PubKeySize {
		return ErrInvalidSignature.Wrap("authority key missing")
	}
	if len(r.Signature) != ed25519.SignatureSize {
		return ErrInvalidSignature.Wrapf("signature length %d", len(r.Signature))
	}
	c, err := r.Commitment()
	if err != nil {
		return ErrMalformed.Wrap(err.Error())
	}
	if !authority.VerifySignature(signBytes(c), r.Signature) {
		return ErrInvalidSignature
	}
	return nil
}

// Bytes is dice(3*64) || arbiter(32) || binding(24) || sigLen(be16) || sig.
func (r *EncryptedAttackRoll) Bytes() []byte {
	out := make([]byte, 0, numDice*tcrypto.CiphertextSize+tcrypto.PointSize+24+2+len(r.Signature))
	for _, ct := range r.Dice {
		out = append(out, ct.Bytes()...)
	}
	out = append(out, r.ArbiterKey.Bytes()...)
	out = append(out, r.Binding.bytes()...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(r.Signature)))
	return append(out, r.Signature...)
}

func FromBytes(b []byte) (*EncryptedAttackRoll, error) {
	rd := newReader(b)
	var (
		out EncryptedAttackRoll
		err error
	)
	for i := range out.Dice {
		if out.Dice[i], err = rd.ciphertext(); err != nil {
			return nil, err
		}
	}
	if out.ArbiterKey, err = rd.point(); err != nil {
		return nil, err
	}
	if out.Binding.Turn, err = rd.u64(); err != nil {
		return nil, err
	}
	if out.Binding.ActionNonce, err = rd.u64(); err != nil {
		return nil, err
	}
	if out.Binding.PieceID, err = rd.u64(); err != nil {
		return nil, err
	}
	n, err := rd.u16()
	if err != nil {
		return nil, err
	}
	sig, err := rd.take(int(n))
	if err != nil {
		return nil, err
	}
	out.Signature = append([]byte(nil), sig...)
	if !rd.done() {
		return nil, ErrMalformed.Wrap("trailing bytes")
	}
	return &out, nil
}

func (r *EncryptedAttackRoll) String() string {
	return fmt.Sprintf("roll{turn=%d nonce=%d piece=%d arbiter=%s}",
		r.Binding.Turn, r.Binding.ActionNonce, r.Binding.PieceID, r.ArbiterKey)
}
