package tcrypto

import (
	"errors"
	"fmt"
)

const CiphertextSize = 2 * PointSize

// Ciphertext is an additive ElGamal ciphertext (C1, C2) = (r*G, M + r*Y).
type Ciphertext struct {
	C1 Point
	C2 Point
}

func Encrypt(pk Point, m Point, r Scalar) (Ciphertext, error) {
	if r.IsZero() {
		return Ciphertext{}, errors.New("elgamal: zero nonce reveals the message")
	}
	return Ciphertext{C1: BaseMul(r), C2: m.Add(pk.Mul(r))}, nil
}

// Decrypt returns C2 - x*C1.
func Decrypt(sk Scalar, ct Ciphertext) Point {
	return ct.C2.Sub(ct.C1.Mul(sk))
}

// Blind returns x*C1, the value a decryptor publishes alongside a proof.
func Blind(sk Scalar, ct Ciphertext) Point {
	return ct.C1.Mul(sk)
}

func (c Ciphertext) Bytes() []byte {
	out := make([]byte, 0, CiphertextSize)
	out = append(out, c.C1.Bytes()...)
	return append(out, c.C2.Bytes()...)
}

func CiphertextFromBytes(b []byte) (Ciphertext, error) {
	if len(b) != CiphertextSize {
		return Ciphertext{}, fmt.Errorf("elgamal: want %d bytes, got %d", CiphertextSize, len(b))
	}
	c1, err := PointFromBytes(b[:PointSize])
	if err != nil {
		return Ciphertext{}, err
	}
	c2, err := PointFromBytes(b[PointSize:])
	if err != nil {
		return Ciphertext{}, err
	}
	return Ciphertext{C1: c1, C2: c2}, nil
}

// DecodeSmall finds k in [lo, hi] with k*G == p. It scans every candidate
// so the running time does not depend on the answer.
func DecodeSmall(p Point, lo, hi uint64) (uint64, bool) {
	var (
		found uint64
		ok    bool
	)
	for k := lo; k <= hi; k++ {
		if BaseMul(NewScalar(k)).Equal(p) {
			found, ok = k, true
		}
	}
	return found, ok
}
