package tcrypto

import (
	"errors"
	"fmt"
)

const DLEQProofSize = 2*PointSize + ScalarSize

const dleqDomain = "zkarena/v1/dleq"

// DLEQProof shows log_G(Y) == log_C1(D) without revealing the exponent. A
// decryptor uses it to prove D = x*C1 for its public key Y = x*G.
type DLEQProof struct {
	A Point
	B Point
	S Scalar
}

func dleqChallenge(y, c1, d, a, b Point) (Scalar, error) {
	tr := NewTranscript(dleqDomain)
	for _, m := range []struct {
		label string
		p     Point
	}{{"y", y}, {"c1", c1}, {"d", d}, {"a", a}, {"b", b}} {
		if err := tr.Append(m.label, m.p.Bytes()); err != nil {
			return Scalar{}, err
		}
	}
	return tr.Challenge("e")
}

// ProveDLEQ proves D = x*C1 and Y = x*G using the commitment nonce w.
func ProveDLEQ(y, c1, d Point, x, w Scalar) (DLEQProof, error) {
	if w.IsZero() {
		return DLEQProof{}, errors.New("dleq: zero commitment nonce")
	}
	a := BaseMul(w)
	b := c1.Mul(w)
	e, err := dleqChallenge(y, c1, d, a, b)
	if err != nil {
		return DLEQProof{}, err
	}
	return DLEQProof{A: a, B: b, S: w.Add(e.Mul(x))}, nil
}

func VerifyDLEQ(y, c1, d Point, p DLEQProof) bool {
	e, err := dleqChallenge(y, c1, d, p.A, p.B)
	if err != nil {
		return false
	}
	if !BaseMul(p.S).Equal(p.A.Add(y.Mul(e))) {
		return false
	}
	return c1.Mul(p.S).Equal(p.B.Add(d.Mul(e)))
}

func (p DLEQProof) Bytes() []byte {
	out := make([]byte, 0, DLEQProofSize)
	out = append(out, p.A.Bytes()...)
	out = append(out, p.B.Bytes()...)
	return append(out, p.S.Bytes()...)
}

func DLEQProofFromBytes(b []byte) (DLEQProof, error) {
	if len(b) != DLEQProofSize {
		return DLEQProof{}, fmt.Errorf("dleq: want %d bytes, got %d", DLEQProofSize, len(b))
	}
	a, err := PointFromBytes(b[:32])
	if err != nil {
		return DLEQProof{}, err
	}
	bb, err := PointFromBytes(b[32:64])
	if err != nil {
		return DLEQProof{}, err
	}
	s, err := ScalarFromBytes(b[64:])
	if err != nil {
		return DLEQProof{}, err
	}
	return DLEQProof{A: a, B: bb, S: s}, nil
}
