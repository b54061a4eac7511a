package tcrypto

import (
	"fmt"
	"io"

	"github.com/gtank/ristretto255"
)

const ScalarSize = 32

// Scalar is an element of the ristretto255 scalar field, encoded as 32
// little-endian bytes.
type Scalar struct {
	v ristretto255.Scalar
}

func NewScalar(x uint64) Scalar {
	var wide [64]byte
	for i := 0; i < 8; i++ {
		wide[i] = byte(x >> (8 * i))
	}
	var s Scalar
	s.v.FromUniformBytes(wide[:])
	return s
}

func ScalarFromBytes(b []byte) (Scalar, error) {
	if len(b) != ScalarSize {
		return Scalar{}, fmt.Errorf("scalar: want %d bytes, got %d", ScalarSize, len(b))
	}
	var s Scalar
	if _, err := s.v.SetCanonicalBytes(b); err != nil {
		return Scalar{}, fmt.Errorf("scalar: %w", err)
	}
	return s, nil
}

func scalarFromWide(b []byte) (Scalar, error) {
	if len(b) != 64 {
		return Scalar{}, fmt.Errorf("scalar: want 64 uniform bytes, got %d", len(b))
	}
	var s Scalar
	s.v.FromUniformBytes(b)
	return s, nil
}

// RandomScalar draws a non-zero scalar from r.
func RandomScalar(r io.Reader) (Scalar, error) {
	var wide [64]byte
	for {
		if _, err := io.ReadFull(r, wide[:]); err != nil {
			return Scalar{}, fmt.Errorf("scalar: read randomness: %w", err)
		}
		s, err := scalarFromWide(wide[:])
		if err != nil {
			return Scalar{}, err
		}
		if !s.IsZero() {
			return s, nil
		}
	}
}

func (s Scalar) Bytes() []byte { return s.v.Bytes() }

func (s Scalar) IsZero() bool {
	var zero ristretto255.Scalar
	return s.v.Equal(&zero) == 1
}

func (s Scalar) Equal(o Scalar) bool { return s.v.Equal(&o.v) == 1 }

func (s Scalar) Add(o Scalar) Scalar {
	var out Scalar
	out.v.Add(&s.v, &o.v)
	return out
}

func (s Scalar) Sub(o Scalar) Scalar {
	var out Scalar
	out.v.Subtract(&s.v, &o.v)
	return out
}

func (s Scalar) Mul(o Scalar) Scalar {
	var out Scalar
	out.v.Multiply(&s.v, &o.v)
	return out
}
