package tcrypto

import (
	"crypto/sha512"
	"errors"
	"hash"
)

var hashToScalarTag = []byte("ZKAv1|hash_to_scalar|")

func writeFramed(h hash.Hash, b []byte) {
	h.Write(lenPrefix(b))
	h.Write(b)
}

// HashToScalar maps a domain tag and a list of messages to a scalar. Every
// input is length-prefixed, so ("ab","c") and ("a","bc") never collide.
func HashToScalar(domain string, msgs ...[]byte) (Scalar, error) {
	h := sha512.New()
	h.Write(hashToScalarTag)
	writeFramed(h, []byte(domain))
	for _, m := range msgs {
		if m == nil {
			return Scalar{}, errors.New("hash_to_scalar: nil message")
		}
		writeFramed(h, m)
	}
	return scalarFromWide(h.Sum(nil))
}
