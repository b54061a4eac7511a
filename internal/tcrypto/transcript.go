package tcrypto

import (
	"crypto/sha512"
	"errors"
)

var transcriptTag = []byte("ZKAv1|transcript|")

// Transcript accumulates labelled protocol messages for Fiat-Shamir
// challenges. The raw bytes are kept because sha512 state cannot be forked.
type Transcript struct {
	buf []byte
}

func NewTranscript(domain string) *Transcript {
	t := &Transcript{buf: append([]byte{}, transcriptTag...)}
	t.push([]byte(domain))
	return t
}

func (t *Transcript) push(b []byte) {
	t.buf = append(t.buf, lenPrefix(b)...)
	t.buf = append(t.buf, b...)
}

func (t *Transcript) Append(label string, msg []byte) error {
	if msg == nil {
		return errors.New("transcript: nil message")
	}
	t.buf = append(t.buf, "msg"...)
	t.push([]byte(label))
	t.push(msg)
	return nil
}

func (t *Transcript) Challenge(label string) (Scalar, error) {
	h := sha512.New()
	h.Write(t.buf)
	h.Write([]byte("challenge"))
	writeFramed(h, []byte(label))
	return scalarFromWide(h.Sum(nil))
}
