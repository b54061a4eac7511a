package roll

import (
	"crypto/sha256"
	"encoding/binary"
	"io"
)

// HashStream is a deterministic byte stream sha256(domain || seed || counter).
// It lets tests and replays reproduce an authority's dice and nonces.
type HashStream struct {
	seed    [32]byte
	counter uint64
	buf     [32]byte
	pos     int
}

const hashStreamDomain = "zkarena/roll/stream/v0"

func NewHashStream(seed []byte) *HashStream {
	s := &HashStream{pos: sha256.Size}
	s.seed = sha256.Sum256(seed)
	return s
}

func (s *HashStream) refill() {
	in := make([]byte, 0, len(hashStreamDomain)+32+8)
	in = append(in, hashStreamDomain...)
	in = append(in, s.seed[:]...)
	in = binary.LittleEndian.AppendUint64(in, s.counter)
	s.counter++
	s.buf = sha256.Sum256(in)
	s.pos = 0
}

// Read never fails.
func (s *HashStream) Read(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		if s.pos >= len(s.buf) {
			s.refill()
		}
		c := copy(p, s.buf[s.pos:])
		s.pos += c
		p = p[c:]
	}
	return n, nil
}

// rollD6 draws a fair die by rejecting bytes >= 252.
func rollD6(r io.Reader) (uint8, error) {
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		if b[0] < 252 {
			return b[0]%6 + 1, nil
		}
	}
}
