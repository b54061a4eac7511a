package roll

import (
	"encoding/binary"

	"zkarena/internal/tcrypto"
)

type reader struct {
	buf []byte
	off int
}

func newReader(b []byte) *reader { return &reader{buf: b} }

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.buf) {
		return nil, ErrMalformed.Wrapf("need %d bytes at offset %d, have %d", n, r.off, len(r.buf))
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) point() (tcrypto.Point, error) {
	b, err := r.take(tcrypto.PointSize)
	if err != nil {
		return tcrypto.Point{}, err
	}
	p, err := tcrypto.PointFromBytes(b)
	if err != nil {
		return tcrypto.Point{}, ErrMalformed.Wrap(err.Error())
	}
	return p, nil
}

func (r *reader) ciphertext() (tcrypto.Ciphertext, error) {
	b, err := r.take(tcrypto.CiphertextSize)
	if err != nil {
		return tcrypto.Ciphertext{}, err
	}
	ct, err := tcrypto.CiphertextFromBytes(b)
	if err != nil {
		return tcrypto.Ciphertext{}, ErrMalformed.Wrap(err.Error())
	}
	return ct, nil
}

func (r *reader) done() bool { return r.off == len(r.buf) }
