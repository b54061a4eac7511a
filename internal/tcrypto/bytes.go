package tcrypto

import (
	"encoding/binary"
	"encoding/hex"
)

func lenPrefix(b []byte) []byte {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(b)))
	return n[:]
}

func encodeHex(b []byte) string { return hex.EncodeToString(b) }
