package ctree

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Hash absorbs each element as one 32-byte MiMC block. It matches the
// in-circuit gnark MiMC gadget fed with the same variables.
func Hash(elems ...fr.Element) fr.Element {
	h := mimc.NewMiMC()
	for i := range elems {
		b := elems[i].Bytes()
		h.Write(b[:])
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

// HashNode is the interior node hash H(left, right).
func HashNode(left, right fr.Element) fr.Element {
	return Hash(left, right)
}

// zeroHashes returns the root of an empty subtree for every level 0..depth.
func zeroHashes(depth int) []fr.Element {
	zs := make([]fr.Element, depth+1)
	for l := 1; l <= depth; l++ {
		zs[l] = HashNode(zs[l-1], zs[l-1])
	}
	return zs
}
