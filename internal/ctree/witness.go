package ctree

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Witness is a leaf-to-root authentication path. IsLeft[i] reports whether
// the running node at level i is the left child.
type Witness struct {
	Siblings []fr.Element `json:"siblings"`
	IsLeft   []bool       `json:"isLeft"`
}

func (w *Witness) Depth() int { return len(w.Siblings) }

func (w *Witness) Validate(depth int) error {
	if w == nil {
		return fmt.Errorf("%w: nil witness", ErrDepthMismatch)
	}
	if len(w.Siblings) != depth || len(w.IsLeft) != depth {
		return fmt.Errorf("%w: siblings=%d isLeft=%d want %d", ErrDepthMismatch, len(w.Siblings), len(w.IsLeft), depth)
	}
	return nil
}

// CalculateRoot recomputes the root assuming leaf sits at this path.
func (w *Witness) CalculateRoot(leaf fr.Element) fr.Element {
	cur := leaf
	for i := range w.Siblings {
		if w.IsLeft[i] {
			cur = HashNode(cur, w.Siblings[i])
		} else {
			cur = HashNode(w.Siblings[i], cur)
		}
	}
	return cur
}

// CalculateIndex recovers the leaf key from the path directions.
func (w *Witness) CalculateIndex() uint64 {
	var idx uint64
	for i, left := range w.IsLeft {
		if !left {
			idx |= 1 << uint(i)
		}
	}
	return idx
}

// Opens reports whether leaf is stored at key under root.
func (w *Witness) Opens(root fr.Element, key uint64, leaf fr.Element) bool {
	if w.CalculateIndex() != key {
		return false
	}
	got := w.CalculateRoot(leaf)
	return got.Equal(&root)
}

// DirectionBits returns the key bits (1 = right child), the form the
// circuits consume.
func (w *Witness) DirectionBits() []uint64 {
	out := make([]uint64, len(w.IsLeft))
	for i, left := range w.IsLeft {
		if !left {
			out[i] = 1
		}
	}
	return out
}
