// Package ctree implements a fixed-depth sparse commitment tree over the
// BN254 scalar field. Leaves hold raw field elements; interior nodes are
// MiMC hashes of their children. Unset leaves are zero.
package ctree

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	dbm "github.com/cosmos/cosmos-db"
)

const MaxDepth = 32

var (
	ErrKeyOutOfRange = errors.New("ctree: key out of range")
	ErrDepthMismatch = errors.New("ctree: witness depth mismatch")
	ErrInvalidDepth  = errors.New("ctree: invalid depth")
)

// Tree is safe for concurrent readers; writers are serialized.
type Tree struct {
	mu    sync.RWMutex
	depth int
	zeros []fr.Element
	nodes *dbm.MemDB
}

func New(depth int) (*Tree, error) {
	if depth < 1 || depth > MaxDepth {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, depth)
	}
	return &Tree{
		depth: depth,
		zeros: zeroHashes(depth),
		nodes: dbm.NewMemDB(),
	}, nil
}

// MustNew panics on an invalid depth. Depths are compile-time constants
// at every call site.
func MustNew(depth int) *Tree {
	t, err := New(depth)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tree) Depth() int { return t.depth }

// Capacity is the number of addressable leaves.
func (t *Tree) Capacity() uint64 { return uint64(1) << uint(t.depth) }

func nodeKey(level int, index uint64) []byte {
	k := make([]byte, 9)
	k[0] = byte(level)
	binary.BigEndian.PutUint64(k[1:], index)
	return k
}

func (t *Tree) node(level int, index uint64) fr.Element {
	bz, err := t.nodes.Get(nodeKey(level, index))
	if err != nil || bz == nil {
		return t.zeros[level]
	}
	var e fr.Element
	e.SetBytes(bz)
	return e
}

func (t *Tree) putNode(level int, index uint64, v fr.Element) error {
	k := nodeKey(level, index)
	if v.Equal(&t.zeros[level]) {
		return t.nodes.Delete(k)
	}
	b := v.Bytes()
	return t.nodes.Set(k, b[:])
}

func (t *Tree) checkKey(key uint64) error {
	if key >= t.Capacity() {
		return fmt.Errorf("%w: %d >= %d", ErrKeyOutOfRange, key, t.Capacity())
	}
	return nil
}

// Set writes value at key and rehashes the path to the root.
func (t *Tree) Set(key uint64, value fr.Element) error {
	if err := t.checkKey(key); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.putNode(0, key, value); err != nil {
		return err
	}
	cur, idx := value, key
	for l := 0; l < t.depth; l++ {
		sib := t.node(l, idx^1)
		if idx&1 == 0 {
			cur = HashNode(cur, sib)
		} else {
			cur = HashNode(sib, cur)
		}
		idx >>= 1
		if err := t.putNode(l+1, idx, cur); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) Get(key uint64) (fr.Element, error) {
	if err := t.checkKey(key); err != nil {
		return fr.Element{}, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.node(0, key), nil
}

func (t *Tree) Root() fr.Element {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.node(t.depth, 0)
}

// Witness returns the authentication path for key against the current root.
func (t *Tree) Witness(key uint64) (*Witness, error) {
	if err := t.checkKey(key); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	w := &Witness{
		Siblings: make([]fr.Element, t.depth),
		IsLeft:   make([]bool, t.depth),
	}
	idx := key
	for l := 0; l < t.depth; l++ {
		w.Siblings[l] = t.node(l, idx^1)
		w.IsLeft[l] = idx&1 == 0
		idx >>= 1
	}
	return w, nil
}

// Clone returns an independent copy; writes to either tree do not affect
// the other.
func (t *Tree) Clone() (*Tree, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := &Tree{
		depth: t.depth,
		zeros: t.zeros,
		nodes: dbm.NewMemDB(),
	}
	it, err := t.nodes.Iterator(nil, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		if err := out.nodes.Set(it.Key(), it.Value()); err != nil {
			return nil, err
		}
	}
	return out, it.Error()
}

// Size reports the number of stored non-empty nodes, leaves included.
func (t *Tree) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	it, err := t.nodes.Iterator(nil, nil)
	if err != nil {
		return 0
	}
	defer it.Close()
	n := 0
	for ; it.Valid(); it.Next() {
		n++
	}
	return n
}
