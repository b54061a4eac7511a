package game

import (
	"bytes"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"zkarena/internal/ctree"
)

// Stats are the static unit profile plus current health. Thresholds are
// d6 targets: a die succeeds when it rolls at least the threshold.
type Stats struct {
	Health       uint32 `json:"health"`
	Movement     uint32 `json:"movement"`
	RangedRange  uint32 `json:"rangedRange"`
	MeleeRange   uint32 `json:"meleeRange"`
	Hit          uint32 `json:"hit"`
	Wound        uint32 `json:"wound"`
	Save         uint32 `json:"save"`
	RangedDamage uint32 `json:"rangedDamage"`
	MeleeDamage  uint32 `json:"meleeDamage"`
}

// DefaultUnit is the line infantry profile used by the stock scenario.
func DefaultUnit() Stats {
	return Stats{
		Health:       3,
		Movement:     6,
		RangedRange:  12,
		MeleeRange:   MeleeRange,
		Hit:          3,
		Wound:        4,
		Save:         5,
		RangedDamage: 1,
		MeleeDamage:  2,
	}
}

// Fields lists the stats in hashing order.
func (s Stats) Fields() []uint32 {
	return []uint32{
		s.Health, s.Movement, s.RangedRange, s.MeleeRange,
		s.Hit, s.Wound, s.Save, s.RangedDamage, s.MeleeDamage,
	}
}

type Piece struct {
	ID       uint64         `json:"id"`
	Owner    ed25519.PubKey `json:"owner"`
	Position Position       `json:"position"`
	Stats    Stats          `json:"stats"`
}

func (p Piece) OwnedBy(pub ed25519.PubKey) bool {
	return len(pub) == ed25519.PubKeySize && bytes.Equal(p.Owner, pub)
}

// OwnerLimbs splits the 32-byte owner key into two 16-byte big-endian
// halves, each of which fits in a field element.
func OwnerLimbs(owner ed25519.PubKey) (hi, lo fr.Element) {
	var buf [32]byte
	copy(buf[:], owner)
	hi.SetBytes(buf[:16])
	lo.SetBytes(buf[16:])
	return hi, lo
}

// HashElements is the preimage of Hash, also consumed by the move circuit.
func (p Piece) HashElements() []fr.Element {
	fields := p.Stats.Fields()
	out := make([]fr.Element, 0, 5+len(fields))

	var id, x, y fr.Element
	id.SetUint64(p.ID)
	x.SetUint64(uint64(p.Position.X))
	y.SetUint64(uint64(p.Position.Y))
	hi, lo := OwnerLimbs(p.Owner)
	out = append(out, id, hi, lo, x, y)
	for _, f := range fields {
		var e fr.Element
		e.SetUint64(uint64(f))
		out = append(out, e)
	}
	return out
}

// Hash is the leaf value stored in the piece tree.
func (p Piece) Hash() fr.Element {
	return ctree.Hash(p.HashElements()...)
}

// MovedTo returns a copy at dest. The receiver is not modified.
func (p Piece) MovedTo(dest Position) Piece {
	p.Position = dest
	p.Owner = append(ed25519.PubKey(nil), p.Owner...)
	return p
}

// WithHealth returns a copy with the given health.
func (p Piece) WithHealth(h uint32) Piece {
	p.Stats.Health = h
	p.Owner = append(ed25519.PubKey(nil), p.Owner...)
	return p
}

func (p Piece) Alive() bool { return p.Stats.Health > 0 }
