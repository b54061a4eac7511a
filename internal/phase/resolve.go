package phase

import (
	"crypto/subtle"
	"fmt"
	"math/bits"
	"strings"

	"zkarena/internal/game"
	"zkarena/internal/roll"
)

// SavePolicy decides whether the target's save die is consulted.
type SavePolicy uint8

const (
	// SaveRolled lets the target negate a wound when the save die meets its
	// save threshold.
	SaveRolled SavePolicy = iota
	// SaveDisabled never saves.
	SaveDisabled
)

func (p SavePolicy) String() string {
	switch p {
	case SaveRolled:
		return "rolled"
	case SaveDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("save(%d)", uint8(p))
	}
}

func ParseSavePolicy(s string) (SavePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rolled":
		return SaveRolled, nil
	case "disabled", "none":
		return SaveDisabled, nil
	default:
		return 0, fmt.Errorf("unknown save policy %q", s)
	}
}

type Outcome struct {
	Hit          bool   `json:"hit"`
	Wound        bool   `json:"wound"`
	Saved        bool   `json:"saved"`
	Damaged      bool   `json:"damaged"`
	Damage       uint32 `json:"damage"`
	HealthBefore uint32 `json:"healthBefore"`
	HealthAfter  uint32 `json:"healthAfter"`
}

// atLeast is 1 when x >= threshold, else 0.
func atLeast(x, threshold uint64) int {
	_, borrow := bits.Sub64(x, threshold, 0)
	return int(borrow ^ 1)
}

// ResolveAttack turns a decrypted roll into damage. Every intermediate
// value is computed and combined with masks so the control flow does not
// depend on the dice.
func ResolveAttack(kind game.ActionType, attacker, target game.Stats, dice roll.Roll, policy SavePolicy) Outcome {
	hit := atLeast(uint64(dice.Hit), uint64(attacker.Hit))
	wound := hit & atLeast(uint64(dice.Wound), uint64(attacker.Wound))
	saveRolled := atLeast(uint64(dice.Save), uint64(target.Save))
	saved := wound & saveRolled & subtle.ConstantTimeByteEq(uint8(policy), uint8(SaveRolled))
	damaged := wound & (saved ^ 1)

	isMelee := subtle.ConstantTimeByteEq(uint8(kind), uint8(game.ActionMelee))
	damage := subtle.ConstantTimeSelect(isMelee, int(attacker.MeleeDamage), int(attacker.RangedDamage))

	health := int(target.Health)
	survives := atLeast(uint64(target.Health), uint64(damage))
	reduced := subtle.ConstantTimeSelect(survives, health-damage, 0)
	after := subtle.ConstantTimeSelect(damaged, reduced, health)

	return Outcome{
		Hit:          hit == 1,
		Wound:        wound == 1,
		Saved:        saved == 1,
		Damaged:      damaged == 1,
		Damage:       uint32(damage),
		HealthBefore: target.Health,
		HealthAfter:  uint32(after),
	}
}
