package item

import (
	"fmt"
	"strings"
)

// Slot is one of the 11 equipment slots.
type Slot int

const (
	Weapon Slot = iota
	Helmet
	Armor
	Pants
	Shield
	Gloves
	Boots
	Cape
	Necklace
	Ring
	Earring
)

// Slots lists every equip slot; loot picks uniformly from it.
var Slots = []Slot{Weapon, Helmet, Armor, Pants, Shield, Gloves, Boots, Cape, Necklace, Ring, Earring}

var slotNames = [...]string{
	"weapon", "helmet", "armor", "pants", "shield",
	"gloves", "boots", "cape",
	"necklace", "ring", "earring",
}

func (s Slot) Valid() bool { return s >= Weapon && s <= Earring }

func (s Slot) String() string {
	if !s.Valid() {
		return fmt.Sprintf("slot(%d)", int(s))
	}
	return slotNames[s]
}

// PrimaryStat is the single stat enhancement raises for this slot.
func (s Slot) PrimaryStat() StatKind {
	switch s {
	case Weapon:
		return StatAttack
	case Helmet, Armor, Pants, Shield:
		return StatDefense
	case Gloves, Boots, Cape:
		return StatAdditionalAttack
	default: // jewelry
		return StatDefensePenetration
	}
}

func ParseSlot(v string) (Slot, error) {
	for i, n := range slotNames {
		if strings.EqualFold(v, n) {
			return Slot(i), nil
		}
	}
	return 0, fmt.Errorf("unknown slot %q", v)
}

func (s Slot) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid slot %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Slot) UnmarshalText(b []byte) error {
	v, err := ParseSlot(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
