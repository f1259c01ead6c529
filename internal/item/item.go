// Package item holds the equipment model shared by loot, enhancement and
// valuation: grades, slots, stat blocks and the externally defined tables.
package item

import (
	"fmt"

	"github.com/xtding233/progression-engine/internal/gameerr"
)

// MaxLevel is the enhancement level cap.
const MaxLevel = 25

// Item is an equipment instance. Grade and Base never change after
// creation; enhancement only moves Level and Bonus.
type Item struct {
	ID       string `json:"id"`
	Slot     Slot   `json:"slot"`
	Grade    Grade  `json:"grade"`
	Base     Stats  `json:"base"`
	Bonus    Stats  `json:"bonus"`
	Level    int    `json:"level"`
	Equipped bool   `json:"equipped,omitempty"`
}

// Total is base plus enhancement bonus.
func (it Item) Total() Stats { return it.Base.Add(it.Bonus) }

// PrimaryStat is the stat enhancement raises on this item.
func (it Item) PrimaryStat() StatKind { return it.Slot.PrimaryStat() }

// Validate reports malformed items as InvalidItemState.
func (it Item) Validate() error {
	var problem string
	switch {
	case it.ID == "":
		problem = "missing id"
	case !it.Slot.Valid():
		problem = fmt.Sprintf("invalid slot %d", int(it.Slot))
	case !it.Grade.Valid():
		problem = fmt.Sprintf("invalid grade %d", int(it.Grade))
	case it.Level < 0 || it.Level > MaxLevel:
		problem = fmt.Sprintf("level %d outside 0..%d", it.Level, MaxLevel)
	default:
		return nil
	}
	return gameerr.WithMetadata(gameerr.CodeInvalidItemState, "invalid item: "+problem,
		map[string]string{"item_id": it.ID})
}

// Sum adds the total stats of every item.
func Sum(items []Item) Stats {
	var s Stats
	for _, it := range items {
		s = s.Add(it.Total())
	}
	return s
}
