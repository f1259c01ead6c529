package stage

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/xtding233/progression-engine/internal/item"
)

// Event distinguishes the two drop sources.
type Event int

const (
	// EventClear is the guaranteed drop on boss victory.
	EventClear Event = iota
	// EventIdle is the rare per-tick passive drop.
	EventIdle
)

func (e Event) String() string {
	if e == EventIdle {
		return "idle"
	}
	return "clear"
}

func (e Event) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *Event) UnmarshalText(b []byte) error {
	switch string(b) {
	case "clear", "stage_clear":
		*e = EventClear
	case "idle":
		*e = EventIdle
	default:
		return fmt.Errorf("unknown drop event %q", b)
	}
	return nil
}

// SumTolerance is the allowed deviation of a table's sum from 1.
const SumTolerance = 1e-6

// DropRateTable maps grade (by index) to the probability of that grade,
// conditioned on a drop having happened.
type DropRateTable [item.GradeCount]float64

// Rate returns the probability for g.
func (t DropRateTable) Rate(g item.Grade) float64 {
	if !g.Valid() {
		return 0
	}
	return t[g]
}

func (t DropRateTable) Sum() float64 {
	var s float64
	for _, p := range t {
		s += p
	}
	return s
}

// Normalized rescales the table to sum to exactly 1. A table with no mass
// collapses to all-common.
func (t DropRateTable) Normalized() DropRateTable {
	s := t.Sum()
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return DropRateTable{1}
	}
	var out DropRateTable
	for i, p := range t {
		out[i] = max(0, p) / s
	}
	return out
}

// Validate checks each probability is in [0,1] and the sum is within
// SumTolerance of 1.
func (t DropRateTable) Validate() error {
	for i, p := range t {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%s rate %v outside [0,1]", item.Grade(i), p)
		}
	}
	if s := t.Sum(); math.Abs(s-1) > SumTolerance {
		return fmt.Errorf("rates sum to %v, want 1", s)
	}
	return nil
}

// AtLeast returns the total probability of grades >= g.
func (t DropRateTable) AtLeast(g item.Grade) float64 {
	var s float64
	for i := int(max(g, item.Common)); i < item.GradeCount; i++ {
		s += t[i]
	}
	return s
}

func (t DropRateTable) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, len(t))
	for i, p := range t {
		m[item.Grade(i).String()] = p
	}
	return json.Marshal(m)
}

func (t *DropRateTable) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var out DropRateTable
	for k, p := range m {
		g, err := item.ParseGrade(k)
		if err != nil {
			return err
		}
		out[g] = p
	}
	*t = out
	return nil
}
