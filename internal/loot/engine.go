// Package loot decides item drops: a gate roll against the event's base
// rate, then a grade roll against the tier's drop table, a uniform slot
// roll and per-stat variation.
package loot

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/xtding233/progression-engine/internal/item"
	"github.com/xtding233/progression-engine/internal/random"
	"github.com/xtding233/progression-engine/internal/stage"
)

const (
	// StageGrowth is the per-tier increase of dropped item stats.
	StageGrowth = 0.2
	// Variation is the +/- spread applied to every rolled stat.
	Variation = 0.1
)

// Result is the outcome of one drop check. Item is set only on Success.
type Result struct {
	Success bool      `json:"success"`
	Item    item.Item `json:"item,omitzero"`
}

// Engine rolls drops. It keeps no state between calls.
type Engine struct {
	stages *stage.Generator
	tables item.Tables
	rng    random.Source
	newID  func() string
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTables replaces the default item tables.
func WithTables(t item.Tables) Option {
	return func(e *Engine) { e.tables = t }
}

// WithIDGenerator replaces the item id generator (uuid by default).
func WithIDGenerator(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an engine reading tier tables from stages (the default
// generator if nil) and drawing from src (crypto source if nil).
func NewEngine(stages *stage.Generator, src random.Source, opts ...Option) *Engine {
	if stages == nil {
		stages = stage.Default()
	}
	e := &Engine{
		stages: stages,
		tables: item.DefaultTables(),
		rng:    random.OrDefault(src),
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// GateRate is the chance that ev produces a drop at tier: always 1 for a
// clear, the tier's idle rate otherwise.
func (e *Engine) GateRate(tier int, ev stage.Event) float64 {
	if ev == stage.EventClear {
		return 1
	}
	return e.stages.Info(tier).IdleDropRate
}

// Drop runs the gate check and, when it passes, rolls a new item. Tiers
// outside 1..100 are clamped.
func (e *Engine) Drop(tier int, ev stage.Event) (Result, error) {
	if err := stage.Validate(tier); err != nil {
		e.logger.Debug("drop tier clamped", "tier", tier, "clamped", stage.Clamp(tier))
		tier = stage.Clamp(tier)
	}
	hit, err := random.Draw(e.GateRate(tier, ev), e.rng)
	if err != nil {
		return Result{}, fmt.Errorf("drop gate for tier %d: %w", tier, err)
	}
	if !hit {
		return Result{}, nil
	}
	it := e.Roll(tier, ev)
	return Result{Success: true, Item: it}, nil
}

// Roll skips the gate and rolls an item for tier and ev.
func (e *Engine) Roll(tier int, ev stage.Event) item.Item {
	tier = stage.Clamp(tier)
	grade := RollGrade(e.stages.Info(tier).Drops(ev), e.rng)
	return e.RollItem(tier, grade)
}

// RollItem creates an item of a fixed grade with a uniformly random slot.
func (e *Engine) RollItem(tier int, grade item.Grade) item.Item {
	slot := item.Slots[random.IntN(e.rng, len(item.Slots))]
	return e.rollSlot(tier, grade, slot)
}

func (e *Engine) rollSlot(tier int, grade item.Grade, slot item.Slot) item.Item {
	return item.Item{
		ID:    e.newID(),
		Slot:  slot,
		Grade: grade,
		Base:  e.rollStats(tier, grade, slot),
	}
}

// rollStats scales every non-zero base stat of slot and varies each one
// independently.
func (e *Engine) rollStats(tier int, grade item.Grade, slot item.Slot) item.Stats {
	base := e.tables.BaseStats[slot]
	scale := e.tables.GradeMultiplier(grade) * StageMultiplier(tier)
	var out item.Stats
	for k := item.StatAttack; k <= item.StatCriticalDamage; k++ {
		b := base.Get(k)
		if b <= 0 {
			continue
		}
		v := b * scale * (1 - Variation + 2*Variation*e.rng.Float64())
		if k.Percentage() {
			v = max(item.FloorPercent(v), item.PercentStep)
			if k != item.StatCriticalDamage {
				v = min(v, 1)
			}
		} else {
			v = max(math.Floor(v), 1)
		}
		out = out.With(k, v)
	}
	return out
}

// StageMultiplier is 1 + (tier-1)*0.2.
func StageMultiplier(tier int) float64 {
	return 1 + float64(stage.Clamp(tier)-stage.MinTier)*StageGrowth
}

// RollGrade draws r once and walks the table from the rarest grade down,
// subtracting each probability; the first grade that takes r below zero
// wins. Common is the fallback so the roll is total.
func RollGrade(t stage.DropRateTable, src random.Source) item.Grade {
	return rollBetween(t, item.Common, item.Mythic, src)
}

// rollBetween is RollGrade over grades lo..hi with lo as the fallback.
func rollBetween(t stage.DropRateTable, lo, hi item.Grade, src random.Source) item.Grade {
	r := random.OrDefault(src).Float64()
	for g := hi; g > lo; g-- {
		r -= t.Rate(g)
		if r < 0 {
			return g
		}
	}
	return lo
}
