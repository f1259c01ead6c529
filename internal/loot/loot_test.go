package loot

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/progression-engine/internal/gameerr"
	"github.com/xtding233/progression-engine/internal/item"
	"github.com/xtding233/progression-engine/internal/random"
	"github.com/xtding233/progression-engine/internal/stage"
)

func fixedIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}
}

func TestIdleGate(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil, random.NewSequence(0.0005), WithIDGenerator(fixedIDs()))
	assert.Equal(t, 0.001, e.GateRate(1, stage.EventIdle))
	res, err := e.Drop(1, stage.EventIdle)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "item-1", res.Item.ID)

	e = NewEngine(nil, random.NewSequence(0.002))
	res, err = e.Drop(1, stage.EventIdle)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Zero(t, res.Item)
}

func TestIdleGateMatchesDraw(t *testing.T) {
	t.Parallel()

	g := stage.Default()
	for _, tier := range []int{1, 25, 50, 75, 100} {
		rate := g.Info(tier).IdleDropRate
		for _, r := range []float64{0, rate / 2, rate - 1e-6, rate, rate + 1e-6, 0.5} {
			e := NewEngine(g, random.NewSequence(r, 0.5))
			res, err := e.Drop(tier, stage.EventIdle)
			require.NoError(t, err)
			assert.Equal(t, r < rate, res.Success, "tier %d r=%v", tier, r)
		}
	}
	assert.InDelta(t, 0.002, g.Info(100).IdleDropRate, 1e-12)
}

func TestClearAlwaysDrops(t *testing.T) {
	t.Parallel()

	for seed := uint64(0); seed < 10; seed++ {
		e := NewEngine(nil, random.NewSeeded(seed))
		for tier := stage.MinTier; tier <= stage.MaxTier; tier++ {
			res, err := e.Drop(tier, stage.EventClear)
			require.NoError(t, err)
			require.True(t, res.Success, "tier %d seed %d", tier, seed)
			require.NoError(t, res.Item.Validate())
			assert.Equal(t, 0, res.Item.Level)
			assert.True(t, res.Item.Bonus.IsZero())
		}
	}
}

func TestDropClampsTier(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil, random.NewSequence(0.5), WithIDGenerator(fixedIDs()))
	res, err := e.Drop(500, stage.EventClear)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, StageMultiplier(100), StageMultiplier(500))
	assert.Equal(t, 1.0, StageMultiplier(-3))
}

func TestRollGrade(t *testing.T) {
	t.Parallel()

	table := stage.DropRateTable{0.70, 0.25, 0.05, 0, 0}
	tests := []struct {
		r    float64
		want item.Grade
	}{
		{0, item.Epic},
		{0.01, item.Epic},
		{0.2, item.Rare},
		{0.29, item.Rare},
		{0.31, item.Common},
		{0.999, item.Common},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RollGrade(table, random.NewSequence(tt.r)), "r=%v", tt.r)
	}

	// tables short of 1 fall back to common
	assert.Equal(t, item.Common, RollGrade(stage.DropRateTable{0, 0.1, 0, 0, 0}, random.NewSequence(0.5)))
	assert.Equal(t, item.Mythic, RollGrade(stage.DropRateTable{0, 0, 0, 0, 1}, random.NewSequence(0.999)))
}

func TestRollGradeDistribution(t *testing.T) {
	t.Parallel()

	table := stage.Default().Info(100).ClearDrops
	rng := random.NewSeeded(11)
	const n = 20000
	var counts [item.GradeCount]int
	for range n {
		counts[RollGrade(table, rng)]++
	}
	for g, c := range counts {
		assert.InDelta(t, table[g], float64(c)/n, 0.02, "%s", item.Grade(g))
	}
}

func TestRollStats(t *testing.T) {
	t.Parallel()

	// 0.5 picks slot index 5 (gloves) and a variation factor of exactly 1
	e := NewEngine(nil, random.NewSequence(0.5), WithIDGenerator(fixedIDs()))
	it := e.RollItem(1, item.Common)
	assert.Equal(t, item.Gloves, it.Slot)
	assert.Equal(t, item.Stats{Attack: 2, AdditionalAttackChance: 0.02}, it.Base)

	it = e.RollItem(11, item.Epic)
	assert.Equal(t, item.Stats{Attack: 13, AdditionalAttackChance: 0.132}, it.Base)

	low := NewEngine(nil, random.NewSequence(0), WithIDGenerator(fixedIDs()))
	it = low.RollItem(1, item.Common)
	assert.Equal(t, item.Weapon, it.Slot)
	assert.Equal(t, 9, it.Base.Attack)
	assert.Equal(t, 0.09, it.Base.CriticalDamage)
}

func TestRollStatsMinimums(t *testing.T) {
	t.Parallel()

	tables := item.Tables{
		BaseStats:        map[item.Slot]item.Stats{item.Weapon: {Attack: 1, CriticalChance: 0.001}},
		GradeMultipliers: map[item.Grade]float64{item.Common: 1},
	}
	e := NewEngine(nil, random.NewSequence(0), WithTables(tables))
	it := e.RollItem(1, item.Common)
	assert.Equal(t, 1, it.Base.Attack)
	assert.Equal(t, 0.001, it.Base.CriticalChance)
	assert.Zero(t, it.Base.Defense)

	tables.BaseStats[item.Weapon] = item.Stats{CriticalChance: 0.5}
	e = NewEngine(nil, random.NewSequence(0.99), WithTables(tables))
	it = e.RollItem(100, item.Common)
	assert.Equal(t, 1.0, it.Base.CriticalChance, "chance stats cap at 100%")
}

func TestRollStatsVariationBounds(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil, random.NewSeeded(5))
	tables := item.DefaultTables()
	for i := range 500 {
		tier := 1 + i%100
		it := e.RollItem(tier, item.Legendary)
		base := tables.BaseStats[it.Slot]
		scale := tables.GradeMultiplier(item.Legendary) * StageMultiplier(tier)
		if base.Attack > 0 {
			v := float64(it.Base.Attack)
			assert.GreaterOrEqual(t, v, float64(int(float64(base.Attack)*scale*0.9)))
			assert.LessOrEqual(t, v, float64(base.Attack)*scale*1.1)
		}
		if base.Defense > 0 {
			v := float64(it.Base.Defense)
			assert.GreaterOrEqual(t, v, float64(int(float64(base.Defense)*scale*0.9)))
			assert.LessOrEqual(t, v, float64(base.Defense)*scale*1.1)
		}
	}
}

// --- boxes ---

func TestPriceFor(t *testing.T) {
	t.Parallel()

	p := Price{Single: 500, Ten: 4500}
	assert.Equal(t, int64(0), p.For(0))
	assert.Equal(t, int64(500), p.For(1))
	assert.Equal(t, int64(4500), p.For(10))
	assert.Equal(t, int64(6000), p.For(13))
	assert.Equal(t, int64(9000), p.For(20))
	assert.Equal(t, int64(5000), Price{Single: 500}.For(10))
}

func TestPriceForSaturates(t *testing.T) {
	t.Parallel()

	huge := 10 * (math.MaxInt64/4500 + 1000)
	assert.Equal(t, int64(math.MaxInt64), Price{Single: 500, Ten: 4500}.For(huge))
	assert.Equal(t, int64(math.MaxInt64), Price{Single: 500}.For(math.MaxInt))
	assert.Equal(t, int64(math.MaxInt64), Price{Single: math.MaxInt64, Ten: math.MaxInt64}.For(19))
}

func TestBoxRejectsTooManyOpens(t *testing.T) {
	t.Parallel()

	box, err := NewBox(DefaultBoxConfig(), NewEngine(nil, random.NewSeeded(1)))
	require.NoError(t, err)

	for _, n := range []int{DefaultMaxOpens + 1, 10 * (math.MaxInt64/4500 + 1000), math.MaxInt} {
		out, err := box.Open(1, n, 0, PityState{})
		require.ErrorIs(t, err, gameerr.ErrInvalidRequest, "n=%d", n)
		assert.Empty(t, out.Items)
		assert.Zero(t, out.Cost)
	}
	_, err = box.Open(1, DefaultMaxOpens, math.MaxInt64, PityState{})
	assert.NoError(t, err)

	small, err := NewBox(BoxConfig{Price: Price{Single: 1}, MaxOpens: 5}, NewEngine(nil, random.NewSeeded(1)))
	require.NoError(t, err)
	_, err = small.Open(1, 6, 100, PityState{})
	assert.ErrorIs(t, err, gameerr.ErrInvalidRequest)
	out, err := small.Open(1, 5, 100, PityState{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 5)

	_, err = NewBox(BoxConfig{Price: Price{Single: 1}, MaxOpens: -1}, NewEngine(nil, random.NewSeeded(1)))
	assert.ErrorIs(t, err, gameerr.ErrInvalidConfig)
}

func TestBoxInsufficientFunds(t *testing.T) {
	t.Parallel()

	box, err := NewBox(DefaultBoxConfig(), NewEngine(nil, random.NewSeeded(1)))
	require.NoError(t, err)
	_, err = box.Open(1, 10, 4499, PityState{})
	assert.ErrorIs(t, err, gameerr.ErrInsufficientFunds)

	out, err := box.Open(1, 10, 4500, PityState{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 10)
	assert.Equal(t, int64(4500), out.Cost)
}

func TestBoxHardPity(t *testing.T) {
	t.Parallel()

	cfg := BoxConfig{Price: Price{Single: 1}, Pity: PityConfig{Hard: 3}}
	box, err := NewBox(cfg, NewEngine(nil, random.NewSequence(0.99)))
	require.NoError(t, err)

	out, err := box.Open(1, 3, 3, PityState{})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	assert.Equal(t, item.Common, out.Items[0].Grade)
	assert.Equal(t, item.Common, out.Items[1].Grade)
	assert.Equal(t, item.Epic, out.Items[2].Grade)
	assert.Equal(t, PityState{}, out.Pity)

	out, err = box.Open(1, 2, 2, PityState{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Pity.Count)
}

func TestBoxNeverExceedsPity(t *testing.T) {
	t.Parallel()

	cfg := DefaultBoxConfig()
	box, err := NewBox(cfg, NewEngine(nil, random.NewSeeded(21)))
	require.NoError(t, err)

	state := PityState{}
	dry := 0
	for range 40 {
		out, err := box.Open(1, 10, 1<<30, state)
		require.NoError(t, err)
		for _, it := range out.Items {
			if it.Grade >= item.Epic {
				dry = 0
				continue
			}
			dry++
			require.Less(t, dry, cfg.Pity.Hard)
		}
		state = out.Pity
	}
}

func TestSoftPityRamp(t *testing.T) {
	t.Parallel()

	c := PityConfig{Hard: 50, SoftStart: 35, SoftTarget: 0.5, Easing: EaseLinear}
	assert.Equal(t, 0.05, c.effectiveProb(0.05, PityState{Count: 10}))
	assert.Equal(t, 0.05, c.effectiveProb(0.05, PityState{Count: 35}))
	assert.InDelta(t, 0.275, c.effectiveProb(0.05, PityState{Count: 42}), 1e-12)
	assert.InDelta(t, 0.05+0.45*13/14, c.effectiveProb(0.05, PityState{Count: 48}), 1e-12)
	assert.Equal(t, 1.0, c.effectiveProb(0.05, PityState{Count: 49}))

	c.Easing = EaseOutQuad
	assert.InDelta(t, 0.3875, c.effectiveProb(0.05, PityState{Count: 42}), 1e-12)
	c.Easing = EaseInOutCubic
	assert.InDelta(t, 0.275, c.effectiveProb(0.05, PityState{Count: 42}), 1e-12)
}

func TestPityConfigValidate(t *testing.T) {
	t.Parallel()

	valid := []PityConfig{
		{},
		{Hard: 90},
		{Hard: 90, SoftStart: 74, SoftTarget: 0.5},
	}
	for _, c := range valid {
		assert.NoError(t, c.Validate(), "%+v", c)
	}
	invalid := []PityConfig{
		{Hard: -1},
		{Hard: 1, SoftTarget: 0.5},
		{Hard: 90, SoftStart: 89, SoftTarget: 0.5},
		{Hard: 90, SoftStart: 10, SoftTarget: 1},
		{Hard: 90, SoftStart: 10, SoftTarget: 0.5, Easing: "bounce"},
	}
	for _, c := range invalid {
		assert.ErrorIs(t, c.Validate(), gameerr.ErrInvalidConfig, "%+v", c)
	}

	_, err := NewBox(BoxConfig{}, NewEngine(nil, nil))
	assert.ErrorIs(t, err, gameerr.ErrInvalidConfig)
}

func TestBoxFeaturedSlot(t *testing.T) {
	t.Parallel()

	cfg := BoxConfig{
		Price:    Price{Single: 1},
		Pity:     PityConfig{Hard: 1},
		Featured: &Featured{Slot: item.Ring, OffProbs: []float64{0.5}, MaxOff: 1},
	}
	box, err := NewBox(cfg, NewEngine(nil, random.NewSequence(0.1)))
	require.NoError(t, err)

	out, err := box.Open(1, 2, 2, PityState{})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, item.Helmet, out.Items[0].Slot, "off roll lands elsewhere")
	assert.Equal(t, item.Ring, out.Items[1].Slot, "guarantee forces the featured slot")
	assert.Equal(t, PityState{}, out.Pity)

	onBanner, err := NewBox(cfg, NewEngine(nil, random.NewSequence(0.9)))
	require.NoError(t, err)
	out, err = onBanner.Open(1, 1, 1, PityState{OffStreak: 3})
	require.NoError(t, err)
	assert.Equal(t, item.Ring, out.Items[0].Slot)
	assert.Zero(t, out.Pity.OffStreak)
}
