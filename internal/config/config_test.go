package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/progression-engine/internal/enhance"
	"github.com/xtding233/progression-engine/internal/gameerr"
	"github.com/xtding233/progression-engine/internal/item"
)

const repoConfig = "../../config"

func writeBalance(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, "balance", name+".yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultFileMatchesBuiltins(t *testing.T) {
	t.Parallel()

	got, err := NewLoader(repoConfig, nil).Load("")
	require.NoError(t, err)
	want := Defaults()
	want.Version = "2024.1"
	assert.Equal(t, want, got)
}

func TestHardcoreProfile(t *testing.T) {
	t.Parallel()

	b, err := NewLoader(repoConfig, nil).Load("hardcore")
	require.NoError(t, err)
	assert.Equal(t, "2024.1-hardcore", b.Version)
	assert.Equal(t, 1.35, b.Enhance.HighGrowth)
	assert.Equal(t, enhance.DestructionRule{Enabled: true, MinLevel: 15, Chance: 0.05}, b.Enhance.Destruction)
	assert.Equal(t, int64(800), b.Box.Price.Single)
	require.NotNil(t, b.Box.Featured)
	assert.Equal(t, item.Weapon, b.Box.Featured.Slot)
	assert.Equal(t, 30, b.Valuation.MaxItems)

	// untouched keys keep the default file's values
	assert.Equal(t, int64(1000), b.Enhance.LowBase)
	assert.Equal(t, 50, b.Box.Pity.Hard)
	assert.Equal(t, int64(10000), b.Valuation.BasePrices[item.Mythic])
}

func TestMissingFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	b, err := NewLoader(dir, nil).Load("")
	require.NoError(t, err, "no default file means built-in defaults")
	assert.Equal(t, Defaults(), b)

	_, err = NewLoader(dir, nil).Load("nope")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUnknownKeysRejected(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeBalance(t, dir, "default", "enhance:\n  high_grwoth: 2\n")

	_, err := NewLoader(dir, nil).Load("")
	assert.ErrorContains(t, err, "high_grwoth")
}

func TestValidateRawCollectsAllProblems(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeBalance(t, dir, "default", `
stage:
  idle_rate_min: 0.5
  idle_rate_max: 0.1
enhance:
  success_rates: [0.5, 0.9]
  destruction: { enabled: true, min_level: 40, chance: 2 }
loot:
  box:
    price: { single: 0 }
    pity: { hard: 10, soft_start: 9, soft_target: 0.5 }
valuation:
  base_prices: { rare: -1 }
`)

	_, err := NewLoader(dir, nil).Load("")
	require.ErrorIs(t, err, gameerr.ErrInvalidConfig)
	for _, want := range []string{
		"stage.idle_rate_min must be <= idle_rate_max",
		"enhance.success_rates must not increase",
		"enhance.destruction.chance",
		"enhance.destruction.min_level",
		"loot.box.price.single",
		"loot.box.pity: soft start 9",
		"valuation.base_prices.rare",
	} {
		assert.ErrorContains(t, err, want)
	}
}

func TestResolveChecksMergedBalance(t *testing.T) {
	t.Parallel()

	def := Defaults()
	over := def.Stage.IdleRateMax + 0.5
	_, err := Resolve(RawConfig{Stage: &StageRaw{IdleRateMin: &over}})
	require.ErrorIs(t, err, gameerr.ErrInvalidConfig)
	assert.ErrorContains(t, err, "stage.idle_rate_min")

	under := def.Stage.IdleRateMax / 2
	b, err := Resolve(RawConfig{Stage: &StageRaw{IdleRateMin: &under}})
	require.NoError(t, err)
	assert.Equal(t, under, b.Stage.IdleRateMin)
	assert.Equal(t, def.Stage.IdleRateMax, b.Stage.IdleRateMax)

	zero := 0
	_, err = Resolve(RawConfig{Loot: &LootRaw{Box: &BoxRaw{MaxOpens: &zero}}})
	assert.ErrorContains(t, err, "loot.box.max_opens must be > 0")

	opens := 20
	b, err = Resolve(RawConfig{Loot: &LootRaw{Box: &BoxRaw{MaxOpens: &opens}}})
	require.NoError(t, err)
	assert.Equal(t, 20, b.Box.MaxOpens)
}

func TestValidateBalance(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateBalance(Defaults()))

	b := Defaults()
	b.Stage.IdleRateMin = 0.5
	b.Box.MaxOpens = 0
	err := ValidateBalance(b)
	require.ErrorIs(t, err, gameerr.ErrInvalidConfig)
	assert.ErrorContains(t, err, "loot.box.max_opens")
	assert.ErrorContains(t, err, "stage.idle_rate_min (0.5) must be <= idle_rate_max")
}

func TestMergeRaw(t *testing.T) {
	t.Parallel()

	low, high := 0.1, 0.2
	reward := int64(300)
	a := RawConfig{
		Version: "a",
		Stage:   &StageRaw{IdleRateMin: &low, IdleRateMax: &high},
		Items:   &ItemsRaw{GradeMultipliers: map[item.Grade]float64{item.Common: 1, item.Rare: 1.5}},
		Enhance: &EnhanceRaw{SuccessRates: []float64{0.9, 0.8}},
	}
	b := RawConfig{
		Stage:   &StageRaw{BaseClearReward: &reward},
		Items:   &ItemsRaw{GradeMultipliers: map[item.Grade]float64{item.Rare: 2}},
		Enhance: &EnhanceRaw{SuccessRates: []float64{0.5}},
	}
	m := mergeRaw(a, b)

	assert.Equal(t, "a", m.Version)
	assert.Equal(t, 0.1, *m.Stage.IdleRateMin)
	assert.Equal(t, int64(300), *m.Stage.BaseClearReward)
	assert.Equal(t, map[item.Grade]float64{item.Common: 1, item.Rare: 2}, m.Items.GradeMultipliers)
	assert.Equal(t, []float64{0.5}, m.Enhance.SuccessRates)

	// inputs are not modified
	assert.Nil(t, a.Stage.BaseClearReward)
	assert.Equal(t, 1.5, a.Items.GradeMultipliers[item.Rare])
}

func TestLoaderCacheAndInvalidate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeBalance(t, dir, "default", "version: one\n")

	l := NewLoader(dir, nil)
	b, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "one", b.Version)

	writeBalance(t, dir, "default", "version: two\n")
	b, err = l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "one", b.Version, "served from cache")

	l.Invalidate()
	b, err = l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "two", b.Version)
}

func TestFileWatcher(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeBalance(t, dir, "default", "version: one\n")

	changed := make(chan string, 4)
	w := NewFileWatcher(Paths{BaseDir: dir}.Files(""), 10*time.Millisecond, func(p string) { changed <- p }, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case p := <-changed:
		assert.Equal(t, path, p)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not report the change")
	}

	cancel()
	require.NoError(t, <-done)
}
