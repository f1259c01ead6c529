// Package sim runs independent seeded Monte Carlo trials and summarises
// their integer outcomes.
package sim

import (
	"context"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/xtding233/progression-engine/internal/random"
)

// Params controls one simulation run.
type Params struct {
	Trials  int
	Seed    uint64 // trial i draws from random.NewSeeded(Seed + i)
	Workers int    // <= 0 means GOMAXPROCS
}

// Stats describes the distribution of trial outcomes. Variance divides by
// the number of trials.
type Stats struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
	P50      float64 `json:"p50"`
	P90      float64 `json:"p90"`
	P99      float64 `json:"p99"`
}

// Run executes p.Trials independent trials in parallel. Every trial owns a
// source derived from its index, so results do not depend on scheduling.
func Run[T any](ctx context.Context, p Params, trial func(src random.Source) (T, error)) ([]T, error) {
	if p.Trials <= 0 {
		return nil, nil
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]T, p.Trials)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < p.Trials; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := trial(random.NewSeeded(p.Seed + uint64(i)))
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Summarize reduces trial outcomes to Stats. xs is not modified.
func Summarize(xs []int) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	// Welford's running mean and squared deviation
	var mean, m2 float64
	for k, v := range sorted {
		d := float64(v) - mean
		mean += d / float64(k+1)
		m2 += d * (float64(v) - mean)
	}
	variance := m2 / float64(len(sorted))

	return Stats{
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Min:      sorted[0],
		Max:      sorted[len(sorted)-1],
		P50:      quantile(sorted, 0.50),
		P90:      quantile(sorted, 0.90),
		P99:      quantile(sorted, 0.99),
	}
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []int, q float64) float64 {
	last := len(sorted) - 1
	rank := min(max(q, 0), 1) * float64(last)
	lo := int(rank)
	if lo >= last {
		return float64(sorted[last])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
