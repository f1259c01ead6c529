package enhance

import (
	"context"
	"fmt"
	"math"

	"github.com/xtding233/progression-engine/internal/gameerr"
	"github.com/xtding233/progression-engine/internal/item"
	"github.com/xtding233/progression-engine/internal/random"
	"github.com/xtding233/progression-engine/internal/sim"
)

// maxTrialAttempts stops a trial that cannot reach its target.
const maxTrialAttempts = 10_000

// Estimate is the Monte Carlo cost of taking an item to a target level.
type Estimate struct {
	Target          int       `json:"target"`
	Trials          int       `json:"trials"`
	Credits         sim.Stats `json:"credits"`
	Attempts        sim.Stats `json:"attempts"`
	DestructionRate float64   `json:"destruction_rate"`
}

type trialResult struct {
	credits   int
	attempts  int
	destroyed bool
}

// EstimateCost repeats attempts on copies of it until target is reached or
// the item is destroyed, with unlimited credits.
func EstimateCost(ctx context.Context, cfg Config, p sim.Params, it item.Item, target int, opts AttemptOptions) (Estimate, error) {
	if target <= it.Level || target > item.MaxLevel {
		return Estimate{}, gameerr.WithMetadata(gameerr.CodeInvalidItemState,
			fmt.Sprintf("target +%d must be in %d..%d", target, it.Level+1, item.MaxLevel),
			map[string]string{"item_id": it.ID})
	}
	if err := it.Validate(); err != nil {
		return Estimate{}, err
	}

	results, err := sim.Run(ctx, p, func(src random.Source) (trialResult, error) {
		r := NewResolver(cfg, src)
		cur := it
		var tr trialResult
		for cur.Level < target && tr.attempts < maxTrialAttempts {
			a, err := r.Enhance(cur, math.MaxInt64, opts)
			if err != nil {
				return tr, err
			}
			tr.attempts++
			tr.credits += int(a.CreditsPaid)
			if a.Destroyed() {
				tr.destroyed = true
				break
			}
			cur = a.Item
		}
		return tr, nil
	})
	if err != nil {
		return Estimate{}, err
	}

	credits := make([]int, len(results))
	attempts := make([]int, len(results))
	destroyed := 0
	for i, tr := range results {
		credits[i] = tr.credits
		attempts[i] = tr.attempts
		if tr.destroyed {
			destroyed++
		}
	}
	est := Estimate{
		Target:   target,
		Trials:   len(results),
		Credits:  sim.Summarize(credits),
		Attempts: sim.Summarize(attempts),
	}
	if est.Trials > 0 {
		est.DestructionRate = float64(destroyed) / float64(est.Trials)
	}
	return est, nil
}
