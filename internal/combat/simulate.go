package combat

import (
	"context"

	"github.com/xtding233/progression-engine/internal/random"
	"github.com/xtding233/progression-engine/internal/sim"
	"github.com/xtding233/progression-engine/internal/stage"
)

// Outcome is the result of simulating a battle to completion.
type Outcome struct {
	CanWin          bool   `json:"can_win"`
	EstimatedRounds int    `json:"estimated_rounds"`
	Result          Result `json:"result"`
	Final           State  `json:"final"`
}

// Simulate runs a battle to completion using the same transitions as the
// interactive path. The battle is bounded by min(maxRounds, turnLimit)
// player turns; maxRounds <= 0 means no extra bound.
func Simulate(src random.Source, player Stats, boss stage.Boss, turnLimit, maxRounds int) Outcome {
	limit := turnLimit
	if maxRounds > 0 {
		limit = min(limit, maxRounds)
	}
	r := NewResolver(src)
	s := r.Start(player, boss, limit)
	for !s.Terminal() {
		s = r.Step(s)
	}
	return Outcome{
		CanWin:          s.Result == Victory,
		EstimatedRounds: s.Turn,
		Result:          s.Result,
		Final:           s,
	}
}

// WinRate summarizes repeated simulations.
type WinRate struct {
	Trials int       `json:"trials"`
	Wins   int       `json:"wins"`
	Rate   float64   `json:"rate"`
	Rounds sim.Stats `json:"rounds"`
}

// EstimateWinRate simulates p.Trials independent battles, each with its own
// seeded source, and reports the fraction won and the distribution of rounds.
func EstimateWinRate(ctx context.Context, p sim.Params, player Stats, boss stage.Boss, turnLimit int) (WinRate, error) {
	outs, err := sim.Run(ctx, p, func(src random.Source) (Outcome, error) {
		o := Simulate(src, player, boss, turnLimit, 0)
		o.Final.Log = nil
		return o, nil
	})
	if err != nil {
		return WinRate{}, err
	}
	wr := WinRate{Trials: len(outs)}
	rounds := make([]int, len(outs))
	for i, o := range outs {
		if o.CanWin {
			wr.Wins++
		}
		rounds[i] = o.EstimatedRounds
	}
	if wr.Trials > 0 {
		wr.Rate = float64(wr.Wins) / float64(wr.Trials)
	}
	wr.Rounds = sim.Summarize(rounds)
	return wr, nil
}
