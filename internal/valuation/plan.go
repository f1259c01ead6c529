package valuation

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/xtding233/progression-engine/internal/gameerr"
	"github.com/xtding233/progression-engine/internal/item"
)

// Limits on one PlanSale search. Sums are counted in units of the gcd of
// the candidate prices.
const (
	maxPlanSums = 1 << 22
	maxPlanWork = 1 << 27
)

// SalePlan is a subset of items chosen to raise credits.
type SalePlan struct {
	Items     []item.Item `json:"items"`
	Total     int64       `json:"total"`
	Shortfall int64       `json:"shortfall,omitempty"` // target minus total when even selling everything falls short
}

// PlanSale picks the sellable items whose total sale price reaches target
// with the smallest overshoot. Each item is used at most once. When all
// sellable items together fall short, the plan sells all of them.
//
// The item-count ceiling applies as in ValidateBulkSale. A search too large
// to run is rejected with CodeInvalidRequest.
func (e *Engine) PlanSale(items []item.Item, target int64, opts BulkOptions) (SalePlan, error) {
	if target <= 0 {
		return SalePlan{}, nil
	}
	if e.overLimit(len(items), opts) {
		return SalePlan{}, gameerr.WithMetadata(gameerr.CodeSaleLimitExceeded,
			fmt.Sprintf("%d items offered; at most %d per sale", len(items), e.cfg.MaxItems),
			map[string]string{"count": strconv.Itoa(len(items))})
	}

	type cand struct {
		idx   int
		price int64
	}
	var cands []cand
	var all, unit, top int64
	for i, it := range items {
		if !e.CanSell(it) {
			continue
		}
		p, err := e.SalePrice(it)
		if err != nil || p <= 0 {
			continue
		}
		cands = append(cands, cand{i, p})
		all += p
		unit = gcd(unit, p)
		top = max(top, p)
	}
	if all < target {
		plan := SalePlan{Total: all, Shortfall: target - all}
		for _, c := range cands {
			plan.Items = append(plan.Items, items[c.idx])
		}
		return plan, nil
	}

	goal := target / unit
	if target%unit != 0 {
		goal++
	}
	size := goal + top/unit
	if size > maxPlanSums || size > maxPlanWork/int64(len(cands)) {
		return SalePlan{}, gameerr.WithMetadata(gameerr.CodeInvalidRequest,
			fmt.Sprintf("sale plan for %d credits over %d items is too large", target, len(cands)),
			map[string]string{"target": strconv.FormatInt(target, 10)})
	}

	// by[s] is the candidate that first reached sum s, or -1. Sums at or
	// above goal are never extended.
	by := make([]int32, size)
	for i := range by {
		by[i] = -1
	}
	for ci, c := range cands {
		q := c.price / unit
		for s := goal - 1 + q; s >= q; s-- {
			if by[s] < 0 && (s == q || by[s-q] >= 0) {
				by[s] = int32(ci)
			}
		}
	}

	best := goal
	for by[best] < 0 {
		best++
	}
	plan := SalePlan{Total: best * unit}
	for s := best; s > 0; {
		c := cands[by[s]]
		plan.Items = append(plan.Items, items[c.idx])
		s -= c.price / unit
	}
	slices.Reverse(plan.Items)
	return plan, nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
