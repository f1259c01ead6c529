package valuation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xtding233/progression-engine/internal/gameerr"
	"github.com/xtding233/progression-engine/internal/item"
)

// BulkOptions modify bulk-sale validation.
type BulkOptions struct {
	// SelectAll lifts the item-count ceiling for an explicit sell-all.
	SelectAll bool
}

// BulkCheck is the result of validating a bulk sale. Errors block the
// sale; warnings are advisory and need player confirmation.
type BulkCheck struct {
	Count    int      `json:"count"`
	Total    int64    `json:"total"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	code gameerr.Code
}

// OK reports whether the sale may proceed.
func (c BulkCheck) OK() bool { return len(c.Errors) == 0 }

// Err returns the hard failures as one error, or nil.
func (c BulkCheck) Err() error {
	if c.OK() {
		return nil
	}
	return gameerr.WithMetadata(c.code,
		fmt.Sprintf("bulk sale rejected: %s", strings.Join(c.Errors, "; ")),
		map[string]string{"count": strconv.Itoa(c.Count)})
}

// ValidateBulkSale checks a bulk-sale request. The item-count ceiling and
// equipped items are hard failures; a high total and items at or above
// WarnGrade are warnings.
func (e *Engine) ValidateBulkSale(items []item.Item, opts BulkOptions) BulkCheck {
	c := BulkCheck{Count: len(items)}

	if e.overLimit(len(items), opts) {
		c.fail(gameerr.CodeSaleLimitExceeded,
			fmt.Sprintf("%d items selected; at most %d per sale", len(items), e.cfg.MaxItems))
	}

	valuable := 0
	for i, it := range items {
		if it.Equipped {
			c.fail(gameerr.CodeItemEquipped, fmt.Sprintf("items[%d] (%s) is equipped", i, it.ID))
			continue
		}
		p, err := e.SalePrice(it)
		if err != nil {
			c.fail(gameerr.CodeInvalidItemState, fmt.Sprintf("items[%d]: %v", i, err))
			continue
		}
		c.Total += p
		if it.Grade >= e.cfg.WarnGrade {
			valuable++
		}
	}

	if e.cfg.HighValueThreshold > 0 && c.Total >= e.cfg.HighValueThreshold {
		c.Warnings = append(c.Warnings, fmt.Sprintf("total %d credits is at or above %d", c.Total, e.cfg.HighValueThreshold))
	}
	if valuable > 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%d item(s) of grade %s or above", valuable, e.cfg.WarnGrade))
	}
	return c
}

// fail records a hard failure; the first failure decides the error code.
func (c *BulkCheck) fail(code gameerr.Code, msg string) {
	if len(c.Errors) == 0 {
		c.code = code
	}
	c.Errors = append(c.Errors, msg)
}

// overLimit reports whether n items exceed the per-sale ceiling.
func (e *Engine) overLimit(n int, opts BulkOptions) bool {
	return !opts.SelectAll && e.cfg.MaxItems > 0 && n > e.cfg.MaxItems
}
