package enhance

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xtding233/progression-engine/internal/gameerr"
	"github.com/xtding233/progression-engine/internal/item"
	"github.com/xtding233/progression-engine/internal/random"
)

// Outcome is the result of one enhancement attempt.
type Outcome int

const (
	Success Outcome = iota
	Failure
	Downgrade
	Destruction
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Downgrade:
		return "downgrade"
	case Destruction:
		return "destruction"
	}
	return "unknown"
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(b []byte) error {
	for _, v := range []Outcome{Success, Failure, Downgrade, Destruction} {
		if v.String() == string(b) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("unknown enhancement outcome %q", b)
}

// Attempt records one resolved attempt.
type Attempt struct {
	Outcome       Outcome    `json:"outcome"`
	PreviousLevel int        `json:"previous_level"`
	NewLevel      int        `json:"new_level"`
	CreditsPaid   int64      `json:"credits_paid"`
	StatDelta     item.Stats `json:"stat_delta"` // negative on downgrade
	// Item is the item after the attempt. On Destruction it is the item as
	// it was; the caller removes it from the inventory.
	Item item.Item `json:"item"`
}

// Destroyed reports whether the item no longer exists.
func (a Attempt) Destroyed() bool { return a.Outcome == Destruction }

// AttemptOptions are per-attempt modifiers chosen by the player.
type AttemptOptions struct {
	// PreventDestruction turns a destruction into a downgrade.
	PreventDestruction bool
}

// Resolver resolves enhancement attempts against a Config.
type Resolver struct {
	cfg    Config
	rng    random.Source
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for notable outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver returns a resolver drawing from src (crypto source if nil).
func NewResolver(cfg Config, src random.Source, opts ...Option) *Resolver {
	r := &Resolver{cfg: cfg, rng: random.OrDefault(src), logger: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Config returns the resolver's curves.
func (r *Resolver) Config() Config { return r.cfg }

// Quote returns the cost and success rate of the next attempt on it.
func (r *Resolver) Quote(it item.Item) (cost int64, rate float64, err error) {
	if err := r.check(it); err != nil {
		return 0, 0, err
	}
	target := it.Level + 1
	return r.cfg.Cost(target, it.Grade), r.cfg.SuccessRate(target), nil
}

// Enhance performs one attempt on it with the given credit balance.
// Precondition failures are returned as errors; failure, downgrade and
// destruction are valid outcomes.
func (r *Resolver) Enhance(it item.Item, credits int64, opts AttemptOptions) (Attempt, error) {
	cost, rate, err := r.Quote(it)
	if err != nil {
		return Attempt{}, err
	}
	if credits < cost {
		return Attempt{}, gameerr.WithMetadata(gameerr.CodeInsufficientFunds,
			fmt.Sprintf("enhancing to +%d costs %d credits, have %d", it.Level+1, cost, credits),
			map[string]string{
				"item_id": it.ID,
				"cost":    strconv.FormatInt(cost, 10),
				"credits": strconv.FormatInt(credits, 10),
			})
	}

	a := Attempt{PreviousLevel: it.Level, NewLevel: it.Level, CreditsPaid: cost, Item: it}

	ok, err := random.Draw(rate, r.rng)
	if err != nil {
		return Attempt{}, fmt.Errorf("success rate for +%d: %w", it.Level+1, err)
	}
	if ok {
		gain := r.cfg.Gain(it, it.Level+1)
		a.Outcome = Success
		a.NewLevel = it.Level + 1
		a.StatDelta = gain
		a.Item.Level = a.NewLevel
		a.Item.Bonus = it.Bonus.Add(gain)
		return a, nil
	}

	if it.Level < RiskLevel {
		a.Outcome = Failure
		return a, nil
	}

	if r.destroys(it.Level, opts) {
		a.Outcome = Destruction
		r.logger.Debug("item destroyed by enhancement", "item_id", it.ID, "level", it.Level, "grade", it.Grade)
		return a, nil
	}

	loss := r.cfg.Gain(it, it.Level)
	a.Outcome = Downgrade
	a.NewLevel = max(0, it.Level-1)
	a.StatDelta = loss.Neg()
	a.Item.Level = a.NewLevel
	a.Item.Bonus = it.Bonus.Sub(loss)
	return a, nil
}

// check rejects capped items before anything else, so a level past the
// cap reports MaxLevelReached rather than a malformed item.
func (r *Resolver) check(it item.Item) error {
	if it.Level >= item.MaxLevel {
		return gameerr.WithMetadata(gameerr.CodeMaxLevelReached,
			fmt.Sprintf("item %s is already +%d", it.ID, it.Level),
			map[string]string{"item_id": it.ID, "level": strconv.Itoa(it.Level)})
	}
	return it.Validate()
}

// destroys rolls the destruction rule for a failed attempt at level.
func (r *Resolver) destroys(level int, opts AttemptOptions) bool {
	rule := r.cfg.Destruction
	if !rule.Enabled || opts.PreventDestruction || level < rule.MinLevel {
		return false
	}
	hit, err := random.Draw(rule.Chance, r.rng)
	if err != nil {
		r.logger.Warn("destruction rule ignored", "chance", rule.Chance, "error", err)
		return false
	}
	return hit
}
