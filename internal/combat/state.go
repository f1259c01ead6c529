package combat

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/xtding233/progression-engine/internal/gameerr"
	"github.com/xtding233/progression-engine/internal/item"
	"github.com/xtding233/progression-engine/internal/stage"
)

// Stats is an immutable snapshot of a combatant for one resolution call.
type Stats struct {
	Attack                 int     `json:"attack"`
	Defense                int     `json:"defense"`
	DefensePenetration     int     `json:"defense_penetration"`
	AdditionalAttackChance float64 `json:"additional_attack_chance"`
	CriticalChance         float64 `json:"critical_chance"`
	CriticalDamage         float64 `json:"critical_damage"` // bonus multiplier on a critical hit
}

// WithGear adds the total stats of equipped items to a base snapshot.
func WithGear(base Stats, gear []item.Item) Stats {
	g := item.Sum(gear)
	base.Attack += g.Attack
	base.Defense += g.Defense
	base.DefensePenetration += g.DefensePenetration
	base.AdditionalAttackChance += g.AdditionalAttackChance
	base.CriticalChance += g.CriticalChance
	base.CriticalDamage += g.CriticalDamage
	return base
}

// MaxCriticalDamage bounds the critical bonus multiplier a snapshot may carry.
const MaxCriticalDamage = 1000

// Validate rejects snapshots that cannot come from real gear: negative
// values, NaN or infinite rates, and a critical bonus above
// MaxCriticalDamage.
func (s Stats) Validate() error {
	var bad []string
	for name, v := range map[string]int{
		"attack":              s.Attack,
		"defense":             s.Defense,
		"defense_penetration": s.DefensePenetration,
	} {
		if v < 0 {
			bad = append(bad, name)
		}
	}
	for name, v := range map[string]float64{
		"additional_attack_chance": s.AdditionalAttackChance,
		"critical_chance":          s.CriticalChance,
		"critical_damage":          s.CriticalDamage,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			bad = append(bad, name)
		}
	}
	if s.CriticalDamage > MaxCriticalDamage {
		bad = append(bad, "critical_damage")
	}
	if len(bad) == 0 {
		return nil
	}
	slices.Sort(bad)
	return gameerr.WithMetadata(gameerr.CodeInvalidRequest,
		"invalid stats: "+strings.Join(bad, ", "),
		map[string]string{"fields": strings.Join(bad, ",")})
}

// MaxHP is the player's starting HP for a battle.
func (s Stats) MaxHP() int { return 100 + 2*max(0, s.Defense) }

// Result is the battle outcome; every value but Ongoing is terminal.
type Result int

const (
	Ongoing Result = iota
	Victory
	Defeat
	Timeout
)

func (r Result) String() string {
	switch r {
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	case Timeout:
		return "timeout"
	}
	return "ongoing"
}

func (r Result) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Result) UnmarshalText(b []byte) error {
	for _, v := range []Result{Ongoing, Victory, Defeat, Timeout} {
		if v.String() == string(b) {
			*r = v
			return nil
		}
	}
	return fmt.Errorf("unknown battle result %q", b)
}

// Actor is whose turn it is.
type Actor int

const (
	ActorPlayer Actor = iota
	ActorBoss
)

func (a Actor) String() string {
	if a == ActorBoss {
		return "boss"
	}
	return "player"
}

func (a Actor) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Actor) UnmarshalText(b []byte) error {
	switch string(b) {
	case "player":
		*a = ActorPlayer
	case "boss":
		*a = ActorBoss
	default:
		return fmt.Errorf("unknown actor %q", b)
	}
	return nil
}

// EntryType classifies battle log entries.
type EntryType string

const (
	EntryStart       EntryType = "start"
	EntryAttack      EntryType = "attack"
	EntryCritical    EntryType = "critical"
	EntryExtraAttack EntryType = "extra_attack"
	EntryBossAttack  EntryType = "boss_attack"
	EntryVictory     EntryType = "victory"
	EntryDefeat      EntryType = "defeat"
	EntryTimeout     EntryType = "timeout"
)

// LogEntry is one line of the battle transcript, for display only.
type LogEntry struct {
	At      time.Time `json:"at"`
	Type    EntryType `json:"type"`
	Damage  int       `json:"damage,omitempty"`
	Message string    `json:"message"`
}

// State is one immutable snapshot of a battle. Transitions return a new
// State and never modify the receiver, including its log.
type State struct {
	Player      Stats      `json:"player"`
	Boss        stage.Boss `json:"boss"`
	PlayerHP    int        `json:"player_hp"`
	PlayerMaxHP int        `json:"player_max_hp"`
	BossHP      int        `json:"boss_hp"`
	Turn        int        `json:"turn"`
	TurnLimit   int        `json:"turn_limit"`
	Next        Actor      `json:"next"`
	Result      Result     `json:"result"`
	Log         []LogEntry `json:"log"`
}

// Terminal reports whether the battle has ended.
func (s State) Terminal() bool { return s.Result != Ongoing }

// Accepts reports whether actor may act now.
func (s State) Accepts(actor Actor) bool { return !s.Terminal() && s.Next == actor }

// withLog returns a copy of s whose log has entries appended on a fresh
// backing array.
func (s State) withLog(entries ...LogEntry) State {
	log := make([]LogEntry, 0, len(s.Log)+len(entries))
	log = append(log, s.Log...)
	s.Log = append(log, entries...)
	return s
}
