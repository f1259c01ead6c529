// Package combat resolves turn-based boss battles: the damage roll, the
// battle state machine and a synchronous simulate-to-completion preview.
package combat

import (
	"fmt"
	"math"
	"time"

	"github.com/xtding233/progression-engine/internal/damage"
	"github.com/xtding233/progression-engine/internal/random"
	"github.com/xtding233/progression-engine/internal/stage"
)

// Resolver applies battle transitions. It carries only the random source
// and clock; all battle data lives in State.
type Resolver struct {
	rng random.Source
	now func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the timestamp source of log entries.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver returns a resolver drawing from src (crypto source if nil).
func NewResolver(src random.Source, opts ...Option) *Resolver {
	r := &Resolver{rng: random.OrDefault(src), now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// CalculateDamage is the non-critical damage of one hit.
func CalculateDamage(attack, defense, penetration int) int {
	return damage.Calculate(attack, defense, penetration)
}

// Start creates the initial state: player acts first, turn 0, ongoing.
func (r *Resolver) Start(player Stats, boss stage.Boss, turnLimit int) State {
	hp := player.MaxHP()
	s := State{
		Player:      player,
		Boss:        boss,
		PlayerHP:    hp,
		PlayerMaxHP: hp,
		BossHP:      boss.MaxHP,
		TurnLimit:   max(1, turnLimit),
		Next:        ActorPlayer,
		Result:      Ongoing,
	}
	return s.withLog(r.entry(EntryStart, 0, fmt.Sprintf("%s appears with %d HP", boss.Name, boss.MaxHP)))
}

// ApplyPlayerAttack resolves the player's turn. Outside the player's turn,
// or once the battle is over, the state is returned unchanged.
func (r *Resolver) ApplyPlayerAttack(s State) State {
	if !s.Accepts(ActorPlayer) {
		return s
	}
	s.Turn++

	dmg, crit := r.hit(s.Player, s.Boss.Defense)
	s.BossHP -= dmg
	entries := []LogEntry{r.attackEntry(EntryAttack, dmg, crit, s.Turn)}

	if s.BossHP > 0 && r.chance(s.Player.AdditionalAttackChance) {
		extra, crit := r.hit(s.Player, s.Boss.Defense)
		s.BossHP -= extra
		entries = append(entries, r.attackEntry(EntryExtraAttack, extra, crit, s.Turn))
	}

	switch {
	case s.BossHP <= 0:
		s.BossHP = 0
		s.Result = Victory
		entries = append(entries, r.entry(EntryVictory, 0, fmt.Sprintf("%s defeated on turn %d", s.Boss.Name, s.Turn)))
	case s.Turn >= s.TurnLimit:
		s.Result = Timeout
		entries = append(entries, r.entry(EntryTimeout, 0, fmt.Sprintf("turn limit %d reached", s.TurnLimit)))
	default:
		s.Next = ActorBoss
	}
	return s.withLog(entries...)
}

// ApplyBossAttack resolves the boss's turn: one plain hit, no critical and
// no extra attack.
func (r *Resolver) ApplyBossAttack(s State) State {
	if !s.Accepts(ActorBoss) {
		return s
	}
	dmg := damage.Calculate(s.Boss.Attack, s.Player.Defense, 0)
	s.PlayerHP -= dmg
	entries := []LogEntry{r.entry(EntryBossAttack, dmg, fmt.Sprintf("%s hits for %d", s.Boss.Name, dmg))}
	if s.PlayerHP <= 0 {
		s.PlayerHP = 0
		s.Result = Defeat
		entries = append(entries, r.entry(EntryDefeat, 0, "player defeated"))
	} else {
		s.Next = ActorPlayer
	}
	return s.withLog(entries...)
}

// Step applies whichever transition is due.
func (r *Resolver) Step(s State) State {
	if s.Next == ActorBoss {
		return r.ApplyBossAttack(s)
	}
	return r.ApplyPlayerAttack(s)
}

// hit rolls one player attack, including the independent critical roll.
func (r *Resolver) hit(p Stats, defense int) (int, bool) {
	dmg := damage.Calculate(p.Attack, defense, p.DefensePenetration)
	if p.CriticalChance > 0 && r.chance(p.CriticalChance) {
		return damage.Critical(dmg, p.CriticalDamage), true
	}
	return dmg, false
}

// chance rolls p capped to [0,1]; p >= 1 always succeeds without a draw.
func (r *Resolver) chance(p float64) bool {
	if math.IsNaN(p) || p <= 0 {
		return false
	}
	hit, err := random.Draw(min(p, 1), r.rng)
	return err == nil && hit
}

func (r *Resolver) entry(t EntryType, dmg int, msg string) LogEntry {
	return LogEntry{At: r.now(), Type: t, Damage: dmg, Message: msg}
}

func (r *Resolver) attackEntry(t EntryType, dmg int, crit bool, turn int) LogEntry {
	msg := fmt.Sprintf("turn %d: player hits for %d", turn, dmg)
	if t == EntryExtraAttack {
		msg = fmt.Sprintf("turn %d: extra attack for %d", turn, dmg)
	}
	if crit {
		t = EntryCritical
		msg += " (critical)"
	}
	return r.entry(t, dmg, msg)
}
