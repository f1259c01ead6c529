// Package rpc exposes the progression engine over gRPC. Messages are plain
// Go structs carried by a JSON codec; the service only dispatches into the
// core packages and keeps no player state.
package rpc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xtding233/progression-engine/internal/combat"
	"github.com/xtding233/progression-engine/internal/config"
	"github.com/xtding233/progression-engine/internal/enhance"
	"github.com/xtding233/progression-engine/internal/gameerr"
	"github.com/xtding233/progression-engine/internal/loot"
	"github.com/xtding233/progression-engine/internal/random"
	"github.com/xtding233/progression-engine/internal/sim"
	"github.com/xtding233/progression-engine/internal/stage"
	"github.com/xtding233/progression-engine/internal/valuation"
)

// DefaultPreviewCacheSize bounds the number of cached seeded previews.
const DefaultPreviewCacheSize = 256

// maxPreviewTrials caps the win-rate trials of one Simulate call.
const maxPreviewTrials = 100000

// engines is one consistent set of resolvers built from a Balance.
type engines struct {
	balance config.Balance
	stages  *stage.Generator
	combat  *combat.Resolver
	enhance *enhance.Resolver
	loot    *loot.Engine
	box     *loot.Box
	value   *valuation.Engine
}

func newEngines(b config.Balance, src random.Source, logger *slog.Logger) (*engines, error) {
	stages := stage.NewGenerator(b.Stage)
	drops := loot.NewEngine(stages, src, loot.WithTables(b.Items), loot.WithLogger(logger))
	box, err := loot.NewBox(b.Box, drops)
	if err != nil {
		return nil, fmt.Errorf("loot box: %w", err)
	}
	return &engines{
		balance: b,
		stages:  stages,
		combat:  combat.NewResolver(src),
		enhance: enhance.NewResolver(b.Enhance, src, enhance.WithLogger(logger)),
		loot:    drops,
		box:     box,
		value:   valuation.New(b.Valuation),
	}, nil
}

// Service implements ProgressionServer.
type Service struct {
	rng       random.Source
	logger    *slog.Logger
	cacheSize int

	mu       sync.RWMutex
	engines  *engines
	previews *lru.Cache // previewKey -> *SimulateResponse
}

// previewKey ties a cached preview to the engines that computed it, so a
// preview never outlives a reload.
type previewKey struct {
	engines *engines
	req     SimulateRequest
}

// Option configures a Service.
type Option func(*Service)

// WithSource sets the random source shared by the engines. It must be safe
// for concurrent use when calls run concurrently.
func WithSource(src random.Source) Option {
	return func(s *Service) { s.rng = src }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithPreviewCacheSize sets how many seeded previews are kept.
func WithPreviewCacheSize(n int) Option {
	return func(s *Service) { s.cacheSize = n }
}

// NewService builds the engines for b.
func NewService(b config.Balance, opts ...Option) (*Service, error) {
	s := &Service{
		rng:       random.Default(),
		logger:    slog.Default(),
		cacheSize: DefaultPreviewCacheSize,
	}
	for _, o := range opts {
		o(s)
	}
	s.rng = random.OrDefault(s.rng)
	cache, err := lru.New(s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("preview cache: %w", err)
	}
	s.previews = cache
	if err := s.Reload(b); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload swaps in engines built from b. In-flight calls finish on the old
// engines; cached previews are dropped.
func (s *Service) Reload(b config.Balance) error {
	e, err := newEngines(b, s.rng, s.logger)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.engines = e
	s.mu.Unlock()
	s.previews.Purge()
	s.logger.Info("balance loaded", "version", b.Version)
	return nil
}

// Balance returns the configuration currently served.
func (s *Service) Balance() config.Balance {
	return s.current().balance
}

func (s *Service) current() *engines {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engines
}

// tier clamps out-of-range tiers, logging the advisory error.
func (s *Service) tier(method string, tier int) (int, bool) {
	if err := stage.Validate(tier); err != nil {
		s.logger.Warn("tier clamped", "method", method, "tier", tier, "error", err)
		return stage.Clamp(tier), true
	}
	return tier, false
}

func (s *Service) StageInfo(_ context.Context, in *StageInfoRequest) (*StageInfoResponse, error) {
	tier, clamped := s.tier("StageInfo", in.Tier)
	return &StageInfoResponse{Stage: s.current().stages.Info(tier), Clamped: clamped}, nil
}

func (s *Service) Simulate(ctx context.Context, in *SimulateRequest) (*SimulateResponse, error) {
	if in.Trials < 0 || in.Trials > maxPreviewTrials {
		return nil, status.Errorf(codes.InvalidArgument, "trials must be within 0..%d, got %d", maxPreviewTrials, in.Trials)
	}
	if err := in.Player.Validate(); err != nil {
		return nil, err
	}
	req := *in
	req.Tier, _ = s.tier("Simulate", in.Tier)

	e := s.current()
	key := previewKey{engines: e, req: req}
	cacheable := req.Seed != 0
	if cacheable {
		if v, ok := s.previews.Get(key); ok {
			out := *v.(*SimulateResponse)
			out.Cached = true
			return &out, nil
		}
	}

	var src random.Source = s.rng
	if cacheable {
		src = random.NewSeeded(req.Seed)
	}
	info := e.stages.Info(req.Tier)
	out := &SimulateResponse{
		Outcome: combat.Simulate(src, req.Player, info.Boss, info.TurnLimit, req.MaxRounds),
	}
	if req.Trials > 0 {
		seed := req.Seed
		if !cacheable {
			seed = uint64(random.IntN(s.rng, 1<<31)) + 1
		}
		wr, err := combat.EstimateWinRate(ctx, sim.Params{Trials: req.Trials, Seed: seed}, req.Player, info.Boss, info.TurnLimit)
		if err != nil {
			return nil, fmt.Errorf("estimate win rate: %w", err)
		}
		out.WinRate = &wr
	}

	if cacheable {
		cached := *out
		s.previews.Add(key, &cached)
	}
	return out, nil
}

func (s *Service) StartBattle(_ context.Context, in *StartBattleRequest) (*BattleResponse, error) {
	if err := in.Player.Validate(); err != nil {
		return nil, err
	}
	tier, _ := s.tier("StartBattle", in.Tier)
	e := s.current()
	info := e.stages.Info(tier)
	return &BattleResponse{State: e.combat.Start(in.Player, info.Boss, info.TurnLimit)}, nil
}

func (s *Service) PlayerTurn(_ context.Context, in *TurnRequest) (*BattleResponse, error) {
	if err := checkTurn(in.State, combat.ActorPlayer); err != nil {
		return nil, err
	}
	e := s.current()
	next := e.combat.ApplyPlayerAttack(in.State)
	out := &BattleResponse{State: next}
	if next.Result != combat.Victory {
		return out, nil
	}

	tier := stage.Clamp(next.Boss.Tier)
	out.Reward = e.stages.Info(tier).ClearReward
	drop, err := e.loot.Drop(tier, stage.EventClear)
	if err != nil {
		return nil, fmt.Errorf("clear drop: %w", err)
	}
	out.Drop = drop
	s.logger.Debug("boss defeated", "tier", tier, "turns", next.Turn, "reward", out.Reward)
	return out, nil
}

func (s *Service) BossTurn(_ context.Context, in *TurnRequest) (*BattleResponse, error) {
	if err := checkTurn(in.State, combat.ActorBoss); err != nil {
		return nil, err
	}
	return &BattleResponse{State: s.current().combat.ApplyBossAttack(in.State)}, nil
}

func checkTurn(st combat.State, actor combat.Actor) error {
	if err := st.Player.Validate(); err != nil {
		return err
	}
	if st.Accepts(actor) {
		return nil
	}
	return gameerr.WithMetadata(gameerr.CodeInvalidTurn,
		fmt.Sprintf("%s cannot act: next=%s result=%s", actor, st.Next, st.Result),
		map[string]string{"actor": actor.String(), "result": st.Result.String()})
}

func (s *Service) Enhance(_ context.Context, in *EnhanceRequest) (*EnhanceResponse, error) {
	a, err := s.current().enhance.Enhance(in.Item, in.Credits, enhance.AttemptOptions{PreventDestruction: in.PreventDestruction})
	if err != nil {
		return nil, err
	}
	return &EnhanceResponse{Attempt: a, Credits: in.Credits - a.CreditsPaid}, nil
}

func (s *Service) Drop(_ context.Context, in *DropRequest) (*DropResponse, error) {
	res, err := s.current().loot.Drop(in.Tier, in.Event)
	if err != nil {
		return nil, err
	}
	return &DropResponse{Result: res}, nil
}

func (s *Service) OpenBox(_ context.Context, in *OpenBoxRequest) (*OpenBoxResponse, error) {
	tier, _ := s.tier("OpenBox", in.Tier)
	op, err := s.current().box.Open(tier, in.Count, in.Credits, in.Pity)
	if err != nil {
		return nil, err
	}
	return &OpenBoxResponse{Opening: op, Credits: in.Credits - op.Cost}, nil
}

func (s *Service) Sell(_ context.Context, in *SellRequest) (*SellResponse, error) {
	v := s.current().value
	opts := valuation.BulkOptions{SelectAll: in.SelectAll}
	if in.Target > 0 {
		plan, err := v.PlanSale(in.Items, in.Target, opts)
		if err != nil {
			return nil, err
		}
		return &SellResponse{Credits: in.Credits, Plan: &plan}, nil
	}

	check := v.ValidateBulkSale(in.Items, opts)
	if err := check.Err(); err != nil {
		return nil, err
	}
	out := &SellResponse{Check: check, Credits: in.Credits}
	if len(check.Warnings) > 0 && !in.Confirm {
		return out, nil
	}
	out.Sold = true
	out.Credits += check.Total
	return out, nil
}
