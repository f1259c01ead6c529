package rpc

import (
	"github.com/xtding233/progression-engine/internal/combat"
	"github.com/xtding233/progression-engine/internal/enhance"
	"github.com/xtding233/progression-engine/internal/item"
	"github.com/xtding233/progression-engine/internal/loot"
	"github.com/xtding233/progression-engine/internal/stage"
	"github.com/xtding233/progression-engine/internal/valuation"
)

type StageInfoRequest struct {
	Tier int `json:"tier"`
}

type StageInfoResponse struct {
	Stage stage.Info `json:"stage"`
	// Clamped is set when the requested tier was out of range.
	Clamped bool `json:"clamped,omitempty"`
}

// SimulateRequest previews a battle. With Trials > 0 a win rate over that
// many seeded battles is estimated as well. Seed != 0 makes the preview
// reproducible and cacheable.
type SimulateRequest struct {
	Tier      int          `json:"tier"`
	Player    combat.Stats `json:"player"`
	MaxRounds int          `json:"max_rounds,omitempty"`
	Trials    int          `json:"trials,omitempty"`
	Seed      uint64       `json:"seed,omitempty"`
}

type SimulateResponse struct {
	Outcome combat.Outcome  `json:"outcome"`
	WinRate *combat.WinRate `json:"win_rate,omitempty"`
	Cached  bool            `json:"cached,omitempty"`
}

type StartBattleRequest struct {
	Tier   int          `json:"tier"`
	Player combat.Stats `json:"player"`
}

// TurnRequest carries the client-held battle state back for one transition.
type TurnRequest struct {
	State combat.State `json:"state"`
}

// BattleResponse is the state after a transition. Reward and Drop are set
// on the transition that wins the battle.
type BattleResponse struct {
	State  combat.State `json:"state"`
	Reward int64        `json:"reward,omitempty"`
	Drop   loot.Result  `json:"drop,omitzero"`
}

type EnhanceRequest struct {
	Item               item.Item `json:"item"`
	Credits            int64     `json:"credits"`
	PreventDestruction bool      `json:"prevent_destruction,omitempty"`
}

type EnhanceResponse struct {
	Attempt enhance.Attempt `json:"attempt"`
	Credits int64           `json:"credits"`
}

type DropRequest struct {
	Tier  int         `json:"tier"`
	Event stage.Event `json:"event"`
}

type DropResponse struct {
	Result loot.Result `json:"result"`
}

type OpenBoxRequest struct {
	Tier    int            `json:"tier"`
	Count   int            `json:"count"`
	Credits int64          `json:"credits"`
	Pity    loot.PityState `json:"pity"`
}

type OpenBoxResponse struct {
	Opening loot.Opening `json:"opening"`
	Credits int64        `json:"credits"`
}

// SellRequest sells Items, or with Target > 0 only plans which of them to
// sell to raise Target credits. Confirm acknowledges sale warnings.
type SellRequest struct {
	Items     []item.Item `json:"items"`
	Credits   int64       `json:"credits"`
	SelectAll bool        `json:"select_all,omitempty"`
	Confirm   bool        `json:"confirm,omitempty"`
	Target    int64       `json:"target,omitempty"`
}

// SellResponse reports the sale. Sold is false when warnings still need
// confirmation or when only a plan was requested.
type SellResponse struct {
	Check   valuation.BulkCheck `json:"check"`
	Sold    bool                `json:"sold"`
	Credits int64               `json:"credits"`
	Plan    *valuation.SalePlan `json:"plan,omitempty"`
}
