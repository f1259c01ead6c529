package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xtding233/progression-engine/internal/combat"
	"github.com/xtding233/progression-engine/internal/rpc"
)

type errResp struct {
	Err string `json:"err"`
}

func parseFloat(r *http.Request, key string) (float64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch status.Code(err) {
	case codes.InvalidArgument:
		code = http.StatusBadRequest
	case codes.FailedPrecondition:
		code = http.StatusConflict
	}
	writeJSON(w, code, errResp{Err: err.Error()})
}

// newMux serves the read-only JSON previews.
func newMux(svc rpc.ProgressionServer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stage", func(w http.ResponseWriter, r *http.Request) { handleStage(svc, w, r) })
	mux.HandleFunc("GET /simulate", func(w http.ResponseWriter, r *http.Request) { handleSimulate(svc, w, r) })
	return mux
}

// /stage?tier=N
func handleStage(svc rpc.ProgressionServer, w http.ResponseWriter, r *http.Request) {
	tier, ok, msg := parseInt(r, "tier")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "missing param tier", http.StatusBadRequest)
		return
	}
	out, err := svc.StageInfo(r.Context(), &rpc.StageInfoRequest{Tier: tier})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// /simulate?tier=N&attack=&defense=&pen=&crit=&crit_dmg=&extra=&max_rounds=&trials=&seed=
func handleSimulate(svc rpc.ProgressionServer, w http.ResponseWriter, r *http.Request) {
	tier, ok, msg := parseInt(r, "tier")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "missing param tier", http.StatusBadRequest)
		return
	}

	req := rpc.SimulateRequest{Tier: tier}
	ints := map[string]*int{
		"attack":     &req.Player.Attack,
		"defense":    &req.Player.Defense,
		"pen":        &req.Player.DefensePenetration,
		"max_rounds": &req.MaxRounds,
		"trials":     &req.Trials,
	}
	for key, dst := range ints {
		v, _, msg := parseInt(r, key)
		if msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		*dst = v
	}
	floats := map[string]*float64{
		"crit":     &req.Player.CriticalChance,
		"crit_dmg": &req.Player.CriticalDamage,
		"extra":    &req.Player.AdditionalAttackChance,
	}
	for key, dst := range floats {
		v, _, msg := parseFloat(r, key)
		if msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		*dst = v
	}
	if s := r.URL.Query().Get("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed", http.StatusBadRequest)
			return
		}
		req.Seed = seed
	}

	out, err := svc.Simulate(r.Context(), &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	out.Outcome.Final.Log = trimLog(out.Outcome.Final.Log)
	writeJSON(w, http.StatusOK, out)
}

// trimLog keeps the tail of a battle log for the HTTP preview.
func trimLog(log []combat.LogEntry) []combat.LogEntry {
	const keep = 20
	if len(log) <= keep {
		return log
	}
	return log[len(log)-keep:]
}
