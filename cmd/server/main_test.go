package main

import (
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/progression-engine/internal/config"
	"github.com/xtding233/progression-engine/internal/random"
	"github.com/xtding233/progression-engine/internal/rpc"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	require.NoError(t, err)
	assert.Equal(t, "config", cfg.ConfigDir)
	assert.Equal(t, ":9090", cfg.GRPCAddr)
	assert.Equal(t, 5*time.Second, cfg.WatchInterval)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestParseConfigEnvThenFlags(t *testing.T) {
	t.Setenv("PROGRESSION_PROFILE", "hardcore")
	t.Setenv("PROGRESSION_GRPC_ADDR", ":7000")
	t.Setenv("PROGRESSION_LOG_LEVEL", "DEBUG")

	cfg, err := ParseConfig(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-grpc-addr", ":7001", "-watch", "0"})
	require.NoError(t, err)
	assert.Equal(t, "hardcore", cfg.Profile)
	assert.Equal(t, ":7001", cfg.GRPCAddr)
	assert.Zero(t, cfg.WatchInterval)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestParseConfigErrors(t *testing.T) {
	t.Setenv("PROGRESSION_WATCH_INTERVAL", "soon")
	_, err := ParseConfig(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	assert.ErrorContains(t, err, "parse env")

	t.Setenv("PROGRESSION_WATCH_INTERVAL", "1s")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	_, err = ParseConfig(fs, []string{"-grpc-addr", ""})
	assert.Error(t, err)
}

func newTestMux(t *testing.T) http.Handler {
	t.Helper()
	svc, err := rpc.NewService(config.Defaults(),
		rpc.WithSource(random.NewSeeded(1)),
		rpc.WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	return newMux(svc)
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestHandleStage(t *testing.T) {
	h := newTestMux(t)

	rec := get(t, h, "/stage?tier=10")
	require.Equal(t, http.StatusOK, rec.Code)
	var out rpc.StageInfoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, 10, out.Stage.Tier)
	assert.Positive(t, out.Stage.Boss.MaxHP)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/stage").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/stage?tier=x").Code)
}

func TestHandleSimulate(t *testing.T) {
	h := newTestMux(t)

	rec := get(t, h, "/simulate?tier=1&attack=10000&defense=10000&trials=5&seed=3")
	require.Equal(t, http.StatusOK, rec.Code)
	var out rpc.SimulateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.True(t, out.Outcome.CanWin)
	require.NotNil(t, out.WinRate)
	assert.Equal(t, 5, out.WinRate.Trials)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/simulate?tier=1&crit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/simulate?tier=1&seed=-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/simulate?tier=1&trials=-1").Code)
}

func TestHandleSimulateRejectsBadStats(t *testing.T) {
	h := newTestMux(t)

	for _, q := range []string{
		"crit_dmg=Inf",
		"crit_dmg=NaN",
		"crit=-0.5",
		"attack=-10",
		"extra=1e400",
	} {
		rec := get(t, h, "/simulate?tier=1&"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}
