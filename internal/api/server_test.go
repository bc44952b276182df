package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gangster-ledger/internal/feed"
	"gangster-ledger/internal/ledger"
	"gangster-ledger/internal/ratelimit"
	"gangster-ledger/internal/store"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

type denyAll struct{ err error }

func (d denyAll) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, d.err
}

var now = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

type fixture struct {
	store  *store.Store
	server *httptest.Server
}

func newFixture(t *testing.T, limiter Limiter, fr FeedReader, opts ...ledger.Option) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(func() time.Time { return now })
	svc := ledger.New(st, append([]ledger.Option{ledger.WithLogger(logger), ledger.WithSource(fixedSource(0.5))}, opts...)...)
	srv := httptest.NewServer(New(svc, limiter, fr, logger).Router())
	t.Cleanup(srv.Close)
	return &fixture{store: st, server: srv}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rdr = bytes.NewReader(raw)
		}
	}
	req, err := http.NewRequest(method, f.server.URL+path, rdr)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil, nil)
	code, body := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestRecruitAndList(t *testing.T) {
	f := newFixture(t, nil, nil)

	code, body := f.do(t, http.MethodPost, "/api/gangsters", map[string]any{
		"name": "Furio Giunta", "role": "Soldier", "weapon": "Shotgun",
	})
	require.Equal(t, http.StatusCreated, code, string(body))
	created := decode[map[string]any](t, body)
	assert.Equal(t, true, created["success"])
	gangster := created["gangster"].(map[string]any)
	assert.Equal(t, float64(1), gangster["id"])
	assert.Equal(t, float64(50), gangster["reputation"])
	assert.Equal(t, "2024-06-01T20:00:00Z", gangster["join_date"])

	code, _ = f.do(t, http.MethodPost, "/api/gangsters", map[string]any{
		"name": "Vito", "role": "Captain", "weapon": "Revolver", "reputation": 80,
	})
	require.Equal(t, http.StatusCreated, code)

	code, body = f.do(t, http.MethodGet, "/api/gangsters", nil)
	require.Equal(t, http.StatusOK, code)
	roster := decode[[]map[string]any](t, body)
	require.Len(t, roster, 2)
	assert.Equal(t, "Vito", roster[1]["name"])
	assert.Equal(t, float64(80), roster[1]["reputation"])
}

func TestRecruitValidation(t *testing.T) {
	f := newFixture(t, nil, nil)

	code, _ := f.do(t, http.MethodPost, "/api/gangsters", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodPost, "/api/gangsters", map[string]any{"name": "Nobody"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Empty(t, f.store.ListGangsters())
}

func TestGangsterLookup(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.store.SeedSampleData()

	code, body := f.do(t, http.MethodGet, "/api/gangsters/2", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Paulie Walnuts", decode[map[string]any](t, body)["name"])

	code, _ = f.do(t, http.MethodGet, "/api/gangsters/77", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodGet, "/api/gangsters/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = f.do(t, http.MethodGet, "/api/gangsters/1/stats", nil)
	require.Equal(t, http.StatusOK, code)
	stats := decode[map[string]any](t, body)
	assert.Equal(t, float64(87), stats["success_rate"])
	assert.Equal(t, "Active", stats["status"])

	code, body = f.do(t, http.MethodGet, "/api/gangsters/3/nickname", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, decode[map[string]any](t, body)["nickname"], "Silvio")
}

func TestUpdateAndDeleteGangster(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.store.SeedSampleData()

	code, body := f.do(t, http.MethodPut, "/api/gangsters/4", map[string]any{"weapon": "Desert Eagle", "reputation": 10})
	require.Equal(t, http.StatusOK, code, string(body))
	g, _ := f.store.GetGangster(4)
	assert.Equal(t, "Desert Eagle", g.Weapon)
	assert.Equal(t, 10, g.Reputation)
	assert.Equal(t, "Christopher Moltisanti", g.Name)

	code, _ = f.do(t, http.MethodPut, "/api/gangsters/40", map[string]any{"weapon": "Knife"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodDelete, "/api/gangsters/4", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodDelete, "/api/gangsters/4", nil)
	assert.Equal(t, http.StatusOK, code)
	_, ok := f.store.GetGangster(4)
	assert.False(t, ok)
}

func TestContractLifecycle(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.store.SeedSampleData()

	code, body := f.do(t, http.MethodPost, "/api/contracts", map[string]any{"target": "Loan Shark", "reward": 12000})
	require.Equal(t, http.StatusCreated, code, string(body))
	contract := decode[map[string]any](t, body)["contract"].(map[string]any)
	assert.Equal(t, float64(6), contract["id"])
	assert.Equal(t, "Medium", contract["difficulty"])
	assert.Nil(t, contract["completion_date"])

	code, body = f.do(t, http.MethodPost, "/api/contracts/6/assign", map[string]any{"gangster_id": 5})
	require.Equal(t, http.StatusOK, code, string(body))
	res := decode[map[string]any](t, body)
	assert.Equal(t, true, res["success"])
	// 12000 * (0.8 + 45/500) * 1.0
	assert.Equal(t, float64(10680), res["loot"])
	assert.Equal(t, float64(50), res["reputation"])

	code, body = f.do(t, http.MethodGet, "/api/contracts/6", nil)
	require.Equal(t, http.StatusOK, code)
	got := decode[map[string]any](t, body)
	assert.Equal(t, true, got["completed"])
	assert.Equal(t, float64(5), got["gangster_id"])
	assert.Equal(t, "2024-06-01T20:00:00Z", got["completion_date"])

	code, body = f.do(t, http.MethodPost, "/api/contracts/6/assign", map[string]any{"gangster_id": 5})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"success":false}`, string(body))

	code, body = f.do(t, http.MethodGet, "/api/contracts", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]map[string]any](t, body), 5)

	code, body = f.do(t, http.MethodGet, "/api/loot", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"total":10680,"formatted":"$10.7K"}`, string(body))

	code, body = f.do(t, http.MethodGet, "/api/gangsters/5/loot", nil)
	require.Equal(t, http.StatusOK, code)
	loot := decode[map[string]any](t, body)
	assert.Equal(t, float64(10680), loot["total"])
	entries := loot["loot"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "Contract: Loan Shark", entries[0].(map[string]any)["source"])

	code, _ = f.do(t, http.MethodDelete, "/api/contracts/1", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodGet, "/api/contracts/1", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAssignValidation(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.store.SeedSampleData()

	code, _ := f.do(t, http.MethodPost, "/api/contracts/1/assign", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodPost, "/api/contracts/1/assign", map[string]any{"gangster_id": 99})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodPost, "/api/contracts/99/assign", map[string]any{"gangster_id": 1})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodPost, "/api/contracts", map[string]any{"target": "No Reward"})
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Zero(t, f.store.TotalLoot())
	assert.Len(t, f.store.ListActiveContracts(), 5)
}

func TestRateLimitedRoutes(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	bucket := ratelimit.NewTokenBucket(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 1, 0, time.Minute)

	f := newFixture(t, bucket, nil)
	body := map[string]any{"name": "Furio", "role": "Soldier", "weapon": "Shotgun"}

	code, _ := f.do(t, http.MethodPost, "/api/gangsters", body)
	assert.Equal(t, http.StatusCreated, code)
	code, _ = f.do(t, http.MethodPost, "/api/gangsters", body)
	assert.Equal(t, http.StatusTooManyRequests, code)

	code, _ = f.do(t, http.MethodGet, "/api/gangsters", nil)
	assert.Equal(t, http.StatusOK, code, "reads are not limited")
	assert.Len(t, f.store.ListGangsters(), 1)
}

func TestRateLimiterFailure(t *testing.T) {
	f := newFixture(t, denyAll{err: errors.New("redis down")}, nil)
	code, _ := f.do(t, http.MethodPost, "/api/contracts", map[string]any{"target": "x", "reward": 1})
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestFeed(t *testing.T) {
	f := newFixture(t, nil, nil)
	code, body := f.do(t, http.MethodGet, "/api/feed", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"items":[]}`, string(body))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rf := feed.NewRedisFeed(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "", 20)

	f = newFixture(t, nil, rf, ledger.WithFeed(rf))
	f.store.SeedSampleData()
	code, _ = f.do(t, http.MethodPost, "/api/contracts/3/assign", map[string]any{"gangster_id": 1})
	require.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodDelete, "/api/gangsters/2", nil)
	require.Equal(t, http.StatusOK, code)

	code, body = f.do(t, http.MethodGet, "/api/feed?limit=1", nil)
	require.Equal(t, http.StatusOK, code)
	items := decode[map[string][]feed.Event](t, body)["items"]
	require.Len(t, items, 1)
	assert.Equal(t, feed.KindRemoved, items[0].Kind)

	code, _ = f.do(t, http.MethodGet, "/api/feed?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMetricsMounted(t *testing.T) {
	f := newFixture(t, nil, nil)
	code, body := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "ledger_contracts_assigned_total")
}
