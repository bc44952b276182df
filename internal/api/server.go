package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gangster-ledger/internal/feed"
	"gangster-ledger/internal/flair"
	"gangster-ledger/internal/ledger"
	"gangster-ledger/internal/models"
	"gangster-ledger/internal/payout"
	"gangster-ledger/internal/ratelimit"
	"gangster-ledger/internal/telemetry"
)

// Limiter decides whether a caller may perform a mutating request.
type Limiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
}

// FeedReader serves the recent activity feed.
type FeedReader interface {
	Recent(ctx context.Context, count int64) ([]feed.Event, error)
}

// Server wires HTTP handlers for the family ledger.
type Server struct {
	ledger  *ledger.Service
	limiter Limiter
	feed    FeedReader
	names   flair.Picker
	logger  *slog.Logger
}

// New constructs the API server. limiter and feed may be nil.
func New(svc *ledger.Service, limiter Limiter, fr FeedReader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ledger:  svc,
		limiter: limiter,
		feed:    fr,
		names:   flair.NewPicker(),
		logger:  logger,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/metrics", telemetry.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/gangsters", func(r chi.Router) {
			r.Get("/", s.handleListGangsters)
			r.With(s.rateLimited).Post("/", s.handleRecruit)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetGangster)
				r.With(s.rateLimited).Put("/", s.handleUpdateGangster)
				r.With(s.rateLimited).Delete("/", s.handleDeleteGangster)
				r.Get("/loot", s.handleGangsterLoot)
				r.Get("/stats", s.handleGangsterStats)
				r.Get("/nickname", s.handleNickname)
			})
		})
		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", s.handleListContracts)
			r.With(s.rateLimited).Post("/", s.handlePostContract)
			r.Get("/{id}", s.handleGetContract)
			r.With(s.rateLimited).Post("/{id}/assign", s.handleAssign)
			r.With(s.rateLimited).Delete("/{id}", s.handleDeleteContract)
		})
		r.Get("/loot", s.handleTotalLoot)
		r.Get("/feed", s.handleFeed)
	})
	return r
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		d, err := s.limiter.Allow(r.Context(), clientKey(r))
		if err != nil {
			s.logger.Error("rate limit check failed", "error", err)
			http.Error(w, "rate limit error", http.StatusInternalServerError)
			return
		}
		if !d.Allowed {
			telemetry.RateLimitRejects.Inc()
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type recruitRequest struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Weapon     string `json:"weapon"`
	Reputation *int   `json:"reputation"`
}

type updateGangsterRequest struct {
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	Weapon     *string `json:"weapon"`
	Reputation *int    `json:"reputation"`
}

type postContractRequest struct {
	Target     string `json:"target"`
	Reward     *int   `json:"reward"`
	Difficulty string `json:"difficulty"`
	GangsterID *int   `json:"gangster_id"`
}

type assignRequest struct {
	GangsterID *int `json:"gangster_id"`
}

func (s *Server) handleListGangsters(w http.ResponseWriter, _ *http.Request) {
	roster := s.ledger.Store().ListGangsters()
	out := make([]map[string]any, 0, len(roster))
	for _, g := range roster {
		out = append(out, g.ToMap())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecruit(w http.ResponseWriter, r *http.Request) {
	var req recruitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Role == "" || req.Weapon == "" {
		http.Error(w, "name, role and weapon are required", http.StatusBadRequest)
		return
	}
	g := models.NewGangster(req.Name, req.Role, req.Weapon, s.ledger.Store().Now())
	if req.Reputation != nil {
		g.Reputation = *req.Reputation
	}
	g = s.ledger.Recruit(r.Context(), g)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "gangster": g.ToMap()})
}

func (s *Server) handleGetGangster(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gangsterFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.ToMap())
}

func (s *Server) handleUpdateGangster(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gangsterFromPath(w, r)
	if !ok {
		return
	}
	var req updateGangsterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Role != nil {
		g.Role = *req.Role
	}
	if req.Weapon != nil {
		g.Weapon = *req.Weapon
	}
	if req.Reputation != nil {
		g.Reputation = *req.Reputation
	}
	s.ledger.Store().UpdateGangster(g)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "gangster": g.ToMap()})
}

func (s *Server) handleDeleteGangster(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.ledger.Dismiss(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleGangsterLoot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	entries := s.ledger.Store().LootForGangster(id)
	out := make([]map[string]any, 0, len(entries))
	total := 0
	for _, l := range entries {
		out = append(out, l.ToMap())
		total += l.Amount
	}
	writeJSON(w, http.StatusOK, map[string]any{"loot": out, "total": total})
}

func (s *Server) handleGangsterStats(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gangsterFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, payout.Stats(g))
}

func (s *Server) handleNickname(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gangsterFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": g.Name, "nickname": flair.Nickname(g.Name, s.names)})
}

func (s *Server) handleListContracts(w http.ResponseWriter, _ *http.Request) {
	board := s.ledger.Store().ListActiveContracts()
	out := make([]map[string]any, 0, len(board))
	for _, c := range board {
		out = append(out, c.ToMap())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePostContract(w http.ResponseWriter, r *http.Request) {
	var req postContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Target == "" || req.Reward == nil {
		http.Error(w, "target and reward are required", http.StatusBadRequest)
		return
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = payout.AssessDifficulty(*req.Reward)
	}
	c := models.NewContract(req.Target, *req.Reward, difficulty)
	c.GangsterID = req.GangsterID
	c = s.ledger.Post(r.Context(), c)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "contract": c.ToMap()})
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, found := s.ledger.Store().GetContract(id)
	if !found {
		http.Error(w, "contract not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c.ToMap())
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.GangsterID == nil {
		http.Error(w, "gangster_id is required", http.StatusBadRequest)
		return
	}
	res, assigned := s.ledger.Assign(r.Context(), id, *req.GangsterID)
	if !assigned {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"loot":       res.Loot.Amount,
		"reputation": res.Reputation,
		"contract":   res.Contract.ToMap(),
	})
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.ledger.Scrap(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleTotalLoot(w http.ResponseWriter, _ *http.Request) {
	total := s.ledger.Store().TotalLoot()
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "formatted": flair.Currency(total)})
}

// handleFeed returns recent ledger events, newest first.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		writeJSON(w, http.StatusOK, map[string]any{"items": []feed.Event{}})
		return
	}
	var limit int64 = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	items, err := s.feed.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("read feed", "error", err)
		http.Error(w, "failed to read feed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) gangsterFromPath(w http.ResponseWriter, r *http.Request) (models.Gangster, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return models.Gangster{}, false
	}
	g, found := s.ledger.Store().GetGangster(id)
	if !found {
		http.Error(w, "gangster not found", http.StatusNotFound)
		return models.Gangster{}, false
	}
	return g, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func clientKey(r *http.Request) string {
	if v := r.Header.Get("X-Client-ID"); v != "" {
		return v
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
