// Package api serves a live view of a running simulation over HTTP.
// GET endpoints are public and read-only. POST /api/v1/stop requires the
// admin bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/roomsim/internal/agents"
	"github.com/talgya/roomsim/internal/engine"
	"github.com/talgya/roomsim/internal/metrics"
	"github.com/talgya/roomsim/internal/world"
)

// Server publishes snapshots of a simulation and serves them over HTTP.
// Publish runs on the simulation goroutine; handlers only read the last
// published snapshot.
type Server struct {
	Port     int
	AdminKey string             // Bearer token for POST endpoints. Empty = POST disabled.
	Metrics  *metrics.Collector // Served on /metrics when set.
	Stop     func()             // Called by POST /api/v1/stop.

	// Requests per minute per client on GET endpoints.
	RateLimit int

	mu   sync.RWMutex
	snap snapshot

	srv *http.Server
}

type snapshot struct {
	RunID       string
	Time        float64
	Running     bool
	Rows, Cols  int
	Entry       world.Location
	Grid        []string
	People      int
	Composition [agents.NumHealthTypes]int
	Stats       agents.Stats
	Population  engine.Population

	// Prefixes of the simulation's append-only logs. Elements below the
	// published length are never rewritten.
	Events  []engine.Event
	History []engine.Sample
}

// Publish captures the state of sim. It must be called from the goroutine
// running sim, typically from Simulation.OnRender.
func (s *Server) Publish(sim *engine.Simulation) {
	room := sim.Room
	grid := make([][]rune, room.Rows())
	for i := range grid {
		grid[i] = []rune(strings.Repeat(".", room.Cols()))
	}
	room.Each(func(loc world.Location, p *agents.Person) {
		grid[loc.Row][loc.Col] = p.Health.Glyph()
	})
	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = string(row)
	}

	snap := snapshot{
		RunID:       sim.RunID.String(),
		Time:        sim.Now(),
		Running:     sim.Engine.Running(),
		Rows:        room.Rows(),
		Cols:        room.Cols(),
		Entry:       room.Entry(),
		Grid:        lines,
		People:      len(sim.People),
		Composition: sim.Composition(),
		Stats:       sim.Stats,
		Population:  sim.Population,
		Events:      sim.Events[:len(sim.Events):len(sim.Events)],
		History:     sim.History[:len(sim.History):len(sim.History)],
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	if s.Metrics != nil {
		s.Metrics.Observe(sim)
	}
}

func (s *Server) current() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	rate := s.RateLimit
	if rate <= 0 {
		rate = 120
	}
	limiter := NewRateLimiter(rate, time.Minute)
	public := func(h http.HandlerFunc) http.HandlerFunc {
		return RateLimitMiddleware(limiter, getOnly(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", public(s.handleStatus))
	mux.HandleFunc("/api/v1/room", public(s.handleRoom))
	mux.HandleFunc("/api/v1/events", public(s.handleEvents))
	mux.HandleFunc("/api/v1/history", public(s.handleHistory))
	mux.HandleFunc("/api/v1/stop", s.adminOnly(s.handleStop))
	if s.Metrics != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))
	}
	return mux
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "metrics", s.Metrics != nil)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops a started server, waiting for requests in flight.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && token == s.AdminKey
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no ROOMSIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	composition := make(map[string]int, agents.NumHealthTypes)
	for h := agents.HealthType(0); int(h) < agents.NumHealthTypes; h++ {
		composition[h.String()] = snap.Composition[h]
	}

	writeJSON(w, map[string]any{
		"run_id":      snap.RunID,
		"time":        snap.Time,
		"sim_time":    engine.SimTime(snap.Time),
		"running":     snap.Running,
		"people":      snap.People,
		"composition": composition,
		"population":  snap.Population,
		"stats":       snap.Stats,
		"infections_share": map[string]float64{
			"unvaccinated": snap.Stats.Share(snap.Stats.UnvaccinatedInfections),
			"vaccinated":   snap.Stats.Share(snap.Stats.VaccinatedInfections),
		},
	})
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	writeJSON(w, map[string]any{
		"rows":  snap.Rows,
		"cols":  snap.Cols,
		"entry": map[string]int{"row": snap.Entry.Row, "col": snap.Entry.Col},
		"grid":  snap.Grid,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.current().Events
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	out := events[start:]
	if out == nil {
		out = []engine.Event{}
	}
	writeJSON(w, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history := s.current().History
	if history == nil {
		history = []engine.Sample{}
	}
	writeJSON(w, history)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if s.Stop == nil {
		http.Error(w, "no run to stop", http.StatusServiceUnavailable)
		return
	}
	slog.Info("stop requested over HTTP", "remote", clientIP(r))
	s.Stop()
	writeJSONStatus(w, http.StatusAccepted, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
