// Package httpapi serves catalyst charts as JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/jaymes17/catalyst-chart/internal/engine"
	"github.com/jaymes17/catalyst-chart/internal/layout"
	"github.com/jaymes17/catalyst-chart/internal/model"
	"github.com/jaymes17/catalyst-chart/internal/watchlist"
)

const (
	minFrameSide = 100.0
	maxFrameSide = 8000.0
)

// Server serves the chart HTTP API.
type Server struct {
	engine       *engine.Engine
	sessions     *engine.Sessions
	watchlist    *watchlist.Manager
	defaultRange model.Range
	defaultFrame layout.Frame
}

// NewServer creates a chart server. wl may be nil to disable the watchlist routes.
func NewServer(e *engine.Engine, wl *watchlist.Manager, defaultRange model.Range, frame layout.Frame) *Server {
	if defaultRange == "" {
		defaultRange = model.Range5Y
	}
	return &Server{
		engine:       e,
		sessions:     engine.NewSessions(e),
		watchlist:    wl,
		defaultRange: defaultRange,
		defaultFrame: frame,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/chart", s.handleChart)
	if s.watchlist != nil {
		mux.HandleFunc("GET /api/watchlist", s.handleGetWatchlist)
		mux.HandleFunc("PUT /api/watchlist/{symbol}", s.handleAddWatchlist)
		mux.HandleFunc("DELETE /api/watchlist/{symbol}", s.handleRemoveWatchlist)
	}
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chartQuery struct {
	symbol  string
	rng     model.Range
	frame   layout.Frame
	view    *layout.Viewport
	session string
}

func (s *Server) parseChartQuery(r *http.Request) (chartQuery, error) {
	q := r.URL.Query()
	cq := chartQuery{
		symbol:  strings.ToUpper(strings.TrimSpace(q.Get("symbol"))),
		rng:     s.defaultRange,
		frame:   s.defaultFrame,
		session: q.Get("session"),
	}
	if cq.symbol == "" {
		return cq, engine.ErrEmptySymbol
	}
	if v := q.Get("range"); v != "" {
		rng, err := model.ParseRange(v)
		if err != nil {
			return cq, err
		}
		cq.rng = rng
	}

	var err error
	if cq.frame.Width, err = floatParam(q.Get("width"), s.defaultFrame.Width); err != nil {
		return cq, fmt.Errorf("width: %w", err)
	}
	if cq.frame.Height, err = floatParam(q.Get("height"), s.defaultFrame.Height); err != nil {
		return cq, fmt.Errorf("height: %w", err)
	}
	for _, side := range []float64{cq.frame.Width, cq.frame.Height} {
		if side < minFrameSide || side > maxFrameSide {
			return cq, fmt.Errorf("frame size must be between %.0f and %.0f", minFrameSide, maxFrameSide)
		}
	}

	minV, maxV := q.Get("min"), q.Get("max")
	if minV != "" || maxV != "" {
		if minV == "" || maxV == "" {
			return cq, errors.New("min and max must be given together")
		}
		lo, err := floatParam(minV, 0)
		if err != nil {
			return cq, fmt.Errorf("min: %w", err)
		}
		hi, err := floatParam(maxV, 0)
		if err != nil {
			return cq, fmt.Errorf("max: %w", err)
		}
		if hi <= lo {
			return cq, errors.New("max must be greater than min")
		}
		cq.view = &layout.Viewport{Min: lo, Max: hi}
	}
	return cq, nil
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	cq, err := s.parseChartQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.snapshot(r.Context(), cq)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[ERROR] chart %s %s: %v", cq.symbol, cq.rng, err)
		}
		writeError(w, status, err.Error())
		return
	}

	view := snap.FullView()
	if cq.view != nil {
		view = *cq.view
	}
	writeJSON(w, http.StatusOK, newChartResponse(snap, cq.frame, view))
}

// snapshot generates the requested chart. Within a session, a request for the
// symbol and range already shown reuses that snapshot, so zooming only re-runs
// layout; any other request supersedes the session's in-flight generation.
func (s *Server) snapshot(ctx context.Context, cq chartQuery) (*engine.Snapshot, error) {
	req := engine.Request{Symbol: cq.symbol, Range: cq.rng}
	if cq.session == "" {
		return s.engine.Generate(ctx, req)
	}
	sess := s.sessions.Get(cq.session)
	if last := sess.Last(); last != nil && last.Symbol == cq.symbol && last.Range == cq.rng {
		return last, nil
	}
	return sess.Generate(ctx, req)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrEmptySymbol):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.watchlist.List())
}

func (s *Server) handleAddWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.PathValue("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, engine.ErrEmptySymbol.Error())
		return
	}
	rng := s.defaultRange
	if v := r.URL.Query().Get("range"); v != "" {
		parsed, err := model.ParseRange(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		rng = parsed
	}
	added, err := s.watchlist.Add(symbol, rng)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]string{"symbol": symbol, "range": string(rng)})
}

func (s *Server) handleRemoveWatchlist(w http.ResponseWriter, r *http.Request) {
	removed, err := s.watchlist.Remove(r.PathValue("symbol"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "symbol is not watched")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func floatParam(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", v)
	}
	return f, nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
