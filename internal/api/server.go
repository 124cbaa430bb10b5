// Package api provides the HTTP API for US state data and fun facts.
// GET endpoints read the catalog merged with stored fun facts.
// POST, PATCH and DELETE on /states/{state}/funfact edit a state's list.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/talgya/us-states/internal/catalog"
	"github.com/talgya/us-states/internal/entropy"
	"github.com/talgya/us-states/internal/funfacts"
	"github.com/talgya/us-states/internal/states"
)

// Server serves the states API over HTTP.
type Server struct {
	Catalog     *catalog.Catalog
	Store       funfacts.Store
	Entropy     entropy.Source // Nil uses entropy.Default.
	Port        int
	CORSOrigins []string
	Limiter     *RateLimiter // Nil disables rate limiting on mutations.

	mutator *funfacts.Mutator
}

// Handler builds the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	if s.mutator == nil {
		s.mutator = funfacts.NewMutator(s.Store)
	}

	mutating := func(h http.HandlerFunc) http.HandlerFunc {
		if s.Limiter == nil {
			return h
		}
		return RateLimitMiddleware(s.Limiter, h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /states", s.handleStates)
	mux.HandleFunc("GET /states/{$}", s.handleStates)
	mux.HandleFunc("GET /states/{state}", s.withState(s.handleState))
	mux.HandleFunc("GET /states/{state}/funfact", s.withState(s.handleFunFact))
	mux.HandleFunc("POST /states/{state}/funfact", mutating(s.withState(s.handleCreateFunFacts)))
	mux.HandleFunc("PATCH /states/{state}/funfact", mutating(s.withState(s.handleUpdateFunFact)))
	mux.HandleFunc("DELETE /states/{state}/funfact", mutating(s.withState(s.handleDeleteFunFact)))
	mux.HandleFunc("GET /states/{state}/{property}", s.withState(s.handleProperty))

	// Everything else, including known paths with other methods.
	mux.HandleFunc("/", handleNotFound)

	return requestLogger(corsMiddleware(s.CORSOrigins, mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "rate_limited", s.Limiter != nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// stateHandler receives the catalog entry for a validated {state} path value.
type stateHandler func(w http.ResponseWriter, r *http.Request, entry catalog.Entry)

// withState rejects unknown state codes before the wrapped handler runs.
func (s *Server) withState(next stateHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := s.Catalog.Lookup(r.PathValue("state"))
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid state abbreviation parameter")
			return
		}
		next(w, r, entry)
	}
}

// loadRecord merges entry with its stored fun facts, if any.
func (s *Server) loadRecord(ctx context.Context, entry catalog.Entry) (states.Record, error) {
	rec, err := s.Store.FindOne(ctx, entry.Code)
	if errors.Is(err, funfacts.ErrRecordNotFound) {
		return states.Merge(entry, nil), nil
	}
	if err != nil {
		return states.Record{}, err
	}
	return states.Merge(entry, rec), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.Store.(funfacts.Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			slog.Error("store unreachable", "request_id", w.Header().Get(requestIDHeader), "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"states": s.Catalog.Len(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"states": s.Catalog.Len(),
	})
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	contig, err := states.ParseContig(r.URL.Query().Get("contig"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "contig must be true or false")
		return
	}

	if contig != states.ContigAny {
		writeJSON(w, http.StatusOK, states.Filtered(s.Catalog, contig))
		return
	}

	recs, err := s.Store.FindAll(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, states.MergeAll(s.Catalog.Entries(), recs))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, entry catalog.Entry) {
	rec, err := s.loadRecord(r.Context(), entry)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleFunFact(w http.ResponseWriter, r *http.Request, entry catalog.Entry) {
	rec, err := s.loadRecord(r.Context(), entry)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	fact, err := states.PickFunFact(rec, s.Entropy)
	if err != nil {
		writeDomainError(w, r, entry, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"funfact": fact})
}

func (s *Server) handleProperty(w http.ResponseWriter, r *http.Request, entry catalog.Entry) {
	raw := r.PathValue("property")
	if raw == "" {
		writeDomainError(w, r, entry, states.ErrPropertyRequired)
		return
	}

	rec, err := s.loadRecord(r.Context(), entry)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	prop, err := states.Resolve(rec, raw)
	if err != nil {
		writeDomainError(w, r, entry, err)
		return
	}
	writeJSON(w, http.StatusOK, prop.JSON())
}

func (s *Server) handleCreateFunFacts(w http.ResponseWriter, r *http.Request, entry catalog.Entry) {
	var req appendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	facts, err := req.validate()
	if err != nil {
		writeDomainError(w, r, entry, err)
		return
	}

	saved, err := s.mutator.Append(r.Context(), entry.Code, facts)
	if err != nil {
		writeDomainError(w, r, entry, err)
		return
	}
	slog.Info("fun facts added", "state", entry.Code, "added", len(facts), "total", len(saved.Funfacts))
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateFunFact(w http.ResponseWriter, r *http.Request, entry catalog.Entry) {
	var req updateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	index, fact, err := req.validate()
	if err != nil {
		writeDomainError(w, r, entry, err)
		return
	}

	saved, err := s.mutator.Replace(r.Context(), entry.Code, index, fact)
	if err != nil {
		writeDomainError(w, r, entry, err)
		return
	}
	slog.Info("fun fact replaced", "state", entry.Code, "index", index)
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteFunFact(w http.ResponseWriter, r *http.Request, entry catalog.Entry) {
	var req deleteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	index, err := req.validate()
	if err != nil {
		writeDomainError(w, r, entry, err)
		return
	}

	saved, err := s.mutator.Delete(r.Context(), entry.Code, index)
	if err != nil {
		writeDomainError(w, r, entry, err)
		return
	}
	slog.Info("fun fact deleted", "state", entry.Code, "index", index, "remaining", len(saved.Funfacts))
	writeJSON(w, http.StatusOK, saved)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Warn("write response failed", "status", status, "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
