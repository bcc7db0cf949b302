package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/quetzaldb/quetzal/internal/config"
	"github.com/quetzaldb/quetzal/internal/executor"
	"github.com/quetzaldb/quetzal/internal/iter"
	"github.com/quetzaldb/quetzal/internal/logical"
	"github.com/quetzaldb/quetzal/internal/nt"
	"github.com/quetzaldb/quetzal/internal/plan"
	"github.com/quetzaldb/quetzal/internal/query"
	"github.com/quetzaldb/quetzal/internal/store"
)

// Server exposes the store over HTTP: triple-pattern queries as SPARQL TSV,
// N-Triples ingestion, and store statistics. Query execution runs on a
// bounded worker pool so a burst of requests cannot start an unbounded
// number of index scans.
type Server struct {
	store *store.Store
	log   *zap.Logger
	pool  *ants.Pool
	web   *http.Server
}

func New(st *store.Store, log *zap.Logger, cfg config.ServerConfig) (*Server, error) {
	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	s := &Server{store: st, log: log, pool: pool}
	mux := http.NewServeMux()
	mux.HandleFunc("/match", s.handleMatch)
	mux.HandleFunc("/data", s.handleData)
	mux.HandleFunc("/stats", s.handleStats)
	s.web = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Start serves until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info("server listening", zap.String("addr", s.web.Addr))
	err := s.web.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	defer s.pool.Release()
	return s.web.Shutdown(ctx)
}

// handleMatch answers GET /match?s=&p=&o=. Each parameter is a term in
// N-Triples syntax; an absent or empty parameter is a variable. The result
// is SPARQL TSV over the variable positions, in s/p/o order.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqID := uuid.NewString()
	log := s.log.With(zap.String("request_id", reqID))
	started := time.Now()

	var (
		terms    [3]logical.PatternTerm
		varNames []string
		known    = true
	)
	for i, name := range []string{"s", "p", "o"} {
		raw := strings.TrimSpace(r.URL.Query().Get(name))
		if raw == "" {
			terms[i] = logical.VarTerm(query.VarId(len(varNames)), name)
			varNames = append(varNames, name)
			continue
		}
		term, err := nt.ParseTerm(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("parameter %s: %v", name, err), http.StatusBadRequest)
			return
		}
		oid, found, err := s.store.EncodeTermReadOnly(term)
		if err != nil {
			log.Error("encoding term", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !found {
			known = false
		}
		terms[i] = logical.ConstTerm(oid)
	}

	projection := make([]query.VarId, len(varNames))
	for i := range projection {
		projection[i] = query.VarId(i)
	}

	var (
		rows uint64
		err  error
	)
	done := make(chan struct{})
	submitErr := s.pool.Submit(func() {
		defer close(done)
		rows, err = s.runMatch(w, varNames, terms, projection, known)
	})
	if submitErr != nil {
		log.Warn("worker pool saturated", zap.Error(submitErr))
		http.Error(w, "server busy", http.StatusServiceUnavailable)
		return
	}
	<-done

	if err != nil {
		log.Error("query failed", zap.Error(err))
		return
	}
	log.Info("query served",
		zap.Uint64("rows", rows),
		zap.Duration("elapsed", time.Since(started)))
}

func (s *Server) runMatch(w http.ResponseWriter, varNames []string,
	terms [3]logical.PatternTerm, projection []query.VarId, known bool) (uint64, error) {
	ctx := query.NewQueryContext(varNames, s.store.Dictionary(), s.store.Catalog(), store.NewMemoryPathManager())

	var root iter.BindingIter
	if known {
		pattern := logical.NewTriplePattern(terms[0], terms[1], terms[2])
		compiled, err := plan.NewPlanner(ctx, s.store.Triples()).Compile(pattern)
		if err != nil {
			return 0, err
		}
		root = compiled
	} else {
		// A constant the store has never seen matches nothing.
		root = iter.NewEmpty(projection)
	}

	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	return executor.NewSelectExecutor(ctx, root, projection).Run(w)
}

// handleData ingests an N-Triples request body.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	log := s.log.With(zap.String("request_id", uuid.NewString()))

	triples, err := nt.ParseAll(io.LimitReader(r.Body, 256<<20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.InsertTriples(triples); err != nil {
		log.Error("insert failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	log.Info("triples ingested", zap.Int("count", len(triples)))
	writeJSON(w, map[string]any{"inserted": len(triples)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	count, err := s.store.Count()
	if err != nil {
		s.log.Error("reading triple count", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"triples": count})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
