package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/guptam/altimeter/pkg/artifact"
	"github.com/guptam/altimeter/pkg/encode"
	"github.com/guptam/altimeter/pkg/graphcheck"
	"github.com/guptam/altimeter/pkg/logging"
	"github.com/guptam/altimeter/pkg/metrics"
	"github.com/guptam/altimeter/pkg/model"
	"github.com/guptam/altimeter/pkg/pubsub"
	"github.com/guptam/altimeter/pkg/rdfgraph"
	"github.com/guptam/altimeter/pkg/resource"
)

// ErrNotLoaded is returned while no graph has been built yet.
var ErrNotLoaded = errors.New("graph not loaded")

// Snapshot is one built graph. A snapshot is never modified after it is
// published, so handlers read it without locking.
type Snapshot struct {
	Artifact *artifact.Artifact
	LPG      *model.Graph
	RDF      *rdfgraph.Graph
	Check    *graphcheck.Report
	Summary  encode.Summary
	Built    time.Time
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	publisher *pubsub.SSEPublisher
	namespace rdfgraph.Namespace
	syntax    rdfgraph.Syntax
	checkOpts []graphcheck.Option

	mu   sync.RWMutex
	snap *Snapshot
}

// NewServer creates a new web server that encodes RDF under ns and serves it
// in syntax unless a request asks for another.
func NewServer(ns rdfgraph.Namespace, syntax rdfgraph.Syntax, checkOpts ...graphcheck.Option) *Server {
	// New subscribers see the current state first.
	publisher := pubsub.NewSSEPublisher(pubsub.Retain(pubsub.TopicGraphStatus, 1))

	s := &Server{
		router:    mux.NewRouter(),
		publisher: publisher,
		namespace: ns,
		syntax:    syntax,
		checkOpts: checkOpts,
	}
	s.setupRoutes()
	return s
}

// Publisher returns the server's event publisher.
func (s *Server) Publisher() pubsub.Publisher {
	return s.publisher
}

// PublishStatus publishes a graph status event. Failures are logged.
func (s *Server) PublishStatus(status pubsub.GraphStatus) {
	if err := pubsub.PublishStatus(s.publisher, status); err != nil {
		logging.Warn("failed to publish graph status", "state", status.State, "error", err)
	}
}

// Load encodes a in both formats, checks it and makes it the served snapshot.
// On failure the previous snapshot stays in place.
func (s *Server) Load(a *artifact.Artifact) error {
	s.PublishStatus(pubsub.GraphStatus{
		State:     pubsub.StateEncoding,
		Message:   "encoding graph",
		Artifact:  a.Name,
		Resources: len(a.Resources),
		Errors:    len(a.Errors),
	})

	rdfGraph, err := encode.EncodeRDF(a.Resources, s.namespace)
	if err != nil {
		s.PublishStatus(pubsub.GraphStatus{State: pubsub.StateFailed, Message: err.Error(), Artifact: a.Name})
		return fmt.Errorf("failed to encode rdf: %w", err)
	}
	lpg := encode.EncodeLPG(a.Resources)

	snap := &Snapshot{
		Artifact: a,
		LPG:      lpg,
		RDF:      rdfGraph,
		Check:    graphcheck.Check(lpg, s.checkOpts...),
		Summary:  encode.Summarize(a.Resources),
		Built:    time.Now(),
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	logging.Info("graph ready",
		"artifact", a.Name,
		"resources", len(a.Resources),
		"triples", rdfGraph.Len(),
		"vertices", len(lpg.Vertices),
		"edges", len(lpg.Edges),
	)
	s.PublishStatus(pubsub.GraphStatus{
		State:     pubsub.StateReady,
		Message:   "graph ready",
		Artifact:  a.Name,
		Resources: len(a.Resources),
		Errors:    len(a.Errors),
	})
	return nil
}

// Snapshot returns the served snapshot.
func (s *Server) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrNotLoaded
	}
	return s.snap, nil
}

// Handler returns the HTTP handler with request logging.
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/graph_status", s.handleSubscribeGraphStatus).Methods("GET")

	s.router.HandleFunc("/api/resources", s.handleResources).Methods("GET")
	s.router.HandleFunc("/api/summary", s.handleSummary).Methods("GET")
	s.router.HandleFunc("/api/graph/lpg", s.handleLPG).Methods("GET")
	s.router.HandleFunc("/api/graph/rdf", s.handleRDF).Methods("GET")
	s.router.HandleFunc("/api/check", s.handleCheck).Methods("GET")
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	s.router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods("GET")
}

func (s *Server) handleSubscribeGraphStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS support
	pubsub.Stream(w, r, s.publisher, pubsub.TopicGraphStatus)
}

// snapshot fetches the current snapshot or answers 503.
func (s *Server) snapshot(w http.ResponseWriter) (*Snapshot, bool) {
	snap, err := s.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return nil, false
	}
	return snap, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.WarnContext(r.Context(), "failed to write response", "error", err)
	}
}

// handleResources lists resources, optionally filtered by ?type= and ?id=.
func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	typ := r.URL.Query().Get("type")
	id := r.URL.Query().Get("id")

	out := make([]resource.Resource, 0, len(snap.Artifact.Resources))
	for _, res := range snap.Artifact.Resources {
		if typ != "" && res.Type != typ {
			continue
		}
		if id != "" && res.ID != id {
			continue
		}
		out = append(out, res)
	}
	if id != "" && len(out) == 0 {
		http.Error(w, fmt.Sprintf("resource not found: %s", id), http.StatusNotFound)
		return
	}
	writeJSON(w, r, out)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, r, map[string]any{
		"name":       snap.Artifact.Name,
		"version":    snap.Artifact.Version,
		"account_id": snap.Artifact.AccountID,
		"built":      snap.Built.UTC().Format(time.RFC3339),
		"resources":  snap.Summary.Resources,
		"types":      snap.Summary.Types,
		"links":      snap.Summary.Links,
		"vertices":   snap.LPG.LabelCounts(),
		"errors":     len(snap.Artifact.Errors),
	})
}

// handleLPG serves the property graph, or with ?id= one vertex and its
// outgoing edges.
func (s *Server) handleLPG(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, r, snap.LPG)
		return
	}
	v, found := snap.LPG.Vertex(id)
	if !found {
		http.Error(w, fmt.Sprintf("vertex not found: %s", id), http.StatusNotFound)
		return
	}
	writeJSON(w, r, map[string]any{"vertex": v, "edges": snap.LPG.EdgesFrom(id)})
}

// handleRDF serialises the triple store; ?syntax= overrides the default.
func (s *Server) handleRDF(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	syntax := s.syntax
	if q := r.URL.Query().Get("syntax"); q != "" {
		parsed, err := rdfgraph.ParseSyntax(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		syntax = parsed
	}
	w.Header().Set("Content-Type", syntax.ContentType())
	if err := snap.RDF.Encode(w, syntax); err != nil {
		logging.WarnContext(r.Context(), "failed to write rdf", "error", err)
	}
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, r, snap.Check)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Snapshot(); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// Start serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logging.Logger().Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Closing the publisher ends open event streams so Shutdown can finish
	s.publisher.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	return nil
}
