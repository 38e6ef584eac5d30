// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/z-labo/voteboard/internal/domain/model"
	"github.com/z-labo/voteboard/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SubmitVote validates and persists a raw submission body.
	SubmitVote(ctx context.Context, body []byte) (model.Receipt, error)

	// Results runs one aggregation pass over all stored records.
	Results(ctx context.Context, includeRaw bool) (model.AggregationResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	votesHandler   *VotesHandler
	resultsHandler *ResultsHandler
	rootHandler    *RootHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		votesHandler:   NewVotesHandler(deps),
		resultsHandler: NewResultsHandler(deps),
		rootHandler:    NewRootHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/submit_vote", MetricsMiddleware(s.votesHandler.HandleSubmitVote, "submit_vote"))
	mux.HandleFunc("/api/results", MetricsMiddleware(s.resultsHandler.HandleGetResults, "results"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/", s.rootHandler.HandleRoot)
}

// submitResponse acknowledges a persisted submission.
type submitResponse struct {
	OK        bool   `json:"ok"`
	Path      string `json:"path"`
	ReceiptID string `json:"receiptId"`
}

// clientError is the single-line failure shape for the write path.
type clientError struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// aggregateError is the failure shape for the read path; detail is meant
// for operators, not end users.
type aggregateError struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
