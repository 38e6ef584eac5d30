// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// ResultsHandler handles aggregation requests.
type ResultsHandler struct {
	deps Dependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps Dependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandleGetResults handles GET /api/results?raw= requests.
func (h *ResultsHandler) HandleGetResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	includeRaw := parseRawFlag(r.URL.Query().Get("raw"))

	result, err := h.deps.Results(r.Context(), includeRaw)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, aggregateError{
			OK:     false,
			Error:  "aggregate_failed",
			Detail: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseRawFlag accepts the truthy spellings used by existing clients.
func parseRawFlag(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}
