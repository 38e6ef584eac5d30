// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// RootHandler answers on "/" for health checks and stray submissions.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET, POST and OPTIONS on "/". OPTIONS passes CORS
// preflight; GET serves external health checks; a POST here is a client
// using the wrong path and gets pointed at /submit_vote.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	case http.MethodPost:
		writeJSON(w, http.StatusBadRequest, aggregateError{
			OK:    false,
			Error: "POST / is not supported. Use /submit_vote",
		})
	default:
		http.NotFound(w, r)
	}
}
