// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/z-labo/voteboard/internal/domain/submission"
)

// maxSubmissionBytes bounds one submission body.
const maxSubmissionBytes = 1 << 20

// VotesHandler handles vote submissions.
type VotesHandler struct {
	deps Dependencies
}

// NewVotesHandler creates a new votes handler.
func NewVotesHandler(deps Dependencies) *VotesHandler {
	return &VotesHandler{deps: deps}
}

// HandleSubmitVote handles POST /submit_vote requests.
func (h *VotesHandler) HandleSubmitVote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSubmissionBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, clientError{Error: "failed to read request body"})
		return
	}

	receipt, err := h.deps.SubmitVote(r.Context(), body)
	if err != nil {
		var ve *submission.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, clientError{Error: ve.Reason})
			return
		}
		writeJSON(w, http.StatusInternalServerError, clientError{
			Error:  "vote upload failed",
			Detail: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		OK:        true,
		Path:      receipt.Path,
		ReceiptID: receipt.ReceiptID,
	})
}
