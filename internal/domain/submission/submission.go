// Package submission decodes and validates incoming vote payloads.
//
// Validation is a pure, ordered check over the decoded JSON value: the first
// violated rule short-circuits with a single human-readable reason. Unknown
// fields are allowed and pass through to storage untouched.
package submission

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Submission is an accepted vote payload, ready to be stamped and persisted.
type Submission struct {
	// EvaluatorName is the trimmed evaluator identity; it doubles as the
	// storage key.
	EvaluatorName string

	fields map[string]json.RawMessage
}

// Decode parses and validates a raw request body. On failure it returns a
// *ValidationError whose message is safe to surface to the client.
func Decode(data []byte) (*Submission, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, errNotObject
	}

	nameRaw, ok := fields["evaluatorName"]
	if !ok {
		return nil, errEvaluatorName
	}
	var name string
	if err := json.Unmarshal(nameRaw, &name); err != nil || strings.TrimSpace(name) == "" {
		return nil, errEvaluatorName
	}

	resultsRaw, ok := fields["results"]
	if !ok {
		return nil, errResults
	}
	var results []json.RawMessage
	if err := json.Unmarshal(resultsRaw, &results); err != nil || len(results) == 0 {
		return nil, errResults
	}

	for _, entryRaw := range results {
		if err := validateEntry(entryRaw); err != nil {
			return nil, err
		}
	}

	return &Submission{
		EvaluatorName: strings.TrimSpace(name),
		fields:        fields,
	}, nil
}

func validateEntry(entryRaw json.RawMessage) error {
	var entry map[string]json.RawMessage
	if err := json.Unmarshal(entryRaw, &entry); err != nil || entry == nil {
		return errResultNotObject
	}

	pidRaw, ok := entry["presenterId"]
	if !ok {
		return errPresenterID
	}
	var pid string
	if err := json.Unmarshal(pidRaw, &pid); err != nil || strings.TrimSpace(pid) == "" {
		return errPresenterID
	}

	scoreRaw, ok := entry["score"]
	if !ok {
		return errScoreMissing
	}
	// Strict integer check: floats, numeric strings and other shapes are
	// rejected at write time even though reads are lenient.
	var score int64
	if err := json.Unmarshal(scoreRaw, &score); err != nil || score < 0 || score > 5 {
		return errScoreRange
	}

	if commentRaw, ok := entry["comment"]; ok {
		var comment *string
		if err := json.Unmarshal(commentRaw, &comment); err != nil {
			return errComment
		}
	}
	return nil
}

// Stamp records the server accept time on the submission.
func (s *Submission) Stamp(receivedAt string) {
	raw, _ := json.Marshal(receivedAt)
	s.fields["serverReceivedAt"] = json.RawMessage(raw)
}

// Render serializes the submission for storage: pretty-printed UTF-8 JSON
// with non-ASCII and HTML characters left unescaped. The output is the
// original payload plus any stamped fields.
func (s *Submission) Render() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.fields); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
