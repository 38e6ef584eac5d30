// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// VoteRecord is one evaluator's stored submission. One blob per evaluator;
// a resubmission overwrites the previous one.
type VoteRecord struct {
	EvaluatorName string `json:"evaluatorName"`
	// ServerReceivedAt is stamped by the server at accept time.
	ServerReceivedAt string `json:"serverReceivedAt,omitempty"`
	// Timestamp is a client-supplied fallback for legacy records that
	// predate server-side stamping.
	Timestamp string        `json:"timestamp,omitempty"`
	Results   []ResultEntry `json:"results"`

	// RawResults preserves the results array exactly as stored, for the
	// raw passthrough on the results endpoint. Populated by UnmarshalJSON.
	RawResults json.RawMessage `json:"-"`
}

// EffectiveTimestamp resolves the timestamp used for conflict ordering:
// serverReceivedAt first, client timestamp as fallback, empty string last.
// Timestamps are ISO-8601 strings and compare lexicographically in time order.
func (r VoteRecord) EffectiveTimestamp() string {
	if r.ServerReceivedAt != "" {
		return r.ServerReceivedAt
	}
	return r.Timestamp
}

// voteRecordAlias avoids recursive UnmarshalJSON.
type voteRecordAlias VoteRecord

// UnmarshalJSON decodes a stored record, additionally capturing the verbatim
// results array bytes.
func (r *VoteRecord) UnmarshalJSON(data []byte) error {
	var alias voteRecordAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var shadow struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	alias.RawResults = shadow.Results
	*r = VoteRecord(alias)
	return nil
}

// ResultEntry is one presenter rated by one evaluator within one submission.
type ResultEntry struct {
	PresenterID string `json:"presenterId"`
	// Presenter is an optional display name; it may differ across
	// submissions and the most recently seen non-empty value wins.
	Presenter string `json:"presenter,omitempty"`
	Score     Score  `json:"score"`
	Comment   string `json:"comment,omitempty"`
}

// Score is a vote score as read back from storage. Write-time validation
// only admits integers in [0,5], but stored blobs may predate validation,
// so reads accept JSON numbers and numeric strings and mark anything else
// invalid rather than failing the record.
type Score struct {
	Value float64
	Valid bool
}

// UnmarshalJSON coerces numbers and numeric strings; null, non-numeric
// strings and other shapes yield an invalid (excluded) score.
func (s *Score) UnmarshalJSON(data []byte) error {
	s.Value, s.Valid = 0, false

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		s.Value, s.Valid = num, true
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			s.Value, s.Valid = v, true
		}
		return nil
	}
	return nil
}

// MarshalJSON renders a valid score as a number and an invalid one as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// VoteDetail is one evaluator's surviving contribution to a presenter.
type VoteDetail struct {
	EvaluatorName string  `json:"evaluatorName"`
	Score         float64 `json:"score"`
	Comment       string  `json:"comment"`
	Timestamp     string  `json:"timestamp"`
}

// PresenterSummary is the per-presenter aggregate, rebuilt on every pass.
type PresenterSummary struct {
	PresenterID string       `json:"presenterId"`
	Presenter   string       `json:"presenter"`
	TotalScore  float64      `json:"totalScore"`
	VoteCount   int          `json:"voteCount"`
	AvgScore    float64      `json:"avgScore"`
	Details     []VoteDetail `json:"details"`
}

// RawVote is the lightly normalized passthrough form of a stored record.
type RawVote struct {
	EvaluatorName string          `json:"evaluatorName"`
	Timestamp     string          `json:"timestamp"`
	Results       json.RawMessage `json:"results"`
}

// Receipt acknowledges one persisted submission.
type Receipt struct {
	// Path is the object path the record was stored under.
	Path string
	// ReceiptID uniquely identifies this accepted submission in logs.
	ReceiptID string
}

// AggregationResult is the full response of one aggregation pass.
type AggregationResult struct {
	OK              bool               `json:"ok"`
	LastUpdated     string             `json:"lastUpdated"`
	AllPresenters   []PresenterSummary `json:"all_presenters"`
	TotalEvaluators int                `json:"totalEvaluators"`
	RawVotes        []RawVote          `json:"rawVotes,omitempty"`
}
