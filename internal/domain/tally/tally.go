// Package tally implements the leaderboard aggregation pass.
//
// One pass takes an unordered collection of vote records, resolves
// resubmission conflicts per (evaluator, presenter) pair with
// last-writer-wins, and produces a deterministically ranked list of
// presenter summaries. A pass owns no state; it is recomputed in full
// on every read request.
package tally

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/z-labo/voteboard/internal/domain/model"
)

// Aggregator computes ranked presenter summaries from vote records.
type Aggregator struct {
	clock func() time.Time
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source used for the lastUpdated stamp.
func WithClock(clock func() time.Time) Option {
	return func(a *Aggregator) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// New constructs an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// pairKey identifies one evaluator's vote for one presenter.
type pairKey struct {
	evaluator string
	presenter string
}

// survivor is the winning entry for a pair after conflict resolution.
type survivor struct {
	ts            string
	score         model.Score
	comment       string
	presenterName string
}

// Aggregate resolves conflicts and builds the ranked summary.
//
// Conflict rule: within a pair, the entry from the record with the
// lexicographically greatest effective timestamp wins; a strictly greater
// timestamp replaces the current survivor, an equal or lesser one does not.
// ISO-8601 timestamps make lexicographic order time order, so comparison
// semantics must stay string-based.
func (a *Aggregator) Aggregate(ctx context.Context, records []model.VoteRecord) model.AggregationResult {
	latest := make(map[pairKey]survivor)
	// Pair insertion order keeps summary details and name resolution
	// deterministic for a fixed input ordering.
	order := make([]pairKey, 0, len(records))
	evaluators := make(map[string]struct{})

	for _, rec := range records {
		if rec.EvaluatorName == "" {
			continue
		}
		evaluators[rec.EvaluatorName] = struct{}{}
		ts := rec.EffectiveTimestamp()

		for _, entry := range rec.Results {
			if entry.PresenterID == "" {
				continue
			}
			key := pairKey{evaluator: rec.EvaluatorName, presenter: entry.PresenterID}
			prev, seen := latest[key]
			if !seen {
				order = append(order, key)
			}
			if !seen || ts > prev.ts {
				latest[key] = survivor{
					ts:            ts,
					score:         entry.Score,
					comment:       entry.Comment,
					presenterName: entry.Presenter,
				}
			}
		}
	}

	// Per-presenter accumulation. Entries whose score could not be coerced
	// are excluded; a presenter with no coercible score at all is omitted
	// from the output entirely.
	summaries := make(map[string]*model.PresenterSummary)
	presenterOrder := make([]string, 0, len(order))

	for _, key := range order {
		win := latest[key]
		if !win.score.Valid {
			continue
		}

		p, ok := summaries[key.presenter]
		if !ok {
			p = &model.PresenterSummary{
				PresenterID: key.presenter,
				Presenter:   win.presenterName,
			}
			summaries[key.presenter] = p
			presenterOrder = append(presenterOrder, key.presenter)
		}
		// Most recently seen non-empty display name wins.
		if win.presenterName != "" {
			p.Presenter = win.presenterName
		}

		p.TotalScore += win.score.Value
		p.VoteCount++
		p.Details = append(p.Details, model.VoteDetail{
			EvaluatorName: key.evaluator,
			Score:         win.score.Value,
			Comment:       win.comment,
			Timestamp:     win.ts,
		})
	}

	ranked := make([]model.PresenterSummary, 0, len(presenterOrder))
	for _, pid := range presenterOrder {
		p := summaries[pid]
		if p.VoteCount > 0 {
			p.AvgScore = round3(p.TotalScore / float64(p.VoteCount))
		}
		ranked = append(ranked, *p)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AvgScore != ranked[j].AvgScore {
			return ranked[i].AvgScore > ranked[j].AvgScore
		}
		if ranked[i].VoteCount != ranked[j].VoteCount {
			return ranked[i].VoteCount > ranked[j].VoteCount
		}
		return ranked[i].PresenterID < ranked[j].PresenterID
	})

	return model.AggregationResult{
		OK:              true,
		LastUpdated:     a.clock().UTC().Format(time.RFC3339Nano),
		AllPresenters:   ranked,
		TotalEvaluators: len(evaluators),
	}
}

// round3 rounds to three decimal places, half away from zero.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
