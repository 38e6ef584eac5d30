// Package app provides the core business service that implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/z-labo/voteboard/internal/adapters/blobstore"
	"github.com/z-labo/voteboard/internal/adapters/votes"
	"github.com/z-labo/voteboard/internal/domain/model"
	"github.com/z-labo/voteboard/internal/domain/submission"
	"github.com/z-labo/voteboard/internal/domain/tally"
	"github.com/z-labo/voteboard/pkg/logger"
	"github.com/z-labo/voteboard/pkg/metrics"
)

// Service wires the write path (validate, stamp, persist) and the read path
// (load, aggregate). It holds no mutable aggregation state: every read
// recomputes the leaderboard from the store.
type Service struct {
	store       blobstore.Store
	writer      *votes.Writer
	loader      *votes.Loader
	aggregator  *tally.Aggregator
	baseFolder  string
	maxRawVotes int
	clock       func() time.Time
	log         logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the blob store backing vote records.
func WithStore(store blobstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithBaseFolder prefixes the vote record namespace in the store.
func WithBaseFolder(folder string) Option {
	return func(s *Service) {
		s.baseFolder = folder
	}
}

// WithMaxRawVotes caps the rawVotes passthrough; 0 means no cap.
func WithMaxRawVotes(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxRawVotes = n
		}
	}
}

// WithClock overrides the time source used for accept stamps and the
// lastUpdated field.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service. Without options it runs on an in-memory store,
// which suits tests and local experiments.
func New(opts ...Option) *Service {
	s := &Service{
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = blobstore.NewMemoryStore()
	}
	if s.log == nil {
		s.log = logger.Get()
	}

	s.writer = votes.NewWriter(s.store,
		votes.WithWriterBaseFolder(s.baseFolder),
		votes.WithWriterClock(s.clock),
	)
	s.loader = votes.NewLoader(s.store,
		votes.WithLoaderBaseFolder(s.baseFolder),
		votes.WithLoaderLogger(s.log),
	)
	s.aggregator = tally.New(tally.WithClock(s.clock))
	return s
}

// SubmitVote validates body, stamps it with the server accept time, and
// persists it under the evaluator's key. Validation failures return a
// *submission.ValidationError before any store interaction; write failures
// wrap votes.ErrWrite and leave no partial state.
func (s *Service) SubmitVote(ctx context.Context, body []byte) (model.Receipt, error) {
	sub, err := submission.Decode(body)
	if err != nil {
		metrics.RecordValidationFailure()
		return model.Receipt{}, err
	}

	path, err := s.writer.Save(ctx, sub)
	if err != nil {
		s.log.Error(ctx, "vote record write failed",
			logger.String("evaluator", sub.EvaluatorName),
			logger.Error(err),
		)
		return model.Receipt{}, err
	}

	receipt := model.Receipt{
		Path:      path,
		ReceiptID: uuid.NewString(),
	}
	metrics.RecordVoteSubmitted()
	s.log.Info(ctx, "vote submitted",
		logger.String("evaluator", sub.EvaluatorName),
		logger.String("path", receipt.Path),
		logger.String("receipt_id", receipt.ReceiptID),
	)
	return receipt, nil
}

// Results runs one full aggregation pass over all stored records. With
// includeRaw it appends a lightly normalized passthrough of the loaded
// records for debugging and audit. Aggregation is all-or-nothing: a failed
// listing fails the whole call even though per-record load failures are
// tolerated inside the Loader.
func (s *Service) Results(ctx context.Context, includeRaw bool) (model.AggregationResult, error) {
	start := time.Now()

	records, err := s.loader.LoadAll(ctx)
	if err != nil {
		metrics.RecordAggregationError()
		return model.AggregationResult{}, err
	}

	result := s.aggregator.Aggregate(ctx, records)

	if includeRaw {
		result.RawVotes = rawVotes(records, s.maxRawVotes)
	}

	metrics.RecordAggregationPass()
	metrics.RecordAggregationDuration(float64(time.Since(start).Milliseconds()))
	metrics.UpdatePresenterCount(len(result.AllPresenters))
	metrics.UpdateEvaluatorCount(result.TotalEvaluators)
	return result, nil
}

// StoreObjectCount reports the number of vote record objects in the store.
// Used by the background metrics updater.
func (s *Service) StoreObjectCount(ctx context.Context) (int, error) {
	return s.loader.CountObjects(ctx)
}

// rawVotes builds the verbatim passthrough list: evaluator name, resolved
// timestamp, and the original results array bytes.
func rawVotes(records []model.VoteRecord, limit int) []model.RawVote {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	raw := make([]model.RawVote, 0, len(records))
	for _, rec := range records {
		results := rec.RawResults
		if len(results) == 0 || string(results) == "null" {
			results = []byte("[]")
		}
		raw = append(raw, model.RawVote{
			EvaluatorName: rec.EvaluatorName,
			Timestamp:     rec.EffectiveTimestamp(),
			Results:       results,
		})
	}
	return raw
}
