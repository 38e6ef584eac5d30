package votes

import (
	"context"
	"fmt"
	"time"

	"github.com/z-labo/voteboard/internal/adapters/blobstore"
	"github.com/z-labo/voteboard/internal/domain/submission"
	"github.com/z-labo/voteboard/pkg/metrics"
)

// Writer stamps accepted submissions and persists them.
type Writer struct {
	store      blobstore.Store
	baseFolder string
	clock      func() time.Time
}

// WriterOption applies a configuration option to the Writer.
type WriterOption func(*Writer)

// WithWriterBaseFolder prefixes the vote record namespace.
func WithWriterBaseFolder(folder string) WriterOption {
	return func(w *Writer) {
		w.baseFolder = folder
	}
}

// WithWriterClock overrides the accept-time source.
func WithWriterClock(clock func() time.Time) WriterOption {
	return func(w *Writer) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// NewWriter creates a Writer on top of store.
func NewWriter(store blobstore.Store, opts ...WriterOption) *Writer {
	w := &Writer{
		store: store,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Save stamps the submission with the server accept time and writes it to
// the evaluator's key, fully replacing any previous record. It returns the
// stored object path. A failed write leaves no partial state.
func (w *Writer) Save(ctx context.Context, sub *submission.Submission) (string, error) {
	receivedAt := w.clock().UTC().Format(time.RFC3339Nano)
	sub.Stamp(receivedAt)

	data, err := sub.Render()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}

	key := recordKey(w.baseFolder, sub.EvaluatorName)
	start := time.Now()
	if err := w.store.Put(ctx, key, data); err != nil {
		metrics.RecordStoreWriteError()
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	return "/" + key, nil
}
