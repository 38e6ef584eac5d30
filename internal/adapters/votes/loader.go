package votes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/z-labo/voteboard/internal/adapters/blobstore"
	"github.com/z-labo/voteboard/internal/domain/model"
	"github.com/z-labo/voteboard/pkg/logger"
	"github.com/z-labo/voteboard/pkg/metrics"
)

// Loader reads every stored vote record back into the domain model.
type Loader struct {
	store      blobstore.Store
	baseFolder string
	log        logger.Logger
}

// LoaderOption applies a configuration option to the Loader.
type LoaderOption func(*Loader)

// WithLoaderBaseFolder prefixes the vote record namespace.
func WithLoaderBaseFolder(folder string) LoaderOption {
	return func(l *Loader) {
		l.baseFolder = folder
	}
}

// WithLoaderLogger sets the logger used for skip diagnostics.
func WithLoaderLogger(log logger.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader creates a Loader on top of store.
func NewLoader(store blobstore.Store, opts ...LoaderOption) *Loader {
	l := &Loader{
		store: store,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll lists the vote record namespace, draining every listing page, and
// decodes each .json object. An unreadable or undecodable object is logged
// and skipped; it never fails the whole load. A failed listing call does.
func (l *Loader) LoadAll(ctx context.Context) ([]model.VoteRecord, error) {
	prefix := namespaceKey(l.baseFolder)

	var entries []blobstore.ObjectInfo
	cursor := ""
	for {
		page, err := l.store.List(ctx, prefix, cursor)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrList, err)
		}
		entries = append(entries, page.Entries...)
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	records := make([]model.VoteRecord, 0, len(entries))
	for _, obj := range entries {
		if !strings.HasSuffix(strings.ToLower(obj.Name), recordExt) {
			continue
		}
		data, err := l.store.Get(ctx, obj.Key)
		if err != nil {
			l.warn(ctx, "skipping unreadable vote record", obj.Key, err)
			metrics.RecordRecordSkipped()
			continue
		}
		var rec model.VoteRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			l.warn(ctx, "skipping undecodable vote record", obj.Key, err)
			metrics.RecordRecordSkipped()
			continue
		}
		records = append(records, rec)
	}
	metrics.RecordRecordsLoaded(len(records))
	return records, nil
}

// CountObjects reports how many vote record objects are in the namespace.
func (l *Loader) CountObjects(ctx context.Context) (int, error) {
	prefix := namespaceKey(l.baseFolder)

	count := 0
	cursor := ""
	for {
		page, err := l.store.List(ctx, prefix, cursor)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrList, err)
		}
		for _, obj := range page.Entries {
			if strings.HasSuffix(strings.ToLower(obj.Name), recordExt) {
				count++
			}
		}
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}
	return count, nil
}

func (l *Loader) warn(ctx context.Context, msg, key string, err error) {
	if l.log == nil {
		return
	}
	l.log.Warn(ctx, msg, logger.String("key", key), logger.Error(err))
}
