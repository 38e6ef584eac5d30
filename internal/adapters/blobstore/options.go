package blobstore

// Default store configuration constants.
const (
	defaultPageSize = 1000
)

// settings holds configuration shared by the store implementations.
type settings struct {
	pageSize int
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithPageSize bounds the number of entries returned per listing page.
func WithPageSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func newSettings(opts ...Option) settings {
	s := settings{pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
