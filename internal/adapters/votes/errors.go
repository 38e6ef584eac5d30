package votes

import "errors"

// Sentinel kinds for vote persistence errors.
var (
	ErrWrite = errors.New("vote record write failed")
	ErrList  = errors.New("vote record listing failed")
)
