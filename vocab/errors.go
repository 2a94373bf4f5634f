package vocab

import "errors"

var (
	// ErrLoadFailed is returned when the vocabulary source cannot be read.
	// The accompanying vocabulary is empty.
	ErrLoadFailed = errors.New("vocabulary load failed")
)
