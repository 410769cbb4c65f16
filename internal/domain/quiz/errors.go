package quiz

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrNegativeScore   = errors.New("negative score")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownAnswer   = errors.New("unknown answer")
)
