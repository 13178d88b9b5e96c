package inflation

import "errors"

var (
	// ErrConstruction is returned when bond terms are rejected at construction.
	ErrConstruction = errors.New("inflation bond construction")
	// ErrDomain is returned when an index ratio input is not a positive finite number.
	ErrDomain = errors.New("index ratio domain")
)
