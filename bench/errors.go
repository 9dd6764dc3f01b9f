package bench

import "errors"

// ErrInvalidOptions is returned for negative counts or a zero NRuns/Repeat
var ErrInvalidOptions = errors.New("bench: invalid options")
