package recurrence

import "errors"

// ErrUnknownFormulation indicates a formulation name that is not registered.
var ErrUnknownFormulation = errors.New("recurrence: unknown formulation")
