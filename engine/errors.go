package engine

import "errors"

// ErrMalformedProgram indicates a program that reads unwritten registers or
// writes outside its register file.
var ErrMalformedProgram = errors.New("engine: malformed program")
