package gradient

import (
	"math"

	"github.com/notargets/RecurKernel/recurrence"
	"gonum.org/v1/gonum/floats"
)

// Numerical estimates the gradient of the summed output with central
// differences. h is scaled by max(1, |x|) for each input.
func Numerical(fn recurrence.Func, T recurrence.StateVector, p, h float64) (recurrence.StateVector, float64) {
	sum := func(T recurrence.StateVector, p float64) float64 {
		out := recurrence.Evaluate(fn, T, p)
		return floats.Sum(out[:])
	}
	step := func(x float64) float64 {
		return h * math.Max(1, math.Abs(x))
	}

	var gT recurrence.StateVector
	for i := range T {
		hi := step(T[i])
		plus, minus := T, T
		plus[i] += hi
		minus[i] -= hi
		gT[i] = (sum(plus, p) - sum(minus, p)) / (2 * hi)
	}

	hp := step(p)
	gP := (sum(T, p+hp) - sum(T, p-hp)) / (2 * hp)
	return gT, gP
}
