// Package bench measures the wall-clock cost of evaluating a recurrence
// formulation: a few untimed warm-up calls, then Repeat timed batches of
// NRuns calls each, reporting the fastest batch.
package bench

import (
	"fmt"
	"time"

	"github.com/notargets/RecurKernel/recurrence"
	"github.com/notargets/RecurKernel/strategy"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	DefaultWarmUp = 5
	DefaultNRuns  = 100
	DefaultRepeat = 5
)

// Options controls the number of calls made by Measure.
// The zero Options means DefaultOptions.
type Options struct {
	WarmUp int
	NRuns  int
	Repeat int
}

// DefaultOptions returns 5 warm-up calls and 5 batches of 100 runs
func DefaultOptions() Options {
	return Options{WarmUp: DefaultWarmUp, NRuns: DefaultNRuns, Repeat: DefaultRepeat}
}

func (o Options) normalize() (Options, error) {
	if o == (Options{}) {
		return DefaultOptions(), nil
	}
	if o.WarmUp < 0 || o.NRuns < 1 || o.Repeat < 1 {
		return o, fmt.Errorf("%w: warm-up %d, runs %d, repeat %d",
			ErrInvalidOptions, o.WarmUp, o.NRuns, o.Repeat)
	}
	return o, nil
}

// Result is the outcome of one measurement
type Result struct {
	Min     time.Duration   // fastest batch
	Batches []time.Duration // every batch, in order
	Calls   int             // total calls including warm-up
	NRuns   int             // calls per batch
}

// Seconds returns Min in seconds
func (r Result) Seconds() float64 {
	return r.Min.Seconds()
}

// PerRun returns the fastest batch divided by the runs in a batch
func (r Result) PerRun() time.Duration {
	if r.NRuns == 0 {
		return 0
	}
	return r.Min / time.Duration(r.NRuns)
}

// Rounded returns Min in seconds rounded to places decimals
func (r Result) Rounded(places int) float64 {
	return scalar.Round(r.Seconds(), places)
}

func (r Result) String() string {
	return fmt.Sprintf("%.4fs (%d batches of %d, %v/run)",
		r.Seconds(), len(r.Batches), r.NRuns, r.PerRun())
}

// Measure calls fn WarmUp times untimed, then times Repeat batches of NRuns
// consecutive calls. The first error from fn stops the measurement.
func Measure(fn func() error, opts Options) (Result, error) {
	opts, err := opts.normalize()
	if err != nil {
		return Result{}, err
	}

	res := Result{NRuns: opts.NRuns}
	call := func() error {
		res.Calls++
		return fn()
	}

	for i := 0; i < opts.WarmUp; i++ {
		if err := call(); err != nil {
			return res, fmt.Errorf("warm-up call %d: %w", i, err)
		}
	}

	secs := make([]float64, opts.Repeat)
	res.Batches = make([]time.Duration, opts.Repeat)
	for b := 0; b < opts.Repeat; b++ {
		start := time.Now()
		for i := 0; i < opts.NRuns; i++ {
			if err := call(); err != nil {
				return res, fmt.Errorf("batch %d run %d: %w", b, i, err)
			}
		}
		res.Batches[b] = time.Since(start)
		secs[b] = res.Batches[b].Seconds()
	}

	res.Min = res.Batches[floats.MinIdx(secs)]
	return res, nil
}

// Benchmark measures call evaluated on a fixed T and p
func Benchmark(call strategy.Callable, T recurrence.StateVector, p float64, opts Options) (Result, error) {
	return Measure(func() error {
		_, err := call(T, p)
		return err
	}, opts)
}
