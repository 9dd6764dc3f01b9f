package bench

import (
	"fmt"
	"math"

	"github.com/notargets/RecurKernel/gradient"
	"github.com/notargets/RecurKernel/recurrence"
	"github.com/notargets/RecurKernel/strategy"
	"gonum.org/v1/gonum/floats"
)

// NumericalStep is the relative step of the finite-difference cross-check
const NumericalStep = 1e-6

// Config selects what a Suite measures
type Config struct {
	Options      Options
	Formulations []string
	Strategies   []strategy.Strategy
	// OnReport, when set, is called with each report as soon as its
	// formulation is done. A non-nil error stops the run.
	OnReport func(Report) error
}

// DefaultConfig benchmarks compute_fn and compute_fn_no_redundant_ops under
// the default strategies
func DefaultConfig() Config {
	return Config{
		Options: DefaultOptions(),
		Formulations: []string{
			recurrence.NameComputeFn,
			recurrence.NameComputeFnNoRedundantOps,
		},
		Strategies: strategy.Defaults(),
	}
}

// Timing is the measurement of one strategy. Err is set when the strategy
// could not be applied or failed while running.
type Timing struct {
	Strategy  string
	Result    Result
	Deviation float64 // max |out - direct| on the benchmark input
	Err       error
}

// Skipped reports whether the strategy produced no timing
func (t Timing) Skipped() bool {
	return t.Err != nil
}

// Report collects the timings and gradients of one formulation.
// GradientDeviation is the largest difference between the present gradients
// and central differences; it is informational and zero when both are absent.
type Report struct {
	Formulation       string
	Timings           []Timing
	Gradients         gradient.Pair
	GradientDeviation float64
}

// Suite runs a Config against a single input
type Suite struct {
	Config
	T recurrence.StateVector
	P float64
}

// NewSuite fills unset parts of cfg from DefaultConfig
func NewSuite(cfg Config, T recurrence.StateVector, p float64) *Suite {
	def := DefaultConfig()
	if len(cfg.Formulations) == 0 {
		cfg.Formulations = def.Formulations
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = def.Strategies
	}
	return &Suite{Config: cfg, T: T, P: p}
}

// Run benchmarks every formulation under every strategy, in configuration
// order. Strategies that cannot apply are recorded as skipped. Errors are
// returned for unknown formulations, invalid options, gradient extraction
// failures, and errors from OnReport; the reports completed so far are
// returned with them.
func (s *Suite) Run() ([]Report, error) {
	if _, err := s.Options.normalize(); err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(s.Formulations))
	for _, name := range s.Formulations {
		f, err := recurrence.Lookup(name)
		if err != nil {
			return reports, err
		}
		rep, err := s.runFormulation(f)
		if err != nil {
			return reports, fmt.Errorf("%s: %w", name, err)
		}
		reports = append(reports, rep)

		if s.OnReport != nil {
			if err := s.OnReport(rep); err != nil {
				return reports, fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return reports, nil
}

func (s *Suite) runFormulation(f recurrence.Formulation) (Report, error) {
	rep := Report{Formulation: f.Name}
	want := recurrence.Evaluate(f.Fn, s.T, s.P)

	for _, st := range s.Strategies {
		tm := Timing{Strategy: st.Name()}
		call, err := st.Apply(f)
		if err != nil {
			tm.Err = err
			rep.Timings = append(rep.Timings, tm)
			continue
		}
		if out, err := call(s.T, s.P); err != nil {
			tm.Err = err
		} else {
			tm.Deviation = floats.Distance(out[:], want[:], math.Inf(1))
			tm.Result, tm.Err = Benchmark(call, s.T, s.P, s.Options)
		}
		rep.Timings = append(rep.Timings, tm)
	}

	g, err := gradient.Calculate(f.Fn, s.T, s.P)
	if err != nil {
		return rep, err
	}
	rep.Gradients = g
	rep.GradientDeviation = s.gradientDeviation(f, g)
	return rep, nil
}

// gradientDeviation compares the present parts of g with central differences
func (s *Suite) gradientDeviation(f recurrence.Formulation, g gradient.Pair) float64 {
	nT, nP := gradient.Numerical(f.Fn, s.T, s.P, NumericalStep)
	var dev float64
	if g.T != nil {
		dev = floats.Distance(g.T[:], nT[:], math.Inf(1))
	}
	if g.P != nil {
		dev = math.Max(dev, math.Abs(*g.P-nP))
	}
	return dev
}
