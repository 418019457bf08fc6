package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/raykavin/backengine/pkg/logger"
	"gonum.org/v1/gonum/stat/distuv"
)

// WeightedGaussianSearch is a simplified simulated-annealing-style
// local search: each round resamples candidates as a Gaussian
// perturbation around the running best-so-far parameter set, with the
// perturbation's std-dev shrinking geometrically every
// MaxIterations/5 evaluations. It complements LHSSearch's global
// coverage once a promising region has been found.
type WeightedGaussianSearch struct {
	parameters    []Parameter
	maxIterations int
	parallelism   int
	logger        logger.Logger
	rng           *rand.Rand

	// initialStdDevFrac is the starting perturbation width as a
	// fraction of each dimension's [Min, Max] span.
	initialStdDevFrac float64
	// shrinkFactor multiplies the std-dev every shrink interval.
	shrinkFactor float64
}

// NewWeightedGaussianSearch creates a new Gaussian local-search optimizer.
func NewWeightedGaussianSearch(config *Config) (*WeightedGaussianSearch, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(config.Parameters) == 0 {
		return nil, fmt.Errorf("at least one parameter must be provided")
	}

	return &WeightedGaussianSearch{
		parameters:        config.Parameters,
		maxIterations:     config.MaxIterations,
		parallelism:       config.Parallelism,
		logger:            config.Logger,
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
		initialStdDevFrac: 0.25,
		shrinkFactor:      0.5,
	}, nil
}

func (w *WeightedGaussianSearch) SetParameters(params []Parameter) error {
	if len(params) == 0 {
		return fmt.Errorf("at least one parameter must be provided")
	}
	w.parameters = params
	return nil
}

func (w *WeightedGaussianSearch) SetMaxIterations(iterations int) { w.maxIterations = iterations }
func (w *WeightedGaussianSearch) SetParallelism(n int)            { w.parallelism = n }

// Optimize seeds the search from a random start, then repeatedly
// perturbs the best-found parameter set with a shrinking Gaussian
// radius, one evaluation at a time (the perturbation depends on the
// running best, so unlike LHS/RandomSearch this loop cannot batch
// evaluations across a shrink interval).
func (w *WeightedGaussianSearch) Optimize(ctx context.Context, evaluator Evaluator, targetMetric MetricName, maximize bool) ([]*Result, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}
	if w.maxIterations <= 0 {
		return nil, fmt.Errorf("max iterations must be positive")
	}

	shrinkEvery := w.maxIterations / 5
	if shrinkEvery < 1 {
		shrinkEvery = 1
	}
	stdDevFrac := w.initialStdDevFrac

	best := w.randomStart()
	var bestResult *Result
	results := make([]*Result, 0, w.maxIterations)

	better := func(a, b *Result) bool {
		av, bv := a.Metrics[string(targetMetric)], b.Metrics[string(targetMetric)]
		if maximize {
			return av > bv
		}
		return av < bv
	}

	for i := 0; i < w.maxIterations; i++ {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		candidate := best
		if i > 0 {
			candidate = w.perturb(best, stdDevFrac)
		}

		result, err := evaluator.Evaluate(ctx, candidate)
		if err != nil {
			return results, fmt.Errorf("evaluation error: %w", err)
		}
		results = append(results, result)

		if bestResult == nil || better(result, bestResult) {
			best, bestResult = candidate, result
		}

		if (i+1)%shrinkEvery == 0 {
			stdDevFrac *= w.shrinkFactor
		}

		w.logf("evaluated %d/%d (std-dev frac %.4f)", i+1, w.maxIterations, stdDevFrac)
	}

	sort.Sort(ResultSorter{Results: results, MetricName: string(targetMetric), Maximize: maximize})
	return results, nil
}

func (w *WeightedGaussianSearch) randomStart() ParameterSet {
	set := make(ParameterSet, len(w.parameters))
	for _, param := range w.parameters {
		set[param.Name] = mapUnitToRange(param, w.rng.Float64())
	}
	return set
}

// perturb draws a new candidate by sampling N(center, stdDev) around
// each dimension of base, clamped to [Min, Max].
func (w *WeightedGaussianSearch) perturb(base ParameterSet, stdDevFrac float64) ParameterSet {
	set := make(ParameterSet, len(w.parameters))
	for _, param := range w.parameters {
		center, ok := base[param.Name].(float64)
		if !ok {
			if ci, ok := base[param.Name].(int); ok {
				center = float64(ci)
			}
		}

		switch param.Type {
		case TypeFloat:
			min, max := param.Min.(float64), param.Max.(float64)
			stdDev := (max - min) * stdDevFrac
			normal := distuv.Normal{Mu: center, Sigma: stdDev, Src: w.rng}
			set[param.Name] = clamp(normal.Rand(), min, max)
		case TypeInt:
			min, max := param.Min.(int), param.Max.(int)
			stdDev := float64(max-min) * stdDevFrac
			normal := distuv.Normal{Mu: center, Sigma: stdDev, Src: w.rng}
			v := int(clamp(normal.Rand(), float64(min), float64(max)))
			set[param.Name] = v
		default:
			set[param.Name] = base[param.Name]
		}
	}
	return set
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (w *WeightedGaussianSearch) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Infof(format, args...)
	}
}
