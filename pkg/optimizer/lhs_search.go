package optimizer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/raykavin/backengine/pkg/logger"
	"gonum.org/v1/gonum/stat/distuv"
)

// LHSSearch samples parameter sets via Latin Hypercube Sampling:
// each dimension's [0,1) range is stratified into MaxIterations equal
// bins, one sample is drawn per bin, and bin order is permuted
// independently per dimension before mapping back into [Min, Max].
// This spreads coverage across the whole range instead of clustering
// samples the way uniform random search can.
type LHSSearch struct {
	parameters    []Parameter
	maxIterations int
	parallelism   int
	logger        logger.Logger
	rng           *rand.Rand
}

// NewLHSSearch creates a new Latin Hypercube Sampling optimizer.
func NewLHSSearch(config *Config) (*LHSSearch, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(config.Parameters) == 0 {
		return nil, fmt.Errorf("at least one parameter must be provided")
	}

	return &LHSSearch{
		parameters:    config.Parameters,
		maxIterations: config.MaxIterations,
		parallelism:   config.Parallelism,
		logger:        config.Logger,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (l *LHSSearch) SetParameters(params []Parameter) error {
	if len(params) == 0 {
		return fmt.Errorf("at least one parameter must be provided")
	}
	l.parameters = params
	return nil
}

func (l *LHSSearch) SetMaxIterations(iterations int) { l.maxIterations = iterations }
func (l *LHSSearch) SetParallelism(n int)            { l.parallelism = n }

// Optimize runs LHS sampling followed by parallel evaluation, reusing
// RandomSearch's worker-pool shape via runParallelEvaluations.
func (l *LHSSearch) Optimize(ctx context.Context, evaluator Evaluator, targetMetric MetricName, maximize bool) ([]*Result, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}

	parameterSets := l.generateLHSParameterSets()
	l.logf("Starting LHS search with %d samples", len(parameterSets))

	results, err := runParallelEvaluations(ctx, evaluator, parameterSets, l.parallelism, l.logf)
	if err != nil {
		return nil, err
	}

	sort.Sort(ResultSorter{Results: results, MetricName: string(targetMetric), Maximize: maximize})
	l.logf("LHS search completed with %d results", len(results))
	return results, nil
}

// generateLHSParameterSets builds one unit-cube LHS design and maps
// each dimension's column back into that parameter's native range.
func (l *LHSSearch) generateLHSParameterSets() []ParameterSet {
	n := l.maxIterations
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: l.rng}

	columns := make([][]float64, len(l.parameters))
	for d := range l.parameters {
		col := make([]float64, n)
		perm := l.rng.Perm(n)
		for i := 0; i < n; i++ {
			// one stratified sample per bin, bin order permuted
			col[i] = (float64(perm[i]) + uniform.Rand()) / float64(n)
		}
		columns[d] = col
	}

	sets := make([]ParameterSet, n)
	for i := 0; i < n; i++ {
		set := make(ParameterSet, len(l.parameters))
		for d, param := range l.parameters {
			set[param.Name] = mapUnitToRange(param, columns[d][i])
		}
		sets[i] = set
	}
	return sets
}

// mapUnitToRange maps u in [0,1) into param's [Min, Max], respecting
// LogScale and rounding to int for integer parameters.
func mapUnitToRange(param Parameter, u float64) any {
	switch param.Type {
	case TypeInt:
		min, okMin := param.Min.(int)
		max, okMax := param.Max.(int)
		if !okMin || !okMax {
			return param.Default
		}
		return min + int(u*float64(max-min+1))
	case TypeFloat:
		min, okMin := param.Min.(float64)
		max, okMax := param.Max.(float64)
		if !okMin || !okMax {
			return param.Default
		}
		if param.LogScale && min > 0 && max > 0 {
			logMin, logMax := math.Log(min), math.Log(max)
			return math.Exp(logMin + u*(logMax-logMin))
		}
		return min + u*(max-min)
	case TypeBool:
		return u < 0.5
	case TypeString, TypeCategorical:
		if len(param.Options) == 0 {
			return param.Default
		}
		idx := int(u * float64(len(param.Options)))
		if idx >= len(param.Options) {
			idx = len(param.Options) - 1
		}
		return param.Options[idx]
	default:
		return param.Default
	}
}

func (l *LHSSearch) logf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Infof(format, args...)
	}
}
