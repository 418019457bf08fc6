package optimizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/schollz/progressbar/v3"
)

// runParallelEvaluations fans parameterSets out across parallelism
// workers, retrying a transiently-failing Evaluate call (e.g. a
// storage write inside the evaluator) with an exponential backoff
// before giving up on that parameter set. Shared by RandomSearch,
// GridSearch, and LHSSearch so the retry/progress behavior stays
// consistent across them; WeightedGaussianSearch evaluates serially
// on its own.
func runParallelEvaluations(
	ctx context.Context,
	evaluator Evaluator,
	parameterSets []ParameterSet,
	parallelism int,
	logf func(format string, args ...any),
) ([]*Result, error) {
	var (
		results   []*Result
		mutex     sync.Mutex
		wg        sync.WaitGroup
		errCh     = make(chan error, 1)
		semaphore = make(chan struct{}, parallelism)
		bar       = progressbar.Default(int64(len(parameterSets)), "evaluating")
	)

	for i, params := range parameterSets {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		case err := <-errCh:
			return results, err
		default:
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(index int, paramSet ParameterSet) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result, err := evaluateWithRetry(ctx, evaluator, paramSet, 3)
			_ = bar.Add(1)
			if err != nil {
				select {
				case errCh <- fmt.Errorf("evaluation error: %w", err):
				default:
				}
				return
			}

			mutex.Lock()
			results = append(results, result)
			mutex.Unlock()

			logf("completed evaluation %d/%d", index+1, len(parameterSets))
		}(i, params)
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return results, err
	default:
		return results, nil
	}
}

// evaluateWithRetry calls evaluator.Evaluate at most maxAttempts times
// in total, waiting an exponential backoff after each failure.
func evaluateWithRetry(ctx context.Context, evaluator Evaluator, params ParameterSet, maxAttempts int) (*Result, error) {
	b := &backoff.Backoff{Min: 50 * time.Millisecond, Max: 2 * time.Second, Factor: 2, Jitter: true}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := evaluator.Evaluate(ctx, params)
		if err == nil {
			return result, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}
