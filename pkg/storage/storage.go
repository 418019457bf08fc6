// Package storage persists optimizer.Result records so a long-running
// parameter sweep survives a restart and its results can be ranked
// after the fact without re-running anything.
package storage

import "github.com/raykavin/backengine/pkg/optimizer"

// Record is one stored optimization result, keyed by the metric the
// sweep was targeting so Top can rank without re-deriving it.
type Record struct {
	ID           int64
	TargetMetric string
	Result       *optimizer.Result
}

// ResultStore persists and ranks optimizer.Result records.
type ResultStore interface {
	// Save assigns r an ID and stores it, ranked against targetMetric.
	Save(targetMetric string, r *optimizer.Result) (int64, error)
	// Load retrieves a single record by ID.
	Load(id int64) (*Record, error)
	// Top returns the n best records for targetMetric, descending.
	Top(targetMetric string, n int) ([]*Record, error)
	// Close releases the underlying connection or file handle.
	Close() error
}
