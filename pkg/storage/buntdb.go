package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/raykavin/backengine/pkg/optimizer"
	"github.com/tidwall/buntdb"
)

// BuntStore implements ResultStore using an embedded BuntDB file (or
// ":memory:" for a process-local store with no file at all).
type BuntStore struct {
	lastID int64
	db     *buntdb.DB
}

// NewBuntStore opens or creates sourceFile as a BuntDB-backed ResultStore.
func NewBuntStore(sourceFile string) (*BuntStore, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("open buntdb: %w", err)
	}

	// Continue numbering after the highest ID already in the file so a
	// reopened store does not overwrite earlier records.
	var lastID int64
	err = db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, _ string) bool {
			if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > lastID {
				lastID = id
			}
			return true
		})
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("scan buntdb: %w", err)
	}
	return &BuntStore{db: db, lastID: lastID}, nil
}

func (b *BuntStore) Save(targetMetric string, r *optimizer.Result) (int64, error) {
	id := atomic.AddInt64(&b.lastID, 1)
	rec := Record{ID: id, TargetMetric: targetMetric, Result: r}

	content, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("marshal record: %w", err)
	}

	err = b.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(strconv.FormatInt(id, 10), string(content), nil)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("store record: %w", err)
	}
	return id, nil
}

func (b *BuntStore) Load(id int64) (*Record, error) {
	var rec Record
	err := b.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(strconv.FormatInt(id, 10))
		if err != nil {
			return fmt.Errorf("record not found: %w", err)
		}
		return json.Unmarshal([]byte(value), &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (b *BuntStore) Top(targetMetric string, n int) ([]*Record, error) {
	var records []*Record

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(_, value string) bool {
			var rec Record
			if err := json.Unmarshal([]byte(value), &rec); err != nil {
				return true
			}
			if rec.TargetMetric == targetMetric {
				records = append(records, &rec)
			}
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Result.Metrics[targetMetric] > records[j].Result.Metrics[targetMetric]
	})
	if n > 0 && n < len(records) {
		records = records[:n]
	}
	return records, nil
}

func (b *BuntStore) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
