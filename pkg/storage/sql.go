package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/raykavin/backengine/pkg/optimizer"
	"gorm.io/gorm"
)

// sqlRecord is Record's GORM-mapped row; Parameters/Metrics are stored
// as JSON text since a ParameterSet's keys vary per strategy.
type sqlRecord struct {
	ID            int64 `gorm:"primaryKey"`
	TargetMetric  string
	MetricValue   float64
	ParametersRaw string
	MetricsRaw    string
	DurationNanos int64
	CreatedAt     time.Time
}

func (sqlRecord) TableName() string { return "optimizer_results" }

// SQLStore implements ResultStore over any GORM dialect.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens dialect and migrates the result table.
func NewSQLStore(dialect gorm.Dialector, opts ...gorm.Option) (*SQLStore, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&sqlRecord{}); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Save(targetMetric string, r *optimizer.Result) (int64, error) {
	params, err := json.Marshal(r.Parameters)
	if err != nil {
		return 0, fmt.Errorf("marshal parameters: %w", err)
	}
	metrics, err := json.Marshal(r.Metrics)
	if err != nil {
		return 0, fmt.Errorf("marshal metrics: %w", err)
	}

	row := sqlRecord{
		TargetMetric:  targetMetric,
		MetricValue:   r.Metrics[targetMetric],
		ParametersRaw: string(params),
		MetricsRaw:    string(metrics),
		DurationNanos: int64(r.Duration),
		CreatedAt:     time.Now(),
	}
	if result := s.db.Create(&row); result.Error != nil {
		return 0, fmt.Errorf("create record: %w", result.Error)
	}
	return row.ID, nil
}

func (s *SQLStore) Load(id int64) (*Record, error) {
	var row sqlRecord
	if result := s.db.First(&row, id); result.Error != nil {
		return nil, fmt.Errorf("record not found: %w", result.Error)
	}
	return rowToRecord(&row)
}

func (s *SQLStore) Top(targetMetric string, n int) ([]*Record, error) {
	var rows []sqlRecord
	query := s.db.Where("target_metric = ?", targetMetric).Order("metric_value DESC")
	if n > 0 {
		query = query.Limit(n)
	}
	if result := query.Find(&rows); result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("query records: %w", result.Error)
	}

	records := make([]*Record, 0, len(rows))
	for i := range rows {
		rec, err := rowToRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	return sqlDB.Close()
}

func rowToRecord(row *sqlRecord) (*Record, error) {
	var params optimizer.ParameterSet
	if err := json.Unmarshal([]byte(row.ParametersRaw), &params); err != nil {
		return nil, fmt.Errorf("unmarshal parameters: %w", err)
	}
	var metrics map[string]float64
	if err := json.Unmarshal([]byte(row.MetricsRaw), &metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}

	return &Record{
		ID:           row.ID,
		TargetMetric: row.TargetMetric,
		Result: &optimizer.Result{
			Parameters: params,
			Metrics:    metrics,
			Duration:   time.Duration(row.DurationNanos),
		},
	}, nil
}
