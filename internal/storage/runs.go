package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/landlordmapper/ilsos-downloader/internal/etl"
)

// RunStore persists per-dataset run logs and batch summaries, so the
// outcome of a run stays observable after the process exits.
type RunStore struct {
	db *DB
}

// NewRunStore creates a RunStore backed by db.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// RunLog is one historical dataset run.
type RunLog struct {
	ID          string    `json:"id"`
	BatchID     string    `json:"batchId,omitempty"`
	DatasetID   string    `json:"datasetId"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Status      string    `json:"status"`
	RowsRead    int       `json:"rowsRead"`
	RowsWritten int       `json:"rowsWritten"`
	Error       string    `json:"error,omitempty"`
}

// BatchLog is one historical batch pass over the dataset table.
type BatchLog struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Total      int       `json:"total"`
	Failed     int       `json:"failed"`
}

// CreateRun inserts one run log. An empty BatchID marks a standalone run
// (e.g. a watch-triggered single dataset).
func (s *RunStore) CreateRun(run *RunLog) error {
	run.ID = uuid.New().String()
	_, err := s.db.conn.Exec(
		`INSERT INTO runs (id, batch_id, dataset_id, started_at, finished_at, status, rows_read, rows_written, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.BatchID, run.DatasetID, run.StartedAt, run.FinishedAt,
		run.Status, run.RowsRead, run.RowsWritten, run.Error,
	)
	return err
}

// RecordBatch persists a finished batch summary and one run log per
// dataset result.
func (s *RunStore) RecordBatch(summary *etl.BatchSummary, startedAt, finishedAt time.Time) (*BatchLog, error) {
	batch := &BatchLog{
		ID:         uuid.New().String(),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Total:      len(summary.Results),
		Failed:     len(summary.Failed()),
	}

	if _, err := s.db.conn.Exec(
		`INSERT INTO batches (id, started_at, finished_at, datasets_total, datasets_failed)
		 VALUES (?, ?, ?, ?, ?)`,
		batch.ID, batch.StartedAt, batch.FinishedAt, batch.Total, batch.Failed,
	); err != nil {
		return nil, err
	}

	for _, r := range summary.Results {
		run := &RunLog{
			BatchID:     batch.ID,
			DatasetID:   r.DatasetID,
			StartedAt:   r.StartedAt,
			FinishedAt:  r.StartedAt.Add(r.Duration),
			Status:      r.Status,
			RowsRead:    r.RowsRead,
			RowsWritten: r.RowsWritten,
			Error:       r.ErrorMessage(),
		}
		if err := s.CreateRun(run); err != nil {
			return batch, err
		}
	}
	return batch, nil
}

// ListRuns returns the most recent runs for a dataset, newest first.
func (s *RunStore) ListRuns(datasetID string, limit int) ([]RunLog, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, batch_id, dataset_id, started_at, finished_at, status, rows_read, rows_written, error
		 FROM runs WHERE dataset_id = ? ORDER BY started_at DESC LIMIT ?`,
		datasetID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunLog
	for rows.Next() {
		var r RunLog
		if err := rows.Scan(
			&r.ID, &r.BatchID, &r.DatasetID, &r.StartedAt, &r.FinishedAt,
			&r.Status, &r.RowsRead, &r.RowsWritten, &r.Error,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LastBatch returns the most recent batch summary and its runs, or nil
// if no batch has been recorded.
func (s *RunStore) LastBatch() (*BatchLog, []RunLog, error) {
	batch := &BatchLog{}
	err := s.db.conn.QueryRow(
		`SELECT id, started_at, finished_at, datasets_total, datasets_failed
		 FROM batches ORDER BY started_at DESC LIMIT 1`,
	).Scan(&batch.ID, &batch.StartedAt, &batch.FinishedAt, &batch.Total, &batch.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.conn.Query(
		`SELECT id, batch_id, dataset_id, started_at, finished_at, status, rows_read, rows_written, error
		 FROM runs WHERE batch_id = ? ORDER BY dataset_id ASC`,
		batch.ID,
	)
	if err != nil {
		return batch, nil, err
	}
	defer rows.Close()

	var runs []RunLog
	for rows.Next() {
		var r RunLog
		if err := rows.Scan(
			&r.ID, &r.BatchID, &r.DatasetID, &r.StartedAt, &r.FinishedAt,
			&r.Status, &r.RowsRead, &r.RowsWritten, &r.Error,
		); err != nil {
			return batch, runs, err
		}
		runs = append(runs, r)
	}
	return batch, runs, rows.Err()
}
