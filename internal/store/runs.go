package store

import (
	"database/sql"
	"time"
)

// MonitorRun records a single alert monitoring cycle for auditing.
type MonitorRun struct {
	ID              int64
	StartedAt       time.Time
	FinishedAt      sql.NullTime
	Location        string
	AlertsEvaluated int
	EventsFired     int
	Success         bool
	ErrorMessage    sql.NullString
}

func (s *Store) StartMonitorRun(location string) (*MonitorRun, error) {
	run := &MonitorRun{
		StartedAt: time.Now().UTC(),
		Location:  location,
	}

	result, err := s.db.Exec(`
		INSERT INTO monitor_runs (started_at, location, success)
		VALUES (?, ?, FALSE)
	`, run.StartedAt, run.Location)
	if err != nil {
		return nil, err
	}

	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) CompleteMonitorRun(run *MonitorRun) error {
	if run == nil {
		return nil
	}

	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	_, err := s.db.Exec(`
		UPDATE monitor_runs SET
			finished_at = ?,
			alerts_evaluated = ?,
			events_fired = ?,
			success = ?,
			error_message = ?
		WHERE id = ?
	`, run.FinishedAt, run.AlertsEvaluated, run.EventsFired, run.Success, run.ErrorMessage, run.ID)
	return err
}

// RecentMonitorRuns returns up to limit runs, newest first.
func (s *Store) RecentMonitorRuns(limit int) ([]MonitorRun, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, location,
			COALESCE(alerts_evaluated, 0), COALESCE(events_fired, 0), success, error_message
		FROM monitor_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []MonitorRun
	for rows.Next() {
		var r MonitorRun
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Location,
			&r.AlertsEvaluated, &r.EventsFired, &r.Success, &r.ErrorMessage); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
