package store

import (
	"database/sql"
	"time"

	"github.com/lox/airwatch/internal/models"
)

func (s *Store) ListAlerts() ([]models.Alert, error) {
	rows, err := s.db.Query(`SELECT id, pollutant, threshold, active FROM alerts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.Pollutant, &a.Threshold, &a.Active); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// AddAlert stores a new active alert and returns it with its assigned ID.
func (s *Store) AddAlert(p models.Pollutant, threshold int) (models.Alert, error) {
	result, err := s.db.Exec(`
		INSERT INTO alerts (pollutant, threshold, active) VALUES (?, ?, TRUE)
	`, p, threshold)
	if err != nil {
		return models.Alert{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Alert{}, err
	}
	return models.Alert{ID: id, Pollutant: p, Threshold: threshold, Active: true}, nil
}

// ToggleAlert flips an alert's active flag and returns the updated alert.
func (s *Store) ToggleAlert(id int64) (models.Alert, error) {
	result, err := s.db.Exec(`UPDATE alerts SET active = NOT active WHERE id = ?`, id)
	if err != nil {
		return models.Alert{}, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return models.Alert{}, err
	}
	if n == 0 {
		return models.Alert{}, ErrNotFound
	}

	var a models.Alert
	err = s.db.QueryRow(`SELECT id, pollutant, threshold, active FROM alerts WHERE id = ?`, id).
		Scan(&a.ID, &a.Pollutant, &a.Threshold, &a.Active)
	return a, err
}

func (s *Store) InsertAlertEvent(e models.AlertEvent) error {
	_, err := s.db.Exec(`
		INSERT INTO alert_events (id, alert_id, location, pollutant, value, threshold, category, message, fired_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, e.ID, e.AlertID, e.Location, e.Pollutant, e.Value, e.Threshold, e.Category, e.Message, e.FiredAt.UTC())
	return err
}

// RecentAlertEvents returns up to limit events, newest first.
func (s *Store) RecentAlertEvents(limit int) ([]models.AlertEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, alert_id, location, pollutant, value, threshold, category, message, fired_at
		FROM alert_events
		ORDER BY fired_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.AlertEvent
	for rows.Next() {
		var e models.AlertEvent
		if err := rows.Scan(&e.ID, &e.AlertID, &e.Location, &e.Pollutant, &e.Value, &e.Threshold, &e.Category, &e.Message, &e.FiredAt); err != nil {
			return nil, err
		}
		e.FiredAt = e.FiredAt.In(s.loc)
		events = append(events, e)
	}
	return events, rows.Err()
}

// LastFired returns when an alert last fired for a location, or the zero time.
func (s *Store) LastFired(alertID int64, location string) (time.Time, error) {
	var t sql.NullTime
	err := s.db.QueryRow(`
		SELECT fired_at FROM alert_events
		WHERE alert_id = ? AND location = ?
		ORDER BY fired_at DESC
		LIMIT 1
	`, alertID, location).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	if !t.Valid {
		return time.Time{}, nil
	}
	return t.Time, nil
}
