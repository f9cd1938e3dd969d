// Package history records completed viewshed submissions in DuckDB.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"viewshed-explorer/internal/session"
)

// Entry is one recorded submission.
type Entry struct {
	ID              string    `json:"id" doc:"Entry identifier"`
	RequestedAt     time.Time `json:"requestedAt" doc:"When the submission started (UTC)"`
	Lat             float64   `json:"lat" doc:"Observer latitude"`
	Lon             float64   `json:"lon" doc:"Observer longitude"`
	ObserverHeightM float64   `json:"observerHeightM" doc:"Observer height in meters"`
	MaxRadiusKm     float64   `json:"maxRadiusKm" doc:"Search radius in kilometers"`
	ResolutionM     float64   `json:"resolutionM" doc:"Sample resolution in meters"`
	Outcome         string    `json:"outcome" doc:"success or failure" example:"success"`
	Message         string    `json:"message,omitempty" doc:"Failure message, if any"`
	DurationMS      int64     `json:"durationMs" doc:"Round-trip time in milliseconds"`
}

// Service persists and queries submission history.
type Service struct {
	db *sql.DB
}

const createTable = `
CREATE TABLE IF NOT EXISTS submissions (
	id VARCHAR PRIMARY KEY,
	requested_at TIMESTAMP,
	lat DOUBLE,
	lon DOUBLE,
	observer_height_m DOUBLE,
	max_radius_km DOUBLE,
	resolution_m DOUBLE,
	outcome VARCHAR,
	message VARCHAR,
	duration_ms BIGINT
)`

// NewService creates the history service and its table.
func NewService(db *sql.DB) (*Service, error) {
	if _, err := db.Exec(createTable); err != nil {
		return nil, fmt.Errorf("creating submissions table: %w", err)
	}
	return &Service{db: db}, nil
}

// RecordSubmission implements session.Recorder. Failures are logged, never
// propagated; history must not disturb the submit flow.
func (s *Service) RecordSubmission(ctx context.Context, rec session.SubmissionRecord) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions
		 (id, requested_at, lat, lon, observer_height_m, max_radius_km, resolution_m, outcome, message, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		rec.At.UTC(),
		rec.Request.Observer.Lat,
		rec.Request.Observer.Lon,
		rec.Request.ObserverHeightM,
		rec.Request.MaxRadiusKm,
		rec.Request.ResolutionM,
		rec.Outcome,
		rec.Message,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		log.Printf("history: recording submission: %v", err)
	}
}

// Recent returns the most recent entries, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, requested_at, lat, lon, observer_height_m, max_radius_km, resolution_m, outcome, message, duration_ms
		 FROM submissions ORDER BY requested_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying submissions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RequestedAt, &e.Lat, &e.Lon,
			&e.ObserverHeightM, &e.MaxRadiusKm, &e.ResolutionM,
			&e.Outcome, &e.Message, &e.DurationMS); err != nil {
			return nil, fmt.Errorf("scanning submission row: %w", err)
		}
		entries = append(entries, e)
	}

	if entries == nil {
		entries = []Entry{}
	}
	return entries, rows.Err()
}
