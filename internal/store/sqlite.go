package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agenthands/almanac/internal/core/model"
)

// SQLite persists the schedule in a local SQLite database. Timestamps are
// stored as RFC 3339 text so the original zone survives round-trips.
type SQLite struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	starts_at   TEXT NOT NULL,
	ends_at     TEXT NOT NULL,
	color       TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	longitude   REAL,
	latitude    REAL,
	address     TEXT NOT NULL DEFAULT ''
);
`

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) List(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, starts_at, ends_at, color, location, longitude, latitude, address
		FROM events`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *SQLite) Get(ctx context.Context, id string) (model.Event, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, starts_at, ends_at, color, location, longitude, latitude, address
		FROM events WHERE id = ?`, id)
	if err != nil {
		return model.Event{}, false, fmt.Errorf("failed to get event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return model.Event{}, false, rows.Err()
	}
	ev, err := scanEvent(rows)
	if err != nil {
		return model.Event{}, false, err
	}
	return ev, true, nil
}

func (s *SQLite) Put(ctx context.Context, ev model.Event) error {
	var lng, lat sql.NullFloat64
	if ev.Coordinates != nil {
		lng = sql.NullFloat64{Float64: ev.Coordinates.Longitude, Valid: true}
		lat = sql.NullFloat64{Float64: ev.Coordinates.Latitude, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, starts_at, ends_at, color, location, longitude, latitude, address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			starts_at = excluded.starts_at,
			ends_at = excluded.ends_at,
			color = excluded.color,
			location = excluded.location,
			longitude = excluded.longitude,
			latitude = excluded.latitude,
			address = excluded.address`,
		ev.ID, ev.Title, ev.Description,
		ev.Start.Format(time.RFC3339), ev.End.Format(time.RFC3339),
		ev.Color, ev.Location, lng, lat, ev.Address)
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", ev.ID, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func scanEvent(rows *sql.Rows) (model.Event, error) {
	var ev model.Event
	var start, end string
	var lng, lat sql.NullFloat64
	if err := rows.Scan(&ev.ID, &ev.Title, &ev.Description, &start, &end,
		&ev.Color, &ev.Location, &lng, &lat, &ev.Address); err != nil {
		return model.Event{}, fmt.Errorf("failed to scan event: %w", err)
	}
	var err error
	if ev.Start, err = time.Parse(time.RFC3339, start); err != nil {
		return model.Event{}, fmt.Errorf("corrupt start timestamp for %s: %w", ev.ID, err)
	}
	if ev.End, err = time.Parse(time.RFC3339, end); err != nil {
		return model.Event{}, fmt.Errorf("corrupt end timestamp for %s: %w", ev.ID, err)
	}
	if lng.Valid && lat.Valid {
		ev.Coordinates = &model.Coordinates{Longitude: lng.Float64, Latitude: lat.Float64}
	}
	return ev, nil
}
