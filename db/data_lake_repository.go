package db

import (
	"context"
	"fmt"

	"liveshop/entities"
)

type IEventRepository interface {
	Create(ctx context.Context, event entities.Event) error
	GetAll(ctx context.Context) ([]entities.Event, error)
}

// EventRepository appends every consumed event to the data lake table.
// Redeliveries are deduplicated on event_id.
type EventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) EventRepository {
	if db == nil {
		panic("db is nil")
	}
	return EventRepository{
		db: db,
	}
}

func (e EventRepository) Create(ctx context.Context, event entities.Event) error {
	_, err := e.db.Conn.ExecContext(ctx, `
		INSERT INTO
			events (event_id, published_at, event_name, event_payload)
		VALUES
			($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING;
	`, event.EventID, event.Header.PublishedAt, event.EventName, []byte(event.Payload))
	if err != nil {
		return fmt.Errorf("could not store event in data lake: %w", err)
	}

	return nil
}

// GetAll returns the whole lake in publish order, used to rebuild
// projections offline.
func (e EventRepository) GetAll(ctx context.Context) ([]entities.Event, error) {
	rows, err := e.db.Conn.QueryContext(ctx, `
		SELECT event_id, published_at, event_name, event_payload
		FROM events
		ORDER BY published_at
	`)
	if err != nil {
		return nil, fmt.Errorf("could not read events from data lake: %w", err)
	}
	defer rows.Close()

	var events []entities.Event
	for rows.Next() {
		var event entities.Event
		var payload []byte
		if err := rows.Scan(&event.EventID, &event.Header.PublishedAt, &event.EventName, &payload); err != nil {
			return nil, fmt.Errorf("could not scan event row: %w", err)
		}
		event.Payload = payload
		events = append(events, event)
	}

	return events, rows.Err()
}
