package db

import (
	"context"
	"fmt"

	"liveshop/entities"

	"github.com/google/uuid"
)

type ShowRepository struct {
	db *DB
}

func NewShowRepository(db *DB) ShowRepository {
	if db == nil {
		panic("db is nil")
	}
	return ShowRepository{
		db: db,
	}
}

func (r ShowRepository) Create(ctx context.Context, show entities.Show) (entities.ShowCreateResponse, error) {
	var showID uuid.UUID

	err := r.db.Conn.QueryRowContext(
		ctx,
		`
		INSERT INTO shows (seller_id, title, lifecycle_status, stream_phase, start_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING show_id`,
		show.SellerID, show.Title, entities.ShowScheduled, entities.StreamNone, show.StartTime,
	).Scan(&showID)

	if err != nil {
		return entities.ShowCreateResponse{}, fmt.Errorf("could not save show: %w", err)
	}

	return entities.ShowCreateResponse{ShowID: showID}, nil
}

func (r ShowRepository) ByID(ctx context.Context, showID uuid.UUID) (entities.Show, error) {
	var show entities.Show
	err := r.db.Conn.GetContext(ctx, &show, `
		SELECT
			show_id,
			seller_id,
			title,
			lifecycle_status,
			stream_phase,
			server_viewer_count,
			displayed_viewer_count,
			max_viewer_count,
			featured_product_id,
			start_time
		FROM
			shows
		WHERE
			show_id = $1
	`, showID)
	if err != nil {
		return entities.Show{}, fmt.Errorf("could not get show: %w", err)
	}

	return show, nil
}

// Tracked lists the shows the reconciliation tasks keep refreshing: anything
// not yet terminal whose stream has been touched, plus live shows.
func (r ShowRepository) Tracked(ctx context.Context) ([]entities.Show, error) {
	var shows []entities.Show
	err := r.db.Conn.SelectContext(ctx, &shows, `
		SELECT
			show_id,
			seller_id,
			title,
			lifecycle_status,
			stream_phase,
			server_viewer_count,
			displayed_viewer_count,
			max_viewer_count,
			featured_product_id,
			start_time
		FROM
			shows
		WHERE
			lifecycle_status NOT IN ('ended', 'cancelled')
			AND (lifecycle_status = 'live' OR stream_phase <> 'none')
	`)
	if err != nil {
		return nil, fmt.Errorf("could not list tracked shows: %w", err)
	}

	return shows, nil
}

// UpdateStreamPhase is driven by the seller's broadcast controls. Terminal
// shows are never transitioned back.
func (r ShowRepository) UpdateStreamPhase(ctx context.Context, showID uuid.UUID, phase entities.StreamPhase) (bool, error) {
	res, err := r.db.Conn.ExecContext(ctx, `
		UPDATE shows
		SET stream_phase = $2
		WHERE show_id = $1 AND lifecycle_status NOT IN ('ended', 'cancelled')
	`, showID, phase)
	if err != nil {
		return false, fmt.Errorf("could not update stream phase: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r ShowRepository) UpdateLifecycle(ctx context.Context, showID uuid.UUID, status entities.ShowLifecycle) (bool, error) {
	res, err := r.db.Conn.ExecContext(ctx, `
		UPDATE shows
		SET lifecycle_status = $2
		WHERE show_id = $1 AND lifecycle_status NOT IN ('ended', 'cancelled')
	`, showID, status)
	if err != nil {
		return false, fmt.Errorf("could not update lifecycle status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// WriteBackViewerCounts persists the merged viewer count. GREATEST keeps the
// high-water mark monotonic under concurrent writers.
func (r ShowRepository) WriteBackViewerCounts(ctx context.Context, showID uuid.UUID, displayed, max int) error {
	_, err := r.db.Conn.ExecContext(ctx, `
		UPDATE shows
		SET displayed_viewer_count = $2,
		    max_viewer_count = GREATEST(max_viewer_count, $3)
		WHERE show_id = $1
	`, showID, displayed, max)
	if err != nil {
		return fmt.Errorf("could not write back viewer counts: %w", err)
	}

	return nil
}

func (r ShowRepository) SetFeaturedProduct(ctx context.Context, showID uuid.UUID, productID *uuid.UUID) error {
	_, err := r.db.Conn.ExecContext(ctx, `
		UPDATE shows
		SET featured_product_id = $2
		WHERE show_id = $1
	`, showID, productID)
	if err != nil {
		return fmt.Errorf("could not set featured product: %w", err)
	}

	return nil
}
