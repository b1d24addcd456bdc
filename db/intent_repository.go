package db

import (
	"context"
	"fmt"
	"time"

	"liveshop/checkout"
	"liveshop/entities"

	"github.com/google/uuid"
)

type IntentRepository struct {
	db *DB
}

func NewIntentRepository(db *DB) IntentRepository {
	if db == nil {
		panic("db is nil")
	}
	return IntentRepository{
		db: db,
	}
}

// CreatePendingIfAbsent inserts the intent in one conditional write. The
// partial unique index on (buyer_id, product_id) WHERE status = 'pending'
// makes the uniqueness check and the insert a single atomic step; there is
// no read-modify-write window for a concurrent duplicate to slip through.
func (r IntentRepository) CreatePendingIfAbsent(ctx context.Context, intent entities.CheckoutIntent) error {
	_, err := r.db.Conn.NamedExecContext(ctx, `
		INSERT INTO
			checkout_intents (intent_id, buyer_id, show_id, product_id, status, created_at, expires_at)
		VALUES
			(:intent_id, :buyer_id, :show_id, :product_id, :status, :created_at, :expires_at)
	`, intent)
	if err != nil {
		if isUniqueViolation(err) {
			return checkout.ErrAlreadyInFlight
		}
		return fmt.Errorf("could not create checkout intent: %w", err)
	}

	return nil
}

func (r IntentRepository) MarkFulfilled(ctx context.Context, intentID uuid.UUID) (bool, error) {
	return r.resolve(ctx, `
		UPDATE checkout_intents
		SET status = 'fulfilled', resolved_at = now()
		WHERE intent_id = $1 AND status = 'pending'
	`, intentID)
}

func (r IntentRepository) MarkFailed(ctx context.Context, intentID uuid.UUID, reason string) (bool, error) {
	res, err := r.db.Conn.ExecContext(ctx, `
		UPDATE checkout_intents
		SET status = 'failed', resolved_at = now(), fail_reason = $2
		WHERE intent_id = $1 AND status = 'pending'
	`, intentID, reason)
	if err != nil {
		return false, fmt.Errorf("could not mark intent failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r IntentRepository) CancelOwned(ctx context.Context, intentID, buyerID uuid.UUID) (bool, error) {
	res, err := r.db.Conn.ExecContext(ctx, `
		UPDATE checkout_intents
		SET status = 'failed', resolved_at = now(), fail_reason = 'cancelled by buyer'
		WHERE intent_id = $1 AND buyer_id = $2 AND status = 'pending'
	`, intentID, buyerID)
	if err != nil {
		return false, fmt.Errorf("could not cancel intent: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r IntentRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.Conn.ExecContext(ctx, `
		UPDATE checkout_intents
		SET status = 'expired', resolved_at = now()
		WHERE status = 'pending' AND expires_at < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("could not sweep expired intents: %w", err)
	}

	return res.RowsAffected()
}

func (r IntentRepository) ByID(ctx context.Context, intentID uuid.UUID) (entities.CheckoutIntent, error) {
	var intent entities.CheckoutIntent
	err := r.db.Conn.GetContext(ctx, &intent, `
		SELECT intent_id, buyer_id, show_id, product_id, status, created_at, expires_at, resolved_at, fail_reason
		FROM checkout_intents
		WHERE intent_id = $1
	`, intentID)
	if err != nil {
		return entities.CheckoutIntent{}, fmt.Errorf("could not get intent: %w", err)
	}

	return intent, nil
}

func (r IntentRepository) resolve(ctx context.Context, query string, intentID uuid.UUID) (bool, error) {
	res, err := r.db.Conn.ExecContext(ctx, query, intentID)
	if err != nil {
		return false, fmt.Errorf("could not resolve intent: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
