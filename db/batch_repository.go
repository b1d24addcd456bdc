package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"

	"liveshop/entities"
	"liveshop/fulfillment"
	"liveshop/message/event"
	"liveshop/message/outbox"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BatchRepository struct {
	db *DB
}

func NewBatchRepository(db *DB) BatchRepository {
	if db == nil {
		panic("db is nil")
	}
	return BatchRepository{
		db: db,
	}
}

// AttachSettledOrder records a settled order and attaches it to the buyer's
// pickup batch for the show, creating the batch on first order. The order
// insert, the batch upsert and the OrderBatched event all commit together;
// the event goes through the outbox so it is only ever published for a
// committed attachment. Redelivered settlement events are no-ops.
func (r BatchRepository) AttachSettledOrder(ctx context.Context, order entities.Order) (entities.Batch, error) {
	var batch entities.Batch

	code, err := newCompletionCode()
	if err != nil {
		return entities.Batch{}, fmt.Errorf("could not generate completion code: %w", err)
	}

	err = updateInTx(ctx, r.db.Conn, sql.LevelSerializable, func(ctx context.Context, tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO
				orders (order_id, buyer_id, seller_id, show_id, product_id, status, price_amount, price_currency, paid_at)
			VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (order_id) DO NOTHING
		`, order.OrderID, order.BuyerID, order.SellerID, order.ShowID, order.ProductID,
			entities.OrderPaid, order.Price.Amount, order.Price.Currency, order.PaidAt)
		if err != nil {
			return fmt.Errorf("could not save order: %w", err)
		}

		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO
				batches (buyer_id, seller_id, show_id, status, completion_code, created_at)
			VALUES
				($1, $2, $3, 'pending', $4, now())
			ON CONFLICT (buyer_id, show_id) DO NOTHING
		`, order.BuyerID, order.SellerID, order.ShowID, code)
		if err != nil {
			return fmt.Errorf("could not ensure batch: %w", err)
		}

		if err := tx.GetContext(ctx, &batch, `
			SELECT batch_id, buyer_id, seller_id, show_id, status, completion_code, created_at, completed_at, completed_by, cancelled_at
			FROM batches
			WHERE buyer_id = $1 AND show_id = $2
		`, order.BuyerID, order.ShowID); err != nil {
			return fmt.Errorf("could not load batch: %w", err)
		}

		if inserted == 0 {
			// settlement event redelivered, the order is already attached
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET batch_id = $2 WHERE order_id = $1 AND batch_id IS NULL
		`, order.OrderID, batch.BatchID); err != nil {
			return fmt.Errorf("could not attach order to batch: %w", err)
		}

		outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx)
		if err != nil {
			return fmt.Errorf("could not create outbox publisher: %w", err)
		}

		err = event.NewBus(outboxPublisher).Publish(ctx, entities.OrderBatched_v1{
			Header:  entities.NewEventHeaderWithIdempotencyKey(order.OrderID.String() + "-batched"),
			OrderID: order.OrderID,
			BatchID: batch.BatchID,
			BuyerID: order.BuyerID,
			ShowID:  order.ShowID,
		})
		if err != nil {
			return fmt.Errorf("could not publish OrderBatched event: %w", err)
		}

		return nil
	})
	if err != nil {
		return entities.Batch{}, err
	}

	return batch, nil
}

func (r BatchRepository) ByID(ctx context.Context, batchID uuid.UUID) (entities.Batch, error) {
	var batch entities.Batch
	err := r.db.Conn.GetContext(ctx, &batch, `
		SELECT batch_id, buyer_id, seller_id, show_id, status, completion_code, created_at, completed_at, completed_by, cancelled_at
		FROM batches
		WHERE batch_id = $1
	`, batchID)
	if err != nil {
		return entities.Batch{}, fmt.Errorf("could not get batch: %w", err)
	}

	return batch, nil
}

// CompletedBySeller lists completed batches that still are fulfillment
// units: batches with zero orders are excluded from all counts and views.
func (r BatchRepository) CompletedBySeller(ctx context.Context, sellerID uuid.UUID) ([]entities.Batch, error) {
	var batches []entities.Batch
	err := r.db.Conn.SelectContext(ctx, &batches, `
		SELECT b.batch_id, b.buyer_id, b.seller_id, b.show_id, b.status, b.completion_code, b.created_at, b.completed_at, b.completed_by, b.cancelled_at
		FROM batches b
		WHERE b.seller_id = $1
		  AND b.status = 'completed'
		  AND EXISTS (SELECT 1 FROM orders o WHERE o.batch_id = b.batch_id)
	`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("could not list completed batches: %w", err)
	}

	return batches, nil
}

func (r BatchRepository) SellersWithCompletedBatches(ctx context.Context) ([]uuid.UUID, error) {
	var sellers []uuid.UUID
	err := r.db.Conn.SelectContext(ctx, &sellers, `
		SELECT DISTINCT b.seller_id
		FROM batches b
		WHERE b.status = 'completed'
		  AND EXISTS (SELECT 1 FROM orders o WHERE o.batch_id = b.batch_id)
	`)
	if err != nil {
		return nil, fmt.Errorf("could not list sellers with completed batches: %w", err)
	}

	return sellers, nil
}

// CompletePickup transitions the batch's remaining paid orders and the batch
// itself in one transaction. Both statements are conditional on the current
// state, so concurrent verifications, manual retries and the healer all
// converge on the same end state without locking each other out.
func (r BatchRepository) CompletePickup(ctx context.Context, batchID uuid.UUID, actor string) (entities.PickupResult, error) {
	var result entities.PickupResult

	err := updateInTx(ctx, r.db.Conn, sql.LevelReadCommitted, func(ctx context.Context, tx *sqlx.Tx) error {
		var current entities.Batch
		if err := tx.GetContext(ctx, &current, `
			SELECT batch_id, buyer_id, seller_id, show_id, status, completion_code, created_at, completed_at, completed_by, cancelled_at
			FROM batches
			WHERE batch_id = $1
			FOR UPDATE
		`, batchID); err != nil {
			return fmt.Errorf("could not load batch: %w", err)
		}

		if current.Status == entities.BatchCancelled {
			return fulfillment.ErrBatchCancelled
		}

		result.AlreadyCompleted = current.Status == entities.BatchCompleted

		if err := tx.SelectContext(ctx, &result.PickedOrderIDs, `
			UPDATE orders
			SET status = 'picked_up', picked_up_at = now(), picked_up_by = $2
			WHERE batch_id = $1 AND status = 'paid'
			RETURNING order_id
		`, batchID, actor); err != nil {
			return fmt.Errorf("could not transition orders: %w", err)
		}

		if !result.AlreadyCompleted {
			if _, err := tx.ExecContext(ctx, `
				UPDATE batches
				SET status = 'completed', completed_at = now(), completed_by = $2
				WHERE batch_id = $1 AND status IN ('pending', 'partial')
			`, batchID, actor); err != nil {
				return fmt.Errorf("could not complete batch: %w", err)
			}
		}

		if err := tx.GetContext(ctx, &result.Batch, `
			SELECT batch_id, buyer_id, seller_id, show_id, status, completion_code, created_at, completed_at, completed_by, cancelled_at
			FROM batches
			WHERE batch_id = $1
		`, batchID); err != nil {
			return fmt.Errorf("could not reload batch: %w", err)
		}

		return nil
	})
	if err != nil {
		return entities.PickupResult{}, err
	}

	return result, nil
}

// RecomputeStatus re-derives the batch status from its orders after a
// single-order pickup. Completed and cancelled batches are never downgraded.
func (r BatchRepository) RecomputeStatus(ctx context.Context, batchID uuid.UUID) (entities.BatchStatus, error) {
	var status entities.BatchStatus

	err := updateInTx(ctx, r.db.Conn, sql.LevelRepeatableRead, func(ctx context.Context, tx *sqlx.Tx) error {
		var current entities.Batch
		if err := tx.GetContext(ctx, &current, `
			SELECT batch_id, buyer_id, seller_id, show_id, status, completion_code, created_at, completed_at, completed_by, cancelled_at
			FROM batches
			WHERE batch_id = $1
			FOR UPDATE
		`, batchID); err != nil {
			return fmt.Errorf("could not load batch: %w", err)
		}

		if current.Status == entities.BatchCompleted || current.Status == entities.BatchCancelled {
			status = current.Status
			return nil
		}

		var counts struct {
			Total  int `db:"total"`
			Picked int `db:"picked"`
		}
		if err := tx.GetContext(ctx, &counts, `
			SELECT
				count(*) FILTER (WHERE status IN ('paid', 'picked_up')) AS total,
				count(*) FILTER (WHERE status = 'picked_up') AS picked
			FROM orders
			WHERE batch_id = $1
		`, batchID); err != nil {
			return fmt.Errorf("could not count batch orders: %w", err)
		}

		switch {
		case counts.Total > 0 && counts.Picked == counts.Total:
			status = entities.BatchCompleted
			_, err := tx.ExecContext(ctx, `
				UPDATE batches
				SET status = 'completed', completed_at = now(), completed_by = 'recompute'
				WHERE batch_id = $1
			`, batchID)
			return err
		case counts.Picked > 0:
			status = entities.BatchPartial
			_, err := tx.ExecContext(ctx, `UPDATE batches SET status = 'partial' WHERE batch_id = $1`, batchID)
			return err
		default:
			status = entities.BatchPending
			return nil
		}
	})
	if err != nil {
		return "", err
	}

	return status, nil
}

// Cancel is only valid from pending and partial; the WHERE clause is the
// state machine guard.
func (r BatchRepository) Cancel(ctx context.Context, batchID uuid.UUID, actor string) (bool, error) {
	res, err := r.db.Conn.ExecContext(ctx, `
		UPDATE batches
		SET status = 'cancelled', cancelled_at = now()
		WHERE batch_id = $1 AND status IN ('pending', 'partial')
	`, batchID)
	if err != nil {
		return false, fmt.Errorf("could not cancel batch: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// newCompletionCode draws a fixed-length numeric code from crypto/rand.
func newCompletionCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < entities.CompletionCodeLength; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", entities.CompletionCodeLength, n), nil
}
