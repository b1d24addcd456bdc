package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"liveshop/entities"

	"github.com/google/uuid"
)

type OrderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) OrderRepository {
	if db == nil {
		panic("db is nil")
	}
	return OrderRepository{
		db: db,
	}
}

func (r OrderRepository) ByID(ctx context.Context, orderID uuid.UUID) (entities.Order, error) {
	var order entities.Order
	err := r.db.Conn.GetContext(ctx, &order, `
		SELECT
			order_id,
			batch_id,
			buyer_id,
			seller_id,
			show_id,
			product_id,
			status,
			price_amount AS "price.amount",
			price_currency AS "price.currency",
			paid_at,
			picked_up_at,
			picked_up_by
		FROM
			orders
		WHERE
			order_id = $1
	`, orderID)
	if err != nil {
		return entities.Order{}, fmt.Errorf("could not get order: %w", err)
	}

	return order, nil
}

func (r OrderRepository) ByBatch(ctx context.Context, batchID uuid.UUID) ([]entities.Order, error) {
	var orders []entities.Order
	err := r.db.Conn.SelectContext(ctx, &orders, `
		SELECT
			order_id,
			batch_id,
			buyer_id,
			seller_id,
			show_id,
			product_id,
			status,
			price_amount AS "price.amount",
			price_currency AS "price.currency",
			paid_at,
			picked_up_at,
			picked_up_by
		FROM
			orders
		WHERE
			batch_id = $1
		ORDER BY
			paid_at
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("could not list orders for batch %s: %w", batchID, err)
	}

	return orders, nil
}

// HealBatchOrders is the healer's single repair statement: every paid order
// under the batch moves to picked_up in one conditional update. Orders that
// already transitioned, or sit in a terminal state, are untouched, which is
// what makes repeated healing passes no-ops.
func (r OrderRepository) HealBatchOrders(ctx context.Context, batchID uuid.UUID, actor string) ([]uuid.UUID, error) {
	var orderIDs []uuid.UUID
	err := r.db.Conn.SelectContext(ctx, &orderIDs, `
		UPDATE orders
		SET status = 'picked_up', picked_up_at = now(), picked_up_by = $2
		WHERE batch_id = $1 AND status = 'paid'
		RETURNING order_id
	`, batchID, actor)
	if err != nil {
		return nil, fmt.Errorf("could not heal orders for batch %s: %w", batchID, err)
	}

	return orderIDs, nil
}

// MarkPickedUp transitions a single order paid -> picked_up. Returns nil
// without error when the order exists but is not in paid state.
func (r OrderRepository) MarkPickedUp(ctx context.Context, orderID uuid.UUID, actor string) (*entities.Order, error) {
	var order entities.Order
	err := r.db.Conn.GetContext(ctx, &order, `
		UPDATE orders
		SET status = 'picked_up', picked_up_at = now(), picked_up_by = $2
		WHERE order_id = $1 AND status = 'paid'
		RETURNING
			order_id,
			batch_id,
			buyer_id,
			seller_id,
			show_id,
			product_id,
			status,
			price_amount AS "price.amount",
			price_currency AS "price.currency",
			paid_at,
			picked_up_at,
			picked_up_by
	`, orderID, actor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not mark order picked up: %w", err)
	}

	return &order, nil
}
