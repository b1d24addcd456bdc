package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"liveshop/entities"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type readModelPublisher interface {
	Publish(ctx context.Context, event any) error
}

// FulfillmentReadModel projects fulfillment events into one denormalized
// JSON document per batch, served to the ops dashboard. It is rebuilt purely
// from events, so replaying the stream reproduces it.
type FulfillmentReadModel struct {
	conn     *DB
	eventBus readModelPublisher
}

func NewFulfillmentReadModel(db *DB, eventBus readModelPublisher) FulfillmentReadModel {
	if db == nil {
		panic("db is nil")
	}
	return FulfillmentReadModel{
		conn:     db,
		eventBus: eventBus,
	}
}

// OnOrderBatched is the first event for a batch; it creates the document if
// needed and adds the order entry.
func (r FulfillmentReadModel) OnOrderBatched(ctx context.Context, event *entities.OrderBatched_v1) error {
	var row struct {
		SellerID  uuid.UUID `db:"seller_id"`
		Status    string    `db:"status"`
		CreatedAt time.Time `db:"created_at"`
	}
	err := r.conn.Conn.GetContext(ctx, &row, `
		SELECT seller_id, status, created_at FROM batches WHERE batch_id = $1
	`, event.BatchID)
	if err != nil {
		return fmt.Errorf("could not load batch for read model: %w", err)
	}

	var productID uuid.UUID
	err = r.conn.Conn.GetContext(ctx, &productID, `
		SELECT product_id FROM orders WHERE order_id = $1
	`, event.OrderID)
	if err != nil {
		return fmt.Errorf("could not load order for read model: %w", err)
	}

	err = r.createReadModel(ctx, entities.OpsBatch{
		BatchID:    event.BatchID,
		BuyerID:    event.BuyerID,
		SellerID:   row.SellerID,
		ShowID:     event.ShowID,
		Status:     row.Status,
		Orders:     map[string]entities.OpsOrder{},
		CreatedAt:  row.CreatedAt,
		LastUpdate: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("could not create read model: %w", err)
	}

	err = r.updateBatchReadModel(ctx, event.BatchID, func(rm entities.OpsBatch) (entities.OpsBatch, error) {
		order := rm.Orders[event.OrderID.String()]
		order.ProductID = productID
		if order.Status == "" {
			order.Status = string(entities.OrderPaid)
		}
		rm.Orders[event.OrderID.String()] = order
		return rm, nil
	})
	if err != nil {
		return err
	}

	r.publishUpdated(ctx, event.BatchID)
	return nil
}

func (r FulfillmentReadModel) OnOrderPickedUp(ctx context.Context, event *entities.OrderPickedUp_v1) error {
	err := r.updateBatchReadModel(ctx, event.BatchID, func(rm entities.OpsBatch) (entities.OpsBatch, error) {
		order := rm.Orders[event.OrderID.String()]
		order.Status = string(entities.OrderPickedUp)
		order.PickedUpAt = event.PickedUpAt
		order.PickedUpBy = event.PickedUpBy
		rm.Orders[event.OrderID.String()] = order
		return rm, nil
	})
	if err != nil {
		return err
	}

	r.publishUpdated(ctx, event.BatchID)
	return nil
}

func (r FulfillmentReadModel) OnBatchPickupCompleted(ctx context.Context, event *entities.BatchPickupCompleted_v1) error {
	err := r.updateBatchReadModel(ctx, event.BatchID, func(rm entities.OpsBatch) (entities.OpsBatch, error) {
		rm.Status = string(entities.BatchCompleted)
		return rm, nil
	})
	if err != nil {
		return err
	}

	r.publishUpdated(ctx, event.BatchID)
	return nil
}

func (r FulfillmentReadModel) OnBatchCancelled(ctx context.Context, event *entities.BatchCancelled_v1) error {
	err := r.updateBatchReadModel(ctx, event.BatchID, func(rm entities.OpsBatch) (entities.OpsBatch, error) {
		rm.Status = string(entities.BatchCancelled)
		return rm, nil
	})
	if err != nil {
		return err
	}

	r.publishUpdated(ctx, event.BatchID)
	return nil
}

func (r FulfillmentReadModel) AllBatches(ctx context.Context) ([]entities.OpsBatch, error) {
	var payloads [][]byte
	err := r.conn.Conn.SelectContext(ctx, &payloads, `
		SELECT payload FROM read_model_fulfillment ORDER BY batch_id
	`)
	if err != nil {
		return nil, fmt.Errorf("could not list read models: %w", err)
	}

	batches := make([]entities.OpsBatch, 0, len(payloads))
	for _, payload := range payloads {
		rm, err := r.unmarshalReadModelFromDB(payload)
		if err != nil {
			return nil, err
		}
		batches = append(batches, rm)
	}

	return batches, nil
}

func (r FulfillmentReadModel) BatchByID(ctx context.Context, batchID uuid.UUID) (entities.OpsBatch, error) {
	var payload []byte
	err := r.conn.Conn.QueryRowContext(
		ctx,
		"SELECT payload FROM read_model_fulfillment WHERE batch_id = $1",
		batchID,
	).Scan(&payload)
	if err != nil {
		return entities.OpsBatch{}, err
	}

	return r.unmarshalReadModelFromDB(payload)
}

func (r FulfillmentReadModel) createReadModel(ctx context.Context, opsBatch entities.OpsBatch) error {
	payload, err := json.Marshal(opsBatch)
	if err != nil {
		return err
	}

	_, err = r.conn.Conn.ExecContext(ctx, `
		INSERT INTO
			read_model_fulfillment (payload, batch_id)
		VALUES
			($1, $2)
		ON CONFLICT (batch_id) DO NOTHING; -- another event may have created it already
	`, payload, opsBatch.BatchID)
	if err != nil {
		return fmt.Errorf("could not create read model: %w", err)
	}

	return nil
}

func (r FulfillmentReadModel) updateBatchReadModel(
	ctx context.Context,
	batchID uuid.UUID,
	updateFunc func(rm entities.OpsBatch) (entities.OpsBatch, error),
) error {
	return updateInTx(
		ctx,
		r.conn.Conn,
		sql.LevelRepeatableRead,
		func(ctx context.Context, tx *sqlx.Tx) error {
			rm, err := r.findModelByBatchID(ctx, batchID, tx)
			if err == sql.ErrNoRows {
				// events arrived out of order - the handler retries until
				// OrderBatched created the document
				return fmt.Errorf("read model for batch %s does not exist yet", batchID)
			} else if err != nil {
				return fmt.Errorf("could not find read model: %w", err)
			}

			updatedRm, err := updateFunc(rm)
			if err != nil {
				return err
			}

			return r.updateModel(ctx, tx, updatedRm)
		},
	)
}

func (r FulfillmentReadModel) updateModel(ctx context.Context, tx *sqlx.Tx, readModel entities.OpsBatch) error {
	readModel.LastUpdate = time.Now()

	payload, err := json.Marshal(readModel)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO
			read_model_fulfillment (payload, batch_id)
		VALUES
			($1, $2)
		ON CONFLICT (batch_id) DO UPDATE SET payload = excluded.payload;
	`, payload, readModel.BatchID)
	if err != nil {
		return fmt.Errorf("could not update read model: %w", err)
	}

	return nil
}

func (r FulfillmentReadModel) findModelByBatchID(ctx context.Context, batchID uuid.UUID, tx *sqlx.Tx) (entities.OpsBatch, error) {
	var payload []byte

	err := tx.QueryRowContext(
		ctx,
		"SELECT payload FROM read_model_fulfillment WHERE batch_id = $1",
		batchID,
	).Scan(&payload)
	if err != nil {
		return entities.OpsBatch{}, err
	}

	return r.unmarshalReadModelFromDB(payload)
}

func (r FulfillmentReadModel) unmarshalReadModelFromDB(payload []byte) (entities.OpsBatch, error) {
	var rm entities.OpsBatch

	if err := json.Unmarshal(payload, &rm); err != nil {
		return entities.OpsBatch{}, err
	}

	if rm.Orders == nil {
		rm.Orders = map[string]entities.OpsOrder{}
	}
	return rm, nil
}

func (r FulfillmentReadModel) publishUpdated(ctx context.Context, batchID uuid.UUID) {
	if r.eventBus == nil {
		return
	}

	err := r.eventBus.Publish(ctx, entities.InternalFulfillmentReadModelUpdated{
		Header:  entities.NewEventHeader(),
		BatchID: batchID,
	})
	if err != nil {
		log.FromContext(ctx).WithField("error", err.Error()).Error("Failed to publish read model updated event")
	}
}
