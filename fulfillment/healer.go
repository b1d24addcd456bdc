package fulfillment

import (
	"context"
	"fmt"
	"time"

	"liveshop/entities"
	"liveshop/metrics"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
)

type BatchRepository interface {
	ByID(ctx context.Context, batchID uuid.UUID) (entities.Batch, error)
	// CompletedBySeller lists the seller's completed batches that contain at
	// least one order. Empty batches are not fulfillment units.
	CompletedBySeller(ctx context.Context, sellerID uuid.UUID) ([]entities.Batch, error)
	// CompletePickup atomically transitions the batch's remaining paid
	// orders to picked_up and the batch to completed.
	CompletePickup(ctx context.Context, batchID uuid.UUID, actor string) (entities.PickupResult, error)
	RecomputeStatus(ctx context.Context, batchID uuid.UUID) (entities.BatchStatus, error)
	Cancel(ctx context.Context, batchID uuid.UUID, actor string) (bool, error)
	SellersWithCompletedBatches(ctx context.Context) ([]uuid.UUID, error)
}

type OrderRepository interface {
	ByBatch(ctx context.Context, batchID uuid.UUID) ([]entities.Order, error)
	// HealBatchOrders moves every paid order of the batch to picked_up in a
	// single conditional update and returns the repaired order IDs.
	HealBatchOrders(ctx context.Context, batchID uuid.UUID, actor string) ([]uuid.UUID, error)
	MarkPickedUp(ctx context.Context, orderID uuid.UUID, actor string) (*entities.Order, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Healer repairs batches whose completed state has drifted from their
// orders: a verification that updated the batch but was interrupted before
// updating every order leaves paid orders under a completed batch. Healing
// only ever moves orders forward (paid -> picked_up) and only under an
// already-completed batch, so repeated and concurrent passes are no-ops once
// the data is consistent.
type Healer struct {
	batches  BatchRepository
	orders   OrderRepository
	eventBus EventPublisher
}

func NewHealer(batches BatchRepository, orders OrderRepository, eventBus EventPublisher) *Healer {
	if batches == nil {
		panic("batches repository is nil")
	}
	if orders == nil {
		panic("orders repository is nil")
	}

	return &Healer{
		batches:  batches,
		orders:   orders,
		eventBus: eventBus,
	}
}

// Heal runs one reconciliation pass over the seller's completed batches and
// returns how many orders were repaired. A failure on one batch never blocks
// healing of the others.
func (h *Healer) Heal(ctx context.Context, sellerID uuid.UUID) (int, error) {
	batches, err := h.batches.CompletedBySeller(ctx, sellerID)
	if err != nil {
		return 0, fmt.Errorf("could not list completed batches for seller %s: %w", sellerID, err)
	}

	healed := 0
	for _, batch := range batches {
		orderIDs, err := h.orders.HealBatchOrders(ctx, batch.BatchID, entities.ActorAutoHeal)
		if err != nil {
			log.FromContext(ctx).
				WithField("batch_id", batch.BatchID).
				WithField("error", err.Error()).
				Error("Failed to heal batch, continuing with the rest")
			continue
		}

		if len(orderIDs) == 0 {
			continue
		}

		healed += len(orderIDs)
		metrics.OrdersHealed.Add(float64(len(orderIDs)))

		log.FromContext(ctx).
			WithField("batch_id", batch.BatchID).
			WithField("orders", len(orderIDs)).
			Info("Healed drifted batch orders")

		for _, orderID := range orderIDs {
			h.publishPickedUp(ctx, orderID, batch.BatchID)
		}
	}

	return healed, nil
}

// HealAll runs a pass for every seller that currently owns completed
// batches.
func (h *Healer) HealAll(ctx context.Context) (int, error) {
	sellers, err := h.batches.SellersWithCompletedBatches(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not list sellers with completed batches: %w", err)
	}

	healed := 0
	for _, sellerID := range sellers {
		n, err := h.Heal(ctx, sellerID)
		if err != nil {
			log.FromContext(ctx).
				WithField("seller_id", sellerID).
				WithField("error", err.Error()).
				Error("Heal pass failed for seller, continuing")
			continue
		}
		healed += n
	}

	return healed, nil
}

func (h *Healer) publishPickedUp(ctx context.Context, orderID, batchID uuid.UUID) {
	if h.eventBus == nil {
		return
	}

	err := h.eventBus.Publish(ctx, entities.OrderPickedUp_v1{
		Header:     entities.NewEventHeaderWithIdempotencyKey(orderID.String() + "-picked-up"),
		OrderID:    orderID,
		BatchID:    batchID,
		PickedUpBy: entities.ActorAutoHeal,
		PickedUpAt: time.Now().UTC(),
	})
	if err != nil {
		log.FromContext(ctx).WithField("error", err.Error()).Error("Failed to publish OrderPickedUp event")
	}
}
