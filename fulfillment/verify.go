package fulfillment

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"liveshop/entities"
	"liveshop/metrics"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
)

var (
	ErrInvalidCode         = errors.New("completion code does not match")
	ErrBatchCancelled      = errors.New("batch is cancelled")
	ErrBatchNotCancellable = errors.New("batch can only be cancelled from pending or partial")
	ErrOrderNotPaid        = errors.New("order is not in paid state")
)

// VerifyResult reports a pickup verification outcome. Re-verifying an
// already-completed batch succeeds with zero transitions.
type VerifyResult struct {
	BatchID            uuid.UUID `json:"batch_id"`
	TransitionedOrders int       `json:"transitioned_orders"`
	AlreadyCompleted   bool      `json:"already_completed"`
}

// Verifier owns the forward-only batch pickup state machine
// (pending -> partial -> completed, cancelled from pending/partial only).
// It shares its atomic primitives with the Healer: correctness under
// concurrent callers comes from idempotent conditional transitions, not
// locks.
type Verifier struct {
	batches  BatchRepository
	orders   OrderRepository
	eventBus EventPublisher
}

func NewVerifier(batches BatchRepository, orders OrderRepository, eventBus EventPublisher) *Verifier {
	if batches == nil {
		panic("batches repository is nil")
	}
	if orders == nil {
		panic("orders repository is nil")
	}

	return &Verifier{
		batches:  batches,
		orders:   orders,
		eventBus: eventBus,
	}
}

// Verify validates a seller-entered completion code against the batch and,
// on match, transitions the batch's remaining paid orders and the batch
// itself in one atomic step. A mismatch mutates nothing.
func (v *Verifier) Verify(ctx context.Context, batchID uuid.UUID, enteredCode, actor string) (VerifyResult, error) {
	batch, err := v.batches.ByID(ctx, batchID)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("could not read batch: %w", err)
	}

	if !codeMatches(enteredCode, batch.CompletionCode) {
		metrics.PickupVerifications.WithLabelValues("invalid_code").Inc()
		return VerifyResult{}, ErrInvalidCode
	}

	result, err := v.batches.CompletePickup(ctx, batchID, actor)
	if errors.Is(err, ErrBatchCancelled) {
		metrics.PickupVerifications.WithLabelValues("cancelled").Inc()
		return VerifyResult{}, ErrBatchCancelled
	}
	if err != nil {
		return VerifyResult{}, fmt.Errorf("could not complete pickup: %w", err)
	}

	for _, orderID := range result.PickedOrderIDs {
		v.publish(ctx, entities.OrderPickedUp_v1{
			Header:     entities.NewEventHeaderWithIdempotencyKey(orderID.String() + "-picked-up"),
			OrderID:    orderID,
			BatchID:    batchID,
			PickedUpBy: actor,
			PickedUpAt: time.Now().UTC(),
		})
	}

	if result.AlreadyCompleted {
		// seller retried after a timeout, or healing already caught up;
		// the completion notification was sent the first time around
		metrics.PickupVerifications.WithLabelValues("noop").Inc()
		return VerifyResult{
			BatchID:            batchID,
			TransitionedOrders: len(result.PickedOrderIDs),
			AlreadyCompleted:   true,
		}, nil
	}

	metrics.PickupVerifications.WithLabelValues("completed").Inc()
	v.notifyCompleted(ctx, result.Batch, result.PickedOrderIDs, actor)

	return VerifyResult{
		BatchID:            batchID,
		TransitionedOrders: len(result.PickedOrderIDs),
	}, nil
}

// MarkOrderPickedUp hands a single order over the counter and recomputes the
// batch status, which is how batches reach partial.
func (v *Verifier) MarkOrderPickedUp(ctx context.Context, orderID uuid.UUID, actor string) (entities.BatchStatus, error) {
	order, err := v.orders.MarkPickedUp(ctx, orderID, actor)
	if err != nil {
		return "", fmt.Errorf("could not mark order picked up: %w", err)
	}
	if order == nil {
		return "", ErrOrderNotPaid
	}

	if order.BatchID == nil {
		return "", nil
	}

	status, err := v.batches.RecomputeStatus(ctx, *order.BatchID)
	if err != nil {
		return "", fmt.Errorf("could not recompute batch status: %w", err)
	}

	v.publish(ctx, entities.OrderPickedUp_v1{
		Header:     entities.NewEventHeaderWithIdempotencyKey(orderID.String() + "-picked-up"),
		OrderID:    orderID,
		BatchID:    *order.BatchID,
		PickedUpBy: actor,
		PickedUpAt: time.Now().UTC(),
	})

	if status == entities.BatchCompleted {
		batch, err := v.batches.ByID(ctx, *order.BatchID)
		if err != nil {
			log.FromContext(ctx).WithField("error", err.Error()).Error("Failed to load batch for completion notice")
			return status, nil
		}
		v.notifyCompleted(ctx, batch, []uuid.UUID{orderID}, actor)
	}

	return status, nil
}

// CancelBatch is the guarded cancel transition, reachable from pending and
// partial only.
func (v *Verifier) CancelBatch(ctx context.Context, batchID uuid.UUID, actor string) error {
	batch, err := v.batches.ByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("could not read batch: %w", err)
	}

	done, err := v.batches.Cancel(ctx, batchID, actor)
	if err != nil {
		return fmt.Errorf("could not cancel batch: %w", err)
	}
	if !done {
		return ErrBatchNotCancellable
	}

	v.publish(ctx, entities.BatchCancelled_v1{
		Header:      entities.NewEventHeaderWithIdempotencyKey(batchID.String() + "-cancelled"),
		BatchID:     batchID,
		BuyerID:     batch.BuyerID,
		CancelledBy: actor,
	})
	return nil
}

// notifyCompleted emits the review request downstream. Best-effort: its
// failure never rolls back the pickup transition.
func (v *Verifier) notifyCompleted(ctx context.Context, batch entities.Batch, pickedOrders []uuid.UUID, actor string) {
	if v.eventBus == nil {
		return
	}

	representative := uuid.Nil
	if len(pickedOrders) > 0 {
		representative = pickedOrders[0]
	}

	err := v.eventBus.Publish(ctx, entities.BatchPickupCompleted_v1{
		Header:                entities.NewEventHeaderWithIdempotencyKey(batch.BatchID.String() + "-completed"),
		BatchID:               batch.BatchID,
		BuyerID:               batch.BuyerID,
		SellerID:              batch.SellerID,
		ShowID:                batch.ShowID,
		CompletedBy:           actor,
		RepresentativeOrderID: representative,
	})
	if err != nil {
		log.FromContext(ctx).
			WithField("batch_id", batch.BatchID).
			WithField("error", err.Error()).
			Error("Failed to publish BatchPickupCompleted event")
	}
}

func (v *Verifier) publish(ctx context.Context, event any) {
	if v.eventBus == nil {
		return
	}
	if err := v.eventBus.Publish(ctx, event); err != nil {
		log.FromContext(ctx).WithField("error", err.Error()).Error("Failed to publish fulfillment event")
	}
}

// codeMatches normalizes and compares entered and stored codes without
// leaking timing information beyond a flat comparison.
func codeMatches(entered, stored string) bool {
	entered = strings.TrimSpace(entered)
	return subtle.ConstantTimeCompare([]byte(entered), []byte(stored)) == 1
}
