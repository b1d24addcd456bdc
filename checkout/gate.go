package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"liveshop/entities"
	"liveshop/metrics"
	"liveshop/session"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
)

// Rejection reasons. Each is surfaced distinctly so the caller can present a
// specific message rather than a generic failure.
var (
	ErrBuyingClosed     = errors.New("show is not live, buying is closed")
	ErrAuthRequired     = errors.New("buyer authentication required")
	ErrSoldOut          = errors.New("product is sold out or locked")
	ErrAlreadyInFlight  = errors.New("a pending checkout already exists for this product")
	ErrIntentNotPending = errors.New("intent is not pending")
)

type ShowRepository interface {
	ByID(ctx context.Context, showID uuid.UUID) (entities.Show, error)
}

type ProductRepository interface {
	ByID(ctx context.Context, productID uuid.UUID) (entities.ShowProduct, error)
}

type IntentRepository interface {
	// CreatePendingIfAbsent must be a single conditional write against the
	// (buyer, product) pending-uniqueness key. A second pending intent for
	// the same pair returns ErrAlreadyInFlight.
	CreatePendingIfAbsent(ctx context.Context, intent entities.CheckoutIntent) error
	MarkFulfilled(ctx context.Context, intentID uuid.UUID) (bool, error)
	MarkFailed(ctx context.Context, intentID uuid.UUID, reason string) (bool, error)
	CancelOwned(ctx context.Context, intentID, buyerID uuid.UUID) (bool, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// DefaultPendingTTL bounds how long an unresolved intent blocks the
// uniqueness slot before the reaper frees it.
const DefaultPendingTTL = 5 * time.Minute

// Gate is the single-writer guard between the buy gesture and payment
// capture. It never mutates inventory; that belongs to settlement.
type Gate struct {
	shows    ShowRepository
	products ProductRepository
	intents  IntentRepository
	eventBus EventPublisher

	pendingTTL time.Duration
}

func NewGate(
	shows ShowRepository,
	products ProductRepository,
	intents IntentRepository,
	eventBus EventPublisher,
) *Gate {
	if shows == nil {
		panic("shows repository is nil")
	}
	if products == nil {
		panic("products repository is nil")
	}
	if intents == nil {
		panic("intents repository is nil")
	}

	return &Gate{
		shows:      shows,
		products:   products,
		intents:    intents,
		eventBus:   eventBus,
		pendingTTL: DefaultPendingTTL,
	}
}

type BeginRequest struct {
	BuyerID   uuid.UUID
	ShowID    uuid.UUID
	ProductID uuid.UUID
	Claims    entities.Claims
}

// Begin reserves a checkout slot for (buyer, product). Preconditions are
// checked in order and short-circuit: session gating, authentication,
// product availability against a fresh read, then the conditional create
// that enforces at most one pending intent per pair.
func (g *Gate) Begin(ctx context.Context, req BeginRequest) (entities.CheckoutIntent, error) {
	bypass := req.Claims.BypassGating

	show, err := g.shows.ByID(ctx, req.ShowID)
	if err != nil {
		return entities.CheckoutIntent{}, fmt.Errorf("could not read show: %w", err)
	}

	if state := session.DeriveSessionState(show); !state.CanBuy && !bypass {
		metrics.IntentsRejected.WithLabelValues("buying_closed").Inc()
		return entities.CheckoutIntent{}, ErrBuyingClosed
	}

	if req.BuyerID == uuid.Nil {
		metrics.IntentsRejected.WithLabelValues("auth_required").Inc()
		return entities.CheckoutIntent{}, ErrAuthRequired
	}

	// availability is re-checked against the latest read, never a cached
	// projection, to avoid buying against stale data
	product, err := g.products.ByID(ctx, req.ProductID)
	if err != nil {
		return entities.CheckoutIntent{}, fmt.Errorf("could not read product: %w", err)
	}
	if product.IsGiveaway || !product.IsAvailable || product.Quantity <= 0 {
		metrics.IntentsRejected.WithLabelValues("sold_out").Inc()
		return entities.CheckoutIntent{}, ErrSoldOut
	}

	now := time.Now().UTC()
	intent := entities.CheckoutIntent{
		IntentID:  uuid.New(),
		BuyerID:   req.BuyerID,
		ShowID:    req.ShowID,
		ProductID: req.ProductID,
		Status:    entities.IntentPending,
		CreatedAt: now,
		ExpiresAt: now.Add(g.pendingTTL),
	}

	if err := g.intents.CreatePendingIfAbsent(ctx, intent); err != nil {
		if errors.Is(err, ErrAlreadyInFlight) {
			metrics.IntentsRejected.WithLabelValues("already_in_flight").Inc()
			return entities.CheckoutIntent{}, ErrAlreadyInFlight
		}
		return entities.CheckoutIntent{}, fmt.Errorf("could not create checkout intent: %w", err)
	}

	metrics.IntentsCreated.Inc()
	g.publish(ctx, entities.CheckoutIntentCreated_v1{
		Header:    entities.NewEventHeaderWithIdempotencyKey(intent.IntentID.String()),
		IntentID:  intent.IntentID,
		BuyerID:   intent.BuyerID,
		ShowID:    intent.ShowID,
		ProductID: intent.ProductID,
		ExpiresAt: intent.ExpiresAt,
	})

	return intent, nil
}

// Fulfill is called back by the payment flow once capture succeeded.
func (g *Gate) Fulfill(ctx context.Context, intentID uuid.UUID) error {
	done, err := g.intents.MarkFulfilled(ctx, intentID)
	if err != nil {
		return fmt.Errorf("could not fulfill intent: %w", err)
	}
	if !done {
		return ErrIntentNotPending
	}

	g.publish(ctx, entities.CheckoutIntentResolved_v1{
		Header:   entities.NewEventHeaderWithIdempotencyKey(intentID.String() + "-fulfilled"),
		IntentID: intentID,
		Status:   entities.IntentFulfilled,
	})
	return nil
}

// Fail frees the uniqueness slot immediately on a terminal payment failure
// instead of waiting for expiry.
func (g *Gate) Fail(ctx context.Context, intentID uuid.UUID, reason string) error {
	done, err := g.intents.MarkFailed(ctx, intentID, reason)
	if err != nil {
		return fmt.Errorf("could not fail intent: %w", err)
	}
	if !done {
		return ErrIntentNotPending
	}

	g.publish(ctx, entities.CheckoutIntentResolved_v1{
		Header:   entities.NewEventHeaderWithIdempotencyKey(intentID.String() + "-failed"),
		IntentID: intentID,
		Status:   entities.IntentFailed,
		Reason:   reason,
	})
	return nil
}

// Cancel lets the owning buyer abort a pending intent at any time prior to
// fulfillment. Cancellation converges to the failed bucket.
func (g *Gate) Cancel(ctx context.Context, intentID, buyerID uuid.UUID) error {
	done, err := g.intents.CancelOwned(ctx, intentID, buyerID)
	if err != nil {
		return fmt.Errorf("could not cancel intent: %w", err)
	}
	if !done {
		return ErrIntentNotPending
	}

	g.publish(ctx, entities.CheckoutIntentResolved_v1{
		Header:   entities.NewEventHeaderWithIdempotencyKey(intentID.String() + "-cancelled"),
		IntentID: intentID,
		Status:   entities.IntentFailed,
		Reason:   "cancelled by buyer",
	})
	return nil
}

// SweepExpired moves timed-out pending intents to expired, releasing their
// uniqueness slots. Run periodically by the reconciliation tasks.
func (g *Gate) SweepExpired(ctx context.Context) (int64, error) {
	swept, err := g.intents.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("could not sweep expired intents: %w", err)
	}

	metrics.IntentsSwept.Add(float64(swept))
	return swept, nil
}

// event publishing around intents is informational; losing an event must not
// fail the checkout path
func (g *Gate) publish(ctx context.Context, event any) {
	if g.eventBus == nil {
		return
	}
	if err := g.eventBus.Publish(ctx, event); err != nil {
		log.FromContext(ctx).WithField("error", err.Error()).Error("Failed to publish checkout event")
	}
}
