package http

import (
	"context"

	"liveshop/checkout"
	"liveshop/entities"
	"liveshop/fulfillment"
	"liveshop/session"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/google/uuid"
)

type Handler struct {
	eventBus *cqrs.EventBus
	cmdBus   *cqrs.CommandBus

	showRepo    ShowRepository
	productRepo ProductRepository
	opsRepo     OpsFulfillmentRepository

	gate      *checkout.Gate
	verifier  *fulfillment.Verifier
	snapshots *session.SnapshotStore
}

type ShowRepository interface {
	Create(ctx context.Context, show entities.Show) (entities.ShowCreateResponse, error)
	ByID(ctx context.Context, showID uuid.UUID) (entities.Show, error)
	UpdateStreamPhase(ctx context.Context, showID uuid.UUID, phase entities.StreamPhase) (bool, error)
	UpdateLifecycle(ctx context.Context, showID uuid.UUID, status entities.ShowLifecycle) (bool, error)
	SetFeaturedProduct(ctx context.Context, showID uuid.UUID, productID *uuid.UUID) error
}

type ProductRepository interface {
	Create(ctx context.Context, product entities.ShowProduct) (entities.ProductCreateResponse, error)
	ByShow(ctx context.Context, showID uuid.UUID) ([]entities.ShowProduct, error)
}

type OpsFulfillmentRepository interface {
	AllBatches(ctx context.Context) ([]entities.OpsBatch, error)
	BatchByID(ctx context.Context, batchID uuid.UUID) (entities.OpsBatch, error)
}
