package command

import (
	"context"

	"github.com/google/uuid"
)

type BatchHealer interface {
	Heal(ctx context.Context, sellerID uuid.UUID) (int, error)
}

type BatchCanceller interface {
	CancelBatch(ctx context.Context, batchID uuid.UUID, actor string) error
}

type Handler struct {
	healer    BatchHealer
	canceller BatchCanceller
}

func NewHandler(healer BatchHealer, canceller BatchCanceller) Handler {
	if healer == nil {
		panic("healer is required")
	}
	if canceller == nil {
		panic("canceller is required")
	}

	return Handler{
		healer:    healer,
		canceller: canceller,
	}
}
