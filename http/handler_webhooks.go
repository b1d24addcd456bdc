package http

import (
	"fmt"
	"net/http"

	"liveshop/entities"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type settlementWebhookRequest struct {
	OrderID   uuid.UUID      `json:"order_id"`
	BuyerID   uuid.UUID      `json:"buyer_id"`
	SellerID  uuid.UUID      `json:"seller_id"`
	ShowID    uuid.UUID      `json:"show_id"`
	ProductID uuid.UUID      `json:"product_id"`
	Price     entities.Money `json:"price"`
}

// PostSettlementWebhook bridges the settlement provider into the event
// stream. The Idempotency-Key header deduplicates provider retries.
func (h *Handler) PostSettlementWebhook(c echo.Context) error {
	var request settlementWebhookRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")
	if idempotencyKey == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Idempotency-Key header is required")
	}

	ctx := c.Request().Context()

	err := h.eventBus.Publish(ctx, entities.OrderSettled_v1{
		Header:    entities.NewEventHeaderWithIdempotencyKey(idempotencyKey + request.OrderID.String()),
		OrderID:   request.OrderID,
		BuyerID:   request.BuyerID,
		SellerID:  request.SellerID,
		ShowID:    request.ShowID,
		ProductID: request.ProductID,
		Price:     request.Price,
	})
	if err != nil {
		return fmt.Errorf("failed to publish OrderSettled event: %w", err)
	}

	err = h.eventBus.Publish(ctx, entities.InventoryChanged_v1{
		Header:    entities.NewEventHeaderWithIdempotencyKey(idempotencyKey + request.ProductID.String()),
		ShowID:    request.ShowID,
		ProductID: request.ProductID,
	})
	if err != nil {
		return fmt.Errorf("failed to publish InventoryChanged event: %w", err)
	}

	return c.NoContent(http.StatusOK)
}

type viewerReportRequest struct {
	ShowID      uuid.UUID `json:"show_id"`
	ViewerCount int       `json:"viewer_count"`
}

func (h *Handler) PostViewerReportWebhook(c echo.Context) error {
	var request viewerReportRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	if request.ViewerCount < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "viewer_count must not be negative")
	}

	err := h.eventBus.Publish(c.Request().Context(), entities.ShowViewersReported_v1{
		Header:      entities.NewEventHeader(),
		ShowID:      request.ShowID,
		ViewerCount: request.ViewerCount,
	})
	if err != nil {
		return fmt.Errorf("failed to publish ShowViewersReported event: %w", err)
	}

	return c.NoContent(http.StatusOK)
}
