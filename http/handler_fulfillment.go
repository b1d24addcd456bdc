package http

import (
	"errors"
	"fmt"
	"net/http"

	"liveshop/entities"
	"liveshop/fulfillment"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type verifyPickupRequest struct {
	CompletionCode string `json:"completion_code"`
}

func (h *Handler) PostVerifyPickup(c echo.Context) error {
	batchID, err := uuid.Parse(c.Param("batch_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid batch_id")
	}

	var request verifyPickupRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	result, err := h.verifier.Verify(c.Request().Context(), batchID, request.CompletionCode, actorFrom(c))
	if errors.Is(err, fulfillment.ErrInvalidCode) {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	if errors.Is(err, fulfillment.ErrBatchCancelled) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return fmt.Errorf("failed to verify pickup: %w", err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) PutOrderPickup(c echo.Context) error {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order_id")
	}

	status, err := h.verifier.MarkOrderPickedUp(c.Request().Context(), orderID, actorFrom(c))
	if errors.Is(err, fulfillment.ErrOrderNotPaid) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return fmt.Errorf("failed to mark order picked up: %w", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"order_id":     orderID,
		"batch_status": status,
	})
}

func (h *Handler) PostCancelBatch(c echo.Context) error {
	batchID, err := uuid.Parse(c.Param("batch_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid batch_id")
	}

	cmd := entities.CancelBatch{
		Header:      entities.NewEventHeaderWithIdempotencyKey(batchID.String() + "-cancel"),
		BatchID:     batchID,
		CancelledBy: actorFrom(c),
	}
	if err := h.cmdBus.Send(c.Request().Context(), cmd); err != nil {
		return fmt.Errorf("failed to send CancelBatch command: %w", err)
	}

	return c.NoContent(http.StatusAccepted)
}

type healRequest struct {
	SellerID uuid.UUID `json:"seller_id"`
}

// PostHeal queues an on-demand heal pass, for ops to run after an incident
// instead of waiting for the periodic schedule.
func (h *Handler) PostHeal(c echo.Context) error {
	var request healRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.SellerID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "seller_id is required")
	}

	cmd := entities.HealSellerBatches{
		Header:   entities.NewEventHeader(),
		SellerID: request.SellerID,
	}
	if err := h.cmdBus.Send(c.Request().Context(), cmd); err != nil {
		return fmt.Errorf("failed to send HealSellerBatches command: %w", err)
	}

	return c.NoContent(http.StatusAccepted)
}

func actorFrom(c echo.Context) string {
	if actor := c.Request().Header.Get("X-Actor"); actor != "" {
		return actor
	}
	return "seller"
}
