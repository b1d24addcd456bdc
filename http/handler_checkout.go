package http

import (
	"errors"
	"fmt"
	"net/http"

	"liveshop/checkout"
	"liveshop/entities"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type checkoutIntentRequest struct {
	ShowID    uuid.UUID `json:"show_id"`
	ProductID uuid.UUID `json:"product_id"`
}

// PostCheckoutIntents reserves a checkout slot. The buyer is identified by
// the X-Buyer-ID header set by the gateway; an absent header means an
// unauthenticated caller, which the gate rejects after the gating check.
func (h *Handler) PostCheckoutIntents(c echo.Context) error {
	var request checkoutIntentRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	buyerID := uuid.Nil
	if header := c.Request().Header.Get("X-Buyer-ID"); header != "" {
		parsed, err := uuid.Parse(header)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid X-Buyer-ID header")
		}
		buyerID = parsed
	}

	claims := entities.Claims{
		BypassGating: c.Request().Header.Get("X-Claim-Bypass-Gating") == "true",
	}

	intent, err := h.gate.Begin(c.Request().Context(), checkout.BeginRequest{
		BuyerID:   buyerID,
		ShowID:    request.ShowID,
		ProductID: request.ProductID,
		Claims:    claims,
	})
	switch {
	case errors.Is(err, checkout.ErrAuthRequired):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, checkout.ErrBuyingClosed),
		errors.Is(err, checkout.ErrSoldOut),
		errors.Is(err, checkout.ErrAlreadyInFlight):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return fmt.Errorf("failed to begin checkout: %w", err)
	}

	return c.JSON(http.StatusCreated, intent)
}

func (h *Handler) DeleteCheckoutIntent(c echo.Context) error {
	intentID, err := uuid.Parse(c.Param("intent_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid intent_id")
	}

	buyerID, err := uuid.Parse(c.Request().Header.Get("X-Buyer-ID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "X-Buyer-ID header is required")
	}

	err = h.gate.Cancel(c.Request().Context(), intentID, buyerID)
	if errors.Is(err, checkout.ErrIntentNotPending) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return fmt.Errorf("failed to cancel intent: %w", err)
	}

	return c.NoContent(http.StatusNoContent)
}

type paymentCallbackRequest struct {
	IntentID uuid.UUID `json:"intent_id"`
	Status   string    `json:"status"`
	Reason   string    `json:"reason"`
}

// PostPaymentsCallback resolves an intent from the payment provider's
// terminal callback. Replays of an already resolved intent return 409 so the
// provider stops retrying.
func (h *Handler) PostPaymentsCallback(c echo.Context) error {
	var request paymentCallbackRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	var err error
	switch request.Status {
	case "fulfilled":
		err = h.gate.Fulfill(c.Request().Context(), request.IntentID)
	case "failed":
		err = h.gate.Fail(c.Request().Context(), request.IntentID, request.Reason)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown payment status: %s", request.Status))
	}

	if errors.Is(err, checkout.ErrIntentNotPending) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return fmt.Errorf("failed to resolve intent: %w", err)
	}

	return c.NoContent(http.StatusOK)
}
