package http

import (
	"fmt"
	"net/http"

	"liveshop/entities"
	"liveshop/session"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *Handler) PostShows(c echo.Context) error {
	var showRequest entities.Show

	err := c.Bind(&showRequest)
	if err != nil {
		return err
	}

	if showRequest.SellerID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "seller_id is required")
	}

	showResponse, err := h.showRepo.Create(c.Request().Context(), entities.Show{
		SellerID:  showRequest.SellerID,
		Title:     showRequest.Title,
		StartTime: showRequest.StartTime,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, showResponse)
}

type streamPhaseRequest struct {
	StreamPhase entities.StreamPhase `json:"stream_phase"`
}

func (h *Handler) PutStreamPhase(c echo.Context) error {
	showID, err := uuid.Parse(c.Param("show_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid show_id")
	}

	var request streamPhaseRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	switch request.StreamPhase {
	case entities.StreamNone, entities.StreamStarting, entities.StreamLive:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown stream phase: %s", request.StreamPhase))
	}

	done, err := h.showRepo.UpdateStreamPhase(c.Request().Context(), showID, request.StreamPhase)
	if err != nil {
		return fmt.Errorf("failed to update stream phase: %w", err)
	}
	if !done {
		return echo.NewHTTPError(http.StatusConflict, "show already ended or cancelled")
	}

	return c.NoContent(http.StatusOK)
}

type lifecycleRequest struct {
	LifecycleStatus entities.ShowLifecycle `json:"lifecycle_status"`
}

func (h *Handler) PutLifecycle(c echo.Context) error {
	showID, err := uuid.Parse(c.Param("show_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid show_id")
	}

	var request lifecycleRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	switch request.LifecycleStatus {
	case entities.ShowScheduled, entities.ShowLive, entities.ShowEnded, entities.ShowCancelled:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown lifecycle status: %s", request.LifecycleStatus))
	}

	done, err := h.showRepo.UpdateLifecycle(c.Request().Context(), showID, request.LifecycleStatus)
	if err != nil {
		return fmt.Errorf("failed to update lifecycle: %w", err)
	}
	if !done {
		return echo.NewHTTPError(http.StatusConflict, "show already ended or cancelled")
	}

	return c.NoContent(http.StatusOK)
}

type featuredProductRequest struct {
	ProductID *uuid.UUID `json:"product_id"`
}

func (h *Handler) PutFeaturedProduct(c echo.Context) error {
	showID, err := uuid.Parse(c.Param("show_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid show_id")
	}

	var request featuredProductRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	if err := h.showRepo.SetFeaturedProduct(c.Request().Context(), showID, request.ProductID); err != nil {
		return fmt.Errorf("failed to set featured product: %w", err)
	}

	return c.NoContent(http.StatusOK)
}

// GetSession serves the buyer-facing session state. The snapshot refreshed by
// the background loop is preferred; a cold cache falls back to a fresh
// derivation so a newly tracked show is never invisible.
func (h *Handler) GetSession(c echo.Context) error {
	showID, err := uuid.Parse(c.Param("show_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid show_id")
	}

	if snap, ok := h.snapshots.Get(showID); ok {
		return c.JSON(http.StatusOK, snap)
	}

	show, err := h.showRepo.ByID(c.Request().Context(), showID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "show not found")
	}

	return c.JSON(http.StatusOK, session.Snapshot{
		ShowID:            show.ShowID,
		State:             session.DeriveSessionState(show),
		DisplayedViewers:  show.DisplayedViewerCount,
		MaxViewers:        show.MaxViewerCount,
		FeaturedProductID: show.FeaturedProductID,
	})
}

func (h *Handler) GetProducts(c echo.Context) error {
	showID, err := uuid.Parse(c.Param("show_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid show_id")
	}

	if snap, ok := h.snapshots.Get(showID); ok {
		return c.JSON(http.StatusOK, snap.Products)
	}

	show, err := h.showRepo.ByID(c.Request().Context(), showID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "show not found")
	}

	products, err := h.productRepo.ByShow(c.Request().Context(), showID)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	return c.JSON(http.StatusOK, session.ProjectProducts(products, session.DeriveSessionState(show)))
}

func (h *Handler) PostProducts(c echo.Context) error {
	showID, err := uuid.Parse(c.Param("show_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid show_id")
	}

	var product entities.ShowProduct
	if err := c.Bind(&product); err != nil {
		return err
	}
	product.ShowID = showID

	if product.Quantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must not be negative")
	}

	productResponse, err := h.productRepo.Create(c.Request().Context(), product)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, productResponse)
}
