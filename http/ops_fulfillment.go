package http

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *Handler) GetOpsBatches(c echo.Context) error {
	resp, err := h.opsRepo.AllBatches(c.Request().Context())
	if err != nil {
		return fmt.Errorf("failed getting ops batches: %w", err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetOpsBatchByID(c echo.Context) error {
	batchID, err := uuid.Parse(c.Param("batch_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid batch_id")
	}

	resp, err := h.opsRepo.BatchByID(c.Request().Context(), batchID)
	if errors.Is(err, sql.ErrNoRows) {
		return echo.NewHTTPError(http.StatusNotFound, "batch not found")
	}
	if err != nil {
		return fmt.Errorf("failed getting ops batch: %w", err)
	}

	return c.JSON(http.StatusOK, resp)
}
