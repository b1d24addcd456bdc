package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NotificationsClient talks to the platform notifications service. Callers
// decide whether a failed notification is retried (event handlers) or only
// logged (post-commit best-effort paths).
type NotificationsClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewNotificationsClient(baseURL string) *NotificationsClient {
	if baseURL == "" {
		panic("notifications baseURL is empty")
	}

	return &NotificationsClient{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
	}
}

// NotifyReviewRequest carries the seller identity so the review lands on the
// right seller profile, plus the order the buyer is reviewing.
func (c *NotificationsClient) NotifyReviewRequest(ctx context.Context, buyerID, sellerID, orderID uuid.UUID) error {
	return c.send(ctx, buyerID, "review_request", map[string]any{
		"seller_id": sellerID,
		"order_id":  orderID,
	})
}

func (c *NotificationsClient) NotifyBatchCancelled(ctx context.Context, buyerID, batchID uuid.UUID) error {
	return c.send(ctx, buyerID, "batch_cancelled", map[string]any{
		"batch_id": batchID,
	})
}

func (c *NotificationsClient) send(ctx context.Context, userID uuid.UUID, template string, payload map[string]any) error {
	body, err := json.Marshal(map[string]any{
		"user_id":  userID,
		"template": template,
		"payload":  payload,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notifications", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s notification: %w", template, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status code for POST /notifications: %d", resp.StatusCode)
	}

	return nil
}
