package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyReviewRequestPayload(t *testing.T) {
	var got struct {
		UserID   uuid.UUID `json:"user_id"`
		Template string    `json:"template"`
		Payload  struct {
			SellerID uuid.UUID `json:"seller_id"`
			OrderID  uuid.UUID `json:"order_id"`
		} `json:"payload"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notifications", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewNotificationsClient(server.URL)

	buyerID := uuid.New()
	sellerID := uuid.New()
	orderID := uuid.New()

	err := client.NotifyReviewRequest(context.Background(), buyerID, sellerID, orderID)
	require.NoError(t, err)

	assert.Equal(t, buyerID, got.UserID)
	assert.Equal(t, "review_request", got.Template)
	assert.Equal(t, sellerID, got.Payload.SellerID, "review request must identify the seller")
	assert.Equal(t, orderID, got.Payload.OrderID)
}

func TestNotifyBatchCancelledPayload(t *testing.T) {
	var got struct {
		UserID   uuid.UUID `json:"user_id"`
		Template string    `json:"template"`
		Payload  struct {
			BatchID uuid.UUID `json:"batch_id"`
		} `json:"payload"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewNotificationsClient(server.URL)

	buyerID := uuid.New()
	batchID := uuid.New()

	require.NoError(t, client.NotifyBatchCancelled(context.Background(), buyerID, batchID))

	assert.Equal(t, buyerID, got.UserID)
	assert.Equal(t, "batch_cancelled", got.Template)
	assert.Equal(t, batchID, got.Payload.BatchID)
}
