package db

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"liveshop/checkout"
	"liveshop/entities"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConn *sqlx.DB
var getDbOnce sync.Once

func getDb(t *testing.T) *DB {
	t.Helper()

	if os.Getenv("POSTGRES_URL") == "" {
		t.Skip("POSTGRES_URL not set")
	}

	getDbOnce.Do(func() {
		var err error
		testConn, err = sqlx.Open("postgres", os.Getenv("POSTGRES_URL"))
		if err != nil {
			panic(err)
		}
	})

	db := &DB{Conn: testConn}
	db.MigrateSchema()
	return db
}

func TestCreatePendingIntentIsExclusive(t *testing.T) {
	db := getDb(t)
	repo := NewIntentRepository(db)
	ctx := context.Background()

	buyerID := uuid.New()
	productID := uuid.New()

	intent := entities.CheckoutIntent{
		IntentID:  uuid.New(),
		BuyerID:   buyerID,
		ShowID:    uuid.New(),
		ProductID: productID,
		Status:    entities.IntentPending,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(5 * time.Minute),
	}
	require.NoError(t, repo.CreatePendingIfAbsent(ctx, intent))

	duplicate := intent
	duplicate.IntentID = uuid.New()
	err := repo.CreatePendingIfAbsent(ctx, duplicate)
	assert.True(t, errors.Is(err, checkout.ErrAlreadyInFlight))

	// resolving the first intent frees the slot
	done, err := repo.MarkFailed(ctx, intent.IntentID, "payment declined")
	require.NoError(t, err)
	require.True(t, done)

	assert.NoError(t, repo.CreatePendingIfAbsent(ctx, duplicate))
}

func TestMarkFulfilledIsSingleShot(t *testing.T) {
	db := getDb(t)
	repo := NewIntentRepository(db)
	ctx := context.Background()

	intent := entities.CheckoutIntent{
		IntentID:  uuid.New(),
		BuyerID:   uuid.New(),
		ShowID:    uuid.New(),
		ProductID: uuid.New(),
		Status:    entities.IntentPending,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(5 * time.Minute),
	}
	require.NoError(t, repo.CreatePendingIfAbsent(ctx, intent))

	done, err := repo.MarkFulfilled(ctx, intent.IntentID)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = repo.MarkFulfilled(ctx, intent.IntentID)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestSweepExpiredIntents(t *testing.T) {
	db := getDb(t)
	repo := NewIntentRepository(db)
	ctx := context.Background()

	expired := entities.CheckoutIntent{
		IntentID:  uuid.New(),
		BuyerID:   uuid.New(),
		ShowID:    uuid.New(),
		ProductID: uuid.New(),
		Status:    entities.IntentPending,
		CreatedAt: time.Now().UTC().Add(-10 * time.Minute),
		ExpiresAt: time.Now().UTC().Add(-5 * time.Minute),
	}
	require.NoError(t, repo.CreatePendingIfAbsent(ctx, expired))

	swept, err := repo.SweepExpired(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, swept, int64(1))

	got, err := repo.ByID(ctx, expired.IntentID)
	require.NoError(t, err)
	assert.Equal(t, entities.IntentExpired, got.Status)
}

func TestViewerCountWriteBackKeepsMaxMonotonic(t *testing.T) {
	db := getDb(t)
	repo := NewShowRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, entities.Show{
		SellerID:  uuid.New(),
		Title:     "friday night cards",
		StartTime: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, repo.WriteBackViewerCounts(ctx, created.ShowID, 42, 42))
	require.NoError(t, repo.WriteBackViewerCounts(ctx, created.ShowID, 17, 17))

	show, err := repo.ByID(ctx, created.ShowID)
	require.NoError(t, err)
	assert.Equal(t, 17, show.DisplayedViewerCount)
	assert.Equal(t, 42, show.MaxViewerCount)
}

func TestHealBatchOrdersIsIdempotent(t *testing.T) {
	db := getDb(t)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	// a batch created directly, bypassing the event path
	batchID := uuid.New()
	_, err := db.Conn.ExecContext(ctx, `
		INSERT INTO batches (batch_id, buyer_id, seller_id, show_id, status, completion_code, completed_at, completed_by)
		VALUES ($1, $2, $3, $4, 'completed', '123456', now(), 'seller')
	`, batchID, uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	orderID := uuid.New()
	_, err = db.Conn.ExecContext(ctx, `
		INSERT INTO orders (order_id, batch_id, buyer_id, seller_id, show_id, product_id, status, price_amount, price_currency, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'paid', 10.00, 'USD', now())
	`, orderID, batchID, uuid.New(), uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	healed, err := orders.HealBatchOrders(ctx, batchID, entities.ActorAutoHeal)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{orderID}, healed)

	healed, err = orders.HealBatchOrders(ctx, batchID, entities.ActorAutoHeal)
	require.NoError(t, err)
	assert.Empty(t, healed)
}
