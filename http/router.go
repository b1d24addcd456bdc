package http

import (
	"net/http"

	"liveshop/checkout"
	"liveshop/fulfillment"
	"liveshop/session"

	libHttp "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func NewHttpRouter(
	eventBus *cqrs.EventBus,
	cmdBus *cqrs.CommandBus,
	showRepo ShowRepository,
	productRepo ProductRepository,
	opsRepo OpsFulfillmentRepository,
	gate *checkout.Gate,
	verifier *fulfillment.Verifier,
	snapshots *session.SnapshotStore,
) *echo.Echo {
	e := libHttp.NewEcho()
	e.Use(otelecho.Middleware("liveshop"))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler := Handler{
		eventBus:    eventBus,
		cmdBus:      cmdBus,
		showRepo:    showRepo,
		productRepo: productRepo,
		opsRepo:     opsRepo,
		gate:        gate,
		verifier:    verifier,
		snapshots:   snapshots,
	}

	e.POST("/shows", handler.PostShows)
	e.PUT("/shows/:show_id/stream-phase", handler.PutStreamPhase)
	e.PUT("/shows/:show_id/lifecycle", handler.PutLifecycle)
	e.PUT("/shows/:show_id/featured-product", handler.PutFeaturedProduct)
	e.GET("/shows/:show_id/session", handler.GetSession)
	e.GET("/shows/:show_id/products", handler.GetProducts)
	e.POST("/shows/:show_id/products", handler.PostProducts)

	e.POST("/checkout-intents", handler.PostCheckoutIntents)
	e.DELETE("/checkout-intents/:intent_id", handler.DeleteCheckoutIntent)
	e.POST("/payments/callback", handler.PostPaymentsCallback)

	e.POST("/batches/:batch_id/verify-pickup", handler.PostVerifyPickup)
	e.PUT("/orders/:order_id/pickup", handler.PutOrderPickup)
	e.POST("/batches/:batch_id/cancel", handler.PostCancelBatch)
	e.POST("/fulfillment/heal", handler.PostHeal)

	e.GET("/ops/batches", handler.GetOpsBatches)
	e.GET("/ops/batches/:batch_id", handler.GetOpsBatchByID)

	e.POST("/webhooks/settlement", handler.PostSettlementWebhook)
	e.POST("/webhooks/viewer-report", handler.PostViewerReportWebhook)

	return e
}
