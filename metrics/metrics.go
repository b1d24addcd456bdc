package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liveshop_checkout_intents_created_total",
		Help: "Checkout intents successfully reserved.",
	})

	IntentsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liveshop_checkout_intents_rejected_total",
		Help: "Checkout attempts rejected before reserving an intent.",
	}, []string{"reason"})

	IntentsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liveshop_checkout_intents_swept_total",
		Help: "Pending intents expired by the background reaper.",
	})

	OrdersHealed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liveshop_fulfillment_orders_healed_total",
		Help: "Orders repaired to picked_up by the batch healer.",
	})

	PickupVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liveshop_fulfillment_pickup_verifications_total",
		Help: "Pickup code verification attempts by outcome.",
	}, []string{"outcome"})

	ReadModelUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liveshop_fulfillment_read_model_updates_total",
		Help: "Fulfillment ops read model refreshes.",
	})
)
