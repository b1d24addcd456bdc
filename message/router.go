package message

import (
	"liveshop/db"
	"liveshop/message/command"
	"liveshop/message/event"
	"liveshop/message/outbox"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

func NewWatermillRouter(
	pgSubscriber message.Subscriber,
	dataLakeSubscriber message.Subscriber,
	commandProcessorConfig cqrs.CommandProcessorConfig,
	publisher message.Publisher,
	eventProcessorConfig cqrs.EventProcessorConfig,
	commandHandler command.Handler,
	eventHandler event.Handler,
	readModel db.FulfillmentReadModel,
	dataLakeRepo db.IEventRepository,
	watermillLogger watermill.LoggerAdapter,
) *message.Router {
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		panic(err)
	}

	useMiddlewares(router, watermillLogger)

	_, err = outbox.NewForwarder(pgSubscriber, publisher, watermillLogger, router)
	if err != nil {
		panic(err)
	}

	eventProcessor, err := cqrs.NewEventProcessorWithConfig(router, eventProcessorConfig)
	if err != nil {
		panic(err)
	}

	commandProcessor, err := cqrs.NewCommandProcessorWithConfig(router, commandProcessorConfig)
	if err != nil {
		panic(err)
	}

	err = commandProcessor.AddHandlers(
		cqrs.NewCommandHandler(
			"HealSellerBatches",
			commandHandler.HealSellerBatches,
		),
		cqrs.NewCommandHandler(
			"CancelBatch",
			commandHandler.CancelBatch,
		),
	)
	if err != nil {
		panic(err)
	}

	err = eventProcessor.AddHandlers(
		cqrs.NewEventHandler(
			"AttachSettledOrder",
			eventHandler.AttachSettledOrder,
		),
		cqrs.NewEventHandler(
			"RequestReview",
			eventHandler.RequestReview,
		),
		cqrs.NewEventHandler(
			"NotifyBatchCancelled",
			eventHandler.NotifyBatchCancelled,
		),
		cqrs.NewEventHandler(
			"RefreshProducts",
			eventHandler.RefreshProducts,
		),
		cqrs.NewEventHandler(
			"RecordViewerReport",
			eventHandler.RecordViewerReport,
		),
		cqrs.NewEventHandler(
			"ReadModelOrderBatched",
			readModel.OnOrderBatched,
		),
		cqrs.NewEventHandler(
			"ReadModelOrderPickedUp",
			readModel.OnOrderPickedUp,
		),
		cqrs.NewEventHandler(
			"ReadModelBatchPickupCompleted",
			readModel.OnBatchPickupCompleted,
		),
		cqrs.NewEventHandler(
			"ReadModelBatchCancelled",
			readModel.OnBatchCancelled,
		),
		cqrs.NewEventHandler(
			"CountReadModelUpdate",
			eventHandler.CountReadModelUpdate,
		),
	)
	if err != nil {
		panic(err)
	}

	for _, topic := range event.ExternalTopics() {
		router.AddNoPublisherHandler(
			"store_to_data_lake."+topic,
			topic,
			dataLakeSubscriber,
			event.StoreEventToDataLake(dataLakeRepo),
		)
	}

	return router
}
