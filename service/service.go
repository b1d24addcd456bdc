package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"liveshop/checkout"
	"liveshop/db"
	"liveshop/fulfillment"
	liveshopHttp "liveshop/http"
	"liveshop/message"
	"liveshop/message/command"
	"liveshop/message/event"
	"liveshop/message/outbox"
	"liveshop/reconcile"
	"liveshop/session"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	watermillMessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func init() {
	log.Init(logrus.InfoLevel)
}

type Service struct {
	watermillRouter *watermillMessage.Router
	echoRouter      *echo.Echo
	reconciler      *reconcile.Runner
}

func New(
	redisClient *redis.Client,
	notifications event.NotificationsService,
	conn db.DB,
) Service {
	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	redisPublisher := message.NewRedisPublisher(redisClient, watermillLogger)

	eventBus := event.NewBus(redisPublisher)
	commandBus := command.NewCommandBus(redisPublisher)

	showRepo := db.NewShowRepository(&conn)
	productRepo := db.NewProductRepository(&conn)
	intentRepo := db.NewIntentRepository(&conn)
	orderRepo := db.NewOrderRepository(&conn)
	batchRepo := db.NewBatchRepository(&conn)
	readModel := db.NewFulfillmentReadModel(&conn, eventBus)
	dataLakeRepo := db.NewEventRepository(&conn)

	snapshots := session.NewSnapshotStore()
	viewerReconciler := session.NewViewerReconciler(showRepo)

	gate := checkout.NewGate(showRepo, productRepo, intentRepo, eventBus)
	healer := fulfillment.NewHealer(batchRepo, orderRepo, eventBus)
	verifier := fulfillment.NewVerifier(batchRepo, orderRepo, eventBus)

	eventsHandler := event.NewHandler(
		batchRepo,
		showRepo,
		productRepo,
		notifications,
		viewerReconciler,
		snapshots,
	)
	commandsHandler := command.NewHandler(healer, verifier)

	eventProcessorConfig := event.NewProcessorConfig(redisClient, watermillLogger)
	commandProcessorConfig := command.NewCommandProcessorConfig(redisClient, watermillLogger)

	pgSubscriber := outbox.NewPostgresSubscriber(conn.Conn, watermillLogger)
	dataLakeSubscriber := message.NewRedisSubscriberWithGroup(redisClient, "svc-liveshop.events.data-lake", watermillLogger)

	watermillRouter := message.NewWatermillRouter(
		pgSubscriber,
		dataLakeSubscriber,
		commandProcessorConfig,
		redisPublisher,
		eventProcessorConfig,
		commandsHandler,
		eventsHandler,
		readModel,
		dataLakeRepo,
		watermillLogger,
	)

	echoRouter := liveshopHttp.NewHttpRouter(
		eventBus,
		commandBus,
		showRepo,
		productRepo,
		readModel,
		gate,
		verifier,
		snapshots,
	)

	reconciler := reconcile.NewRunner(
		reconcile.Task{
			Name:     "session-refresh",
			Interval: 5 * time.Second,
			Run:      refreshSessions(showRepo, viewerReconciler, snapshots),
		},
		reconcile.Task{
			Name:     "product-refresh",
			Interval: 15 * time.Second,
			Run:      refreshProducts(showRepo, productRepo, snapshots),
		},
		reconcile.Task{
			Name:     "featured-refresh",
			Interval: 8 * time.Second,
			Run:      refreshFeaturedProducts(showRepo, snapshots),
		},
		reconcile.Task{
			Name:     "batch-heal",
			Interval: 5 * time.Second,
			Run: func(ctx context.Context) error {
				_, err := healer.HealAll(ctx)
				return err
			},
		},
		reconcile.Task{
			Name:     "intent-sweep",
			Interval: 30 * time.Second,
			Run: func(ctx context.Context) error {
				_, err := gate.SweepExpired(ctx)
				return err
			},
		},
	)

	return Service{
		watermillRouter: watermillRouter,
		echoRouter:      echoRouter,
		reconciler:      reconciler,
	}
}

func (s Service) Run(ctx context.Context) error {
	errgrp, ctx := errgroup.WithContext(ctx)

	errgrp.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	errgrp.Go(func() error {
		// the HTTP server starts after the message router so the service is
		// not reported healthy before handlers are attached
		<-s.watermillRouter.Running()

		err := s.echoRouter.Start(":8080")
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	errgrp.Go(func() error {
		<-s.watermillRouter.Running()

		return s.reconciler.Run(ctx)
	})

	errgrp.Go(func() error {
		<-ctx.Done()
		return s.echoRouter.Shutdown(context.Background())
	})

	return errgrp.Wait()
}
