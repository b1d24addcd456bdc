package main

import (
	"context"
	"os"
	"os/signal"

	"liveshop/api"
	"liveshop/db"
	"liveshop/message"
	"liveshop/migrations"
	"liveshop/service"
	observability "liveshop/trace"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"
)

func main() {
	log.Init(logrus.InfoLevel)

	tp := observability.ConfigureTraceProvider()
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()

	conn, err := db.NewDBConn(os.Getenv("POSTGRES_URL"))
	if err != nil {
		panic(err)
	}
	defer conn.Close()
	conn.MigrateSchema()

	if len(os.Args) > 1 && os.Args[1] == "rebuild-read-model" {
		err := migrations.RebuildFulfillmentReadModel(
			context.Background(),
			db.NewEventRepository(&conn),
			db.NewFulfillmentReadModel(&conn, nil),
		)
		if err != nil {
			panic(err)
		}
		return
	}

	rdb := message.NewRedisClient(os.Getenv("REDIS_ADDR"))
	defer rdb.Close()

	notifications := api.NewNotificationsClient(os.Getenv("NOTIFICATIONS_ADDR"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	svc := service.New(rdb, notifications, conn)

	if err := svc.Run(ctx); err != nil {
		panic(err)
	}
}
