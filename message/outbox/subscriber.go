package outbox

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
)

// NewPostgresSubscriber tails the outbox table the transactional publishers
// write to. The forwarder reads from it and replays every committed event to
// the redis stream.
func NewPostgresSubscriber(db *sqlx.DB, logger watermill.LoggerAdapter) message.Subscriber {
	cfg := sql.SubscriberConfig{
		SchemaAdapter:  sql.DefaultPostgreSQLSchema{},
		OffsetsAdapter: sql.DefaultPostgreSQLOffsetsAdapter{},
	}

	sub, err := sql.NewSubscriber(db, cfg, logger)
	if err != nil {
		panic(err)
	}
	if err := sub.SubscribeInitialize(topic); err != nil {
		panic(err)
	}

	return sub
}
