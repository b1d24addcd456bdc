package db

var schema = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

CREATE TABLE IF NOT EXISTS shows (
	show_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	seller_id UUID NOT NULL,
	title VARCHAR(255) NOT NULL,
	lifecycle_status VARCHAR(32) NOT NULL DEFAULT 'scheduled',
	stream_phase VARCHAR(32) NOT NULL DEFAULT 'none',
	server_viewer_count INT NOT NULL DEFAULT 0,
	displayed_viewer_count INT NOT NULL DEFAULT 0,
	max_viewer_count INT NOT NULL DEFAULT 0,
	featured_product_id UUID,
	start_time TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS show_products (
	product_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	show_id UUID NOT NULL,
	name VARCHAR(255) NOT NULL,
	price_amount NUMERIC(10, 2) NOT NULL,
	price_currency CHAR(3) NOT NULL,
	quantity INT NOT NULL CHECK (quantity >= 0),
	box_number INT NOT NULL,
	is_available BOOLEAN NOT NULL DEFAULT TRUE,
	is_giveaway BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS checkout_intents (
	intent_id UUID PRIMARY KEY,
	buyer_id UUID NOT NULL,
	show_id UUID NOT NULL,
	product_id UUID NOT NULL,
	status VARCHAR(32) NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	resolved_at TIMESTAMPTZ,
	fail_reason VARCHAR(255)
);

-- the single-writer guard: at most one pending intent per (buyer, product)
CREATE UNIQUE INDEX IF NOT EXISTS checkout_intents_pending_slot
	ON checkout_intents (buyer_id, product_id)
	WHERE status = 'pending';

CREATE TABLE IF NOT EXISTS batches (
	batch_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	buyer_id UUID NOT NULL,
	seller_id UUID NOT NULL,
	show_id UUID NOT NULL,
	status VARCHAR(32) NOT NULL DEFAULT 'pending',
	completion_code CHAR(6) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ,
	completed_by VARCHAR(255),
	cancelled_at TIMESTAMPTZ,
	UNIQUE (buyer_id, show_id)
);

CREATE TABLE IF NOT EXISTS orders (
	order_id UUID PRIMARY KEY,
	batch_id UUID REFERENCES batches (batch_id),
	buyer_id UUID NOT NULL,
	seller_id UUID NOT NULL,
	show_id UUID NOT NULL,
	product_id UUID NOT NULL,
	status VARCHAR(32) NOT NULL DEFAULT 'paid',
	price_amount NUMERIC(10, 2) NOT NULL,
	price_currency CHAR(3) NOT NULL,
	paid_at TIMESTAMPTZ NOT NULL,
	picked_up_at TIMESTAMPTZ,
	picked_up_by VARCHAR(255)
);

CREATE TABLE IF NOT EXISTS read_model_fulfillment (
	batch_id UUID PRIMARY KEY,
	payload JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	event_id UUID PRIMARY KEY,
	published_at TIMESTAMP NOT NULL,
	event_name VARCHAR(255) NOT NULL,
	event_payload JSONB NOT NULL
);
`
