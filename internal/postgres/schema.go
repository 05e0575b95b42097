package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Product ids are the 24-hex identifiers minted by the catalog service;
// they are stored verbatim, not as uuids.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
	qty         INT NOT NULL CHECK (qty >= 0),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	id                TEXT PRIMARY KEY,
	created_by        TEXT NOT NULL,
	status            TEXT NOT NULL,
	grand_total_cents BIGINT NOT NULL CHECK (grand_total_cents >= 0),
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS orders_created_by_idx ON orders (created_by, created_at DESC);

CREATE TABLE IF NOT EXISTS order_items (
	order_id    TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id  TEXT NOT NULL,
	name        TEXT NOT NULL,
	price_cents BIGINT NOT NULL,
	qty         INT NOT NULL,
	PRIMARY KEY (order_id, product_id)
);
`

func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
