package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		category      TEXT NOT NULL DEFAULT '',
		unit_price    NUMERIC NOT NULL CHECK (unit_price >= 0),
		unit_cost     NUMERIC NOT NULL CHECK (unit_cost >= 0),
		stock         BIGINT NOT NULL CHECK (stock >= 0),
		initial_stock BIGINT NOT NULL CHECK (initial_stock >= 0),
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id                 TEXT PRIMARY KEY,
		product_id         TEXT NOT NULL REFERENCES products(id),
		type               TEXT NOT NULL CHECK (type IN ('SALE', 'RESTOCK')),
		quantity           BIGINT NOT NULL CHECK (quantity > 0),
		unit_price_at_time NUMERIC NOT NULL,
		unit_cost_at_time  NUMERIC NOT NULL,
		total_price        NUMERIC NOT NULL,
		total_profit       NUMERIC NOT NULL,
		transaction_date   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_product_date ON transactions (product_id, transaction_date)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (transaction_date)`,
}

// Money is kept as TEXT in sqlite so decimals survive the round trip exactly.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		category      TEXT NOT NULL DEFAULT '',
		unit_price    TEXT NOT NULL,
		unit_cost     TEXT NOT NULL,
		stock         INTEGER NOT NULL CHECK (stock >= 0),
		initial_stock INTEGER NOT NULL CHECK (initial_stock >= 0),
		is_active     BOOLEAN NOT NULL DEFAULT 1,
		created_at    TIMESTAMP NOT NULL,
		updated_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id                 TEXT PRIMARY KEY,
		product_id         TEXT NOT NULL REFERENCES products(id),
		type               TEXT NOT NULL CHECK (type IN ('SALE', 'RESTOCK')),
		quantity           INTEGER NOT NULL CHECK (quantity > 0),
		unit_price_at_time TEXT NOT NULL,
		unit_cost_at_time  TEXT NOT NULL,
		total_price        TEXT NOT NULL,
		total_profit       TEXT NOT NULL,
		transaction_date   TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_product_date ON transactions (product_id, transaction_date)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (transaction_date)`,
}

// Migrate creates the products and transactions tables when missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts := postgresSchema
	if db.DriverName() == DriverSQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
