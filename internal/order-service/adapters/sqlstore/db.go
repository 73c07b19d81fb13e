// Package sqlstore persists orders, payments and the transaction log over
// database/sql. SQLite (modernc, pure Go) is the default backend; Postgres is
// reached through the pgx stdlib driver with the same statements.
//
// Every write is a single auto-committed statement, so a transaction log
// entry is durable the moment Append returns, whatever happens to the order
// or payment it describes.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Register the Postgres driver as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Register the pure-Go SQLite driver as "sqlite".
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var (
	ErrOrderNotFound   = errors.New("sqlstore: order not found")
	ErrPaymentNotFound = errors.New("sqlstore: payment not found")
)

// DB bundles the repositories that share one connection pool.
type DB struct {
	db     *sql.DB
	driver string
}

// Open connects to the database for driver, applies the schema and returns
// the store. For SQLite, dsn is a file path; WAL, foreign keys and a busy
// timeout are enabled on it.
//
//	store, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, "./data/orders.db")
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("sqlstore: open sqlite %q: %w", dsn, err)
		}
		// One writer connection avoids SQLITE_BUSY between concurrent sagas.
		db.SetMaxOpenConns(1)
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: open postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: ping %s: %w", driver, err)
	}

	store := New(db, driver)
	if err := store.InitSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an already opened *sql.DB. It does not touch the schema.
func New(db *sql.DB, driver string) *DB {
	return &DB{db: db, driver: driver}
}

// InitSchema creates the tables and indexes if they do not exist yet.
func (d *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaFor(d.driver) {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: apply schema: %w", err)
		}
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Orders() *OrderRepository { return &OrderRepository{db: d.db} }

func (d *DB) Payments() *PaymentRepository { return &PaymentRepository{db: d.db} }

func (d *DB) TransactionLogs() *TransactionLogRepository {
	return &TransactionLogRepository{db: d.db}
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)
}

func schemaFor(driver string) []string {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == DriverPostgres {
		id = "BIGSERIAL PRIMARY KEY"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id          ` + id + `,
			order_id    TEXT NOT NULL UNIQUE,
			amount      TEXT NOT NULL,
			status      TEXT NOT NULL,
			created_at  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id                  ` + id + `,
			order_id            TEXT NOT NULL UNIQUE REFERENCES orders(order_id),
			amount              TEXT NOT NULL,
			external_reference  TEXT NOT NULL DEFAULT '',
			status              TEXT NOT NULL,
			processed_at        TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transaction_logs (
			id          ` + id + `,
			order_id    TEXT NOT NULL,
			action      TEXT NOT NULL,
			details     TEXT NOT NULL DEFAULT '',
			trace_id    TEXT NOT NULL DEFAULT '',
			span_id     TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transaction_logs_order_id ON transaction_logs(order_id, id)`,
	}
}
