package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/platinummonkey/subdesk/pkg/plans"
	"github.com/platinummonkey/subdesk/pkg/subscribers"
)

// Dialect selects the SQL driver and placeholder style
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS subscribers (
		position     INTEGER NOT NULL PRIMARY KEY,
		name         TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		plan_name    TEXT NOT NULL,
		data_used    DOUBLE PRECISION NOT NULL
	)
`

// SQLStore keeps records in a subscribers table, one row per record, ordered
// by position
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLStore opens a database and ensures the schema exists
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s connection string is required", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := NewSQLStore(db, dialect)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// NewSQLStore wraps an open database. Call Migrate before first use.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Migrate creates the subscribers table if it does not exist
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create subscribers table: %w", err)
	}
	return nil
}

// Load implements RecordStore.Load
func (s *SQLStore) Load(ctx context.Context, catalog *plans.Catalog) ([]*subscribers.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, phone_number, plan_name, data_used FROM subscribers ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	var subs []*subscribers.Subscriber
	for rows.Next() {
		var name, phone, planName string
		var used float64
		if err := rows.Scan(&name, &phone, &planName, &used); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}

		sub, err := buildSubscriber(name, phone, planName, used, catalog)
		if err != nil {
			continue
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscribers: %w", err)
	}

	return subs, nil
}

// Save implements RecordStore.Save as a single transaction
func (s *SQLStore) Save(ctx context.Context, subs []*subscribers.Subscriber) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subscribers`); err != nil {
		return fmt.Errorf("failed to clear subscribers: %w", err)
	}

	insert := s.insertSQL()
	for i, sub := range subs {
		if _, err := tx.ExecContext(ctx, insert,
			i, sub.Name(), sub.PhoneNumber(), sub.PlanName(), sub.DataUsed()); err != nil {
			return fmt.Errorf("failed to insert subscriber %s: %w", sub.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close implements RecordStore.Close
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) insertSQL() string {
	if s.dialect == DialectPostgres {
		return `INSERT INTO subscribers (position, name, phone_number, plan_name, data_used) VALUES ($1, $2, $3, $4, $5)`
	}
	return `INSERT INTO subscribers (position, name, phone_number, plan_name, data_used) VALUES (?, ?, ?, ?, ?)`
}
