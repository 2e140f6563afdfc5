// Package database keeps the append-only audit log of scored signals in
// PostgreSQL.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/StockAuto/internal/model"
)

// WriteTimeout bounds a single signal_log insert.
const WriteTimeout = 5 * time.Second

// DB represents a database connection
type DB struct {
	*sql.DB
	writeTimeout time.Duration
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the params as a lib/pq connection string.
func (p ConnectionParams) DSN() string {
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, sslMode,
	)
}

// New creates a new database connection
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	db, err := sql.Open("postgres", params.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Create tables if they don't exist
	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &DB{DB: db, writeTimeout: WriteTimeout}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS signal_log (
			id BIGSERIAL PRIMARY KEY,
			cycle_id TEXT NOT NULL,
			ticker TEXT NOT NULL,
			evaluated_at TIMESTAMPTZ NOT NULL,
			label TEXT NOT NULL,
			score INTEGER NOT NULL,
			max_magnitude INTEGER NOT NULL,
			reasons TEXT[] NOT NULL,
			price NUMERIC,
			snapshot JSONB NOT NULL,
			result JSONB NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS signal_log_ticker_time_idx
		ON signal_log (ticker, evaluated_at)
	`)
	return err
}

// signalRow is one signal_log row ready for insertion.
type signalRow struct {
	CycleID      string
	Ticker       string
	EvaluatedAt  time.Time
	Label        string
	Score        int
	MaxMagnitude int
	Reasons      []string
	Price        sql.NullString
	Snapshot     []byte
	Result       []byte
}

func newSignalRow(r model.Report) (signalRow, error) {
	snapshot, err := json.Marshal(r.Snapshot)
	if err != nil {
		return signalRow{}, fmt.Errorf("encoding snapshot: %w", err)
	}
	result, err := json.Marshal(r.Result)
	if err != nil {
		return signalRow{}, fmt.Errorf("encoding result: %w", err)
	}

	reasons := r.Result.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	row := signalRow{
		CycleID:      r.CycleID,
		Ticker:       r.Ticker,
		EvaluatedAt:  r.Time.UTC(),
		Label:        string(r.Result.Label),
		Score:        r.Result.Score,
		MaxMagnitude: r.Result.MaxMagnitude,
		Reasons:      reasons,
		Snapshot:     snapshot,
		Result:       result,
	}
	if price, ok := r.Snapshot.Price.Get(); ok {
		row.Price = sql.NullString{String: price.String(), Valid: true}
	}
	return row, nil
}

// Record appends one scored ticker to signal_log.
func (db *DB) Record(ctx context.Context, r model.Report) error {
	row, err := newSignalRow(r)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, db.writeTimeout)
	defer cancel()

	_, err = db.ExecContext(ctx, `
		INSERT INTO signal_log (
			cycle_id, ticker, evaluated_at, label, score, max_magnitude,
			reasons, price, snapshot, result
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		row.CycleID, row.Ticker, row.EvaluatedAt, row.Label, row.Score, row.MaxMagnitude,
		pq.Array(row.Reasons), row.Price, row.Snapshot, row.Result)
	if err != nil {
		return fmt.Errorf("inserting signal: %w", err)
	}
	return nil
}

// Signal is a stored signal_log row.
type Signal struct {
	CycleID     string
	Ticker      string
	EvaluatedAt time.Time
	Label       model.Label
	Score       int
	Reasons     []string
	Price       decimal.NullDecimal
}

// RecentSignals returns the newest limit rows for ticker, newest first.
func (db *DB) RecentSignals(ctx context.Context, ticker string, limit int) ([]Signal, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT cycle_id, ticker, evaluated_at, label, score, reasons, price
		FROM signal_log
		WHERE ticker = $1
		ORDER BY evaluated_at DESC
		LIMIT $2
	`, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []Signal
	for rows.Next() {
		var s Signal
		var label string
		if err := rows.Scan(&s.CycleID, &s.Ticker, &s.EvaluatedAt, &label, &s.Score, pq.Array(&s.Reasons), &s.Price); err != nil {
			return nil, err
		}
		s.Label = model.Label(label)
		signals = append(signals, s)
	}
	return signals, rows.Err()
}
