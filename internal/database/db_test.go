package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/StockAuto/internal/model"
)

func TestConnectionParamsDSN(t *testing.T) {
	tests := []struct {
		name   string
		params ConnectionParams
		want   string
	}{
		{
			name:   "explicit ssl mode",
			params: ConnectionParams{Host: "db", Port: "5432", User: "bot", Password: "pw", DBName: "signals", SSLMode: "require"},
			want:   "host=db port=5432 user=bot password=pw dbname=signals sslmode=require",
		},
		{
			name:   "ssl mode defaults to disable",
			params: ConnectionParams{Host: "localhost", Port: "5432", User: "bot", Password: "pw", DBName: "signals"},
			want:   "host=localhost port=5432 user=bot password=pw dbname=signals sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.DSN(); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewSignalRow(t *testing.T) {
	loc := time.FixedZone("EDT", -4*3600)
	r := model.Report{
		CycleID: "c-1",
		Ticker:  "NVDA",
		Time:    time.Date(2026, 10, 19, 10, 30, 0, 0, loc),
		Snapshot: model.Snapshot{
			Ticker: "NVDA",
			Price:  model.Some(decimal.RequireFromString("150.25")),
			RSI:    model.Some(25.0),
		},
		Result: model.ScoreResult{Score: 0, Label: model.LabelInsufficientData, Reasons: []string{"sma", "bollinger"}},
	}

	row, err := newSignalRow(r)
	if err != nil {
		t.Fatalf("newSignalRow() error = %v", err)
	}
	if row.EvaluatedAt.Location() != time.UTC || row.EvaluatedAt.Hour() != 14 {
		t.Errorf("EvaluatedAt = %v, want 14:30 UTC", row.EvaluatedAt)
	}
	if !row.Price.Valid || row.Price.String != "150.25" {
		t.Errorf("Price = %+v, want 150.25", row.Price)
	}
	if row.Label != "INSUFFICIENT_DATA" || len(row.Reasons) != 2 {
		t.Errorf("row = %+v", row)
	}

	var snap map[string]any
	if err := json.Unmarshal(row.Snapshot, &snap); err != nil {
		t.Fatalf("snapshot JSON: %v", err)
	}
	if snap["sma"] != nil {
		t.Errorf("snapshot sma = %v, want null", snap["sma"])
	}
	if snap["rsi"] != 25.0 {
		t.Errorf("snapshot rsi = %v, want 25", snap["rsi"])
	}
}

func TestNewSignalRowWithoutPrice(t *testing.T) {
	row, err := newSignalRow(model.Report{Ticker: "AAPL"})
	if err != nil {
		t.Fatalf("newSignalRow() error = %v", err)
	}
	if row.Price.Valid {
		t.Errorf("Price = %+v, want NULL", row.Price)
	}
	if row.Reasons == nil {
		t.Error("Reasons = nil, want empty slice for TEXT[] NOT NULL")
	}
}

// stallDriver accepts connections whose statements never finish on their own.
type stallDriver struct{}

func (stallDriver) Open(string) (driver.Conn, error) { return stallConn{}, nil }

type stallConn struct{}

func (stallConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("prepare not supported") }
func (stallConn) Close() error                        { return nil }
func (stallConn) Begin() (driver.Tx, error)           { return nil, errors.New("transactions not supported") }

func (stallConn) ExecContext(ctx context.Context, _ string, _ []driver.NamedValue) (driver.Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func init() {
	sql.Register("stall", stallDriver{})
}

func TestRecordTimesOut(t *testing.T) {
	conn, err := sql.Open("stall", "")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	db := &DB{DB: conn, writeTimeout: 50 * time.Millisecond}

	r := model.Report{
		CycleID:  "c-1",
		Ticker:   "NVDA",
		Time:     time.Now(),
		Snapshot: model.Snapshot{Ticker: "NVDA"},
		Result:   model.ScoreResult{Label: model.LabelInsufficientData, Reasons: []string{"price"}},
	}

	start := time.Now()
	err = db.Record(context.Background(), r)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Record() error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Record() took %v, want it bounded by the write timeout", elapsed)
	}
}
