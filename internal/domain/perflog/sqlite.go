package perflog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/okian/impact/internal/domain/model"
	"github.com/okian/impact/pkg/metrics"
)

// SQLiteLog keeps performance records in a SQLite table.
// Safe for concurrent use.
type SQLiteLog struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenSQLite opens or creates the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every new connection would see its own empty database.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	l := &SQLiteLog{db: db}
	if err := l.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return l, nil
}

func (l *SQLiteLog) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS performance_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stock TEXT NOT NULL,
		category TEXT NOT NULL,
		predicted REAL NOT NULL,
		actual REAL,
		date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_perf_stock_date ON performance_log(stock, date);
	`
	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Append implements Log. All records are inserted in one transaction.
func (l *SQLiteLog) Append(ctx context.Context, records ...model.PerformanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if err := validate(r); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordPerformanceError("append")
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO performance_log (stock, category, predicted, actual, date) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		metrics.RecordPerformanceError("append")
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		var actual sql.NullFloat64
		if r.Actual != nil {
			actual = sql.NullFloat64{Float64: *r.Actual, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, r.Stock, r.Category, r.Predicted, actual, r.Date); err != nil {
			metrics.RecordPerformanceError("append")
			return fmt.Errorf("insert record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		metrics.RecordPerformanceError("append")
		return fmt.Errorf("commit: %w", err)
	}
	metrics.RecordPerformanceAppended(len(records))
	return nil
}

// Records implements Log, in insertion order.
func (l *SQLiteLog) Records(ctx context.Context) ([]model.PerformanceRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.db.QueryContext(ctx,
		`SELECT stock, category, predicted, actual, date FROM performance_log ORDER BY id`)
	if err != nil {
		metrics.RecordPerformanceError("read")
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.PerformanceRecord
	for rows.Next() {
		var (
			r      model.PerformanceRecord
			actual sql.NullFloat64
		)
		if err := rows.Scan(&r.Stock, &r.Category, &r.Predicted, &actual, &r.Date); err != nil {
			metrics.RecordPerformanceError("read")
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if actual.Valid {
			r.Actual = model.Float(actual.Float64)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordPerformanceError("read")
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Resolve implements Log.
func (l *SQLiteLog) Resolve(ctx context.Context, stock, date string, actual float64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, err := l.db.ExecContext(ctx,
		`UPDATE performance_log SET actual = ? WHERE stock = ? AND date = ? AND actual IS NULL`,
		actual, stock, date)
	if err != nil {
		metrics.RecordPerformanceError("resolve")
		return 0, fmt.Errorf("resolve records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	metrics.RecordPerformanceResolved(int(n))
	return int(n), nil
}

// Close implements Log.
func (l *SQLiteLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Close()
}
