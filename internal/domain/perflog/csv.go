package perflog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/okian/impact/internal/domain/model"
	"github.com/okian/impact/pkg/fileutil"
	"github.com/okian/impact/pkg/logger"
	"github.com/okian/impact/pkg/metrics"
)

// Header is the first row of a CSV performance log.
var Header = []string{"Stock", "Impact Category", "Predicted", "Actual", "Date"}

const (
	colStock = iota
	colCategory
	colPredicted
	colActual
	colDate
	numCols
)

// CSVLog keeps performance records in a CSV file. An empty Actual column
// marks a pending record.
type CSVLog struct {
	mu     sync.Mutex
	path   string
	logger logger.Logger
}

// CSVOption applies a configuration option to the CSVLog.
type CSVOption func(*CSVLog)

// WithCSVLogger sets a custom logger.
func WithCSVLogger(l logger.Logger) CSVOption {
	return func(c *CSVLog) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCSVLog creates a log backed by path. The file is created on first append.
func NewCSVLog(path string, opts ...CSVOption) *CSVLog {
	c := &CSVLog{path: path, logger: logger.Get().Named("perflog")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the file location.
func (c *CSVLog) Path() string { return c.path }

// Append implements Log.
func (c *CSVLog) Append(_ context.Context, records ...model.PerformanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if err := validate(r); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		metrics.RecordPerformanceError("append")
		return fmt.Errorf("open performance log: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		metrics.RecordPerformanceError("append")
		return fmt.Errorf("stat performance log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, r := range records {
		if err := w.Write(toRow(r)); err != nil {
			metrics.RecordPerformanceError("append")
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		metrics.RecordPerformanceError("append")
		return fmt.Errorf("flush performance log: %w", err)
	}
	metrics.RecordPerformanceAppended(len(records))
	return nil
}

// Records implements Log. A missing file is an empty log; malformed rows are
// skipped.
func (c *CSVLog) Records(ctx context.Context) ([]model.PerformanceRecord, error) {
	c.mu.Lock()
	rows, err := c.readRows()
	c.mu.Unlock()
	if err != nil {
		metrics.RecordPerformanceError("read")
		return nil, err
	}

	out := make([]model.PerformanceRecord, 0, len(rows))
	for i, row := range rows {
		r, err := fromRow(row)
		if err != nil {
			c.logger.Warn(ctx, "skipping malformed performance row", logger.Int("row", i+2), logger.Error(err))
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Resolve implements Log. The file is rewritten atomically when a row changes.
func (c *CSVLog) Resolve(_ context.Context, stock, date string, actual float64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.readRows()
	if err != nil {
		metrics.RecordPerformanceError("resolve")
		return 0, err
	}

	changed := 0
	for _, row := range rows {
		if len(row) != numCols {
			continue
		}
		if row[colStock] == stock && row[colDate] == date && strings.TrimSpace(row[colActual]) == "" {
			row[colActual] = formatFloat(actual)
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}

	err = fileutil.WriteAtomic(c.path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(Header); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
	if err != nil {
		metrics.RecordPerformanceError("resolve")
		return 0, fmt.Errorf("rewrite performance log: %w", err)
	}
	metrics.RecordPerformanceResolved(changed)
	return changed, nil
}

// Close implements Log.
func (c *CSVLog) Close() error { return nil }

// readRows returns every data row, header excluded. Callers hold c.mu.
func (c *CSVLog) readRows() ([][]string, error) {
	f, err := os.Open(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open performance log: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read performance log: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 && rows[0][colStock] == Header[colStock] {
		rows = rows[1:]
	}
	return rows, nil
}

func toRow(r model.PerformanceRecord) []string {
	row := make([]string, numCols)
	row[colStock] = r.Stock
	row[colCategory] = r.Category
	row[colPredicted] = formatFloat(r.Predicted)
	if r.Actual != nil {
		row[colActual] = formatFloat(*r.Actual)
	}
	row[colDate] = r.Date
	return row
}

func fromRow(row []string) (model.PerformanceRecord, error) {
	if len(row) != numCols {
		return model.PerformanceRecord{}, fmt.Errorf("want %d columns, got %d", numCols, len(row))
	}
	predicted, err := strconv.ParseFloat(strings.TrimSpace(row[colPredicted]), 64)
	if err != nil {
		return model.PerformanceRecord{}, fmt.Errorf("predicted: %w", err)
	}
	r := model.PerformanceRecord{
		Stock:     row[colStock],
		Category:  row[colCategory],
		Predicted: predicted,
		Date:      row[colDate],
	}
	if s := strings.TrimSpace(row[colActual]); s != "" {
		actual, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.PerformanceRecord{}, fmt.Errorf("actual: %w", err)
		}
		r.Actual = &actual
	}
	return r, validate(r)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
