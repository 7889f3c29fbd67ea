package memory

import (
	"context"
	"sync"

	ports "cashflow/internal/sheets"
)

// Exporter keeps the last exported workbook in memory. It backs the worker
// when no spreadsheet is configured and serves as the test double.
type Exporter struct {
	mu      sync.Mutex
	sheets  map[string][][]any
	exports int

	// Err, when set, is returned by Export instead of storing anything.
	Err error
}

var _ ports.LedgerExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{sheets: make(map[string][][]any)}
}

// Export replaces the stored rows of every given sheet.
func (e *Exporter) Export(_ context.Context, sheets []ports.Sheet) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	for _, s := range sheets {
		rows := make([][]any, len(s.Rows))
		copy(rows, s.Rows)
		e.sheets[s.Name] = rows
	}
	e.exports++
	return nil
}

// Rows returns the last exported rows of a sheet.
func (e *Exporter) Rows(name string) [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sheets[name]
}

// Exports counts successful exports.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}
