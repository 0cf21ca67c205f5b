package sheets

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process spreadsheet. It backs tests and the "memory"
// store backend used for local development.
type Memory struct {
	mu       sync.Mutex
	sheets   map[string][][]string
	failNext int
}

// NewMemory creates a store with the given (empty) sheets.
func NewMemory(sheetNames ...string) *Memory {
	m := &Memory{sheets: make(map[string][][]string)}
	for _, name := range sheetNames {
		m.sheets[name] = nil
	}
	return m
}

// AddSheet creates (or replaces) a sheet. rows[0] is row 1, normally the
// header.
func (m *Memory) AddSheet(name string, rows ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	m.sheets[name] = copied
}

// Rows returns a copy of every row of a sheet, header included.
func (m *Memory) Rows(name string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.sheets[name]))
	for i, r := range m.sheets[name] {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// FailNext makes the next n operations return an error. Tests use it to
// exercise the retry wrapper.
func (m *Memory) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
}

func (m *Memory) begin(rng string) (Range, error) {
	if m.failNext > 0 {
		m.failNext--
		return Range{}, fmt.Errorf("memory store: injected failure for %s", rng)
	}
	r, err := ParseA1(rng)
	if err != nil {
		return Range{}, err
	}
	if _, ok := m.sheets[r.Sheet]; !ok {
		return Range{}, fmt.Errorf("%s: %w", r.Sheet, ErrSheetNotFound)
	}
	return r, nil
}

func (m *Memory) Get(ctx context.Context, rng string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := m.begin(rng)
	if err != nil {
		return nil, err
	}
	sheet := m.sheets[r.Sheet]
	sparse := make(map[int][]string, len(sheet))
	for i, row := range sheet {
		sparse[i+1] = row
	}
	return collect(sparse, r, len(sheet)), nil
}

func (m *Memory) Update(ctx context.Context, rng string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := m.begin(rng)
	if err != nil {
		return err
	}
	m.write(r.Sheet, r.StartRow, r.StartCol, rows)
	return nil
}

func (m *Memory) Append(ctx context.Context, rng string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := m.begin(rng)
	if err != nil {
		return err
	}
	m.write(r.Sheet, m.lastRow(r.Sheet)+1, r.StartCol, rows)
	return nil
}

func (m *Memory) Clear(ctx context.Context, rng string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := m.begin(rng)
	if err != nil {
		return err
	}
	sheet := m.sheets[r.Sheet]
	last := len(sheet)
	if r.EndRow > 0 && r.EndRow < last {
		last = r.EndRow
	}
	for n := r.StartRow; n <= last; n++ {
		row := sheet[n-1]
		sheet[n-1] = splice(row, r.StartCol, blankValues(row, r))
	}
	return nil
}

// write must be called with mu held.
func (m *Memory) write(name string, startRow, startCol int, rows [][]string) {
	sheet := m.sheets[name]
	for len(sheet) < startRow-1+len(rows) {
		sheet = append(sheet, nil)
	}
	for i, values := range rows {
		idx := startRow - 1 + i
		sheet[idx] = splice(sheet[idx], startCol, values)
	}
	m.sheets[name] = sheet
}

// lastRow is the 1-based number of the last non-empty row, 0 for an empty
// sheet. Must be called with mu held.
func (m *Memory) lastRow(name string) int {
	sheet := m.sheets[name]
	for n := len(sheet); n > 0; n-- {
		if !isBlank(sheet[n-1]) {
			return n
		}
	}
	return 0
}
