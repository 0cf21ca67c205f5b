// Package sheets is the backing store: a spreadsheet addressed by sheet name
// and A1 column/row ranges.
//
// The store only moves rows of string cells. It knows nothing about
// companies or activities; the repository layer owns column layouts.
package sheets

import (
	"context"
	"errors"
)

// ErrSheetNotFound is returned when a range names a sheet that does not
// exist. Optional sheets (activities, preferences) are missing in some
// deployments and their readers degrade to an empty result on it.
var ErrSheetNotFound = errors.New("sheet not found")

// RowStore is the range-addressed contract shared by every backend.
//
// Semantics follow the Google Sheets values API:
//   - Get returns rows from the range start up to the last non-empty row,
//     with trailing empty cells trimmed. Blank rows inside that span come
//     back as empty slices so row positions are preserved.
//   - Update overwrites the cells of a fixed row range.
//   - Append writes after the last non-empty row of the sheet.
//   - Clear blanks a range without removing rows.
type RowStore interface {
	Get(ctx context.Context, rng string) ([][]string, error)
	Update(ctx context.Context, rng string, rows [][]string) error
	Append(ctx context.Context, rng string, rows [][]string) error
	Clear(ctx context.Context, rng string) error
}
