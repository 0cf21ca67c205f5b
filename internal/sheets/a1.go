package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a parsed A1 range. Columns are 0-based; rows are 1-based like
// the sheet itself. EndRow 0 means "to the end of the sheet"; EndCol -1
// means "every column".
type Range struct {
	Sheet    string
	StartCol int
	EndCol   int
	StartRow int
	EndRow   int
}

// ParseA1 parses "Sheet!A2:I", "Sheet!A5:I5", "Sheet!A:B", "'My Sheet'!B3"
// and a bare "Sheet".
func ParseA1(s string) (Range, error) {
	sheet, cells, hasCells := strings.Cut(s, "!")
	sheet = strings.Trim(sheet, "'")
	if sheet == "" {
		return Range{}, fmt.Errorf("range %q: missing sheet name", s)
	}
	r := Range{Sheet: sheet, StartRow: 1, EndCol: -1}
	if !hasCells || cells == "" {
		return r, nil
	}

	startRef, endRef, isSpan := strings.Cut(cells, ":")
	startCol, startRow, err := parseCell(startRef)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	r.StartCol = startCol
	if startRow > 0 {
		r.StartRow = startRow
	}

	if !isSpan {
		r.EndCol = startCol
		r.EndRow = startRow
		return r, nil
	}
	endCol, endRow, err := parseCell(endRef)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	if endCol < startCol {
		return Range{}, fmt.Errorf("range %q: end column before start column", s)
	}
	if endRow > 0 && endRow < r.StartRow {
		return Range{}, fmt.Errorf("range %q: end row before start row", s)
	}
	r.EndCol = endCol
	r.EndRow = endRow
	return r, nil
}

// parseCell splits "AB12" into column 27 and row 12. The row is 0 when the
// reference has no digits ("AB").
func parseCell(ref string) (col, row int, err error) {
	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("cell %q: missing column", ref)
	}
	col = ColumnIndex(ref[:i])
	if i == len(ref) {
		return col, 0, nil
	}
	row, err = strconv.Atoi(ref[i:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("cell %q: invalid row", ref)
	}
	return col, row, nil
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// ColumnIndex converts "A" to 0, "Z" to 25, "AA" to 26.
func ColumnIndex(letters string) int {
	n := 0
	for _, ch := range strings.ToUpper(letters) {
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1
}

// ColumnLetter converts 0 to "A", 25 to "Z", 26 to "AA".
func ColumnLetter(idx int) string {
	var b []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// DataRange addresses every data row (from row 2) of a sheet whose columns
// run from A to the given width.
func DataRange(sheet string, width int) string {
	return fmt.Sprintf("%s!A2:%s", sheet, ColumnLetter(width-1))
}

// RowRange addresses one full row.
func RowRange(sheet string, width, row int) string {
	last := ColumnLetter(width - 1)
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, last, row)
}
