package sheets

// helpers shared by the Memory and Postgres backends

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

func trimTrailing(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}

// window cuts the columns of r out of row, trimmed like the Sheets API.
func window(row []string, r Range) []string {
	if r.StartCol >= len(row) {
		return []string{}
	}
	end := len(row)
	if r.EndCol >= 0 && r.EndCol+1 < end {
		end = r.EndCol + 1
	}
	out := make([]string, end-r.StartCol)
	copy(out, row[r.StartCol:end])
	return trimTrailing(out)
}

// splice writes values into row starting at column start, growing it as
// needed.
func splice(row []string, start int, values []string) []string {
	need := start + len(values)
	if len(row) < need {
		grown := make([]string, need)
		copy(grown, row)
		row = grown
	}
	copy(row[start:], values)
	return row
}

// blankValues returns the empty cells a Clear writes over r in row.
func blankValues(row []string, r Range) []string {
	end := len(row) - 1
	if r.EndCol >= 0 {
		end = r.EndCol
	}
	if end < r.StartCol {
		return nil
	}
	return make([]string, end-r.StartCol+1)
}

// collect turns a sparse set of rows (1-based numbering) into the dense
// result of a Get over r.
func collect(rows map[int][]string, r Range, lastRow int) [][]string {
	if r.EndRow > 0 && lastRow > r.EndRow {
		lastRow = r.EndRow
	}
	// Drop trailing blank rows.
	for lastRow >= r.StartRow && isBlank(windowOrNil(rows[lastRow], r)) {
		lastRow--
	}
	if lastRow < r.StartRow {
		return [][]string{}
	}
	out := make([][]string, 0, lastRow-r.StartRow+1)
	for n := r.StartRow; n <= lastRow; n++ {
		out = append(out, window(rows[n], r))
	}
	return out
}

func windowOrNil(row []string, r Range) []string {
	if row == nil {
		return nil
	}
	return window(row, r)
}
