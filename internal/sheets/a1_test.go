package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseA1(t *testing.T) {
	tests := []struct {
		in   string
		want Range
	}{
		{"Companies!A2:I", Range{Sheet: "Companies", StartCol: 0, EndCol: 8, StartRow: 2, EndRow: 0}},
		{"Companies!A5:I5", Range{Sheet: "Companies", StartCol: 0, EndCol: 8, StartRow: 5, EndRow: 5}},
		{"Tags!A:B", Range{Sheet: "Tags", StartCol: 0, EndCol: 1, StartRow: 1, EndRow: 0}},
		{"'My Sheet'!B3", Range{Sheet: "My Sheet", StartCol: 1, EndCol: 1, StartRow: 3, EndRow: 3}},
		{"Contacts", Range{Sheet: "Contacts", StartCol: 0, EndCol: -1, StartRow: 1, EndRow: 0}},
		{"X!AA10:AB12", Range{Sheet: "X", StartCol: 26, EndCol: 27, StartRow: 10, EndRow: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseA1(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseA1_Invalid(t *testing.T) {
	for _, in := range []string{"!A1", "S!12", "S!B2:A2", "S!A5:B2", "S!A0"} {
		_, err := ParseA1(in)
		assert.Error(t, err, in)
	}
}

func TestColumnLetters(t *testing.T) {
	for idx, letters := range map[int]string{0: "A", 8: "I", 25: "Z", 26: "AA", 27: "AB", 701: "ZZ", 702: "AAA"} {
		assert.Equal(t, letters, ColumnLetter(idx))
		assert.Equal(t, idx, ColumnIndex(letters))
	}
}

func TestRangeBuilders(t *testing.T) {
	assert.Equal(t, "Companies!A2:I", DataRange("Companies", 9))
	assert.Equal(t, "Companies!A7:I7", RowRange("Companies", 9, 7))
}
