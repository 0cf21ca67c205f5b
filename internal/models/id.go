package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is how every timestamp is written to the sheet.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DateLayout is the ISO date prefix used for date comparisons.
const DateLayout = "2006-01-02"

// NewID returns an opaque record id: a base-36 millisecond timestamp plus a
// short random token, e.g. "m1x2k3l4_9f86d081".
//
// Sheet rows have no auto-increment, so ids are generated client side. The
// timestamp prefix keeps ids roughly sortable by creation time.
func NewID(now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return strconv.FormatInt(now.UnixMilli(), 36) + "_" + token
}

// Timestamp formats t in TimestampLayout (UTC).
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// DatePrefix returns the "YYYY-MM-DD" part of an ISO date or timestamp.
// Shorter strings are returned as-is.
func DatePrefix(s string) string {
	if len(s) >= len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}
