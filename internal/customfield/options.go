package customfield

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ParseOptions decodes OptionsJSON. Both ["a","b"] and
// [{"value":"a","label":"A"}] are accepted; a missing label defaults to the
// value.
func ParseOptions(raw string) ([]Option, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var plain []string
	if err := json.Unmarshal([]byte(raw), &plain); err == nil {
		opts := make([]Option, 0, len(plain))
		for _, v := range plain {
			opts = append(opts, Option{Value: v, Label: v})
		}
		return opts, nil
	}
	var opts []Option
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return nil, fmt.Errorf("parse select options: %w", err)
	}
	for i := range opts {
		if opts[i].Label == "" {
			opts[i].Label = opts[i].Value
		}
	}
	return opts, nil
}

// Slug turns a label into a field key: lower case ASCII letters and digits
// separated by single underscores.
func Slug(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// formatValue renders a stored value as form or display text.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes", "on":
			return true
		}
	case float64:
		return x != 0
	}
	return false
}
