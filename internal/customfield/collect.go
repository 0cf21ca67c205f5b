package customfield

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/lalith-99/sheetcrm/internal/models"
)

// Collect reads the submitted value of every enabled definition from form,
// keyed by field key. Checkboxes become bools, numbers float64 (or "" when
// empty or unparsable), everything else the raw string.
func Collect(defs []models.CustomFieldDefinition, form url.Values) map[string]any {
	out := make(map[string]any)
	for _, d := range enabledInOrder(defs) {
		raw := form.Get(ControlID(d.Key))
		switch d.FieldType {
		case models.FieldCheckbox:
			out[d.Key] = truthy(raw)
		case models.FieldNumber:
			out[d.Key] = parseNumber(raw)
		default:
			out[d.Key] = raw
		}
	}
	return out
}

func parseNumber(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return f
}

// Missing returns the labels of required fields left empty in values.
func Missing(defs []models.CustomFieldDefinition, values map[string]any) []string {
	var labels []string
	for _, d := range enabledInOrder(defs) {
		if !d.Required {
			continue
		}
		v := values[d.Key]
		empty := formatValue(v) == ""
		if d.FieldType == models.FieldCheckbox {
			empty = !truthy(v)
		}
		if empty {
			labels = append(labels, d.Label)
		}
	}
	return labels
}
