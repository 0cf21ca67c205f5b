package customfield

import "github.com/lalith-99/sheetcrm/internal/models"

// Labels holds the localized words used by the detail view.
type Labels struct {
	Yes string
}

var DefaultLabels = Labels{Yes: "Yes"}

// DetailRow is one label/value pair of the read-only detail view.
type DetailRow struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Details lists the enabled fields that have a value. Empty values and
// unchecked checkboxes are left out; select values show their option label.
func Details(defs []models.CustomFieldDefinition, values map[string]any, labels Labels) []DetailRow {
	rows := make([]DetailRow, 0)
	for _, d := range enabledInOrder(defs) {
		v, ok := values[d.Key]
		if !ok {
			continue
		}
		var text string
		switch d.FieldType {
		case models.FieldCheckbox:
			if !truthy(v) {
				continue
			}
			text = labels.Yes
		case models.FieldSelect:
			text = formatValue(v)
			opts, _ := ParseOptions(d.OptionsJSON)
			for _, o := range opts {
				if o.Value == text {
					text = o.Label
					break
				}
			}
		default:
			text = formatValue(v)
		}
		if text == "" {
			continue
		}
		rows = append(rows, DetailRow{Key: d.Key, Label: d.Label, Value: text})
	}
	return rows
}
