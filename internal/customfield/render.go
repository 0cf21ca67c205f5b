package customfield

import (
	"embed"
	"html/template"
	"io"
	"sort"

	"github.com/lalith-99/sheetcrm/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var formTemplate = template.Must(template.ParseFS(templateFS, "templates/form.html"))

// ControlID is the form control id (and name) of the field with key.
func ControlID(key string) string {
	return "cf_" + key
}

type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// Control is everything the form template needs for one field.
type Control struct {
	ID        string
	Key       string
	Label     string
	FieldType models.FieldType
	InputType string
	Required  bool
	Value     string
	Checked   bool
	Options   []SelectOption
}

var inputTypes = map[models.FieldType]string{
	models.FieldText:   "text",
	models.FieldNumber: "number",
	models.FieldDate:   "date",
	models.FieldEmail:  "email",
	models.FieldURL:    "url",
}

// enabledInOrder returns the enabled definitions sorted by Order.
func enabledInOrder(defs []models.CustomFieldDefinition) []models.CustomFieldDefinition {
	out := make([]models.CustomFieldDefinition, 0, len(defs))
	for _, d := range defs {
		if d.Enabled {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Render builds one control per enabled definition, prefilled from values.
func Render(defs []models.CustomFieldDefinition, values map[string]any) []Control {
	enabled := enabledInOrder(defs)
	controls := make([]Control, 0, len(enabled))
	for _, d := range enabled {
		v := values[d.Key]
		c := Control{
			ID:        ControlID(d.Key),
			Key:       d.Key,
			Label:     d.Label,
			FieldType: d.FieldType,
			InputType: inputTypes[d.FieldType],
			Required:  d.Required,
		}
		switch d.FieldType {
		case models.FieldCheckbox:
			c.Checked = truthy(v)
		case models.FieldSelect:
			c.Value = formatValue(v)
			opts, _ := ParseOptions(d.OptionsJSON)
			for _, o := range opts {
				c.Options = append(c.Options, SelectOption{Value: o.Value, Label: o.Label, Selected: o.Value == c.Value})
			}
		default:
			if c.InputType == "" && d.FieldType != models.FieldTextarea {
				c.InputType = "text"
			}
			c.Value = formatValue(v)
		}
		controls = append(controls, c)
	}
	return controls
}

// WriteHTML writes the form fragment for controls.
func WriteHTML(w io.Writer, controls []Control) error {
	return formTemplate.Execute(w, controls)
}
