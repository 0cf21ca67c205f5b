package models

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldEmail    FieldType = "email"
	FieldURL      FieldType = "url"
	FieldCheckbox FieldType = "checkbox"
	FieldSelect   FieldType = "select"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldTextarea, FieldNumber, FieldDate, FieldEmail, FieldURL, FieldCheckbox, FieldSelect:
		return true
	}
	return false
}

// CustomFieldDefinition describes one user-defined field.
//
// Definitions are never hard-deleted. Disabling sets Enabled=false, which
// hides the field from forms and detail views while keeping stored values.
type CustomFieldDefinition struct {
	ID          string     `json:"id"`
	EntityType  EntityKind `json:"entity_type"`
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	FieldType   FieldType  `json:"field_type"`
	OptionsJSON string     `json:"options_json"`
	Required    bool       `json:"required"`
	Enabled     bool       `json:"enabled"`
	Order       float64    `json:"order"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// AppliesTo reports whether the definition is shown for the given kind.
func (d CustomFieldDefinition) AppliesTo(kind EntityKind) bool {
	return d.EntityType == kind || d.EntityType == KindBoth
}

// CustomFieldValues holds every custom value of one company or contact.
// The whole map is rewritten on each save.
type CustomFieldValues struct {
	EntityType EntityKind     `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Values     map[string]any `json:"values"`
	UpdatedAt  string         `json:"updated_at"`
}
