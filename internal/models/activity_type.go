package models

// ActivityType is the configured metadata for one activity type key.
type ActivityType struct {
	Key           string `json:"key" yaml:"key"`
	Label         string `json:"label" yaml:"label"`
	RequiresTitle bool   `json:"requires_title" yaml:"requires_title"`
	RequiresDate  bool   `json:"requires_date" yaml:"requires_date"`
}

// ActivityTypes is the ordered set of known activity types.
type ActivityTypes []ActivityType

// DefaultActivityTypes is used when no activity types file is configured.
func DefaultActivityTypes() ActivityTypes {
	return ActivityTypes{
		{Key: "EMAIL", Label: "Email", RequiresTitle: true},
		{Key: "PHONE", Label: "Phone call"},
		{Key: "MEETING", Label: "Meeting", RequiresTitle: true, RequiresDate: true},
		{Key: "TASK", Label: "Task", RequiresTitle: true, RequiresDate: true},
	}
}

// Lookup finds a type by its exact key.
func (ts ActivityTypes) Lookup(key string) (ActivityType, bool) {
	for _, t := range ts {
		if t.Key == key {
			return t, true
		}
	}
	return ActivityType{}, false
}

// Label returns the display label for key, or the key itself when unknown.
func (ts ActivityTypes) Label(key string) string {
	if t, ok := ts.Lookup(key); ok && t.Label != "" {
		return t.Label
	}
	return key
}
