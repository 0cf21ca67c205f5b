package models

// EntityKind tags which side of the CRM a record belongs to.
//
// History feeds, tags and custom field values exist for both companies and
// contacts. Callers always pass the kind explicitly; it is never inferred
// from which foreign key happens to be set on a record.
type EntityKind string

const (
	KindCompany EntityKind = "company"
	KindContact EntityKind = "contact"
	// KindBoth is only valid as the scope of a custom field definition.
	KindBoth EntityKind = "both"
)

// Valid reports whether k names a concrete entity (company or contact).
func (k EntityKind) Valid() bool {
	return k == KindCompany || k == KindContact
}

// Company is one row of the Companies sheet.
//
// Domain is used for inbound-lead matching: an email from "bob@acme.io"
// is matched to the company whose Domain equals "acme.io", ignoring case.
type Company struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Notes    string `json:"notes"`
	Website  string `json:"website"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Domain   string `json:"domain"`
}

// Contact is a person, optionally attached to a company.
type Contact struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	Position  string `json:"position"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ActivityStatus string

const (
	StatusPlanned   ActivityStatus = "planned"
	StatusCompleted ActivityStatus = "completed"
	StatusCancelled ActivityStatus = "cancelled"
)

// Statuses lists every known status in display order.
var Statuses = []ActivityStatus{StatusPlanned, StatusCompleted, StatusCancelled}

func (s ActivityStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Activity is a planned or logged interaction (email, call, meeting, task).
//
// Date is kept as the ISO-8601 string stored in the sheet. Date filters
// compare its "YYYY-MM-DD" prefix as a string, which sorts correctly for
// ISO dates without parsing every row.
type Activity struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Date      string         `json:"date"`
	Notes     string         `json:"notes"`
	CompanyID string         `json:"company_id"`
	ContactID string         `json:"contact_id"`
	Status    ActivityStatus `json:"status"`
	CreatedBy string         `json:"created_by"`
	CreatedAt string         `json:"created_at"`
}

type HistoryType string

const (
	HistoryNote  HistoryType = "note"
	HistoryEvent HistoryType = "event"
)

// HistoryEntry is one line of a company or contact history feed.
// Meta carries a machine-readable provenance tag such as
// "activity_created:<id>".
type HistoryEntry struct {
	Kind      EntityKind  `json:"kind"`
	EntityID  string      `json:"entity_id"`
	Type      HistoryType `json:"type"`
	Timestamp string      `json:"timestamp"`
	User      string      `json:"user"`
	Content   string      `json:"content"`
	Meta      string      `json:"meta"`
}

// Tag labels companies or contacts. Company tags and contact tags live in
// separate sheets, so the same name can exist once per kind.
type Tag struct {
	ID          string     `json:"id"`
	Kind        EntityKind `json:"kind"`
	Name        string     `json:"name"`
	Color       string     `json:"color"`
	Description string     `json:"description"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   string     `json:"created_at"`
}

// TagRelation is a join row between one tag and one company or contact.
type TagRelation struct {
	Kind     EntityKind `json:"kind"`
	EntityID string     `json:"entity_id"`
	TagID    string     `json:"tag_id"`
}

// UserPreferences is keyed by the user's email.
type UserPreferences struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
