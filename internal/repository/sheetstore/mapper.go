package sheetstore

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lalith-99/sheetcrm/internal/models"
)

// Row <-> record mapping. Columns are positional; a missing trailing cell
// reads as the zero value. Rows without their discriminating field (a
// company without a name, a relation without both ids, a cleared row) are
// dropped.

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// parseBool accepts "true", "1" and "yes" in any case. Anything else,
// including an empty cell, is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

// parseNumber falls back to 0 for empty, unparsable or non-finite cells.
func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orNow(ts string, now time.Time) string {
	if ts == "" {
		return models.Timestamp(now)
	}
	return ts
}

func orNewID(id string, now time.Time) string {
	if id == "" {
		return models.NewID(now)
	}
	return id
}

func companyFromRow(row []string) (models.Company, bool) {
	c := models.Company{
		ID:       cell(row, 0),
		Name:     cell(row, 1),
		Industry: cell(row, 2),
		Notes:    cell(row, 3),
		Website:  cell(row, 4),
		Phone:    cell(row, 5),
		City:     cell(row, 6),
		Country:  cell(row, 7),
		Domain:   cell(row, 8),
	}
	return c, c.Name != ""
}

func companyToRow(c models.Company, now time.Time) []string {
	return []string{orNewID(c.ID, now), c.Name, c.Industry, c.Notes, c.Website, c.Phone, c.City, c.Country, c.Domain}
}

func contactFromRow(row []string) (models.Contact, bool) {
	c := models.Contact{
		ID:        cell(row, 0),
		CompanyID: cell(row, 1),
		Name:      cell(row, 2),
		Position:  cell(row, 3),
		Email:     cell(row, 4),
		Phone:     cell(row, 5),
	}
	return c, c.Name != ""
}

func contactToRow(c models.Contact, now time.Time) []string {
	return []string{orNewID(c.ID, now), c.CompanyID, c.Name, c.Position, c.Email, c.Phone}
}

func activityFromRow(row []string) (models.Activity, bool) {
	a := models.Activity{
		ID:        cell(row, 0),
		Type:      cell(row, 1),
		Title:     cell(row, 2),
		Date:      cell(row, 3),
		Notes:     cell(row, 4),
		CompanyID: cell(row, 5),
		ContactID: cell(row, 6),
		Status:    models.ActivityStatus(cell(row, 7)),
		CreatedBy: cell(row, 8),
		CreatedAt: cell(row, 9),
	}
	if a.Status == "" {
		a.Status = models.StatusPlanned
	}
	return a, a.ID != ""
}

func activityToRow(a models.Activity, now time.Time) []string {
	status := a.Status
	if status == "" {
		status = models.StatusPlanned
	}
	return []string{
		orNewID(a.ID, now), a.Type, a.Title, a.Date, a.Notes,
		a.CompanyID, a.ContactID, string(status), a.CreatedBy, orNow(a.CreatedAt, now),
	}
}

func historyFromRow(kind models.EntityKind) func(row []string) (models.HistoryEntry, bool) {
	return func(row []string) (models.HistoryEntry, bool) {
		e := models.HistoryEntry{
			Kind:      kind,
			EntityID:  cell(row, 0),
			Type:      models.HistoryType(cell(row, 1)),
			Timestamp: cell(row, 2),
			User:      cell(row, 3),
			Content:   cell(row, 4),
			Meta:      cell(row, 5),
		}
		return e, e.EntityID != ""
	}
}

func historyToRow(e models.HistoryEntry, now time.Time) []string {
	typ := e.Type
	if typ == "" {
		typ = models.HistoryEvent
	}
	return []string{e.EntityID, string(typ), orNow(e.Timestamp, now), e.User, e.Content, e.Meta}
}

func tagFromRow(kind models.EntityKind) func(row []string) (models.Tag, bool) {
	return func(row []string) (models.Tag, bool) {
		t := models.Tag{
			ID:          cell(row, 0),
			Kind:        kind,
			Name:        cell(row, 1),
			Color:       cell(row, 2),
			Description: cell(row, 3),
			CreatedBy:   cell(row, 4),
			CreatedAt:   cell(row, 5),
		}
		return t, t.ID != "" && t.Name != ""
	}
}

func tagToRow(t models.Tag, now time.Time) []string {
	return []string{orNewID(t.ID, now), t.Name, t.Color, t.Description, t.CreatedBy, orNow(t.CreatedAt, now)}
}

func relationFromRow(kind models.EntityKind) func(row []string) (models.TagRelation, bool) {
	return func(row []string) (models.TagRelation, bool) {
		r := models.TagRelation{Kind: kind, EntityID: cell(row, 0), TagID: cell(row, 1)}
		return r, r.EntityID != "" && r.TagID != ""
	}
}

func relationToRow(r models.TagRelation) []string {
	return []string{r.EntityID, r.TagID}
}

func definitionFromRow(row []string) (models.CustomFieldDefinition, bool) {
	d := models.CustomFieldDefinition{
		ID:          cell(row, 0),
		EntityType:  models.EntityKind(cell(row, 1)),
		Key:         cell(row, 2),
		Label:       cell(row, 3),
		FieldType:   models.FieldType(cell(row, 4)),
		OptionsJSON: cell(row, 5),
		Required:    parseBool(cell(row, 6)),
		Enabled:     parseBool(cell(row, 7)),
		Order:       parseNumber(cell(row, 8)),
		CreatedAt:   cell(row, 9),
		UpdatedAt:   cell(row, 10),
	}
	return d, d.Key != ""
}

func definitionToRow(d models.CustomFieldDefinition, now time.Time) []string {
	return []string{
		orNewID(d.ID, now), string(d.EntityType), d.Key, d.Label, string(d.FieldType), d.OptionsJSON,
		formatBool(d.Required), formatBool(d.Enabled), formatNumber(d.Order),
		orNow(d.CreatedAt, now), orNow(d.UpdatedAt, now),
	}
}

// valuesFromRow decodes a CustomFieldValues row. A malformed JSON blob
// yields an empty map and ok=true with badJSON set, so the caller can log
// it without failing the read.
func valuesFromRow(row []string) (v models.CustomFieldValues, ok, badJSON bool) {
	v = models.CustomFieldValues{
		EntityType: models.EntityKind(cell(row, 0)),
		EntityID:   cell(row, 1),
		Values:     map[string]any{},
		UpdatedAt:  cell(row, 3),
	}
	if v.EntityID == "" {
		return v, false, false
	}
	if raw := cell(row, 2); raw != "" {
		if err := json.Unmarshal([]byte(raw), &v.Values); err != nil || v.Values == nil {
			v.Values = map[string]any{}
			return v, true, true
		}
	}
	return v, true, false
}

func valuesToRow(v models.CustomFieldValues, now time.Time) ([]string, error) {
	values := v.Values
	if values == nil {
		values = map[string]any{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return []string{string(v.EntityType), v.EntityID, string(raw), orNow(v.UpdatedAt, now)}, nil
}

func preferencesFromRow(row []string) (models.UserPreferences, bool) {
	p := models.UserPreferences{
		Email:       cell(row, 0),
		DisplayName: cell(row, 1),
		CreatedAt:   cell(row, 2),
		UpdatedAt:   cell(row, 3),
	}
	return p, p.Email != ""
}

func preferencesToRow(p models.UserPreferences, now time.Time) []string {
	return []string{p.Email, p.DisplayName, orNow(p.CreatedAt, now), orNow(p.UpdatedAt, now)}
}
