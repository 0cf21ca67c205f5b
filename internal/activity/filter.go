package activity

import (
	"sort"

	"github.com/lalith-99/sheetcrm/internal/models"
)

// Filters narrows a list of activities. Zero values match everything.
// DateFrom and DateTo are inclusive ISO dates.
type Filters struct {
	Type     string                `form:"type" json:"type"`
	Status   models.ActivityStatus `form:"status" json:"status"`
	DateFrom string                `form:"date_from" json:"date_from"`
	DateTo   string                `form:"date_to" json:"date_to"`
}

// ApplyFilters returns the matching activities newest first, the order
// activity lists are displayed in.
func ApplyFilters(list []models.Activity, f Filters) []models.Activity {
	from := models.DatePrefix(f.DateFrom)
	to := models.DatePrefix(f.DateTo)

	out := make([]models.Activity, 0, len(list))
	for _, a := range list {
		day := models.DatePrefix(a.Date)
		switch {
		case f.Type != "" && a.Type != f.Type:
		case f.Status != "" && a.Status != f.Status:
		case from != "" && day < from:
		case to != "" && day > to:
		default:
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// byLinks keeps activities linked to companyID and contactID; an empty id
// does not narrow.
func byLinks(list []models.Activity, companyID, contactID string) []models.Activity {
	out := make([]models.Activity, 0, len(list))
	for _, a := range list {
		if companyID != "" && a.CompanyID != companyID {
			continue
		}
		if contactID != "" && a.ContactID != contactID {
			continue
		}
		out = append(out, a)
	}
	return out
}

func oldestFirst(list []models.Activity) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date < list[j].Date })
}
