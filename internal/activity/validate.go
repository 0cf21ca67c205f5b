package activity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/markusmobius/go-dateparser"
)

// ValidationError lists every rule an activity violates.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid activity: " + strings.Join(e.Problems, "; ")
}

var isoLayouts = []string{
	time.RFC3339Nano,
	models.TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	models.DateLayout,
}

// Validate checks a against the configured activity types and returns every
// problem found, or nil. It never stops at the first problem.
func (s *Service) Validate(a models.Activity) []string {
	var problems []string

	typ, known := s.types.Lookup(a.Type)
	if !known {
		problems = append(problems, fmt.Sprintf("unknown activity type %q", a.Type))
	}
	if known && typ.RequiresTitle && strings.TrimSpace(a.Title) == "" {
		problems = append(problems, fmt.Sprintf("title is required for %s", typ.Label))
	}
	if known && typ.RequiresDate && strings.TrimSpace(a.Date) == "" {
		problems = append(problems, fmt.Sprintf("date is required for %s", typ.Label))
	}
	if a.CompanyID == "" && a.ContactID == "" {
		problems = append(problems, "activity must be linked to a company or a contact")
	}
	if a.Date != "" {
		if _, err := s.parseDate(a.Date); err != nil {
			problems = append(problems, fmt.Sprintf("date %q is not a valid date", a.Date))
		}
	}
	if a.Status != "" && !a.Status.Valid() {
		problems = append(problems, fmt.Sprintf("unknown status %q", a.Status))
	}
	return problems
}

var (
	isoPrefix  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	hasLetter  = regexp.MustCompile(`\pL`)
	dayPhrase  = regexp.MustCompile(`(?i)^(today|tomorrow|yesterday)$`)
	weekPhrase = regexp.MustCompile(`(?i)^(next|last|this)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)$`)
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
}

// parseDate accepts the ISO layouts, day phrases ("tomorrow", "next
// friday") and other written-out dates ("March 12 2024", "in 3 days")
// relative to the service clock.
//
// Text shaped like an ISO date must parse as one: "2024-02-30" is an
// error, not February 29. Input without any letters ("5", "31/02/2024")
// is rejected instead of guessed at.
func (s *Service) parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	if isoPrefix.MatchString(v) || !hasLetter.MatchString(v) {
		return time.Time{}, fmt.Errorf("unrecognized date %q", v)
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if m := dayPhrase.FindStringSubmatch(v); m != nil {
		switch strings.ToLower(m[1]) {
		case "tomorrow":
			return today.AddDate(0, 0, 1), nil
		case "yesterday":
			return today.AddDate(0, 0, -1), nil
		}
		return today, nil
	}
	if m := weekPhrase.FindStringSubmatch(v); m != nil {
		return relativeWeekday(today, strings.ToLower(m[1]), weekdays[strings.ToLower(m[2])]), nil
	}

	res, err := dateparser.Parse(&dateparser.Configuration{CurrentTime: now}, v)
	if err != nil {
		return time.Time{}, err
	}
	return res.Time, nil
}

// relativeWeekday resolves "next friday" to the first Friday after today,
// "last friday" to the latest one before today, and "this friday" to the
// Friday of the current Monday-based week.
func relativeWeekday(today time.Time, modifier string, day time.Weekday) time.Time {
	diff := int(day - today.Weekday())
	switch modifier {
	case "next":
		if diff <= 0 {
			diff += 7
		}
	case "last":
		if diff >= 0 {
			diff -= 7
		}
	default:
		offset := (int(today.Weekday()) + 6) % 7
		diff = (int(day)+6)%7 - offset
	}
	return today.AddDate(0, 0, diff)
}

// normalizeDate rewrites dates that are not ISO already so that the
// string comparisons used for filtering keep working.
func (s *Service) normalizeDate(v string) string {
	v = strings.TrimSpace(v)
	for _, layout := range isoLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return v
		}
	}
	if t, err := s.parseDate(v); err == nil {
		return models.Timestamp(t)
	}
	return v
}
