// Package normalize turns free-text user input into canonical typed
// values. All functions are pure: they return the canonical form and an
// ok flag instead of errors, so callers can re-prompt on rejection.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Cronos-Project/Chatbot-Cronos/internal/catalog"
)

// DateLayout is the canonical wire form for reservation dates.
const DateLayout = "02/01/2006"

var (
	serviceCorteRe      = regexp.MustCompile(`^corte$`)
	serviceBarbaRe      = regexp.MustCompile(`^barba$`)
	serviceCorteBarbaRe = regexp.MustCompile(`^corte\s*[+&e]\s*barba$`)
	dateRe              = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	timeRe              = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	spacesRe            = regexp.MustCompile(`\s+`)

	diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Calendar validation failures for booking dates.
var (
	ErrNotACalendarDay = errors.New("not a real calendar day")
	ErrSunday          = errors.New("sundays are closed")
	ErrPastDate        = errors.New("date is in the past")
	ErrTooFarAhead     = errors.New("date is more than one year ahead")
)

// fold lowercases, strips diacritics and collapses whitespace.
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(diacriticStripper, s); err == nil {
		s = out
	}
	return spacesRe.ReplaceAllString(s, " ")
}

// Service maps free text onto one of the three catalog services.
// Matching is case- and diacritic-insensitive; "corte e barba",
// "corte+barba" and "corte & barba" all map to "Corte + Barba".
func Service(text string) (string, bool) {
	folded := fold(text)
	switch {
	case serviceCorteRe.MatchString(folded):
		return "Corte", true
	case serviceBarbaRe.MatchString(folded):
		return "Barba", true
	case serviceCorteBarbaRe.MatchString(folded):
		return "Corte + Barba", true
	}
	return "", false
}

// Date accepts D/M/Y or D-M-Y with 1-2 digit day and month and a 2- or
// 4-digit year, and returns the canonical DD/MM/YYYY form. Two-digit
// years are expanded with a "20" prefix. Only the syntactic form is
// checked here; calendar validity belongs to ValidateCalendarDate.
func Date(text string) (string, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), "-", "/")
	m := dateRe.FindStringSubmatch(cleaned)
	if m == nil {
		return "", false
	}
	day, month, year := m[1], m[2], m[3]
	if len(year) == 3 {
		return "", false
	}
	if len(year) == 2 {
		year = "20" + year
	}
	return fmt.Sprintf("%s/%s/%s", pad2(day), pad2(month), year), true
}

// Time accepts H:MM or HH:MM, zero-pads the hour and rejects any result
// that is not a bookable slot.
func Time(text string) (string, bool) {
	m := timeRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}
	normalized := fmt.Sprintf("%s:%s", pad2(m[1]), m[2])
	if !catalog.IsAllowedSlot(normalized) {
		return "", false
	}
	return normalized, true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// ParseDate parses a canonical DD/MM/YYYY string in the local zone,
// rejecting impossible days such as 31/02.
func ParseDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, ErrNotACalendarDay
	}
	return d, nil
}

// ValidateCalendarDate applies the booking-flow calendar rules to a
// canonical date: it must be a real day, not a Sunday, not before
// today and at most one year from today. now supplies the reference
// instant so the rules stay testable.
func ValidateCalendarDate(date string, now time.Time) error {
	d, err := ParseDate(date)
	if err != nil {
		return err
	}
	if d.Weekday() == time.Sunday {
		return ErrSunday
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return ErrPastDate
	}
	if d.After(today.AddDate(1, 0, 0)) {
		return ErrTooFarAhead
	}
	return nil
}
