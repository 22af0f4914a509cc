// Package availability computes free appointment slots for a date and
// barber against existing reservations.
package availability

import (
	"github.com/Cronos-Project/Chatbot-Cronos/internal/catalog"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/models"
)

// Slots returns the catalog slots not yet reserved for the given date
// and barber, preserving the catalog ordering. An empty result means
// the day is fully booked; callers should ask for another date rather
// than treat it as an error.
func Slots(date, barberID string, existing []models.Reservation) []string {
	taken := make(map[string]struct{}, len(existing))
	for i := range existing {
		r := &existing[i]
		if r.Date == date && r.BarberID == barberID {
			taken[r.Time] = struct{}{}
		}
	}

	free := make([]string, 0, len(catalog.AllowedSlots))
	for _, slot := range catalog.AllowedSlots {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free
}

// Contains reports whether slot is present in slots.
func Contains(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
