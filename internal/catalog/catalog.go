// Package catalog holds the fixed roster of services, barbers and
// bookable time slots. Nothing here mutates at runtime.
package catalog

import "strings"

// Service is an immutable catalog entry.
type Service struct {
	Name            string
	DurationMinutes int
	Price           float64
}

// Barber is an immutable roster entry.
type Barber struct {
	DisplayName string
	ID          string
}

var Services = []Service{
	{Name: "Corte", DurationMinutes: 30, Price: 30},
	{Name: "Barba", DurationMinutes: 20, Price: 20},
	{Name: "Corte + Barba", DurationMinutes: 45, Price: 45},
}

var Barbers = []Barber{
	{DisplayName: "João", ID: "joao"},
	{DisplayName: "Pedro", ID: "pedro"},
	{DisplayName: "Lucas", ID: "lucas"},
}

// AllowedSlots is the ordered set of valid appointment start times.
// 12:00 is the lunch break.
var AllowedSlots = []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}

// ServiceByName returns the catalog entry for a canonical service name.
func ServiceByName(name string) (Service, bool) {
	for _, s := range Services {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}

// BarberByDisplayName matches a barber case-insensitively by display name.
func BarberByDisplayName(name string) (Barber, bool) {
	name = strings.TrimSpace(name)
	for _, b := range Barbers {
		if strings.EqualFold(b.DisplayName, name) {
			return b, true
		}
	}
	return Barber{}, false
}

// BarberByID returns the roster entry for an id.
func BarberByID(id string) (Barber, bool) {
	for _, b := range Barbers {
		if b.ID == id {
			return b, true
		}
	}
	return Barber{}, false
}

// IsAllowedSlot reports whether t is a bookable start time.
func IsAllowedSlot(t string) bool {
	for _, s := range AllowedSlots {
		if s == t {
			return true
		}
	}
	return false
}

// BarberNames returns the display names in roster order.
func BarberNames() []string {
	names := make([]string, 0, len(Barbers))
	for _, b := range Barbers {
		names = append(names, b.DisplayName)
	}
	return names
}
