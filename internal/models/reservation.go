package models

import (
	"fmt"
	"time"
)

// Reservation is a committed appointment. Dates are canonical
// DD/MM/YYYY strings and times are drawn from the catalog slot set;
// no two live reservations may share the same (date, time, barber).
type Reservation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Service   string    `json:"service"`
	BarberID  string    `json:"barber_id"`
	Date      string    `json:"date"` // DD/MM/YYYY
	Time      string    `json:"time"` // HH:MM
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// StartsAt composes the appointment start instant in the local zone.
func (r *Reservation) StartsAt() (time.Time, error) {
	t, err := time.ParseInLocation("02/01/2006 15:04", fmt.Sprintf("%s %s", r.Date, r.Time), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("compose start time: %w", err)
	}
	return t, nil
}

// ReminderAt returns the reminder trigger instant: appointment start
// minus the lead duration.
func (r *Reservation) ReminderAt(lead time.Duration) (time.Time, error) {
	start, err := r.StartsAt()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(-lead), nil
}

// SlotKey identifies the uniqueness triple of a reservation.
func (r *Reservation) SlotKey() string {
	return fmt.Sprintf("%s|%s|%s", r.Date, r.Time, r.BarberID)
}
