package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Cronos-Project/Chatbot-Cronos/internal/models"
)

const reservationColumns = "id, name, phone, service, barber_id, date, time, price, created_at"

// CreateReservation persists a new reservation. A uniqueness violation
// on (date, time, barber_id) is reported as ErrSlotTaken so callers can
// tell a lost race apart from an infrastructure failure.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	now := time.Now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO reservations (name, phone, service, barber_id, date, time, price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Name, r.Phone, r.Service, r.BarberID, r.Date, r.Time, r.Price, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert reservation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reservation id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now

	db.invalidateSlotCache(ctx, r.Date, r.BarberID)
	return nil
}

// ListByDateBarber returns all reservations for a date and barber.
// Served from the Redis cache when enabled.
func (db *DB) ListByDateBarber(ctx context.Context, date, barberID string) ([]models.Reservation, error) {
	key := slotCacheKey(date, barberID)
	if cached, ok := db.readSlotCache(ctx, key); ok {
		return cached, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE date = ? AND barber_id = ?
		ORDER BY time`,
		date, barberID,
	)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	reservations, err := scanReservations(rows)
	if err != nil {
		return nil, err
	}

	db.writeSlotCache(ctx, key, reservations)
	return reservations, nil
}

// ListAll returns every reservation sorted chronologically by date then
// time. Dates are stored DD/MM/YYYY, so ordering rearranges the parts
// instead of comparing the raw strings.
func (db *DB) ListAll(ctx context.Context) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		ORDER BY substr(date, 7, 4), substr(date, 4, 2), substr(date, 1, 2), time`,
	)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// DeleteByNameDateTime atomically finds and deletes the single
// reservation matching (name, date, time). The deleted row is returned
// so callers can cancel its reminder; ErrReservationNotFound is
// returned when nothing matched.
func (db *DB) DeleteByNameDateTime(ctx context.Context, name, date, timeStr string) (*models.Reservation, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var r models.Reservation
	err = tx.QueryRowContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE name = ? COLLATE NOCASE AND date = ? AND time = ?
		LIMIT 1`,
		name, date, timeStr,
	).Scan(&r.ID, &r.Name, &r.Phone, &r.Service, &r.BarberID, &r.Date, &r.Time, &r.Price, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", r.ID); err != nil {
		return nil, fmt.Errorf("delete reservation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete: %w", err)
	}

	db.invalidateSlotCache(ctx, r.Date, r.BarberID)
	return &r, nil
}

func scanReservations(rows *sql.Rows) ([]models.Reservation, error) {
	var reservations []models.Reservation
	for rows.Next() {
		var r models.Reservation
		if err := rows.Scan(&r.ID, &r.Name, &r.Phone, &r.Service, &r.BarberID, &r.Date, &r.Time, &r.Price, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func slotCacheKey(date, barberID string) string {
	return fmt.Sprintf("reservations:%s:%s", date, barberID)
}

func (db *DB) readSlotCache(ctx context.Context, key string) ([]models.Reservation, bool) {
	if db.cache == nil || db.cacheTTL <= 0 {
		return nil, false
	}
	val, err := db.cache.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var reservations []models.Reservation
	if err := json.Unmarshal([]byte(val), &reservations); err != nil {
		return nil, false
	}
	return reservations, true
}

func (db *DB) writeSlotCache(ctx context.Context, key string, reservations []models.Reservation) {
	if db.cache == nil || db.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(reservations)
	if err != nil {
		return
	}
	if err := db.cache.Set(ctx, key, data, db.cacheTTL).Err(); err != nil {
		db.logger.Debug().Err(err).Str("key", key).Msg("slot cache write failed")
	}
}

func (db *DB) invalidateSlotCache(ctx context.Context, date, barberID string) {
	if db.cache == nil {
		return
	}
	if err := db.cache.Del(ctx, slotCacheKey(date, barberID)).Err(); err != nil {
		db.logger.Debug().Err(err).Msg("slot cache invalidation failed")
	}
}
