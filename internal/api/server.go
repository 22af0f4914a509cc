package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cronos-Project/Chatbot-Cronos/internal/availability"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/catalog"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/database"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/metrics"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/models"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/normalize"
)

// Repository is the reservation store surface the HTTP API needs.
type Repository interface {
	CreateReservation(ctx context.Context, r *models.Reservation) error
	ListAll(ctx context.Context) ([]models.Reservation, error)
	ListByDateBarber(ctx context.Context, date, barberID string) ([]models.Reservation, error)
	DeleteByNameDateTime(ctx context.Context, name, date, timeStr string) (*models.Reservation, error)
}

// Scheduler cancels pending reminders when a reservation is removed
// over the API.
type Scheduler interface {
	Cancel(key int64) bool
}

// HTTPServer exposes reservations over JSON for external tooling. It
// bypasses the conversational flow entirely: reservations created here
// get no reminder, ones deleted here do get their reminder cancelled.
type HTTPServer struct {
	repo      Repository
	reminders Scheduler
	log       *zerolog.Logger
	srv       *http.Server
}

func NewHTTPServer(addr string, repo Repository, reminders Scheduler, logger *zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		repo:      repo,
		reminders: reminders,
		log:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/reservations", s.handleReservations)
	mux.HandleFunc("/api/v1/availability", s.handleAvailability)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until the context is cancelled, then shuts down
// gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

// Handler exposes the mux for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.srv.Handler
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListReservations(w, r)
	case http.MethodPost:
		s.handleCreateReservation(w, r)
	case http.MethodDelete:
		s.handleDeleteReservation(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleListReservations returns all reservations in chronological
// order, or one date+barber combination when both filters are given.
// GET /api/v1/reservations?date=DD/MM/YYYY&barber=joao
func (s *HTTPServer) handleListReservations(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_reservations")

	date := r.URL.Query().Get("date")
	barberID := r.URL.Query().Get("barber")

	var (
		reservations []models.Reservation
		err          error
	)
	switch {
	case date != "" && barberID != "":
		if _, ok := catalog.BarberByID(barberID); !ok {
			writeError(w, http.StatusBadRequest, "unknown barber")
			return
		}
		reservations, err = s.repo.ListByDateBarber(r.Context(), date, barberID)
	case date == "" && barberID == "":
		reservations, err = s.repo.ListAll(r.Context())
	default:
		writeError(w, http.StatusBadRequest, "date and barber must be used together")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("list reservations failed")
		writeError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}

	if reservations == nil {
		reservations = []models.Reservation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

// CreateReservationRequest is the request body for POST /api/v1/reservations.
type CreateReservationRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Barber  string `json:"barber"`
	Date    string `json:"date"` // DD/MM/YYYY
	Time    string `json:"time"` // HH:MM
}

func (s *HTTPServer) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_reservation")

	var req CreateReservationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "name and phone are required")
		return
	}

	serviceName, ok := normalize.Service(req.Service)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown service")
		return
	}
	svc, _ := catalog.ServiceByName(serviceName)

	date, ok := normalize.Date(req.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date; expected DD/MM/YYYY")
		return
	}
	if err := normalize.ValidateCalendarDate(date, time.Now()); err != nil {
		writeError(w, http.StatusBadRequest, "date not bookable: "+err.Error())
		return
	}

	barber, ok := catalog.BarberByID(req.Barber)
	if !ok {
		barber, ok = catalog.BarberByDisplayName(req.Barber)
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown barber")
		return
	}

	slot, ok := normalize.Time(req.Time)
	if !ok {
		writeError(w, http.StatusBadRequest, "time outside working hours")
		return
	}

	reservation := &models.Reservation{
		Name:     req.Name,
		Phone:    req.Phone,
		Service:  svc.Name,
		BarberID: barber.ID,
		Date:     date,
		Time:     slot,
		Price:    svc.Price,
	}
	if err := s.repo.CreateReservation(r.Context(), reservation); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncSlotConflict()
			writeError(w, http.StatusConflict, "slot already taken")
			return
		}
		s.log.Error().Err(err).Msg("create reservation failed")
		writeError(w, http.StatusInternalServerError, "failed to create reservation")
		return
	}

	metrics.IncReservationCreated("api")
	s.log.Info().
		Int64("reservation_id", reservation.ID).
		Str("date", reservation.Date).
		Str("time", reservation.Time).
		Str("barber", reservation.BarberID).
		Msg("reservation created over API")

	writeJSON(w, http.StatusCreated, reservation)
}

// handleDeleteReservation removes a reservation identified the same way
// the cancellation flow does: name, date and time.
// DELETE /api/v1/reservations?name=Maria&date=DD/MM/YYYY&time=HH:MM
func (s *HTTPServer) handleDeleteReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("delete_reservation")

	q := r.URL.Query()
	name := q.Get("name")
	dateRaw := q.Get("date")
	timeRaw := q.Get("time")
	if name == "" || dateRaw == "" || timeRaw == "" {
		writeError(w, http.StatusBadRequest, "name, date and time are required")
		return
	}

	date, ok := normalize.Date(dateRaw)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date; expected DD/MM/YYYY")
		return
	}
	slot, ok := normalize.Time(timeRaw)
	if !ok {
		writeError(w, http.StatusBadRequest, "time outside working hours")
		return
	}

	deleted, err := s.repo.DeleteByNameDateTime(r.Context(), name, date, slot)
	if err != nil {
		if errors.Is(err, database.ErrReservationNotFound) {
			metrics.IncReservationCanceled("not_found")
			writeError(w, http.StatusNotFound, "reservation not found")
			return
		}
		s.log.Error().Err(err).Msg("delete reservation failed")
		writeError(w, http.StatusInternalServerError, "failed to delete reservation")
		return
	}

	s.reminders.Cancel(deleted.ID)
	metrics.IncReservationCanceled("canceled")
	s.log.Info().Int64("reservation_id", deleted.ID).Msg("reservation deleted over API")

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reservation": deleted})
}

// handleAvailability returns the free slots for one date and barber.
// GET /api/v1/availability?date=DD/MM/YYYY&barber=joao
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dateRaw := r.URL.Query().Get("date")
	barberID := r.URL.Query().Get("barber")
	if dateRaw == "" || barberID == "" {
		writeError(w, http.StatusBadRequest, "date and barber are required")
		return
	}

	date, ok := normalize.Date(dateRaw)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date; expected DD/MM/YYYY")
		return
	}
	barber, ok := catalog.BarberByID(barberID)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown barber")
		return
	}

	existing, err := s.repo.ListByDateBarber(r.Context(), date, barber.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("availability lookup failed")
		writeError(w, http.StatusInternalServerError, "failed to check availability")
		return
	}

	slots := availability.Slots(date, barber.ID, existing)
	writeJSON(w, http.StatusOK, map[string]any{
		"date":   date,
		"barber": barber.ID,
		"slots":  slots,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
