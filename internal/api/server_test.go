package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cronos-Project/Chatbot-Cronos/internal/database"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/models"
)

type mockRepo struct {
	reservations []models.Reservation
	nextID       int64
	err          error
}

func (m *mockRepo) CreateReservation(_ context.Context, r *models.Reservation) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.reservations {
		if existing.Date == r.Date && existing.Time == r.Time && existing.BarberID == r.BarberID {
			return database.ErrSlotTaken
		}
	}
	m.nextID++
	r.ID = m.nextID
	m.reservations = append(m.reservations, *r)
	return nil
}

func (m *mockRepo) ListAll(_ context.Context) ([]models.Reservation, error) {
	return m.reservations, m.err
}

func (m *mockRepo) ListByDateBarber(_ context.Context, date, barberID string) ([]models.Reservation, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Reservation
	for _, r := range m.reservations {
		if r.Date == date && r.BarberID == barberID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRepo) DeleteByNameDateTime(_ context.Context, name, date, timeStr string) (*models.Reservation, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i, r := range m.reservations {
		if strings.EqualFold(r.Name, name) && r.Date == date && r.Time == timeStr {
			m.reservations = append(m.reservations[:i], m.reservations[i+1:]...)
			match := r
			return &match, nil
		}
	}
	return nil, database.ErrReservationNotFound
}

type mockScheduler struct {
	canceled []int64
}

func (m *mockScheduler) Cancel(key int64) bool {
	m.canceled = append(m.canceled, key)
	return true
}

func newTestServer() (*HTTPServer, *mockRepo, *mockScheduler) {
	repo := &mockRepo{}
	sched := &mockScheduler{}
	logger := zerolog.Nop()
	return NewHTTPServer(":0", repo, sched, &logger), repo, sched
}

func bookableDate(t *testing.T) string {
	t.Helper()
	d := time.Now().AddDate(0, 0, 7)
	for d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("02/01/2006")
}

func TestCreateReservation(t *testing.T) {
	s, repo, _ := newTestServer()
	date := bookableDate(t)

	body, _ := json.Marshal(CreateReservationRequest{
		Name: "Maria Silva", Phone: "11999990000",
		Service: "corte e barba", Barber: "João",
		Date: date, Time: "10:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Corte + Barba", created.Service)
	assert.Equal(t, "joao", created.BarberID)
	assert.Equal(t, float64(45), created.Price)
	require.Len(t, repo.reservations, 1)
}

func TestCreateReservationValidation(t *testing.T) {
	s, _, _ := newTestServer()
	date := bookableDate(t)

	cases := []struct {
		name string
		req  CreateReservationRequest
		want int
	}{
		{"missing name", CreateReservationRequest{Phone: "1", Service: "corte", Barber: "joao", Date: date, Time: "10:00"}, http.StatusBadRequest},
		{"bad service", CreateReservationRequest{Name: "M", Phone: "1", Service: "manicure", Barber: "joao", Date: date, Time: "10:00"}, http.StatusBadRequest},
		{"bad barber", CreateReservationRequest{Name: "M", Phone: "1", Service: "corte", Barber: "zé", Date: date, Time: "10:00"}, http.StatusBadRequest},
		{"bad time", CreateReservationRequest{Name: "M", Phone: "1", Service: "corte", Barber: "joao", Date: date, Time: "12:00"}, http.StatusBadRequest},
		{"past date", CreateReservationRequest{Name: "M", Phone: "1", Service: "corte", Barber: "joao", Date: "01/01/2020", Time: "10:00"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.req)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateReservationConflict(t *testing.T) {
	s, repo, _ := newTestServer()
	date := bookableDate(t)
	repo.reservations = append(repo.reservations, models.Reservation{
		ID: 1, Name: "Outro", Date: date, Time: "10:00", BarberID: "joao",
	})

	body, _ := json.Marshal(CreateReservationRequest{
		Name: "Maria", Phone: "1", Service: "corte", Barber: "joao", Date: date, Time: "10:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListReservations(t *testing.T) {
	s, repo, _ := newTestServer()
	repo.reservations = []models.Reservation{
		{ID: 1, Name: "A", Date: "01/09/2025", Time: "09:00", BarberID: "joao"},
		{ID: 2, Name: "B", Date: "01/09/2025", Time: "10:00", BarberID: "pedro"},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reservations []models.Reservation `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Reservations, 2)

	// Filtered by date and barber.
	target := "/api/v1/reservations?date=" + url.QueryEscape("01/09/2025") + "&barber=pedro"
	req = httptest.NewRequest(http.MethodGet, target, nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Reservations, 1)
	assert.Equal(t, int64(2), resp.Reservations[0].ID)
}

func TestDeleteReservation(t *testing.T) {
	s, repo, sched := newTestServer()
	repo.reservations = []models.Reservation{
		{ID: 7, Name: "Maria Silva", Date: "01/09/2025", Time: "10:00", BarberID: "joao"},
	}

	target := fmt.Sprintf("/api/v1/reservations?name=%s&date=%s&time=%s",
		url.QueryEscape("maria silva"), url.QueryEscape("01/09/2025"), url.QueryEscape("10:00"))
	req := httptest.NewRequest(http.MethodDelete, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, repo.reservations)
	assert.Contains(t, sched.canceled, int64(7))

	// Second delete finds nothing.
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, target, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	s, repo, _ := newTestServer()
	repo.reservations = []models.Reservation{
		{ID: 1, Name: "A", Date: "01/09/2025", Time: "09:00", BarberID: "joao"},
	}

	target := "/api/v1/availability?date=" + url.QueryEscape("01/09/2025") + "&barber=joao"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Slots []string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotContains(t, resp.Slots, "09:00")
	assert.Contains(t, resp.Slots, "10:00")
	assert.Len(t, resp.Slots, 6)
}
