package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cronos-Project/Chatbot-Cronos/internal/availability"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/catalog"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/database"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/metrics"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/models"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/normalize"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/notify"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/session"
)

// Repository is the durable reservation store consumed by the flows.
type Repository interface {
	CreateReservation(ctx context.Context, r *models.Reservation) error
	ListByDateBarber(ctx context.Context, date, barberID string) ([]models.Reservation, error)
	DeleteByNameDateTime(ctx context.Context, name, date, timeStr string) (*models.Reservation, error)
}

// Scheduler registers and cancels one-shot reminder callbacks.
type Scheduler interface {
	Schedule(key int64, at time.Time, callback func())
	Cancel(key int64) bool
}

// SendFunc delivers outbound text to a conversation; reminder callbacks
// fire through it outside any message-handling turn.
type SendFunc func(conversationID int64, text string)

// Result is the outcome of handling one inbound message. Done means the
// flow completed and the session was torn down.
type Result struct {
	Reply string
	Done  bool
}

// Handler runs one step of the active flow per inbound message.
// Validation failures re-prompt without advancing; only infrastructure
// failures surface as errors, with the session left intact so the user
// does not restart the whole flow.
type Handler struct {
	repo      Repository
	reminders Scheduler
	notifier  notify.Notifier
	sessions  *session.Store
	send      SendFunc
	lead      time.Duration
	logger    *zerolog.Logger
	now       func() time.Time
}

// NewHandler wires the flow handler.
func NewHandler(
	repo Repository,
	reminders Scheduler,
	notifier notify.Notifier,
	sessions *session.Store,
	send SendFunc,
	lead time.Duration,
	logger *zerolog.Logger,
) *Handler {
	if lead <= 0 {
		lead = time.Hour
	}
	return &Handler{
		repo:      repo,
		reminders: reminders,
		notifier:  notifier,
		sessions:  sessions,
		send:      send,
		lead:      lead,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleInput consumes one message for the session's current step. The
// caller must hold the session lock for the whole call.
func (h *Handler) HandleInput(ctx context.Context, s *session.Session, text string) (Result, error) {
	text = strings.TrimSpace(text)

	switch s.Step {
	case StepAskName:
		return h.handleName(s, text), nil
	case StepAskPhone:
		return h.handlePhone(s, text), nil
	case StepAskService:
		return h.handleService(s, text), nil
	case StepAskDate:
		return h.handleDate(s, text), nil
	case StepAskBarber:
		return h.handleBarber(ctx, s, text)
	case StepAskTime:
		return h.handleTime(ctx, s, text)
	case StepCancelName:
		return h.handleCancelName(s, text), nil
	case StepCancelDate:
		return h.handleCancelDate(s, text), nil
	case StepCancelTime:
		return h.handleCancelTime(ctx, s, text)
	default:
		return Result{}, fmt.Errorf("unknown step %q for conversation %d", s.Step, s.ConversationID)
	}
}

func (h *Handler) handleName(s *session.Session, text string) Result {
	if text == "" {
		metrics.IncValidationRejected(string(StepAskName))
		return Result{Reply: msgEmptyName}
	}
	s.Name = text
	s.Step = StepAskPhone
	return Result{Reply: PromptAskPhone}
}

func (h *Handler) handlePhone(s *session.Session, text string) Result {
	// No format validation on purpose: the contact number is stored
	// verbatim, a known gap of the service.
	if text == "" {
		metrics.IncValidationRejected(string(StepAskPhone))
		return Result{Reply: msgEmptyPhone}
	}
	s.Phone = text
	s.Step = StepAskService
	return Result{Reply: servicePrompt()}
}

func (h *Handler) handleService(s *session.Session, text string) Result {
	name, ok := normalize.Service(text)
	if !ok {
		metrics.IncValidationRejected(string(StepAskService))
		return Result{Reply: msgInvalidService}
	}
	svc, _ := catalog.ServiceByName(name)
	s.Service = svc.Name
	s.Price = svc.Price
	s.Step = StepAskDate
	return Result{Reply: PromptAskDate}
}

func (h *Handler) handleDate(s *session.Session, text string) Result {
	date, ok := normalize.Date(text)
	if !ok {
		metrics.IncValidationRejected(string(StepAskDate))
		return Result{Reply: msgInvalidDate}
	}

	switch err := normalize.ValidateCalendarDate(date, h.now()); {
	case errors.Is(err, normalize.ErrNotACalendarDay):
		metrics.IncValidationRejected(string(StepAskDate))
		return Result{Reply: msgInvalidDate}
	case errors.Is(err, normalize.ErrSunday):
		metrics.IncValidationRejected(string(StepAskDate))
		return Result{Reply: msgSundayClosed}
	case errors.Is(err, normalize.ErrPastDate):
		metrics.IncValidationRejected(string(StepAskDate))
		return Result{Reply: msgDatePassed}
	case errors.Is(err, normalize.ErrTooFarAhead):
		metrics.IncValidationRejected(string(StepAskDate))
		return Result{Reply: msgDateTooFar}
	}

	s.Date = date
	s.Step = StepAskBarber
	return Result{Reply: barberPrompt()}
}

func (h *Handler) handleBarber(ctx context.Context, s *session.Session, text string) (Result, error) {
	barber, ok := catalog.BarberByDisplayName(text)
	if !ok {
		metrics.IncValidationRejected(string(StepAskBarber))
		return Result{Reply: invalidBarberMsg()}, nil
	}

	existing, err := h.repo.ListByDateBarber(ctx, s.Date, barber.ID)
	if err != nil {
		return Result{}, fmt.Errorf("list reservations: %w", err)
	}

	slots := availability.Slots(s.Date, barber.ID, existing)
	if len(slots) == 0 {
		// The day is fully booked for this barber. The step stays at
		// ask_barber: the user may pick another barber or restart with
		// /agendar to change the date. Preserved behavior of the
		// original flow, recorded as a choice point in DESIGN.md.
		metrics.IncValidationRejected(string(StepAskBarber))
		return Result{Reply: noSlotsMsg(s.Date, barber.DisplayName)}, nil
	}

	s.BarberID = barber.ID
	s.Step = StepAskTime
	return Result{Reply: slotsOfferMsg(s.Date, barber.DisplayName, slots)}, nil
}

func (h *Handler) handleTime(ctx context.Context, s *session.Session, text string) (Result, error) {
	slot, ok := normalize.Time(text)
	if !ok {
		metrics.IncValidationRejected(string(StepAskTime))
		return Result{Reply: invalidTimeMsg()}, nil
	}

	// Re-check availability: the offer may be stale by now, and a slot
	// that passes normalization can still be taken (or never offered).
	existing, err := h.repo.ListByDateBarber(ctx, s.Date, s.BarberID)
	if err != nil {
		return Result{}, fmt.Errorf("list reservations: %w", err)
	}
	slots := availability.Slots(s.Date, s.BarberID, existing)
	if !availability.Contains(slots, slot) {
		metrics.IncValidationRejected(string(StepAskTime))
		return Result{Reply: unavailableTimeMsg(slots)}, nil
	}

	reservation := &models.Reservation{
		Name:     s.Name,
		Phone:    s.Phone,
		Service:  s.Service,
		BarberID: s.BarberID,
		Date:     s.Date,
		Time:     slot,
		Price:    s.Price,
	}

	start, err := reservation.StartsAt()
	if err != nil {
		return Result{}, err
	}
	if start.Before(h.now()) {
		metrics.IncValidationRejected(string(StepAskTime))
		return Result{Reply: msgTimePassed}, nil
	}

	if err := h.repo.CreateReservation(ctx, reservation); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			// Lost the race between the availability check and the
			// commit; distinct from a generic failure so the user can
			// retry with another slot.
			metrics.IncSlotConflict()
			return Result{Reply: msgSlotConflict}, nil
		}
		return Result{}, fmt.Errorf("create reservation: %w", err)
	}

	s.Time = slot
	s.Step = StepDone
	metrics.IncReservationCreated("bot")
	h.finalizeBooking(ctx, s, reservation)

	barber, _ := catalog.BarberByID(s.BarberID)
	reply := confirmationSummary(reservation, barber.DisplayName)
	h.sessions.Delete(s.ConversationID)
	return Result{Reply: reply, Done: true}, nil
}

// finalizeBooking schedules the reminder and sends the WhatsApp
// confirmation. The reservation is already committed: failures here are
// logged and never surfaced to the flow.
func (h *Handler) finalizeBooking(ctx context.Context, s *session.Session, r *models.Reservation) {
	conversationID := s.ConversationID
	name, date, timeStr := r.Name, r.Date, r.Time
	if at, err := r.ReminderAt(h.lead); err == nil {
		h.reminders.Schedule(r.ID, at, func() {
			metrics.IncReminderFired()
			h.send(conversationID, reminderText(name, date, timeStr))
		})
	}

	barber, _ := catalog.BarberByID(r.BarberID)
	if err := h.notifier.Send(ctx, r.Phone, whatsappConfirmation(r, barber.DisplayName)); err != nil {
		h.logger.Error().Err(err).Str("phone", r.Phone).Msg("whatsapp confirmation failed")
	}
}

func (h *Handler) handleCancelName(s *session.Session, text string) Result {
	if text == "" {
		metrics.IncValidationRejected(string(StepCancelName))
		return Result{Reply: msgEmptyName}
	}
	s.Name = text
	s.Step = StepCancelDate
	return Result{Reply: PromptCancelDate}
}

func (h *Handler) handleCancelDate(s *session.Session, text string) Result {
	date, ok := normalize.Date(text)
	if !ok {
		metrics.IncValidationRejected(string(StepCancelDate))
		return Result{Reply: msgInvalidDate}
	}
	// Only syntactic and real-day checks here: cancelling needs no
	// Sunday/past/horizon rules.
	if _, err := normalize.ParseDate(date); err != nil {
		metrics.IncValidationRejected(string(StepCancelDate))
		return Result{Reply: msgInvalidDate}
	}
	s.Date = date
	s.Step = StepCancelTime
	return Result{Reply: PromptCancelTime}
}

func (h *Handler) handleCancelTime(ctx context.Context, s *session.Session, text string) (Result, error) {
	slot, ok := normalize.Time(text)
	if !ok {
		metrics.IncValidationRejected(string(StepCancelTime))
		return Result{Reply: msgCancelBadTime}, nil
	}
	s.Time = slot

	deleted, err := h.repo.DeleteByNameDateTime(ctx, s.Name, s.Date, s.Time)
	if err != nil && !errors.Is(err, database.ErrReservationNotFound) {
		return Result{}, fmt.Errorf("delete reservation: %w", err)
	}

	// Session is torn down whether or not a reservation matched.
	h.sessions.Delete(s.ConversationID)
	s.Step = StepDone

	if deleted == nil {
		metrics.IncReservationCanceled("not_found")
		return Result{Reply: msgNotFound, Done: true}, nil
	}

	if h.reminders.Cancel(deleted.ID) {
		h.logger.Debug().Int64("reservation_id", deleted.ID).Msg("pending reminder cancelled")
	}
	metrics.IncReservationCanceled("canceled")
	return Result{Reply: cancelSuccessMsg(s.Name, s.Date, s.Time), Done: true}, nil
}
