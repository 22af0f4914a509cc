// Package booking drives the conversational booking and cancellation
// flows as explicit finite-state machines over session steps.
package booking

import "github.com/Cronos-Project/Chatbot-Cronos/internal/session"

// Booking flow steps, in strict linear order. The only backward move is
// retrying the current step on invalid input.
const (
	StepAskName    session.Step = "ask_name"
	StepAskPhone   session.Step = "ask_phone"
	StepAskService session.Step = "ask_service"
	StepAskDate    session.Step = "ask_date"
	StepAskBarber  session.Step = "ask_barber"
	StepAskTime    session.Step = "ask_time"
	StepDone       session.Step = "done"
)

// Cancellation flow steps.
const (
	StepCancelName session.Step = "cancel_name"
	StepCancelDate session.Step = "cancel_date"
	StepCancelTime session.Step = "cancel_time"
)

var bookingNext = map[session.Step]session.Step{
	StepAskName:    StepAskPhone,
	StepAskPhone:   StepAskService,
	StepAskService: StepAskDate,
	StepAskDate:    StepAskBarber,
	StepAskBarber:  StepAskTime,
	StepAskTime:    StepDone,
}

var cancellationNext = map[session.Step]session.Step{
	StepCancelName: StepCancelDate,
	StepCancelDate: StepCancelTime,
	StepCancelTime: StepDone,
}

// Next returns the successor of step within its flow. done is terminal
// and has no successor.
func Next(step session.Step) (session.Step, bool) {
	if next, ok := bookingNext[step]; ok {
		return next, true
	}
	next, ok := cancellationNext[step]
	return next, ok
}

// IsBookingStep reports whether step belongs to the booking flow.
func IsBookingStep(step session.Step) bool {
	_, ok := bookingNext[step]
	return ok
}

// IsCancellationStep reports whether step belongs to the cancellation flow.
func IsCancellationStep(step session.Step) bool {
	_, ok := cancellationNext[step]
	return ok
}
