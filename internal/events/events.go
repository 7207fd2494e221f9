package events

import (
	"context"
	"encoding/json"
	"time"

	"carpool/internal/domain/models"
)

const Exchange = "carpool.events"

const (
	BookingCreated   = "booking.created"
	BookingToppedUp  = "booking.topped_up"
	BookingConfirmed = "booking.confirmed"
	BookingRejected  = "booking.rejected"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
	BookingExpired   = "booking.expired"
)

// BookingEvent is the message body published for every booking transition.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	RouteID    string    `json:"route_id,omitempty"`
	Passenger  string    `json:"passenger_email"`
	Travelers  int       `json:"travelers"`
	Status     string    `json:"status"`
	Amount     int64     `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingEvent(key string, b models.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:       key,
		BookingID:  b.ID,
		RouteID:    b.RouteID,
		Passenger:  b.PassengerEmail,
		Travelers:  b.Travelers,
		Status:     string(b.Status),
		Amount:     b.Amount,
		OccurredAt: at.UTC(),
	}
}

func (e BookingEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Nop drops events; used when no broker is configured.
type Nop struct{}

func (Nop) PublishBooking(context.Context, string, models.Booking) error { return nil }

func (Nop) Close() error { return nil }
