package ports

import (
	"context"

	"carpool/internal/domain/models"
)

type EventPublisher interface {
	PublishBooking(ctx context.Context, key string, b models.Booking) error
}

type BookingNotifier interface {
	NotifyBookingRequest(ctx context.Context, owner models.Profile, route models.Route, res models.BookingResult, links models.ResponseLinks)
	NotifyBookingStatus(ctx context.Context, passenger models.Profile, route models.Route, b models.Booking)
}

// ResponseSigner issues and checks the tokens embedded in booking-response links.
type ResponseSigner interface {
	SignResponse(bookingID, action string) (string, error)
	VerifyResponse(token, bookingID, action string) error
}

// LiveBroadcaster pushes an event to the live subscribers of a booking.
type LiveBroadcaster interface {
	Publish(bookingID, eventType string, data any)
}
