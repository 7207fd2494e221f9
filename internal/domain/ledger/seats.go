// Package ledger holds the seat and schedule rules of the booking ledger.
// Everything here is pure; callers run it inside a transaction that has
// locked the route (or owner) row so the inputs cannot change underneath.
package ledger

import (
	"strings"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

// Destination is the "{from} to {to}" label stored on bookings.
func Destination(r models.Route) string {
	return strings.TrimSpace(r.From) + " to " + strings.TrimSpace(r.To)
}

// Matches reports whether a booking belongs to a route. Bookings written by
// this service carry the route id; older ones are matched on destination,
// calendar day and departure clock.
func Matches(b models.Booking, r models.Route) bool {
	if b.RouteID != "" {
		return b.RouteID == r.ID
	}
	if !strings.EqualFold(utils.NormalizeSpace(b.Destination), utils.NormalizeSpace(Destination(r))) {
		return false
	}
	day, err := utils.ParseDate(r.TravelDate)
	if err != nil || b.DepartureDate.IsZero() {
		return false
	}
	if !utils.SameDay(b.DepartureDate, day) {
		return false
	}
	return utils.FormatClock(b.DepartureDate) == utils.CanonicalClock(r.DepartureTime)
}

// Booked sums travelers of non-cancelled bookings matching the route.
func Booked(r models.Route, bookings []models.Booking) int {
	total := 0
	for _, b := range bookings {
		if b.Status == models.BookingCancelled || !Matches(b, r) {
			continue
		}
		total += b.Travelers
	}
	return total
}

// Remaining is availableSeats minus booked seats, floored at zero.
func Remaining(r models.Route, bookings []models.Booking) int {
	left := r.AvailableSeats - Booked(r, bookings)
	if left < 0 {
		return 0
	}
	return left
}

// Availability summarizes the seat picture of a route.
func Availability(r models.Route, bookings []models.Booking) models.Availability {
	return models.Availability{
		RouteID:        r.ID,
		AvailableSeats: r.AvailableSeats,
		Booked:         Booked(r, bookings),
		Remaining:      Remaining(r, bookings),
	}
}

// Plan is the outcome of PlanBooking.
type Plan struct {
	// TopUp is set when the passenger already holds an active booking on the route.
	TopUp *models.Booking
	Seats int
}

// ActiveBookingOf returns the passenger's non-cancelled booking on the route, if any.
func ActiveBookingOf(r models.Route, bookings []models.Booking, passengerEmail string) (models.Booking, bool) {
	for _, b := range bookings {
		if b.Status.Final() || !Matches(b, r) {
			continue
		}
		if strings.EqualFold(b.PassengerEmail, strings.TrimSpace(passengerEmail)) {
			return b, true
		}
	}
	return models.Booking{}, false
}

// PlanBooking decides how a request for seats on a route is served.
// A second request by the same passenger becomes a top-up of the first
// booking instead of a duplicate document.
func PlanBooking(r models.Route, bookings []models.Booking, passengerEmail string, seats int) (Plan, error) {
	if seats <= 0 {
		return Plan{}, domain.ValidationError{Field: "travelers", Msg: "must be at least 1"}
	}
	if seats > Remaining(r, bookings) {
		return Plan{}, domain.ConflictError{Resource: "route", Err: domain.ErrNotEnoughSeats}
	}
	if existing, ok := ActiveBookingOf(r, bookings, passengerEmail); ok {
		return Plan{TopUp: &existing, Seats: seats}, nil
	}
	return Plan{Seats: seats}, nil
}

// CheckTopUp validates adding seats to an existing booking.
func CheckTopUp(r models.Route, bookings []models.Booking, b models.Booking, seats int) error {
	if seats <= 0 {
		return domain.ValidationError{Field: "seats", Msg: "must be at least 1"}
	}
	if b.Status.Final() {
		return domain.ConflictError{Resource: "booking", Err: domain.ErrBookingFinal}
	}
	if seats > Remaining(r, bookings) {
		return domain.ConflictError{Resource: "route", Err: domain.ErrNotEnoughSeats}
	}
	return nil
}

// CheckCapacity validates a new seat count for a route against its bookings.
func CheckCapacity(r models.Route, bookings []models.Booking, seats int) error {
	if booked := Booked(r, bookings); seats < booked {
		return domain.ConflictError{Resource: "route", Err: domain.ErrSeatsBelowBooked}
	}
	return nil
}
