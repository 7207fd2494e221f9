package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carpool/internal/domain/models"
)

var route = models.Route{From: "Pune", To: "Mumbai", TravelDate: "2026-11-20", DepartureTime: "08:00"}

func TestRequestText_NewBookingCarriesLinks(t *testing.T) {
	res := models.BookingResult{Booking: models.Booking{
		PassengerName: "Asha", PassengerPhone: "9000000000", Travelers: 2, Amount: 1500, Status: models.BookingPending,
	}, Added: 2}

	text := RequestText(route, res, models.ResponseLinks{Confirm: "https://x/confirm", Reject: "https://x/reject"})

	assert.Contains(t, text, "New booking request")
	assert.Contains(t, text, "Asha booked 2 seat(s)")
	assert.Contains(t, text, "Rs. 1,500")
	assert.Contains(t, text, "[Confirm](https://x/confirm)")
}

func TestRequestText_TopUpOfConfirmedBookingHasNoLinks(t *testing.T) {
	res := models.BookingResult{Booking: models.Booking{
		PassengerName: "Asha", Travelers: 3, Amount: 1500, Status: models.BookingConfirmed,
	}, ToppedUp: true, Added: 1}

	text := RequestText(route, res, models.ResponseLinks{Confirm: "https://x/confirm", Reject: "https://x/reject"})

	assert.Contains(t, text, "added 1 seat(s), now 3 in total")
	assert.NotContains(t, text, "Confirm")
}

func TestStatusText(t *testing.T) {
	assert.Contains(t, StatusText(route, models.Booking{Status: models.BookingConfirmed, Travelers: 1}), "Booking confirmed")
	assert.Contains(t, StatusText(route, models.Booking{Status: models.BookingCompleted}), "Trip completed")
}

func TestDisabledNotifierDoesNotPanic(t *testing.T) {
	n, err := NewTelegramNotifier("")
	require.NoError(t, err)

	id := int64(1)
	n.NotifyBookingStatus(context.Background(), models.Profile{TelegramChatID: &id}, route, models.Booking{Status: models.BookingCancelled})
}
