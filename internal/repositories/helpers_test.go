package repositories

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"carpool/internal/domain/models"
)

var fixedNow = time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testRoute() models.Route {
	return models.Route{
		ID:             "route-1",
		OwnerEmail:     "owner@example.com",
		OwnerName:      "Owner",
		From:           "Pune",
		To:             "Mumbai",
		TravelDate:     "2026-11-20",
		DepartureTime:  "08:00",
		ArrivalTime:    "11:00",
		AvailableSeats: 4,
		Price:          500,
		Vehicle:        "Swift MH12 white",
	}
}

func routeRows(routes ...models.Route) *sqlmock.Rows {
	rows := sqlmock.NewRows(routeFields)
	for _, r := range routes {
		day, _ := time.Parse(dateLayout, r.TravelDate)
		rows.AddRow(
			r.ID, r.OwnerEmail, r.OwnerName, r.From, r.To,
			day, r.DepartureTime, r.ArrivalTime, r.AvailableSeats, r.Price,
			r.Vehicle, "Station\nBus stand", nil, r.Promoted, r.Rating,
			nil, nil, nil, nil, r.DistanceKm,
			fixedNow, fixedNow,
		)
	}
	return rows
}

func testBooking(id, email string, travelers int, status models.BookingStatus) models.Booking {
	return models.Booking{
		ID:             id,
		RouteID:        "route-1",
		PassengerEmail: email,
		PassengerName:  "Passenger",
		Destination:    "Pune to Mumbai",
		DepartureDate:  time.Date(2026, 11, 20, 8, 0, 0, 0, time.Local),
		Travelers:      travelers,
		Amount:         int64(travelers) * 500,
		Status:         status,
		PaymentStatus:  models.PaymentPending,
	}
}

func bookingRows(bookings ...models.Booking) *sqlmock.Rows {
	rows := sqlmock.NewRows(bookingFields)
	for _, b := range bookings {
		var routeID driver.Value
		if b.RouteID != "" {
			routeID = b.RouteID
		}
		rows.AddRow(
			b.ID, routeID, b.PassengerEmail, b.PassengerName, b.PassengerPhone,
			b.Destination, b.DepartureDate, nil, b.Travelers, b.Amount,
			string(b.Status), string(b.PaymentStatus), b.PaymentMethod,
			nil, nil, nil, nil,
			nil, fixedNow, fixedNow,
		)
	}
	return rows
}
