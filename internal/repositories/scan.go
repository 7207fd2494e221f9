package repositories

import (
	"database/sql"
	"strings"
	"time"

	intconfig "carpool/internal/config"
	intdb "carpool/internal/db"
	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

const dateLayout = "2006-01-02"

var routeFields = []string{
	"id", "owner_email", "owner_name", "route_from", "route_to",
	"travel_date", "departure_time", "arrival_time", "available_seats", "price",
	"vehicle", "pickup_points", "dropoff_points", "promoted", "rating",
	"origin_lat", "origin_lon", "dest_lat", "dest_lon", "distance_km",
	"created_at", "updated_at",
}

var bookingFields = []string{
	"id", "route_id", "passenger_email", "passenger_name", "passenger_phone",
	"destination", "departure_date", "return_date", "travelers", "amount",
	"status", "payment_status", "payment_method",
	"driver_lat", "driver_lon", "passenger_lat", "passenger_lon",
	"report", "created_at", "updated_at",
}

// columns renders a select list, optionally qualified with a table alias.
func columns(alias string, names []string) string {
	if alias == "" {
		return strings.Join(names, ", ")
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = alias + "." + n
	}
	return strings.Join(out, ", ")
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func connOr(db *sql.DB) *sql.DB {
	if db != nil {
		return db
	}
	return intconfig.DB
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoute(row scanner) (models.Route, error) {
	var (
		r               models.Route
		travelDate      time.Time
		pickup, dropoff sql.NullString
		oLat, oLon      sql.NullFloat64
		dLat, dLon      sql.NullFloat64
	)
	err := row.Scan(
		&r.ID, &r.OwnerEmail, &r.OwnerName, &r.From, &r.To,
		&travelDate, &r.DepartureTime, &r.ArrivalTime, &r.AvailableSeats, &r.Price,
		&r.Vehicle, &pickup, &dropoff, &r.Promoted, &r.Rating,
		&oLat, &oLon, &dLat, &dLon, &r.DistanceKm,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return models.Route{}, err
	}
	// DATE columns come back as midnight in the driver location; no zone shift.
	r.TravelDate = travelDate.Format(dateLayout)
	r.PickupPoints = utils.SplitList(pickup.String)
	r.DropoffPoints = utils.SplitList(dropoff.String)
	r.Origin = geoPoint(oLat, oLon)
	r.Destination = geoPoint(dLat, dLon)
	return r, nil
}

func scanBooking(row scanner) (models.Booking, error) {
	var (
		b          models.Booking
		routeID    sql.NullString
		returnDate sql.NullTime
		dLat, dLon sql.NullFloat64
		pLat, pLon sql.NullFloat64
		report     sql.NullString
	)
	err := row.Scan(
		&b.ID, &routeID, &b.PassengerEmail, &b.PassengerName, &b.PassengerPhone,
		&b.Destination, &b.DepartureDate, &returnDate, &b.Travelers, &b.Amount,
		&b.Status, &b.PaymentStatus, &b.PaymentMethod,
		&dLat, &dLon, &pLat, &pLon,
		&report, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return models.Booking{}, err
	}
	b.RouteID = routeID.String
	b.ReturnDate = intdb.TimePtr(returnDate)
	b.Driver = geoPoint(dLat, dLon)
	b.Passenger = geoPoint(pLat, pLon)
	b.Report = report.String
	return b, nil
}

func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	defer rows.Close()
	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanRoutes(rows *sql.Rows) ([]models.Route, error) {
	defer rows.Close()
	out := []models.Route{}
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func geoPoint(lat, lon sql.NullFloat64) *models.GeoPoint {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return &models.GeoPoint{Lat: lat.Float64, Lon: lon.Float64}
}

func geoArgs(p *models.GeoPoint) (any, any) {
	if p == nil {
		return nil, nil
	}
	return p.Lat, p.Lon
}
