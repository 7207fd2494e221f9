package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	intdb "carpool/internal/db"
	"carpool/internal/domain"
	"carpool/internal/domain/ledger"
	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

// BookingRepository is the seat ledger. Every write that consumes seats locks
// the route row first so concurrent bookers are serialized per route.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	return connOr(r.DB)
}

// Reserve books seats on a route, or tops up the passenger's active booking
// on it, in a single transaction.
func (r BookingRepository) Reserve(ctx context.Context, req models.BookingRequest, now time.Time) (models.BookingResult, error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return models.BookingResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	route, err := lockRoute(ctx, tx, req.RouteID)
	if err != nil {
		return models.BookingResult{}, err
	}
	bookings, err := routeBookings(ctx, tx, route)
	if err != nil {
		return models.BookingResult{}, err
	}

	plan, err := ledger.PlanBooking(route, bookings, req.PassengerEmail, req.Travelers)
	if err != nil {
		return models.BookingResult{}, err
	}

	var res models.BookingResult
	if plan.TopUp != nil {
		b, err := addSeats(ctx, tx, *plan.TopUp, plan.Seats, route.Price, now)
		if err != nil {
			return models.BookingResult{}, err
		}
		res = models.BookingResult{Booking: b, ToppedUp: true, Added: plan.Seats}
	} else {
		departure, err := utils.CombineDateClock(route.TravelDate, route.DepartureTime)
		if err != nil {
			return models.BookingResult{}, domain.ValidationError{Field: "departure_time", Msg: err.Error()}
		}
		b := models.Booking{
			ID:             uuid.NewString(),
			RouteID:        route.ID,
			PassengerEmail: utils.NormalizeEmail(req.PassengerEmail),
			PassengerName:  utils.NormalizeSpace(req.PassengerName),
			PassengerPhone: utils.TrimOrEmpty(req.PassengerPhone),
			Destination:    ledger.Destination(route),
			DepartureDate:  departure.UTC(),
			ReturnDate:     req.ReturnDate,
			Travelers:      plan.Seats,
			Amount:         int64(plan.Seats) * route.Price,
			Status:         models.BookingPending,
			PaymentStatus:  models.PaymentPending,
			PaymentMethod:  req.PaymentMethod,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := insertBooking(ctx, tx, b); err != nil {
			return models.BookingResult{}, err
		}
		res = models.BookingResult{Booking: b, Added: plan.Seats}
	}

	if err := tx.Commit(); err != nil {
		return models.BookingResult{}, fmt.Errorf("commit booking: %w", err)
	}
	return res, nil
}

// TopUp adds seats to an existing booking under the route lock.
func (r BookingRepository) TopUp(ctx context.Context, bookingID string, seats int, now time.Time) (models.Booking, error) {
	current, err := r.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if current.RouteID == "" {
		return models.Booking{}, domain.ValidationError{Field: "booking", Msg: "booking is not linked to a route"}
	}

	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return models.Booking{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	route, err := lockRoute(ctx, tx, current.RouteID)
	if err != nil {
		return models.Booking{}, err
	}
	bookings, err := routeBookings(ctx, tx, route)
	if err != nil {
		return models.Booking{}, err
	}

	// Re-read the booking from the locked snapshot; it may have been cancelled meanwhile.
	target := current
	target.Status = models.BookingCancelled
	for _, b := range bookings {
		if b.ID == current.ID {
			target = b
			break
		}
	}
	if err := ledger.CheckTopUp(route, bookings, target, seats); err != nil {
		return models.Booking{}, err
	}

	b, err := addSeats(ctx, tx, target, seats, route.Price, now)
	if err != nil {
		return models.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Booking{}, fmt.Errorf("commit top-up: %w", err)
	}
	return b, nil
}

func (r BookingRepository) GetByID(ctx context.Context, id string) (models.Booking, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+columns("", bookingFields)+` FROM bookings WHERE id = ? LIMIT 1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: domain.ErrBookingNotFound}
		}
		return models.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r BookingRepository) ListByPassenger(ctx context.Context, email string) ([]models.Booking, error) {
	rows, err := r.db().QueryContext(ctx,
		`SELECT `+columns("", bookingFields)+` FROM bookings WHERE passenger_email = ? ORDER BY departure_date DESC`,
		utils.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("list passenger bookings: %w", err)
	}
	out, err := scanBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("scan bookings: %w", err)
	}
	return out, nil
}

// ListForRoute returns the non-cancelled bookings that count against the route.
func (r BookingRepository) ListForRoute(ctx context.Context, route models.Route) ([]models.Booking, error) {
	return routeBookings(ctx, r.db(), route)
}

// UpdateStatus moves a booking to `to` only when it currently has one of the `from` statuses.
func (r BookingRepository) UpdateStatus(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, now time.Time) (models.Booking, error) {
	if len(from) == 0 {
		return models.Booking{}, fmt.Errorf("update status: no source status")
	}
	args := []any{to, now, id}
	for _, s := range from {
		args = append(args, s)
	}
	res, err := r.db().ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status IN (`+placeholders(len(from))+`)`,
		args...)
	if err != nil {
		return models.Booking{}, fmt.Errorf("update booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Booking{}, fmt.Errorf("booking rows affected: %w", err)
	}

	b, err := r.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if n == 0 {
		if b.Status.Final() {
			return b, domain.ConflictError{Resource: "booking", Msg: "booking is already " + strings.ToLower(string(b.Status)), Err: domain.ErrBookingFinal}
		}
		return b, domain.ConflictError{Resource: "booking", Msg: "booking is " + strings.ToLower(string(b.Status)), Err: domain.ErrBookingNotPending}
	}
	return b, nil
}

func (r BookingRepository) UpdatePayment(ctx context.Context, id string, status models.PaymentStatus, method string, now time.Time) (models.Booking, error) {
	if _, err := r.db().ExecContext(ctx,
		`UPDATE bookings SET payment_status = ?, payment_method = COALESCE(?, payment_method), updated_at = ? WHERE id = ?`,
		status, intdb.NullIfEmpty(method), now, id); err != nil {
		return models.Booking{}, fmt.Errorf("update payment: %w", err)
	}
	return r.GetByID(ctx, id)
}

// UpdateLocation stores the latest driver or passenger position.
func (r BookingRepository) UpdateLocation(ctx context.Context, id, role string, lat, lon float64, now time.Time) (models.Booking, error) {
	var query string
	switch role {
	case "driver":
		query = `UPDATE bookings SET driver_lat = ?, driver_lon = ?, updated_at = ? WHERE id = ?`
	case "passenger":
		query = `UPDATE bookings SET passenger_lat = ?, passenger_lon = ?, updated_at = ? WHERE id = ?`
	default:
		return models.Booking{}, domain.ValidationError{Field: "role", Msg: "must be driver or passenger"}
	}
	if _, err := r.db().ExecContext(ctx, query, lat, lon, now, id); err != nil {
		return models.Booking{}, fmt.Errorf("update location: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r BookingRepository) SetReport(ctx context.Context, id, report string, now time.Time) (models.Booking, error) {
	if _, err := r.db().ExecContext(ctx,
		`UPDATE bookings SET report = ?, updated_at = ? WHERE id = ?`,
		intdb.NullIfEmpty(report), now, id); err != nil {
		return models.Booking{}, fmt.Errorf("set report: %w", err)
	}
	return r.GetByID(ctx, id)
}

// CancelStalePending cancels Pending bookings created before cutoff and returns them.
func (r BookingRepository) CancelStalePending(ctx context.Context, cutoff, now time.Time) ([]models.Booking, error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT `+columns("", bookingFields)+` FROM bookings WHERE status = ? AND created_at < ? FOR UPDATE`,
		models.BookingPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("select stale bookings: %w", err)
	}
	stale, err := scanBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("scan stale bookings: %w", err)
	}
	if len(stale) == 0 {
		return stale, nil
	}

	if err := setStatusByIDs(ctx, tx, stale, models.BookingCancelled, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit expiry: %w", err)
	}
	return stale, nil
}

// CompleteFinished marks Confirmed bookings whose route has arrived as Completed.
// Route dates and clocks are wall-clock values in the service timezone.
func (r BookingRepository) CompleteFinished(ctx context.Context, now time.Time) ([]models.Booking, error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT `+columns("b", bookingFields)+`
		FROM bookings b
		JOIN routes r ON r.id = b.route_id
		WHERE b.status = ? AND TIMESTAMP(r.travel_date, r.arrival_time) < ?
		FOR UPDATE`,
		models.BookingConfirmed, utils.FormatDateTime(now))
	if err != nil {
		return nil, fmt.Errorf("select finished bookings: %w", err)
	}
	done, err := scanBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("scan finished bookings: %w", err)
	}
	if len(done) == 0 {
		return done, nil
	}

	if err := setStatusByIDs(ctx, tx, done, models.BookingCompleted, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit completion: %w", err)
	}
	return done, nil
}

// routeBookings loads the non-cancelled bookings that may count against a route:
// those linked by id plus legacy rows on the same destination and day.
func routeBookings(ctx context.Context, q intdb.Querier, route models.Route) ([]models.Booking, error) {
	day, err := utils.ParseDate(route.TravelDate)
	if err != nil {
		return nil, domain.ValidationError{Field: "travel_date", Msg: err.Error()}
	}
	rows, err := q.QueryContext(ctx, `
		SELECT `+columns("", bookingFields)+`
		FROM bookings
		WHERE status <> ?
		  AND (route_id = ? OR (route_id IS NULL AND destination = ? AND departure_date >= ? AND departure_date < ?))`,
		models.BookingCancelled, route.ID, ledger.Destination(route), day.UTC(), day.AddDate(0, 0, 1).UTC())
	if err != nil {
		return nil, fmt.Errorf("list route bookings: %w", err)
	}
	all, err := scanBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("scan route bookings: %w", err)
	}

	out := all[:0]
	for _, b := range all {
		if ledger.Matches(b, route) {
			out = append(out, b)
		}
	}
	return out, nil
}

func insertBooking(ctx context.Context, tx *sql.Tx, b models.Booking) error {
	dLat, dLon := geoArgs(b.Driver)
	pLat, pLon := geoArgs(b.Passenger)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (`+columns("", bookingFields)+`)
		VALUES (`+placeholders(len(bookingFields))+`)`,
		b.ID, intdb.NullIfEmpty(b.RouteID), b.PassengerEmail, b.PassengerName, b.PassengerPhone,
		b.Destination, b.DepartureDate, intdb.NullTime(b.ReturnDate), b.Travelers, b.Amount,
		b.Status, b.PaymentStatus, b.PaymentMethod,
		dLat, dLon, pLat, pLon,
		intdb.NullIfEmpty(b.Report), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "booking", Msg: "booking already exists"}
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func addSeats(ctx context.Context, tx *sql.Tx, b models.Booking, seats int, price int64, now time.Time) (models.Booking, error) {
	extra := int64(seats) * price
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET travelers = travelers + ?, amount = amount + ?, updated_at = ? WHERE id = ?`,
		seats, extra, now, b.ID)
	if err != nil {
		return models.Booking{}, fmt.Errorf("top up booking: %w", err)
	}
	b.Travelers += seats
	b.Amount += extra
	b.UpdatedAt = now
	return b, nil
}

func setStatusByIDs(ctx context.Context, tx *sql.Tx, bookings []models.Booking, to models.BookingStatus, now time.Time) error {
	args := []any{to, now}
	for i := range bookings {
		args = append(args, bookings[i].ID)
		bookings[i].Status = to
		bookings[i].UpdatedAt = now
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id IN (`+placeholders(len(bookings))+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("set booking status %s: %w", to, err)
	}
	return nil
}
