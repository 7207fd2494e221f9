package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intdb "carpool/internal/db"
	"carpool/internal/domain"
	"carpool/internal/domain/ledger"
	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

// RouteRepository stores owner routes. Writes that depend on the owner's other
// routes run under a lock on the owner's profile row.
type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB {
	return connOr(r.DB)
}

func (r RouteRepository) GetByID(ctx context.Context, id string) (models.Route, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+columns("", routeFields)+` FROM routes WHERE id = ? LIMIT 1`, id)
	route, err := scanRoute(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Route{}, domain.NotFoundError{Resource: "route", Err: domain.ErrRouteNotFound}
		}
		return models.Route{}, fmt.Errorf("get route: %w", err)
	}
	return route, nil
}

// Search lists routes matching the filter, promoted routes first.
func (r RouteRepository) Search(ctx context.Context, f models.RouteFilter) ([]models.Route, error) {
	var (
		where []string
		args  []any
	)
	if v := utils.NormalizeSpace(f.From); v != "" {
		where = append(where, "route_from LIKE ?")
		args = append(args, "%"+v+"%")
	}
	if v := utils.NormalizeSpace(f.To); v != "" {
		where = append(where, "route_to LIKE ?")
		args = append(args, "%"+v+"%")
	}
	if v := strings.TrimSpace(f.TravelDate); v != "" {
		where = append(where, "travel_date = ?")
		args = append(args, v)
	}

	query := `SELECT ` + columns("", routeFields) + ` FROM routes`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY promoted DESC, travel_date ASC, departure_time ASC`

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search routes: %w", err)
	}
	routes, err := scanRoutes(rows)
	if err != nil {
		return nil, fmt.Errorf("scan routes: %w", err)
	}
	return routes, nil
}

func (r RouteRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]models.Route, error) {
	rows, err := r.db().QueryContext(ctx,
		`SELECT `+columns("", routeFields)+` FROM routes WHERE owner_email = ? ORDER BY travel_date DESC, departure_time ASC`,
		ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("list owner routes: %w", err)
	}
	routes, err := scanRoutes(rows)
	if err != nil {
		return nil, fmt.Errorf("scan routes: %w", err)
	}
	return routes, nil
}

// Create inserts a route after checking the owner's schedule for that day.
func (r RouteRepository) Create(ctx context.Context, route models.Route, maxPerDay int) error {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := lockProfile(ctx, tx, route.OwnerEmail); err != nil {
		return err
	}

	sameDay, err := ownerRoutesOn(ctx, tx, route.OwnerEmail, route.TravelDate)
	if err != nil {
		return err
	}
	if err := ledger.CheckSchedule(sameDay, route, maxPerDay); err != nil {
		return err
	}

	oLat, oLon := geoArgs(route.Origin)
	dLat, dLon := geoArgs(route.Destination)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO routes (`+columns("", routeFields)+`)
		VALUES (`+placeholders(len(routeFields))+`)`,
		route.ID, route.OwnerEmail, route.OwnerName, route.From, route.To,
		route.TravelDate, route.DepartureTime, route.ArrivalTime, route.AvailableSeats, route.Price,
		route.Vehicle, utils.JoinList(route.PickupPoints), utils.JoinList(route.DropoffPoints), route.Promoted, route.Rating,
		oLat, oLon, dLat, dLon, route.DistanceKm,
		route.CreatedAt, route.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert route: %w", err)
	}

	return tx.Commit()
}

// Update rewrites a route. The schedule is re-checked without the route itself
// and the capacity may not drop below the seats already booked on it.
func (r RouteRepository) Update(ctx context.Context, route models.Route, maxPerDay int) error {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := lockProfile(ctx, tx, route.OwnerEmail); err != nil {
		return err
	}
	current, err := lockRoute(ctx, tx, route.ID)
	if err != nil {
		return err
	}

	sameDay, err := ownerRoutesOn(ctx, tx, route.OwnerEmail, route.TravelDate)
	if err != nil {
		return err
	}
	if err := ledger.CheckSchedule(sameDay, route, maxPerDay); err != nil {
		return err
	}

	bookings, err := routeBookings(ctx, tx, current)
	if err != nil {
		return err
	}
	if err := ledger.CheckCapacity(current, bookings, route.AvailableSeats); err != nil {
		return err
	}

	oLat, oLon := geoArgs(route.Origin)
	dLat, dLon := geoArgs(route.Destination)
	_, err = tx.ExecContext(ctx, `
		UPDATE routes SET
			route_from = ?, route_to = ?, travel_date = ?, departure_time = ?, arrival_time = ?,
			available_seats = ?, price = ?, vehicle = ?, pickup_points = ?, dropoff_points = ?,
			origin_lat = ?, origin_lon = ?, dest_lat = ?, dest_lon = ?, distance_km = ?, updated_at = ?
		WHERE id = ?`,
		route.From, route.To, route.TravelDate, route.DepartureTime, route.ArrivalTime,
		route.AvailableSeats, route.Price, route.Vehicle, utils.JoinList(route.PickupPoints), utils.JoinList(route.DropoffPoints),
		oLat, oLon, dLat, dLon, route.DistanceKm, route.UpdatedAt,
		route.ID,
	)
	if err != nil {
		return fmt.Errorf("update route: %w", err)
	}

	// Keep linked bookings in step with the new date, clock and label.
	departure, err := utils.CombineDateClock(route.TravelDate, route.DepartureTime)
	if err != nil {
		return domain.ValidationError{Field: "departure_time", Msg: err.Error()}
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE bookings SET destination = ?, departure_date = ?, updated_at = ?
		WHERE route_id = ? AND status IN (?, ?)`,
		ledger.Destination(route), departure.UTC(), route.UpdatedAt,
		route.ID, models.BookingPending, models.BookingConfirmed,
	)
	if err != nil {
		return fmt.Errorf("sync route bookings: %w", err)
	}

	return tx.Commit()
}

func (r RouteRepository) SetPromoted(ctx context.Context, id string, promoted bool) error {
	res, err := r.db().ExecContext(ctx, `UPDATE routes SET promoted = ?, updated_at = ? WHERE id = ?`, promoted, utils.NowUTC(), id)
	if err != nil {
		return fmt.Errorf("promote route: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("promote rows affected: %w", err)
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func lockProfile(ctx context.Context, q intdb.Querier, email string) error {
	var locked string
	err := q.QueryRowContext(ctx, `SELECT email FROM profiles WHERE email = ? FOR UPDATE`, email).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "profile", Err: domain.ErrProfileNotFound}
		}
		return fmt.Errorf("lock profile: %w", err)
	}
	return nil
}

func lockRoute(ctx context.Context, q intdb.Querier, id string) (models.Route, error) {
	row := q.QueryRowContext(ctx, `SELECT `+columns("", routeFields)+` FROM routes WHERE id = ? FOR UPDATE`, id)
	route, err := scanRoute(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Route{}, domain.NotFoundError{Resource: "route", Err: domain.ErrRouteNotFound}
		}
		return models.Route{}, fmt.Errorf("lock route: %w", err)
	}
	return route, nil
}

func ownerRoutesOn(ctx context.Context, q intdb.Querier, ownerEmail, travelDate string) ([]models.Route, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+columns("", routeFields)+` FROM routes WHERE owner_email = ? AND travel_date = ?`,
		ownerEmail, travelDate)
	if err != nil {
		return nil, fmt.Errorf("list owner routes for day: %w", err)
	}
	routes, err := scanRoutes(rows)
	if err != nil {
		return nil, fmt.Errorf("scan routes: %w", err)
	}
	return routes, nil
}
