package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/domain/ledger"
	"carpool/internal/domain/models"
	"carpool/internal/services/ports"
	"carpool/internal/utils"
)

type RouteService struct {
	routes    ports.RouteRepo
	bookings  ports.BookingRepo
	profiles  ports.ProfileRepo
	maxPerDay int
	now       func() time.Time
}

func NewRouteService(routes ports.RouteRepo, bookings ports.BookingRepo, profiles ports.ProfileRepo, maxPerDay int) *RouteService {
	if maxPerDay <= 0 {
		maxPerDay = ledger.DefaultMaxRoutesPerDay
	}
	return &RouteService{
		routes:    routes,
		bookings:  bookings,
		profiles:  profiles,
		maxPerDay: maxPerDay,
		now:       utils.NowUTC,
	}
}

// Create publishes a route for an owner whose plan covers the travel date.
func (s *RouteService) Create(ctx context.Context, actor domain.Actor, in models.RouteInput) (models.Route, error) {
	if actor.Role != domain.RoleOwner && !actor.IsAdmin() {
		return models.Route{}, forbidden(domain.ErrRoleRequired)
	}
	in = normalizeRouteInput(in)
	if err := validateInput(in); err != nil {
		return models.Route{}, err
	}

	owner, err := s.ownerWithPlan(ctx, actor.Email, in.TravelDate)
	if err != nil {
		return models.Route{}, err
	}

	now := clock(s.now)()
	route := applyRouteInput(models.Route{
		ID:         uuid.NewString(),
		OwnerEmail: owner.Email,
		OwnerName:  owner.Name,
		CreatedAt:  now,
	}, in)
	route.UpdatedAt = now
	if strings.TrimSpace(route.Vehicle) == "" {
		route.Vehicle = owner.Vehicle
	}

	if err := s.routes.Create(ctx, route, s.maxPerDay); err != nil {
		return models.Route{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "routes", "create", "route_id="+route.ID+" owner="+route.OwnerEmail)
	return route, nil
}

// Update edits a route owned by the actor.
func (s *RouteService) Update(ctx context.Context, actor domain.Actor, id string, in models.RouteInput) (models.Route, error) {
	current, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return models.Route{}, err
	}
	if !actor.Is(current.OwnerEmail) && !actor.IsAdmin() {
		return models.Route{}, forbidden(domain.ErrNotOwner)
	}
	in = normalizeRouteInput(in)
	if err := validateInput(in); err != nil {
		return models.Route{}, err
	}
	if !actor.IsAdmin() {
		if _, err := s.ownerWithPlan(ctx, current.OwnerEmail, in.TravelDate); err != nil {
			return models.Route{}, err
		}
	}

	route := applyRouteInput(current, in)
	route.UpdatedAt = clock(s.now)()
	if err := s.routes.Update(ctx, route, s.maxPerDay); err != nil {
		return models.Route{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "routes", "update", "route_id="+route.ID)
	return route, nil
}

func (s *RouteService) Get(ctx context.Context, id string) (models.Route, error) {
	return s.routes.GetByID(ctx, id)
}

func (s *RouteService) Search(ctx context.Context, f models.RouteFilter) ([]models.Route, error) {
	if f.TravelDate != "" {
		if _, err := utils.ParseDate(f.TravelDate); err != nil {
			return nil, domain.ValidationError{Field: "date", Msg: "must be YYYY-MM-DD"}
		}
	}
	return s.routes.Search(ctx, f)
}

// Availability reports capacity, booked and remaining seats of a route.
func (s *RouteService) Availability(ctx context.Context, id string) (models.Availability, error) {
	route, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return models.Availability{}, err
	}
	bookings, err := s.bookings.ListForRoute(ctx, route)
	if err != nil {
		return models.Availability{}, err
	}
	return ledger.Availability(route, bookings), nil
}

// ListOwned is the owner dashboard: every route of the actor with its availability.
func (s *RouteService) ListOwned(ctx context.Context, actor domain.Actor) ([]models.RouteOverview, error) {
	routes, err := s.routes.ListByOwner(ctx, actor.Email)
	if err != nil {
		return nil, err
	}
	out := make([]models.RouteOverview, 0, len(routes))
	for _, r := range routes {
		bookings, err := s.bookings.ListForRoute(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, models.RouteOverview{Route: r, Availability: ledger.Availability(r, bookings)})
	}
	return out, nil
}

// ListBookings returns the bookings counted against a route, for its owner or an admin.
func (s *RouteService) ListBookings(ctx context.Context, actor domain.Actor, id string) ([]models.Booking, error) {
	route, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Is(route.OwnerEmail) && !actor.IsAdmin() {
		return nil, forbidden(domain.ErrNotOwner)
	}
	return s.bookings.ListForRoute(ctx, route)
}

func (s *RouteService) SetPromoted(ctx context.Context, actor domain.Actor, id string, promoted bool) (models.Route, error) {
	if !actor.IsAdmin() {
		return models.Route{}, forbidden(domain.ErrRoleRequired)
	}
	if err := s.routes.SetPromoted(ctx, id, promoted); err != nil {
		return models.Route{}, err
	}
	return s.routes.GetByID(ctx, id)
}

func normalizeRouteInput(in models.RouteInput) models.RouteInput {
	in.From = utils.NormalizeSpace(in.From)
	in.To = utils.NormalizeSpace(in.To)
	in.TravelDate = strings.TrimSpace(in.TravelDate)
	in.DepartureTime = utils.CanonicalClock(in.DepartureTime)
	in.ArrivalTime = utils.CanonicalClock(in.ArrivalTime)
	in.Vehicle = utils.NormalizeSpace(in.Vehicle)
	in.PickupPoints = utils.CleanList(in.PickupPoints)
	in.DropoffPoints = utils.CleanList(in.DropoffPoints)
	return in
}

func applyRouteInput(r models.Route, in models.RouteInput) models.Route {
	r.From = in.From
	r.To = in.To
	r.TravelDate = in.TravelDate
	r.DepartureTime = in.DepartureTime
	r.ArrivalTime = in.ArrivalTime
	r.AvailableSeats = in.AvailableSeats
	r.Price = in.Price
	if in.Vehicle != "" {
		r.Vehicle = in.Vehicle
	}
	r.PickupPoints = in.PickupPoints
	r.DropoffPoints = in.DropoffPoints
	r.Origin = in.Origin
	r.Destination = in.Destination
	r.DistanceKm = 0
	if r.Origin != nil && r.Destination != nil {
		r.DistanceKm = utils.DistanceKm(r.Origin.Lat, r.Origin.Lon, r.Destination.Lat, r.Destination.Lon)
	}
	return r
}

// ownerWithPlan loads the owner profile and requires its plan to cover travelDate.
func (s *RouteService) ownerWithPlan(ctx context.Context, email, travelDate string) (models.Profile, error) {
	owner, err := s.profiles.Get(ctx, email)
	if err != nil {
		return models.Profile{}, fmt.Errorf("load owner profile: %w", err)
	}
	day, err := utils.ParseDate(travelDate)
	if err != nil {
		return models.Profile{}, domain.ValidationError{Field: "travel_date", Msg: err.Error()}
	}
	if !owner.PlanActive(day) {
		return models.Profile{}, forbidden(domain.ErrPlanExpired)
	}
	return owner, nil
}
