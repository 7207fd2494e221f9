package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/services/ports"
	"carpool/internal/tracking"
	"carpool/internal/utils"
)

const (
	RoleDriver    = "driver"
	RolePassenger = "passenger"

	maxChatBody = 1000
)

// LiveService handles live positions and chat on a booking.
type LiveService struct {
	routes   ports.RouteRepo
	bookings ports.BookingRepo
	chat     ports.ChatRepo
	live     ports.LiveBroadcaster
	now      func() time.Time
}

func NewLiveService(routes ports.RouteRepo, bookings ports.BookingRepo, chat ports.ChatRepo, live ports.LiveBroadcaster) *LiveService {
	return &LiveService{routes: routes, bookings: bookings, chat: chat, live: live, now: utils.NowUTC}
}

// participant loads the booking and says which side of it the actor is on.
func (s *LiveService) participant(ctx context.Context, actor domain.Actor, id string) (models.Booking, string, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, "", err
	}
	p, err := resolveParties(ctx, s.routes, actor, b)
	if err != nil {
		return models.Booking{}, "", err
	}
	switch {
	case p.Owner:
		return b, RoleDriver, nil
	case p.Passenger:
		return b, RolePassenger, nil
	default:
		return models.Booking{}, "", forbidden(domain.ErrNotParticipant)
	}
}

// CanWatch reports whether the actor may subscribe to a booking's live feed.
func (s *LiveService) CanWatch(ctx context.Context, actor domain.Actor, id string) error {
	if actor.IsAdmin() {
		_, err := s.bookings.GetByID(ctx, id)
		return err
	}
	_, _, err := s.participant(ctx, actor, id)
	return err
}

// UpdateLocation stores the caller's position and pushes it to subscribers.
// The role is taken from the caller's side of the booking; a mismatching
// requested role is rejected.
func (s *LiveService) UpdateLocation(ctx context.Context, actor domain.Actor, id, role string, lat, lon float64) (models.LivePosition, error) {
	if lat < -90 || lat > 90 {
		return models.LivePosition{}, domain.ValidationError{Field: "lat", Msg: "must be a valid latitude"}
	}
	if lon < -180 || lon > 180 {
		return models.LivePosition{}, domain.ValidationError{Field: "lon", Msg: "must be a valid longitude"}
	}
	b, side, err := s.participant(ctx, actor, id)
	if err != nil {
		return models.LivePosition{}, err
	}
	if role = strings.ToLower(strings.TrimSpace(role)); role != "" && role != side {
		return models.LivePosition{}, forbidden(domain.ErrNotParticipant)
	}
	if b.Status.Final() {
		return models.LivePosition{}, domain.ConflictError{Resource: "booking", Err: domain.ErrBookingFinal}
	}

	now := clock(s.now)()
	updated, err := s.bookings.UpdateLocation(ctx, id, side, lat, lon, now)
	if err != nil {
		return models.LivePosition{}, err
	}
	pos := models.LivePosition{
		BookingID: id,
		Role:      side,
		Lat:       lat,
		Lon:       lon,
		Geohash:   utils.Geohash(lat, lon),
		At:        now,
	}
	if updated.Driver != nil && updated.Passenger != nil {
		km := utils.DistanceKm(updated.Driver.Lat, updated.Driver.Lon, updated.Passenger.Lat, updated.Passenger.Lon)
		pos.DistanceKm = &km
	}
	if s.live != nil {
		s.live.Publish(id, tracking.EventLocation, pos)
	}
	return pos, nil
}

func (s *LiveService) PostMessage(ctx context.Context, actor domain.Actor, id, body string) (models.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.ChatMessage{}, domain.ValidationError{Field: "body", Msg: "is required"}
	}
	if len(body) > maxChatBody {
		return models.ChatMessage{}, domain.ValidationError{Field: "body", Msg: "must be at most 1000"}
	}
	if _, _, err := s.participant(ctx, actor, id); err != nil {
		return models.ChatMessage{}, err
	}
	m := models.ChatMessage{
		ID:          uuid.NewString(),
		BookingID:   id,
		SenderEmail: utils.NormalizeEmail(actor.Email),
		Body:        body,
		CreatedAt:   clock(s.now)(),
	}
	if err := s.chat.Insert(ctx, m); err != nil {
		return models.ChatMessage{}, err
	}
	if s.live != nil {
		s.live.Publish(id, tracking.EventChat, m)
	}
	return m, nil
}

func (s *LiveService) ListMessages(ctx context.Context, actor domain.Actor, id string, limit int) ([]models.ChatMessage, error) {
	if err := s.CanWatch(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.chat.ListByBooking(ctx, id, limit)
}
