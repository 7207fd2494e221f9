package ports

import (
	"context"
	"time"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

type RouteRepo interface {
	GetByID(ctx context.Context, id string) (models.Route, error)
	Search(ctx context.Context, f models.RouteFilter) ([]models.Route, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]models.Route, error)
	Create(ctx context.Context, route models.Route, maxPerDay int) error
	Update(ctx context.Context, route models.Route, maxPerDay int) error
	SetPromoted(ctx context.Context, id string, promoted bool) error
}

type BookingRepo interface {
	Reserve(ctx context.Context, req models.BookingRequest, now time.Time) (models.BookingResult, error)
	TopUp(ctx context.Context, bookingID string, seats int, now time.Time) (models.Booking, error)
	GetByID(ctx context.Context, id string) (models.Booking, error)
	ListByPassenger(ctx context.Context, email string) ([]models.Booking, error)
	ListForRoute(ctx context.Context, route models.Route) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, now time.Time) (models.Booking, error)
	UpdatePayment(ctx context.Context, id string, status models.PaymentStatus, method string, now time.Time) (models.Booking, error)
	UpdateLocation(ctx context.Context, id, role string, lat, lon float64, now time.Time) (models.Booking, error)
	SetReport(ctx context.Context, id, report string, now time.Time) (models.Booking, error)
	CancelStalePending(ctx context.Context, cutoff, now time.Time) ([]models.Booking, error)
	CompleteFinished(ctx context.Context, now time.Time) ([]models.Booking, error)
}

type ProfileRepo interface {
	Get(ctx context.Context, email string) (models.Profile, error)
	GetByReferralCode(ctx context.Context, code string) (models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Create(ctx context.Context, p models.Profile) error
	Update(ctx context.Context, p models.Profile) error
	SetMobileVerified(ctx context.Context, email string, now time.Time) error
	SetRole(ctx context.Context, email string, role domain.Role, now time.Time) error
	SetPlanExpiry(ctx context.Context, email string, expiry *time.Time, now time.Time) error
	SetReferredBy(ctx context.Context, email, code string, now time.Time) error
}

type SettingsRepo interface {
	Get(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s models.Settings) error
}

type ChatRepo interface {
	Insert(ctx context.Context, m models.ChatMessage) error
	ListByBooking(ctx context.Context, bookingID string, limit int) ([]models.ChatMessage, error)
}

// VisitorCounter keeps total and per-day visit counts.
type VisitorCounter interface {
	Incr(ctx context.Context, day string) (models.Visitors, error)
	Get(ctx context.Context, day string) (models.Visitors, error)
}
