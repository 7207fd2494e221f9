package handlers

import (
	"context"
	"net/http"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/services"
)

type RouteSvc interface {
	Create(ctx context.Context, actor domain.Actor, in models.RouteInput) (models.Route, error)
	Update(ctx context.Context, actor domain.Actor, id string, in models.RouteInput) (models.Route, error)
	Get(ctx context.Context, id string) (models.Route, error)
	Search(ctx context.Context, f models.RouteFilter) ([]models.Route, error)
	Availability(ctx context.Context, id string) (models.Availability, error)
	ListOwned(ctx context.Context, actor domain.Actor) ([]models.RouteOverview, error)
	ListBookings(ctx context.Context, actor domain.Actor, id string) ([]models.Booking, error)
	SetPromoted(ctx context.Context, actor domain.Actor, id string, promoted bool) (models.Route, error)
}

type BookingSvc interface {
	Book(ctx context.Context, actor domain.Actor, routeID string, in services.BookInput) (models.BookingResult, error)
	TopUp(ctx context.Context, actor domain.Actor, id string, seats int) (models.Booking, error)
	Get(ctx context.Context, actor domain.Actor, id string) (models.Booking, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]models.Booking, error)
	Respond(ctx context.Context, id, action, token string) (models.Booking, error)
	Cancel(ctx context.Context, actor domain.Actor, id string) (models.Booking, error)
	Complete(ctx context.Context, actor domain.Actor, id string) (models.Booking, error)
	MarkPayment(ctx context.Context, actor domain.Actor, id string, status models.PaymentStatus, method string) (models.Booking, error)
	Report(ctx context.Context, actor domain.Actor, id, text string) (models.Booking, error)
}

type ProfileSvc interface {
	Get(ctx context.Context, email string) (models.Profile, error)
	List(ctx context.Context, actor domain.Actor) ([]models.Profile, error)
	Upsert(ctx context.Context, actor domain.Actor, in models.ProfileInput) (models.Profile, error)
	VerifyMobile(ctx context.Context, actor domain.Actor) (models.Profile, error)
	SetRole(ctx context.Context, actor domain.Actor, email, role string) (models.Profile, error)
	SetPlanExpiry(ctx context.Context, actor domain.Actor, email, date string) (models.Profile, error)
	ApplyReferral(ctx context.Context, actor domain.Actor, code string) (models.Profile, error)
}

type SettingsSvc interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, actor domain.Actor, in services.SettingsInput) (models.Settings, error)
	RecordVisit(ctx context.Context) (models.Visitors, error)
	Visitors(ctx context.Context) (models.Visitors, error)
}

type LiveSvc interface {
	CanWatch(ctx context.Context, actor domain.Actor, id string) error
	UpdateLocation(ctx context.Context, actor domain.Actor, id, role string, lat, lon float64) (models.LivePosition, error)
	PostMessage(ctx context.Context, actor domain.Actor, id, body string) (models.ChatMessage, error)
	ListMessages(ctx context.Context, actor domain.Actor, id string, limit int) ([]models.ChatMessage, error)
}

type ReceiptSvc interface {
	Receipt(ctx context.Context, actor domain.Actor, id string) ([]byte, string, error)
}

// LiveHub upgrades a request into a booking's live feed.
type LiveHub interface {
	Serve(w http.ResponseWriter, r *http.Request, bookingID, email string) error
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Routes   RouteSvc
	Bookings BookingSvc
	Profiles ProfileSvc
	Settings SettingsSvc
	Live     LiveSvc
	Receipts ReceiptSvc
	Hub      LiveHub
	DB       Pinger
}

type Handler struct {
	routes   RouteSvc
	bookings BookingSvc
	profiles ProfileSvc
	settings SettingsSvc
	live     LiveSvc
	receipts ReceiptSvc
	hub      LiveHub
	db       Pinger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		routes:   d.Routes,
		bookings: d.Bookings,
		profiles: d.Profiles,
		settings: d.Settings,
		live:     d.Live,
		receipts: d.Receipts,
		hub:      d.Hub,
		db:       d.DB,
	}
}
