package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/stretchr/testify/mock"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/services"
)

type routeSvcMock struct{ mock.Mock }

func (m *routeSvcMock) Create(ctx context.Context, a domain.Actor, in models.RouteInput) (models.Route, error) {
	args := m.Called(ctx, a, in)
	return args.Get(0).(models.Route), args.Error(1)
}

func (m *routeSvcMock) Update(ctx context.Context, a domain.Actor, id string, in models.RouteInput) (models.Route, error) {
	args := m.Called(ctx, a, id, in)
	return args.Get(0).(models.Route), args.Error(1)
}

func (m *routeSvcMock) Get(ctx context.Context, id string) (models.Route, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Route), args.Error(1)
}

func (m *routeSvcMock) Search(ctx context.Context, f models.RouteFilter) ([]models.Route, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Route), args.Error(1)
}

func (m *routeSvcMock) Availability(ctx context.Context, id string) (models.Availability, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Availability), args.Error(1)
}

func (m *routeSvcMock) ListOwned(ctx context.Context, a domain.Actor) ([]models.RouteOverview, error) {
	args := m.Called(ctx, a)
	return args.Get(0).([]models.RouteOverview), args.Error(1)
}

func (m *routeSvcMock) ListBookings(ctx context.Context, a domain.Actor, id string) ([]models.Booking, error) {
	args := m.Called(ctx, a, id)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *routeSvcMock) SetPromoted(ctx context.Context, a domain.Actor, id string, promoted bool) (models.Route, error) {
	args := m.Called(ctx, a, id, promoted)
	return args.Get(0).(models.Route), args.Error(1)
}

type bookingSvcMock struct{ mock.Mock }

func (m *bookingSvcMock) Book(ctx context.Context, a domain.Actor, routeID string, in services.BookInput) (models.BookingResult, error) {
	args := m.Called(ctx, a, routeID, in)
	return args.Get(0).(models.BookingResult), args.Error(1)
}

func (m *bookingSvcMock) TopUp(ctx context.Context, a domain.Actor, id string, seats int) (models.Booking, error) {
	args := m.Called(ctx, a, id, seats)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingSvcMock) Get(ctx context.Context, a domain.Actor, id string) (models.Booking, error) {
	args := m.Called(ctx, a, id)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingSvcMock) ListMine(ctx context.Context, a domain.Actor) ([]models.Booking, error) {
	args := m.Called(ctx, a)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *bookingSvcMock) Respond(ctx context.Context, id, action, token string) (models.Booking, error) {
	args := m.Called(ctx, id, action, token)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingSvcMock) Cancel(ctx context.Context, a domain.Actor, id string) (models.Booking, error) {
	args := m.Called(ctx, a, id)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingSvcMock) Complete(ctx context.Context, a domain.Actor, id string) (models.Booking, error) {
	args := m.Called(ctx, a, id)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingSvcMock) MarkPayment(ctx context.Context, a domain.Actor, id string, status models.PaymentStatus, method string) (models.Booking, error) {
	args := m.Called(ctx, a, id, status, method)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingSvcMock) Report(ctx context.Context, a domain.Actor, id, text string) (models.Booking, error) {
	args := m.Called(ctx, a, id, text)
	return args.Get(0).(models.Booking), args.Error(1)
}

type profileSvcMock struct{ mock.Mock }

func (m *profileSvcMock) Get(ctx context.Context, email string) (models.Profile, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *profileSvcMock) List(ctx context.Context, a domain.Actor) ([]models.Profile, error) {
	args := m.Called(ctx, a)
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *profileSvcMock) Upsert(ctx context.Context, a domain.Actor, in models.ProfileInput) (models.Profile, error) {
	args := m.Called(ctx, a, in)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *profileSvcMock) VerifyMobile(ctx context.Context, a domain.Actor) (models.Profile, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *profileSvcMock) SetRole(ctx context.Context, a domain.Actor, email, role string) (models.Profile, error) {
	args := m.Called(ctx, a, email, role)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *profileSvcMock) SetPlanExpiry(ctx context.Context, a domain.Actor, email, date string) (models.Profile, error) {
	args := m.Called(ctx, a, email, date)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *profileSvcMock) ApplyReferral(ctx context.Context, a domain.Actor, code string) (models.Profile, error) {
	args := m.Called(ctx, a, code)
	return args.Get(0).(models.Profile), args.Error(1)
}

type settingsSvcMock struct{ mock.Mock }

func (m *settingsSvcMock) Get(ctx context.Context) (models.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Settings), args.Error(1)
}

func (m *settingsSvcMock) Update(ctx context.Context, a domain.Actor, in services.SettingsInput) (models.Settings, error) {
	args := m.Called(ctx, a, in)
	return args.Get(0).(models.Settings), args.Error(1)
}

func (m *settingsSvcMock) RecordVisit(ctx context.Context) (models.Visitors, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Visitors), args.Error(1)
}

func (m *settingsSvcMock) Visitors(ctx context.Context) (models.Visitors, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Visitors), args.Error(1)
}

type liveSvcMock struct{ mock.Mock }

func (m *liveSvcMock) CanWatch(ctx context.Context, a domain.Actor, id string) error {
	return m.Called(ctx, a, id).Error(0)
}

func (m *liveSvcMock) UpdateLocation(ctx context.Context, a domain.Actor, id, role string, lat, lon float64) (models.LivePosition, error) {
	args := m.Called(ctx, a, id, role, lat, lon)
	return args.Get(0).(models.LivePosition), args.Error(1)
}

func (m *liveSvcMock) PostMessage(ctx context.Context, a domain.Actor, id, body string) (models.ChatMessage, error) {
	args := m.Called(ctx, a, id, body)
	return args.Get(0).(models.ChatMessage), args.Error(1)
}

func (m *liveSvcMock) ListMessages(ctx context.Context, a domain.Actor, id string, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, a, id, limit)
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

type receiptSvcMock struct{ mock.Mock }

func (m *receiptSvcMock) Receipt(ctx context.Context, a domain.Actor, id string) ([]byte, string, error) {
	args := m.Called(ctx, a, id)
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type hubMock struct{ mock.Mock }

func (m *hubMock) Serve(w http.ResponseWriter, r *http.Request, bookingID, email string) error {
	args := m.Called(bookingID, email)
	if code, ok := args.Get(0).(int); ok {
		w.WriteHeader(code)
	}
	return args.Error(1)
}

type pingerMock struct{ err error }

func (p pingerMock) PingContext(context.Context) error { return p.err }

// fakeTokens maps bearer values to actors.
type fakeTokens map[string]domain.Actor

func (f fakeTokens) ParseBearer(header string) (domain.Actor, error) {
	if a, ok := f[header]; ok {
		return a, nil
	}
	return domain.Actor{}, errors.New("bad token")
}
