package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

type routeRepoMock struct{ mock.Mock }

func (m *routeRepoMock) GetByID(ctx context.Context, id string) (models.Route, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Route), args.Error(1)
}

func (m *routeRepoMock) Search(ctx context.Context, f models.RouteFilter) ([]models.Route, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Route), args.Error(1)
}

func (m *routeRepoMock) ListByOwner(ctx context.Context, ownerEmail string) ([]models.Route, error) {
	args := m.Called(ctx, ownerEmail)
	return args.Get(0).([]models.Route), args.Error(1)
}

func (m *routeRepoMock) Create(ctx context.Context, route models.Route, maxPerDay int) error {
	return m.Called(ctx, route, maxPerDay).Error(0)
}

func (m *routeRepoMock) Update(ctx context.Context, route models.Route, maxPerDay int) error {
	return m.Called(ctx, route, maxPerDay).Error(0)
}

func (m *routeRepoMock) SetPromoted(ctx context.Context, id string, promoted bool) error {
	return m.Called(ctx, id, promoted).Error(0)
}

type bookingRepoMock struct{ mock.Mock }

func (m *bookingRepoMock) Reserve(ctx context.Context, req models.BookingRequest, now time.Time) (models.BookingResult, error) {
	args := m.Called(ctx, req, now)
	return args.Get(0).(models.BookingResult), args.Error(1)
}

func (m *bookingRepoMock) TopUp(ctx context.Context, id string, seats int, now time.Time) (models.Booking, error) {
	args := m.Called(ctx, id, seats, now)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingRepoMock) GetByID(ctx context.Context, id string) (models.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingRepoMock) ListByPassenger(ctx context.Context, email string) ([]models.Booking, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *bookingRepoMock) ListForRoute(ctx context.Context, route models.Route) ([]models.Booking, error) {
	args := m.Called(ctx, route)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *bookingRepoMock) UpdateStatus(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, now time.Time) (models.Booking, error) {
	args := m.Called(ctx, id, from, to, now)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingRepoMock) UpdatePayment(ctx context.Context, id string, status models.PaymentStatus, method string, now time.Time) (models.Booking, error) {
	args := m.Called(ctx, id, status, method, now)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingRepoMock) UpdateLocation(ctx context.Context, id, role string, lat, lon float64, now time.Time) (models.Booking, error) {
	args := m.Called(ctx, id, role, lat, lon, now)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingRepoMock) SetReport(ctx context.Context, id, report string, now time.Time) (models.Booking, error) {
	args := m.Called(ctx, id, report, now)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingRepoMock) CancelStalePending(ctx context.Context, cutoff, now time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, cutoff, now)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *bookingRepoMock) CompleteFinished(ctx context.Context, now time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]models.Booking), args.Error(1)
}

type profileRepoMock struct{ mock.Mock }

func (m *profileRepoMock) Get(ctx context.Context, email string) (models.Profile, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *profileRepoMock) GetByReferralCode(ctx context.Context, code string) (models.Profile, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *profileRepoMock) List(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *profileRepoMock) Create(ctx context.Context, p models.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *profileRepoMock) Update(ctx context.Context, p models.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *profileRepoMock) SetMobileVerified(ctx context.Context, email string, now time.Time) error {
	return m.Called(ctx, email, now).Error(0)
}

func (m *profileRepoMock) SetRole(ctx context.Context, email string, role domain.Role, now time.Time) error {
	return m.Called(ctx, email, role, now).Error(0)
}

func (m *profileRepoMock) SetPlanExpiry(ctx context.Context, email string, expiry *time.Time, now time.Time) error {
	return m.Called(ctx, email, expiry, now).Error(0)
}

func (m *profileRepoMock) SetReferredBy(ctx context.Context, email, code string, now time.Time) error {
	return m.Called(ctx, email, code, now).Error(0)
}

type settingsRepoMock struct{ mock.Mock }

func (m *settingsRepoMock) Get(ctx context.Context) (models.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Settings), args.Error(1)
}

func (m *settingsRepoMock) Save(ctx context.Context, s models.Settings) error {
	return m.Called(ctx, s).Error(0)
}

type chatRepoMock struct{ mock.Mock }

func (m *chatRepoMock) Insert(ctx context.Context, msg models.ChatMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *chatRepoMock) ListByBooking(ctx context.Context, bookingID string, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, bookingID, limit)
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

type visitorsMock struct{ mock.Mock }

func (m *visitorsMock) Incr(ctx context.Context, day string) (models.Visitors, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(models.Visitors), args.Error(1)
}

func (m *visitorsMock) Get(ctx context.Context, day string) (models.Visitors, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(models.Visitors), args.Error(1)
}

type publisherMock struct{ mock.Mock }

func (m *publisherMock) PublishBooking(ctx context.Context, key string, b models.Booking) error {
	return m.Called(ctx, key, b).Error(0)
}

type notifierMock struct{ mock.Mock }

func (m *notifierMock) NotifyBookingRequest(ctx context.Context, owner models.Profile, route models.Route, res models.BookingResult, links models.ResponseLinks) {
	m.Called(ctx, owner, route, res, links)
}

func (m *notifierMock) NotifyBookingStatus(ctx context.Context, passenger models.Profile, route models.Route, b models.Booking) {
	m.Called(ctx, passenger, route, b)
}

type signerMock struct{ mock.Mock }

func (m *signerMock) SignResponse(bookingID, action string) (string, error) {
	args := m.Called(bookingID, action)
	return args.String(0), args.Error(1)
}

func (m *signerMock) VerifyResponse(token, bookingID, action string) error {
	return m.Called(token, bookingID, action).Error(0)
}

type liveMock struct{ mock.Mock }

func (m *liveMock) Publish(bookingID, eventType string, data any) {
	m.Called(bookingID, eventType, data)
}

func syncDispatch(f func()) { f() }

var testNow = time.Date(2026, 11, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func sampleRoute() models.Route {
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

func sampleBooking(status models.BookingStatus) models.Booking {
	return models.Booking{
		ID:             "b-1",
		RouteID:        "route-1",
		PassengerEmail: "rider@example.com",
		PassengerName:  "Rider",
		Destination:    "Pune to Mumbai",
		Travelers:      2,
		Amount:         1000,
		Status:         status,
		PaymentStatus:  models.PaymentPending,
	}
}

var (
	ownerActor     = domain.Actor{Email: "owner@example.com", Role: domain.RoleOwner}
	passengerActor = domain.Actor{Email: "rider@example.com", Role: domain.RolePassenger}
	adminActor     = domain.Actor{Email: "admin@example.com", Role: domain.RoleAdmin}
	strangerActor  = domain.Actor{Email: "someone@example.com", Role: domain.RolePassenger}
)
