package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carpool/internal/auth"
	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/events"
	"carpool/internal/tracking"
)

type bookingFixture struct {
	routes   *routeRepoMock
	bookings *bookingRepoMock
	profiles *profileRepoMock
	events   *publisherMock
	notifier *notifierMock
	signer   *signerMock
	live     *liveMock
	svc      *BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		routes:   new(routeRepoMock),
		bookings: new(bookingRepoMock),
		profiles: new(profileRepoMock),
		events:   new(publisherMock),
		notifier: new(notifierMock),
		signer:   new(signerMock),
		live:     new(liveMock),
	}
	f.svc = NewBookingService(BookingDeps{
		Routes:     f.routes,
		Bookings:   f.bookings,
		Profiles:   f.profiles,
		Events:     f.events,
		Notifier:   f.notifier,
		Signer:     f.signer,
		Live:       f.live,
		BaseURL:    "https://carpool.example.com/",
		PendingTTL: 30 * time.Minute,
	})
	f.svc.dispatch = syncDispatch
	f.svc.now = fixedClock
	return f
}

func (f *bookingFixture) assertAll(t *testing.T) {
	t.Helper()
	f.routes.AssertExpectations(t)
	f.bookings.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
	f.events.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.signer.AssertExpectations(t)
	f.live.AssertExpectations(t)
}

func TestBook_NewBookingNotifiesOwnerWithSignedLinks(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	route := sampleRoute()
	owner := models.Profile{Email: route.OwnerEmail, Name: "Owner"}
	created := sampleBooking(models.BookingPending)
	res := models.BookingResult{Booking: created, Added: 2}

	f.routes.On("GetByID", ctx, "route-1").Return(route, nil)
	f.profiles.On("Get", ctx, "rider@example.com").
		Return(models.Profile{Email: "rider@example.com", Name: "Rider", Mobile: "9000000001"}, nil).Once()
	f.bookings.On("Reserve", ctx, models.BookingRequest{
		RouteID:        "route-1",
		PassengerEmail: "rider@example.com",
		PassengerName:  "Rider",
		PassengerPhone: "9000000001",
		Travelers:      2,
		PaymentMethod:  "upi",
	}, testNow).Return(res, nil)
	f.events.On("PublishBooking", mock.Anything, events.BookingCreated, created).Return(nil)
	f.profiles.On("Get", mock.Anything, route.OwnerEmail).Return(owner, nil).Once()
	f.signer.On("SignResponse", "b-1", auth.ActionConfirm).Return("tok-c", nil)
	f.signer.On("SignResponse", "b-1", auth.ActionReject).Return("tok-r", nil)

	var links models.ResponseLinks
	f.notifier.On("NotifyBookingRequest", mock.Anything, owner, route, res, mock.Anything).
		Run(func(args mock.Arguments) { links = args.Get(4).(models.ResponseLinks) })

	got, err := f.svc.Book(ctx, passengerActor, "route-1", BookInput{Travelers: 2, PaymentMethod: " UPI "})

	require.NoError(t, err)
	assert.False(t, got.ToppedUp)
	require.True(t, strings.HasPrefix(links.Confirm, "https://carpool.example.com/api/booking-response?"))
	u, err := url.Parse(links.Confirm)
	require.NoError(t, err)
	assert.Equal(t, "b-1", u.Query().Get("bookingId"))
	assert.Equal(t, "confirm", u.Query().Get("action"))
	assert.Equal(t, "tok-c", u.Query().Get("token"))
	assert.Contains(t, links.Reject, "token=tok-r")
	f.assertAll(t)
}

func TestBook_DuplicatePublishesTopUp(t *testing.T) {
	f := newBookingFixture()
	f.svc.notifier = nil
	ctx := context.Background()
	route := sampleRoute()
	existing := sampleBooking(models.BookingConfirmed)
	existing.Travelers = 3
	res := models.BookingResult{Booking: existing, ToppedUp: true, Added: 1}

	f.routes.On("GetByID", ctx, "route-1").Return(route, nil)
	f.bookings.On("Reserve", ctx, mock.MatchedBy(func(r models.BookingRequest) bool {
		return r.Travelers == 1 && r.PassengerEmail == "rider@example.com"
	}), testNow).Return(res, nil)
	f.events.On("PublishBooking", mock.Anything, events.BookingToppedUp, existing).Return(nil)

	got, err := f.svc.Book(ctx, passengerActor, "route-1", BookInput{Travelers: 1, PassengerName: "Rider", PassengerPhone: "9000000001"})

	require.NoError(t, err)
	assert.True(t, got.ToppedUp)
	assert.Equal(t, 1, got.Added)
	f.assertAll(t)
}

func TestBook_OwnerCannotBookOwnRoute(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	f.routes.On("GetByID", ctx, "route-1").Return(sampleRoute(), nil)

	_, err := f.svc.Book(ctx, ownerActor, "route-1", BookInput{Travelers: 1})

	assert.True(t, domain.IsForbidden(err))
	f.bookings.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_RejectsZeroTravelers(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	f.routes.On("GetByID", ctx, "route-1").Return(sampleRoute(), nil)

	_, err := f.svc.Book(ctx, passengerActor, "route-1", BookInput{Travelers: 0, PassengerName: "Rider", PassengerPhone: "1"})

	var verr domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "travelers", verr.Field)
}

func TestBook_PassesThroughNotEnoughSeats(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	f.routes.On("GetByID", ctx, "route-1").Return(sampleRoute(), nil)
	f.bookings.On("Reserve", ctx, mock.Anything, testNow).
		Return(models.BookingResult{}, domain.ConflictError{Resource: "route", Err: domain.ErrNotEnoughSeats})

	_, err := f.svc.Book(ctx, passengerActor, "route-1", BookInput{Travelers: 5, PassengerName: "Rider", PassengerPhone: "1"})

	assert.True(t, errors.Is(err, domain.ErrNotEnoughSeats))
	f.events.AssertNotCalled(t, "PublishBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_RejectsDepartedRoute(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	route := sampleRoute()
	route.TravelDate = "2026-11-09"
	f.routes.On("GetByID", ctx, "route-1").Return(route, nil)

	_, err := f.svc.Book(ctx, passengerActor, "route-1", BookInput{Travelers: 1, PassengerName: "Rider", PassengerPhone: "1"})

	var verr domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "route", verr.Field)
	f.bookings.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
}

func TestTopUp_ConfirmedBookingNotifiesWithoutLinks(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	route := sampleRoute()
	owner := models.Profile{Email: route.OwnerEmail, Name: "Owner"}
	updated := sampleBooking(models.BookingConfirmed)
	updated.Travelers = 3

	f.bookings.On("GetByID", ctx, "b-1").Return(sampleBooking(models.BookingConfirmed), nil)
	f.bookings.On("TopUp", ctx, "b-1", 1, testNow).Return(updated, nil)
	f.events.On("PublishBooking", mock.Anything, events.BookingToppedUp, updated).Return(nil)
	f.routes.On("GetByID", mock.Anything, "route-1").Return(route, nil)
	f.profiles.On("Get", mock.Anything, route.OwnerEmail).Return(owner, nil)
	f.notifier.On("NotifyBookingRequest", mock.Anything, owner, route,
		models.BookingResult{Booking: updated, ToppedUp: true, Added: 1}, models.ResponseLinks{})

	got, err := f.svc.TopUp(ctx, passengerActor, "b-1", 1)

	require.NoError(t, err)
	assert.Equal(t, 3, got.Travelers)
	f.signer.AssertNotCalled(t, "SignResponse", mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestTopUp_OnlyPassenger(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	f.bookings.On("GetByID", ctx, "b-1").Return(sampleBooking(models.BookingPending), nil)

	_, err := f.svc.TopUp(ctx, strangerActor, "b-1", 1)

	assert.True(t, errors.Is(err, domain.ErrNotParticipant))
}

func TestRespond_ConfirmMovesPendingToConfirmed(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	route := sampleRoute()
	confirmed := sampleBooking(models.BookingConfirmed)
	passenger := models.Profile{Email: "rider@example.com"}

	f.signer.On("VerifyResponse", "tok", "b-1", auth.ActionConfirm).Return(nil)
	f.bookings.On("UpdateStatus", ctx, "b-1", []models.BookingStatus{models.BookingPending}, models.BookingConfirmed, testNow).
		Return(confirmed, nil)
	f.events.On("PublishBooking", mock.Anything, events.BookingConfirmed, confirmed).Return(nil)
	f.live.On("Publish", "b-1", tracking.EventStatus, confirmed)
	f.routes.On("GetByID", mock.Anything, "route-1").Return(route, nil)
	f.profiles.On("Get", mock.Anything, "rider@example.com").Return(passenger, nil)
	f.notifier.On("NotifyBookingStatus", mock.Anything, passenger, route, confirmed)

	got, err := f.svc.Respond(ctx, "b-1", "Confirm", "tok")

	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	f.assertAll(t)
}

func TestRespond_RejectCancels(t *testing.T) {
	f := newBookingFixture()
	f.svc.notifier, f.svc.live = nil, nil
	ctx := context.Background()
	cancelled := sampleBooking(models.BookingCancelled)

	f.signer.On("VerifyResponse", "tok", "b-1", auth.ActionReject).Return(nil)
	f.bookings.On("UpdateStatus", ctx, "b-1", []models.BookingStatus{models.BookingPending}, models.BookingCancelled, testNow).
		Return(cancelled, nil)
	f.events.On("PublishBooking", mock.Anything, events.BookingRejected, cancelled).Return(nil)

	got, err := f.svc.Respond(ctx, "b-1", "reject", "tok")

	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)
	f.assertAll(t)
}

func TestRespond_BadTokenIsForbidden(t *testing.T) {
	f := newBookingFixture()
	f.signer.On("VerifyResponse", "forged", "b-1", auth.ActionConfirm).Return(auth.ErrTokenScope)

	_, err := f.svc.Respond(context.Background(), "b-1", "confirm", "forged")

	assert.True(t, domain.IsForbidden(err))
	f.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_UnknownAction(t *testing.T) {
	f := newBookingFixture()

	_, err := f.svc.Respond(context.Background(), "b-1", "maybe", "tok")

	assert.True(t, domain.IsValidation(err))
}

func TestRespond_AlreadyAnsweredIsConflict(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	f.signer.On("VerifyResponse", "tok", "b-1", auth.ActionConfirm).Return(nil)
	f.bookings.On("UpdateStatus", ctx, "b-1", mock.Anything, models.BookingConfirmed, testNow).
		Return(models.Booking{}, domain.ConflictError{Resource: "booking", Err: domain.ErrBookingNotPending})

	_, err := f.svc.Respond(ctx, "b-1", "confirm", "tok")

	assert.True(t, domain.IsConflict(err))
	assert.True(t, errors.Is(err, domain.ErrBookingNotPending))
}

func TestCancel_StrangerForbidden(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	f.bookings.On("GetByID", ctx, "b-1").Return(sampleBooking(models.BookingPending), nil)

	_, err := f.svc.Cancel(ctx, strangerActor, "b-1")

	assert.True(t, domain.IsForbidden(err))
}

func TestCancel_AdminCancelsConfirmed(t *testing.T) {
	f := newBookingFixture()
	f.svc.notifier, f.svc.live = nil, nil
	ctx := context.Background()
	cancelled := sampleBooking(models.BookingCancelled)

	f.bookings.On("GetByID", ctx, "b-1").Return(sampleBooking(models.BookingConfirmed), nil)
	f.bookings.On("UpdateStatus", ctx, "b-1",
		[]models.BookingStatus{models.BookingPending, models.BookingConfirmed}, models.BookingCancelled, testNow).
		Return(cancelled, nil)
	f.events.On("PublishBooking", mock.Anything, events.BookingCancelled, cancelled).Return(nil)

	got, err := f.svc.Cancel(ctx, adminActor, "b-1")

	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)
	f.assertAll(t)
}

func TestComplete_RequiresRouteOwner(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	f.bookings.On("GetByID", ctx, "b-1").Return(sampleBooking(models.BookingConfirmed), nil)
	f.routes.On("GetByID", ctx, "route-1").Return(sampleRoute(), nil)

	_, err := f.svc.Complete(ctx, passengerActor, "b-1")

	assert.True(t, errors.Is(err, domain.ErrNotOwner))
}

func TestComplete_PendingIsConflict(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	f.bookings.On("GetByID", ctx, "b-1").Return(sampleBooking(models.BookingPending), nil)
	f.routes.On("GetByID", ctx, "route-1").Return(sampleRoute(), nil)

	_, err := f.svc.Complete(ctx, ownerActor, "b-1")

	assert.True(t, errors.Is(err, domain.ErrBookingNotActive))
}

func TestMarkPayment_RejectsUnknownStatus(t *testing.T) {
	f := newBookingFixture()

	_, err := f.svc.MarkPayment(context.Background(), passengerActor, "b-1", "Maybe", "cash")

	assert.True(t, domain.IsValidation(err))
}

func TestReport_StoresTrimmedText(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	b := sampleBooking(models.BookingCompleted)
	f.bookings.On("GetByID", ctx, "b-1").Return(b, nil)
	b.Report = "Driver was late"
	f.bookings.On("SetReport", ctx, "b-1", "Driver was late", testNow).Return(b, nil)

	got, err := f.svc.Report(ctx, passengerActor, "b-1", "  Driver was late ")

	require.NoError(t, err)
	assert.Equal(t, "Driver was late", got.Report)
	f.assertAll(t)
}

func TestCancelExpired_UsesPendingTTL(t *testing.T) {
	f := newBookingFixture()
	f.svc.notifier, f.svc.live = nil, nil
	ctx := context.Background()
	stale := sampleBooking(models.BookingCancelled)

	f.bookings.On("CancelStalePending", ctx, testNow.Add(-30*time.Minute), testNow).
		Return([]models.Booking{stale}, nil)
	f.events.On("PublishBooking", mock.Anything, events.BookingExpired, stale).Return(nil)

	n, err := f.svc.CancelExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.assertAll(t)
}

func TestCompleteFinished_PublishesCompleted(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	done := sampleBooking(models.BookingCompleted)

	f.bookings.On("CompleteFinished", ctx, testNow).Return([]models.Booking{done}, nil)
	f.events.On("PublishBooking", ctx, events.BookingCompleted, done).Return(errors.New("broker down"))

	n, err := f.svc.CompleteFinished(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.assertAll(t)
}

func TestGet_RouteOwnerCanRead(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	f.bookings.On("GetByID", ctx, "b-1").Return(sampleBooking(models.BookingPending), nil)
	f.routes.On("GetByID", ctx, "route-1").Return(sampleRoute(), nil)

	got, err := f.svc.Get(ctx, ownerActor, "b-1")

	require.NoError(t, err)
	assert.Equal(t, "b-1", got.ID)
}
