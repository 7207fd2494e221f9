package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"carpool/internal/auth"
	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/events"
	"carpool/internal/services/ports"
	"carpool/internal/tracking"
	"carpool/internal/utils"
)

// BookInput is what a caller sends to book seats on a route.
type BookInput struct {
	Travelers      int
	PassengerName  string
	PassengerPhone string
	PaymentMethod  string
	ReturnDate     *time.Time
}

type BookingDeps struct {
	Routes     ports.RouteRepo
	Bookings   ports.BookingRepo
	Profiles   ports.ProfileRepo
	Events     ports.EventPublisher
	Notifier   ports.BookingNotifier
	Signer     ports.ResponseSigner
	Live       ports.LiveBroadcaster
	BaseURL    string
	PendingTTL time.Duration
}

type BookingService struct {
	routes     ports.RouteRepo
	bookings   ports.BookingRepo
	profiles   ports.ProfileRepo
	events     ports.EventPublisher
	notifier   ports.BookingNotifier
	signer     ports.ResponseSigner
	live       ports.LiveBroadcaster
	baseURL    string
	pendingTTL time.Duration
	dispatch   dispatcher
	now        func() time.Time
}

func NewBookingService(d BookingDeps) *BookingService {
	ttl := d.PendingTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &BookingService{
		routes:     d.Routes,
		bookings:   d.Bookings,
		profiles:   d.Profiles,
		events:     d.Events,
		notifier:   d.Notifier,
		signer:     d.Signer,
		live:       d.Live,
		baseURL:    strings.TrimRight(d.BaseURL, "/"),
		pendingTTL: ttl,
		dispatch:   goDispatch,
		now:        utils.NowUTC,
	}
}

// Book reserves seats on a route for the actor. A second request by the same
// passenger on the same route tops up the existing booking instead.
func (s *BookingService) Book(ctx context.Context, actor domain.Actor, routeID string, in BookInput) (models.BookingResult, error) {
	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return models.BookingResult{}, err
	}
	if actor.Is(route.OwnerEmail) {
		return models.BookingResult{}, forbidden(domain.ErrNotOwner)
	}
	now := clock(s.now)()
	if dep, err := utils.CombineDateClock(route.TravelDate, route.DepartureTime); err == nil && dep.Before(now) {
		return models.BookingResult{}, domain.ValidationError{Field: "route", Msg: "route has already departed"}
	}

	req := models.BookingRequest{
		RouteID:        route.ID,
		PassengerEmail: utils.NormalizeEmail(actor.Email),
		PassengerName:  utils.NormalizeSpace(in.PassengerName),
		PassengerPhone: utils.TrimOrEmpty(in.PassengerPhone),
		Travelers:      in.Travelers,
		PaymentMethod:  strings.ToLower(utils.TrimOrEmpty(in.PaymentMethod)),
		ReturnDate:     in.ReturnDate,
	}
	if req.PassengerName == "" || req.PassengerPhone == "" {
		if p, err := s.profiles.Get(ctx, req.PassengerEmail); err == nil {
			if req.PassengerName == "" {
				req.PassengerName = p.Name
			}
			if req.PassengerPhone == "" {
				req.PassengerPhone = p.Mobile
			}
		} else if !domain.IsNotFound(err) {
			return models.BookingResult{}, err
		}
	}
	if err := validateInput(req); err != nil {
		return models.BookingResult{}, err
	}

	res, err := s.bookings.Reserve(ctx, req, now)
	if err != nil {
		return models.BookingResult{}, err
	}

	key := events.BookingCreated
	if res.ToppedUp {
		key = events.BookingToppedUp
	}
	utils.LogEvent(utils.RequestID(ctx), "bookings", key,
		"booking_id="+res.Booking.ID+" route_id="+route.ID)
	s.after(ctx, key, res.Booking, func(ctx context.Context) {
		s.notifyOwner(ctx, route, res)
	})
	return res, nil
}

// TopUp adds seats to the actor's own booking.
func (s *BookingService) TopUp(ctx context.Context, actor domain.Actor, id string, seats int) (models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if !actor.Is(b.PassengerEmail) {
		return models.Booking{}, forbidden(domain.ErrNotParticipant)
	}
	if seats <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "travelers", Msg: "must be at least 1"}
	}

	updated, err := s.bookings.TopUp(ctx, id, seats, clock(s.now)())
	if err != nil {
		return models.Booking{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "bookings", events.BookingToppedUp, "booking_id="+id)
	s.after(ctx, events.BookingToppedUp, updated, func(ctx context.Context) {
		route, err := s.routes.GetByID(ctx, updated.RouteID)
		if err != nil {
			return
		}
		s.notifyOwner(ctx, route, models.BookingResult{Booking: updated, ToppedUp: true, Added: seats})
	})
	return updated, nil
}

// Get returns a booking visible to its passenger, its route owner or an admin.
func (s *BookingService) Get(ctx context.Context, actor domain.Actor, id string) (models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if actor.IsAdmin() {
		return b, nil
	}
	p, err := resolveParties(ctx, s.routes, actor, b)
	if err != nil {
		return models.Booking{}, err
	}
	if !p.Passenger && !p.Owner {
		return models.Booking{}, forbidden(domain.ErrNotParticipant)
	}
	return b, nil
}

func (s *BookingService) ListMine(ctx context.Context, actor domain.Actor) ([]models.Booking, error) {
	return s.bookings.ListByPassenger(ctx, actor.Email)
}

// Respond applies the owner's answer from a signed booking-response link.
func (s *BookingService) Respond(ctx context.Context, id, action, token string) (models.Booking, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	var to models.BookingStatus
	key := ""
	switch action {
	case auth.ActionConfirm:
		to, key = models.BookingConfirmed, events.BookingConfirmed
	case auth.ActionReject:
		to, key = models.BookingCancelled, events.BookingRejected
	default:
		return models.Booking{}, domain.ValidationError{Field: "action", Msg: "must be confirm or reject"}
	}
	if strings.TrimSpace(id) == "" {
		return models.Booking{}, domain.ValidationError{Field: "bookingId", Msg: "is required"}
	}
	if s.signer == nil {
		return models.Booking{}, forbidden(auth.ErrInvalidToken)
	}
	if err := s.signer.VerifyResponse(token, id, action); err != nil {
		return models.Booking{}, forbidden(err)
	}

	b, err := s.bookings.UpdateStatus(ctx, id, []models.BookingStatus{models.BookingPending}, to, clock(s.now)())
	if err != nil {
		return models.Booking{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "bookings", key, "booking_id="+id)
	s.afterStatus(ctx, key, b)
	return b, nil
}

// Cancel releases the seats of a booking; passenger or admin only.
func (s *BookingService) Cancel(ctx context.Context, actor domain.Actor, id string) (models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if !actor.Is(b.PassengerEmail) && !actor.IsAdmin() {
		return models.Booking{}, forbidden(domain.ErrNotParticipant)
	}
	b, err = s.bookings.UpdateStatus(ctx, id,
		[]models.BookingStatus{models.BookingPending, models.BookingConfirmed},
		models.BookingCancelled, clock(s.now)())
	if err != nil {
		return models.Booking{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "bookings", events.BookingCancelled, "booking_id="+id)
	s.afterStatus(ctx, events.BookingCancelled, b)
	return b, nil
}

// Complete marks a confirmed booking as done; route owner only.
func (s *BookingService) Complete(ctx context.Context, actor domain.Actor, id string) (models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	p, err := resolveParties(ctx, s.routes, actor, b)
	if err != nil {
		return models.Booking{}, err
	}
	if !p.Owner && !actor.IsAdmin() {
		return models.Booking{}, forbidden(domain.ErrNotOwner)
	}
	if b.Status != models.BookingConfirmed && !b.Status.Final() {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Err: domain.ErrBookingNotActive}
	}
	b, err = s.bookings.UpdateStatus(ctx, id,
		[]models.BookingStatus{models.BookingConfirmed}, models.BookingCompleted, clock(s.now)())
	if err != nil {
		return models.Booking{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "bookings", events.BookingCompleted, "booking_id="+id)
	s.afterStatus(ctx, events.BookingCompleted, b)
	return b, nil
}

// MarkPayment records the payment state reported by the passenger, owner or admin.
func (s *BookingService) MarkPayment(ctx context.Context, actor domain.Actor, id string, status models.PaymentStatus, method string) (models.Booking, error) {
	switch status {
	case models.PaymentPending, models.PaymentPaid, models.PaymentFailed, models.PaymentRefunded:
	default:
		return models.Booking{}, domain.ValidationError{Field: "payment_status", Msg: "must be one of: Pending Paid Failed Refunded"}
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return models.Booking{}, err
	}
	return s.bookings.UpdatePayment(ctx, id, status, strings.ToLower(utils.TrimOrEmpty(method)), clock(s.now)())
}

// Report stores the passenger's report on a booking.
func (s *BookingService) Report(ctx context.Context, actor domain.Actor, id, text string) (models.Booking, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Booking{}, domain.ValidationError{Field: "report", Msg: "is required"}
	}
	if len(text) > 4000 {
		return models.Booking{}, domain.ValidationError{Field: "report", Msg: "must be at most 4000"}
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if !actor.Is(b.PassengerEmail) {
		return models.Booking{}, forbidden(domain.ErrNotParticipant)
	}
	return s.bookings.SetReport(ctx, id, text, clock(s.now)())
}

// CancelExpired cancels Pending bookings nobody answered within the pending TTL.
func (s *BookingService) CancelExpired(ctx context.Context) (int, error) {
	now := clock(s.now)()
	expired, err := s.bookings.CancelStalePending(ctx, now.Add(-s.pendingTTL), now)
	if err != nil {
		return 0, err
	}
	for _, b := range expired {
		s.afterStatus(ctx, events.BookingExpired, b)
	}
	return len(expired), nil
}

// CompleteFinished completes Confirmed bookings whose route has arrived.
func (s *BookingService) CompleteFinished(ctx context.Context) (int, error) {
	done, err := s.bookings.CompleteFinished(ctx, clock(s.now)())
	if err != nil {
		return 0, err
	}
	for _, b := range done {
		s.publish(ctx, events.BookingCompleted, b)
	}
	return len(done), nil
}

// ResponseLinks builds the signed confirm/reject URLs for a booking.
func (s *BookingService) ResponseLinks(bookingID string) (models.ResponseLinks, error) {
	if s.signer == nil {
		return models.ResponseLinks{}, nil
	}
	confirm, err := s.responseURL(bookingID, auth.ActionConfirm)
	if err != nil {
		return models.ResponseLinks{}, err
	}
	reject, err := s.responseURL(bookingID, auth.ActionReject)
	if err != nil {
		return models.ResponseLinks{}, err
	}
	return models.ResponseLinks{Confirm: confirm, Reject: reject}, nil
}

func (s *BookingService) responseURL(bookingID, action string) (string, error) {
	token, err := s.signer.SignResponse(bookingID, action)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("bookingId", bookingID)
	q.Set("action", action)
	q.Set("token", token)
	return s.baseURL + "/api/booking-response?" + q.Encode(), nil
}

func (s *BookingService) notifyOwner(ctx context.Context, route models.Route, res models.BookingResult) {
	if s.notifier == nil {
		return
	}
	owner, err := s.profiles.Get(ctx, route.OwnerEmail)
	if err != nil {
		utils.LogError(utils.RequestID(ctx), "bookings", "notify_owner", err)
		return
	}
	// Only a pending booking can still be answered.
	var links models.ResponseLinks
	if res.Booking.Status == models.BookingPending {
		links, err = s.ResponseLinks(res.Booking.ID)
		if err != nil {
			utils.LogError(utils.RequestID(ctx), "bookings", "sign_links", err)
			return
		}
	}
	s.notifier.NotifyBookingRequest(ctx, owner, route, res, links)
}

// afterStatus publishes the event, broadcasts the new status and tells the passenger.
func (s *BookingService) afterStatus(ctx context.Context, key string, b models.Booking) {
	s.after(ctx, key, b, func(ctx context.Context) {
		if s.live != nil {
			s.live.Publish(b.ID, tracking.EventStatus, b)
		}
		if s.notifier == nil || b.RouteID == "" {
			return
		}
		route, err := s.routes.GetByID(ctx, b.RouteID)
		if err != nil {
			return
		}
		passenger, err := s.profiles.Get(ctx, b.PassengerEmail)
		if err != nil {
			return
		}
		s.notifier.NotifyBookingStatus(ctx, passenger, route, b)
	})
}

// after runs the event publish and extra side effects off the request path.
func (s *BookingService) after(ctx context.Context, key string, b models.Booking, extra func(context.Context)) {
	detached := utils.WithRequestID(context.Background(), utils.RequestID(ctx))
	d := s.dispatch
	if d == nil {
		d = goDispatch
	}
	d(func() {
		s.publish(detached, key, b)
		if extra != nil {
			extra(detached)
		}
	})
}

func (s *BookingService) publish(ctx context.Context, key string, b models.Booking) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishBooking(ctx, key, b); err != nil {
		utils.LogError(utils.RequestID(ctx), "events", key, err)
	}
}
