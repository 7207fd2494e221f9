package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/services/ports"
	"carpool/internal/utils"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput turns validator errors into a domain.ValidationError naming the first bad field.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.ValidationError{Field: toSnake(fe.Field()), Msg: describeTag(fe), Err: err}
	}
	return domain.ValidationError{Msg: err.Error(), Err: err}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must match " + fe.Param()
	case "nefield":
		return "must differ from " + toSnake(fe.Param())
	case "latitude", "longitude":
		return "must be a valid " + fe.Tag()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 && (s[i-1] >= 'a' && s[i-1] <= 'z' || s[i-1] >= '0' && s[i-1] <= '9') {
				b.WriteByte('_')
			}
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// dispatcher runs side effects (notifications, events) after the ledger write.
type dispatcher func(func())

func goDispatch(f func()) { go f() }

func clock(now func() time.Time) func() time.Time {
	if now != nil {
		return now
	}
	return utils.NowUTC
}

// bookingParties resolves how the actor relates to a booking.
type bookingParties struct {
	Route     models.Route
	Owner     bool
	Passenger bool
}

func resolveParties(ctx context.Context, routes ports.RouteRepo, actor domain.Actor, b models.Booking) (bookingParties, error) {
	p := bookingParties{Passenger: actor.Is(b.PassengerEmail)}
	if b.RouteID != "" {
		route, err := routes.GetByID(ctx, b.RouteID)
		if err != nil && !domain.IsNotFound(err) {
			return p, err
		}
		p.Route = route
		p.Owner = err == nil && actor.Is(route.OwnerEmail)
	}
	return p, nil
}

func forbidden(err error) error {
	return domain.ForbiddenError{Err: err}
}
