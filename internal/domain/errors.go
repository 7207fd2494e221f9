package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRouteNotFound   = errors.New("route not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrProfileNotFound = errors.New("profile not found")
)

var (
	ErrNotEnoughSeats     = errors.New("not enough seats left on this route")
	ErrRouteOverlap       = errors.New("route overlaps another route of this owner")
	ErrDailyRouteLimit    = errors.New("daily route limit reached")
	ErrSeatsBelowBooked   = errors.New("seat count is below seats already booked")
	ErrBookingNotPending  = errors.New("booking is not pending")
	ErrBookingFinal       = errors.New("booking is already cancelled or completed")
	ErrBookingNotActive   = errors.New("booking is not confirmed")
	ErrReferralAlreadySet = errors.New("referrer already set")
)

// ErrDuplicateReferralCode is returned when a generated referral code is already taken.
var ErrDuplicateReferralCode = errors.New("referral code already used")

var (
	ErrNotOwner       = errors.New("route belongs to another owner")
	ErrNotParticipant = errors.New("not a participant of this booking")
	ErrPlanExpired    = errors.New("owner plan has expired")
	ErrRoleRequired   = errors.New("role not allowed")
)

// DomainError keeps backward compatibility for generic codes.
type DomainError struct {
	Code string
	Err  error
}

func (e DomainError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	if e.Code == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e DomainError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil && e.Resource != "":
		return fmt.Sprintf("%s conflict: %v", e.Resource, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// ForbiddenError is returned when the caller is authenticated but may not act on the resource.
type ForbiddenError struct {
	Err error
}

func (e ForbiddenError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "forbidden"
}

func (e ForbiddenError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
