package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
	BookingCompleted BookingStatus = "Completed"
)

// Final reports whether no further transitions are allowed.
func (s BookingStatus) Final() bool {
	return s == BookingCancelled || s == BookingCompleted
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

// Booking is a passenger's reservation against a route.
type Booking struct {
	ID             string        `json:"id"`
	RouteID        string        `json:"route_id"`
	PassengerEmail string        `json:"passenger_email"`
	PassengerName  string        `json:"passenger_name"`
	PassengerPhone string        `json:"passenger_phone"`
	Destination    string        `json:"destination"`
	DepartureDate  time.Time     `json:"departure_date"`
	ReturnDate     *time.Time    `json:"return_date,omitempty"`
	Travelers      int           `json:"travelers"`
	Amount         int64         `json:"amount"`
	Status         BookingStatus `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	PaymentMethod  string        `json:"payment_method"`
	Driver         *GeoPoint     `json:"driver_location,omitempty"`
	Passenger      *GeoPoint     `json:"passenger_location,omitempty"`
	Report         string        `json:"report,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// BookingRequest is what a passenger asks for when booking a route.
type BookingRequest struct {
	RouteID        string
	PassengerEmail string `validate:"required,email"`
	PassengerName  string `validate:"required,max=255"`
	PassengerPhone string `validate:"max=32"`
	Travelers      int    `validate:"min=1"`
	PaymentMethod  string `validate:"omitempty,oneof=cash upi card wallet"`
	ReturnDate     *time.Time
}

// BookingResult tells whether a request created a booking or topped up an existing one.
type BookingResult struct {
	Booking  Booking `json:"booking"`
	ToppedUp bool    `json:"topped_up"`
	Added    int     `json:"added"`
}

// ResponseLinks are the signed URLs an owner follows to answer a booking request.
type ResponseLinks struct {
	Confirm string `json:"confirm"`
	Reject  string `json:"reject"`
}
