package models

import "time"

// Route is an owner-published ride offer.
type Route struct {
	ID             string    `json:"id"`
	OwnerEmail     string    `json:"owner_email"`
	OwnerName      string    `json:"owner_name"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	TravelDate     string    `json:"travel_date"`    // YYYY-MM-DD
	DepartureTime  string    `json:"departure_time"` // HH:MM
	ArrivalTime    string    `json:"arrival_time"`   // HH:MM
	AvailableSeats int       `json:"available_seats"`
	Price          int64     `json:"price"`
	Vehicle        string    `json:"vehicle"`
	PickupPoints   []string  `json:"pickup_points"`
	DropoffPoints  []string  `json:"dropoff_points"`
	Promoted       bool      `json:"promoted"`
	Rating         float64   `json:"rating"`
	Origin         *GeoPoint `json:"origin,omitempty"`
	Destination    *GeoPoint `json:"destination,omitempty"`
	DistanceKm     float64   `json:"distance_km,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// RouteInput carries the editable fields of a route.
type RouteInput struct {
	From           string    `validate:"required"`
	To             string    `validate:"required,nefield=From"`
	TravelDate     string    `validate:"required,datetime=2006-01-02"`
	DepartureTime  string    `validate:"required,datetime=15:04"`
	ArrivalTime    string    `validate:"required,datetime=15:04"`
	AvailableSeats int       `validate:"min=1,max=50"`
	Price          int64     `validate:"min=0"`
	Vehicle        string    `validate:"max=255"`
	PickupPoints   []string  `validate:"dive,max=255"`
	DropoffPoints  []string  `validate:"dive,max=255"`
	Origin         *GeoPoint `validate:"omitempty"`
	Destination    *GeoPoint `validate:"omitempty"`
}

// RouteFilter narrows route search; empty fields match everything.
type RouteFilter struct {
	From       string
	To         string
	TravelDate string
}

// Availability is the seat picture of one route.
type Availability struct {
	RouteID        string `json:"route_id"`
	AvailableSeats int    `json:"available_seats"`
	Booked         int    `json:"booked"`
	Remaining      int    `json:"remaining"`
}

// RouteOverview is a route with its availability, used by owner dashboards.
type RouteOverview struct {
	Route        Route        `json:"route"`
	Availability Availability `json:"availability"`
}
