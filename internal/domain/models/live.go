package models

import "time"

// ChatMessage is a message exchanged on a booking between passenger and driver.
type ChatMessage struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"booking_id"`
	SenderEmail string    `json:"sender_email"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// LivePosition is one location update pushed to booking subscribers.
type LivePosition struct {
	BookingID  string    `json:"booking_id"`
	Role       string    `json:"role"` // driver | passenger
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Geohash    string    `json:"geohash"`
	DistanceKm *float64  `json:"distance_km,omitempty"`
	At         time.Time `json:"at"`
}
