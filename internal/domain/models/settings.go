package models

import "time"

// Settings is the singleton site configuration document.
type Settings struct {
	LogoURL                string    `json:"logo_url"`
	BackgroundVideoURL     string    `json:"background_video_url"`
	BackgroundVideoVisible bool      `json:"background_video_visible"`
	AdsEnabled             bool      `json:"ads_enabled"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Visitors holds the visitor counters.
type Visitors struct {
	Total int64  `json:"total"`
	Today int64  `json:"today"`
	Day   string `json:"day"`
}
