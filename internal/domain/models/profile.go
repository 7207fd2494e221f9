package models

import "time"

// Profile is a user record keyed by email.
type Profile struct {
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Mobile         string     `json:"mobile"`
	MobileVerified bool       `json:"mobile_verified"`
	Role           string     `json:"role"`
	Vehicle        string     `json:"vehicle"`
	PlanExpiry     *time.Time `json:"plan_expiry,omitempty"`
	ReferralCode   string     `json:"referral_code"`
	ReferredBy     string     `json:"referred_by,omitempty"`
	TelegramChatID *int64     `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PlanActive reports whether the owner plan covers the given day. No plan means no restriction.
func (p Profile) PlanActive(day time.Time) bool {
	if p.PlanExpiry == nil {
		return true
	}
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return !p.PlanExpiry.Before(start)
}

// ProfileInput carries the self-editable fields of a profile.
type ProfileInput struct {
	Name           string `validate:"required,max=255"`
	Mobile         string `validate:"omitempty,max=32"`
	Role           string `validate:"omitempty,oneof=owner passenger admin"`
	Vehicle        string `validate:"max=255"`
	TelegramChatID *int64
}
