package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/services/ports"
	"carpool/internal/utils"
)

const referralAttempts = 5

type ProfileService struct {
	profiles ports.ProfileRepo
	now      func() time.Time
	newCode  func() string
}

func NewProfileService(profiles ports.ProfileRepo) *ProfileService {
	return &ProfileService{profiles: profiles, now: utils.NowUTC, newCode: referralCode}
}

// referralCode is eight upper-case hex characters from a random uuid.
func referralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *ProfileService) Get(ctx context.Context, email string) (models.Profile, error) {
	return s.profiles.Get(ctx, email)
}

func (s *ProfileService) List(ctx context.Context, actor domain.Actor) ([]models.Profile, error) {
	if !actor.IsAdmin() {
		return nil, forbidden(domain.ErrRoleRequired)
	}
	return s.profiles.List(ctx)
}

// Upsert creates the actor's profile on first call and updates it afterwards.
func (s *ProfileService) Upsert(ctx context.Context, actor domain.Actor, in models.ProfileInput) (models.Profile, error) {
	in.Name = utils.NormalizeSpace(in.Name)
	in.Mobile = utils.TrimOrEmpty(in.Mobile)
	in.Vehicle = utils.NormalizeSpace(in.Vehicle)
	in.Role = strings.ToLower(utils.TrimOrEmpty(in.Role))
	if err := validateInput(in); err != nil {
		return models.Profile{}, err
	}
	role := string(actor.Role)
	if in.Role != "" {
		role = in.Role
	}
	if role == "" {
		role = string(domain.RolePassenger)
	}
	if role == string(domain.RoleAdmin) && !actor.IsAdmin() {
		return models.Profile{}, forbidden(domain.ErrRoleRequired)
	}

	email := utils.NormalizeEmail(actor.Email)
	now := clock(s.now)()
	existing, err := s.profiles.Get(ctx, email)
	switch {
	case err == nil:
		if existing.Mobile != in.Mobile {
			existing.MobileVerified = false
		}
		existing.Name = in.Name
		existing.Mobile = in.Mobile
		existing.Role = role
		existing.Vehicle = in.Vehicle
		if in.TelegramChatID != nil {
			existing.TelegramChatID = in.TelegramChatID
		}
		existing.UpdatedAt = now
		if err := s.profiles.Update(ctx, existing); err != nil {
			return models.Profile{}, err
		}
		utils.LogEvent(utils.RequestID(ctx), "profiles", "update", "email="+email)
		return existing, nil
	case domain.IsNotFound(err):
	default:
		return models.Profile{}, err
	}

	p := models.Profile{
		Email:          email,
		Name:           in.Name,
		Mobile:         in.Mobile,
		Role:           role,
		Vehicle:        in.Vehicle,
		TelegramChatID: in.TelegramChatID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for attempt := 0; ; attempt++ {
		p.ReferralCode = s.newCode()
		err = s.profiles.Create(ctx, p)
		if !errors.Is(err, domain.ErrDuplicateReferralCode) || attempt+1 >= referralAttempts {
			break
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateReferralCode) {
			return models.Profile{}, domain.InternalError{Msg: "could not allocate referral code", Err: err}
		}
		return models.Profile{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "profiles", "create", "email="+email)
	return p, nil
}

func (s *ProfileService) VerifyMobile(ctx context.Context, actor domain.Actor) (models.Profile, error) {
	p, err := s.profiles.Get(ctx, actor.Email)
	if err != nil {
		return models.Profile{}, err
	}
	if p.Mobile == "" {
		return models.Profile{}, domain.ValidationError{Field: "mobile", Msg: "is required"}
	}
	if err := s.profiles.SetMobileVerified(ctx, p.Email, clock(s.now)()); err != nil {
		return models.Profile{}, err
	}
	p.MobileVerified = true
	return p, nil
}

func (s *ProfileService) SetRole(ctx context.Context, actor domain.Actor, email, role string) (models.Profile, error) {
	if !actor.IsAdmin() {
		return models.Profile{}, forbidden(domain.ErrRoleRequired)
	}
	email = utils.NormalizeEmail(email)
	r, ok := domain.ParseRole(role)
	if !ok {
		return models.Profile{}, domain.ValidationError{Field: "role", Msg: "must be one of: owner passenger admin"}
	}
	if err := s.profiles.SetRole(ctx, email, r, clock(s.now)()); err != nil {
		return models.Profile{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "profiles", "set_role", "email="+email+" role="+string(r))
	return s.profiles.Get(ctx, email)
}

// SetPlanExpiry sets or clears (empty date) an owner's plan expiry.
func (s *ProfileService) SetPlanExpiry(ctx context.Context, actor domain.Actor, email, date string) (models.Profile, error) {
	if !actor.IsAdmin() {
		return models.Profile{}, forbidden(domain.ErrRoleRequired)
	}
	email = utils.NormalizeEmail(email)
	var expiry *time.Time
	if date = strings.TrimSpace(date); date != "" {
		t, err := utils.ParseDate(date)
		if err != nil {
			return models.Profile{}, domain.ValidationError{Field: "plan_expiry", Msg: "must be YYYY-MM-DD"}
		}
		expiry = &t
	}
	if err := s.profiles.SetPlanExpiry(ctx, email, expiry, clock(s.now)()); err != nil {
		return models.Profile{}, err
	}
	return s.profiles.Get(ctx, email)
}

// ApplyReferral records who referred the actor. It can only be set once.
func (s *ProfileService) ApplyReferral(ctx context.Context, actor domain.Actor, code string) (models.Profile, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return models.Profile{}, domain.ValidationError{Field: "code", Msg: "is required"}
	}
	me, err := s.profiles.Get(ctx, actor.Email)
	if err != nil {
		return models.Profile{}, err
	}
	if me.ReferralCode == code {
		return models.Profile{}, domain.ValidationError{Field: "code", Msg: "cannot use your own referral code"}
	}
	if _, err := s.profiles.GetByReferralCode(ctx, code); err != nil {
		if domain.IsNotFound(err) {
			return models.Profile{}, domain.ValidationError{Field: "code", Msg: "unknown referral code", Err: err}
		}
		return models.Profile{}, err
	}
	now := clock(s.now)()
	if err := s.profiles.SetReferredBy(ctx, me.Email, code, now); err != nil {
		return models.Profile{}, err
	}
	me.ReferredBy = code
	me.UpdatedAt = now
	return me, nil
}
