package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/services/ports"
	"carpool/internal/utils"
)

// SettingsInput carries the editable site settings.
type SettingsInput struct {
	LogoURL                string
	BackgroundVideoURL     string
	BackgroundVideoVisible bool
	AdsEnabled             bool
}

type SettingsService struct {
	settings ports.SettingsRepo
	visitors ports.VisitorCounter
	now      func() time.Time
}

func NewSettingsService(settings ports.SettingsRepo, visitors ports.VisitorCounter) *SettingsService {
	return &SettingsService{settings: settings, visitors: visitors, now: utils.NowUTC}
}

func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	return s.settings.Get(ctx)
}

func (s *SettingsService) Update(ctx context.Context, actor domain.Actor, in SettingsInput) (models.Settings, error) {
	if !actor.IsAdmin() {
		return models.Settings{}, forbidden(domain.ErrRoleRequired)
	}
	logo, err := cleanURL("logo_url", in.LogoURL)
	if err != nil {
		return models.Settings{}, err
	}
	video, err := cleanURL("background_video_url", in.BackgroundVideoURL)
	if err != nil {
		return models.Settings{}, err
	}
	out := models.Settings{
		LogoURL:                logo,
		BackgroundVideoURL:     video,
		BackgroundVideoVisible: in.BackgroundVideoVisible,
		AdsEnabled:             in.AdsEnabled,
		UpdatedAt:              clock(s.now)(),
	}
	if err := s.settings.Save(ctx, out); err != nil {
		return models.Settings{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "settings", "update", "by="+actor.Email)
	return out, nil
}

// RecordVisit counts one visit against today in the service timezone.
func (s *SettingsService) RecordVisit(ctx context.Context) (models.Visitors, error) {
	return s.visitors.Incr(ctx, s.today())
}

func (s *SettingsService) Visitors(ctx context.Context) (models.Visitors, error) {
	return s.visitors.Get(ctx, s.today())
}

func (s *SettingsService) today() string {
	return utils.FormatDate(clock(s.now)())
}

// cleanURL accepts empty values and absolute http(s) URLs.
func cleanURL(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", domain.ValidationError{Field: field, Msg: "must be an http(s) URL"}
	}
	return raw, nil
}
