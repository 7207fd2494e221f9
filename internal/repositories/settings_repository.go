package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carpool/internal/domain/models"
)

const settingsRowID = 1

// SettingsRepository stores the singleton site_settings row.
type SettingsRepository struct {
	DB *sql.DB
}

func (r SettingsRepository) db() *sql.DB {
	return connOr(r.DB)
}

// Get returns the stored settings, or defaults when the row is missing.
func (r SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	var s models.Settings
	err := r.db().QueryRowContext(ctx, `
		SELECT logo_url, background_video_url, background_video_visible, ads_enabled, updated_at
		FROM site_settings WHERE id = ?`, settingsRowID).
		Scan(&s.LogoURL, &s.BackgroundVideoURL, &s.BackgroundVideoVisible, &s.AdsEnabled, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Settings{BackgroundVideoVisible: true}, nil
		}
		return models.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

func (r SettingsRepository) Save(ctx context.Context, s models.Settings) error {
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO site_settings (id, logo_url, background_video_url, background_video_visible, ads_enabled, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			logo_url = VALUES(logo_url),
			background_video_url = VALUES(background_video_url),
			background_video_visible = VALUES(background_video_visible),
			ads_enabled = VALUES(ads_enabled),
			updated_at = VALUES(updated_at)`,
		settingsRowID, s.LogoURL, s.BackgroundVideoURL, s.BackgroundVideoVisible, s.AdsEnabled, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
