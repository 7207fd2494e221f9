package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

var profileCols = []string{
	"email", "name", "mobile", "mobile_verified", "role", "vehicle",
	"plan_expiry", "referral_code", "referred_by", "telegram_chat_id", "created_at", "updated_at",
}

func TestProfileGet_ParsesPlanExpiry(t *testing.T) {
	db, mock := newMock(t)
	repo := ProfileRepository{DB: db}

	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE email = \?`).WithArgs("owner@example.com").
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow(
			"owner@example.com", "Owner", "9000000000", true, "owner", "Swift",
			time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), "AB12CD34", nil, int64(4242), fixedNow, fixedNow,
		))

	p, err := repo.Get(context.Background(), " Owner@Example.com ")

	require.NoError(t, err)
	require.NotNil(t, p.PlanExpiry)
	assert.Equal(t, "2026-12-31", p.PlanExpiry.Format("2006-01-02"))
	assert.Empty(t, p.ReferredBy)
	assert.True(t, p.MobileVerified)
	require.NotNil(t, p.TelegramChatID)
	assert.Equal(t, int64(4242), *p.TelegramChatID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileCreate_DuplicateReferralCode(t *testing.T) {
	db, mock := newMock(t)
	repo := ProfileRepository{DB: db}

	mock.ExpectExec(`INSERT INTO profiles`).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE email = \?`).WillReturnRows(sqlmock.NewRows(profileCols))

	err := repo.Create(context.Background(), models.Profile{Email: "new@example.com", ReferralCode: "TAKEN123"})

	assert.True(t, errors.Is(err, domain.ErrDuplicateReferralCode))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileSetReferredBy_OnlyOnce(t *testing.T) {
	db, mock := newMock(t)
	repo := ProfileRepository{DB: db}

	mock.ExpectExec(`UPDATE profiles SET referred_by = \?`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE email = \?`).
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow(
			"rider@example.com", "Rider", "", false, "passenger", "",
			nil, "ZZ99YY88", "AB12CD34", nil, fixedNow, fixedNow,
		))

	err := repo.SetReferredBy(context.Background(), "rider@example.com", "QQ11WW22", fixedNow)

	assert.True(t, errors.Is(err, domain.ErrReferralAlreadySet))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileSetRole_UnknownProfile(t *testing.T) {
	db, mock := newMock(t)
	repo := ProfileRepository{DB: db}

	mock.ExpectExec(`UPDATE profiles SET role = \?`).
		WithArgs("owner", fixedNow, "ghost@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetRole(context.Background(), "ghost@example.com", domain.RoleOwner, fixedNow)

	assert.True(t, domain.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsGet_DefaultsWhenMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := SettingsRepository{DB: db}

	mock.ExpectQuery(`FROM site_settings WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"logo_url", "background_video_url", "background_video_visible", "ads_enabled", "updated_at"}))

	s, err := repo.Get(context.Background())

	require.NoError(t, err)
	assert.True(t, s.BackgroundVideoVisible)
	assert.NoError(t, mock.ExpectationsWereMet())
}
