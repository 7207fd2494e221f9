package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

func TestSettingsUpdate_AdminOnly(t *testing.T) {
	repo := new(settingsRepoMock)
	svc := NewSettingsService(repo, new(visitorsMock))

	_, err := svc.Update(context.Background(), ownerActor, SettingsInput{})

	assert.True(t, domain.IsForbidden(err))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSettingsUpdate_RejectsRelativeURL(t *testing.T) {
	svc := NewSettingsService(new(settingsRepoMock), new(visitorsMock))

	_, err := svc.Update(context.Background(), adminActor, SettingsInput{LogoURL: "/img/logo.png"})

	assert.True(t, domain.IsValidation(err))
}

func TestSettingsUpdate_Saves(t *testing.T) {
	repo := new(settingsRepoMock)
	svc := NewSettingsService(repo, new(visitorsMock))
	svc.now = fixedClock
	ctx := context.Background()
	want := models.Settings{
		LogoURL:                "https://cdn.example.com/logo.png",
		BackgroundVideoVisible: false,
		AdsEnabled:             true,
		UpdatedAt:              testNow,
	}
	repo.On("Save", ctx, want).Return(nil)

	got, err := svc.Update(ctx, adminActor, SettingsInput{LogoURL: " https://cdn.example.com/logo.png ", AdsEnabled: true})

	require.NoError(t, err)
	assert.Equal(t, want, got)
	repo.AssertExpectations(t)
}

func TestSettingsRecordVisit_CountsToday(t *testing.T) {
	visitors := new(visitorsMock)
	svc := NewSettingsService(new(settingsRepoMock), visitors)
	svc.now = fixedClock
	ctx := context.Background()
	day := utils.FormatDate(testNow)
	visitors.On("Incr", ctx, day).Return(models.Visitors{Total: 10, Today: 3, Day: day}, nil)

	got, err := svc.RecordVisit(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Today)
	visitors.AssertExpectations(t)
}
