package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/services"
)

type settingsRequest struct {
	LogoURL                string `json:"logo_url"`
	BackgroundVideoURL     string `json:"background_video_url"`
	BackgroundVideoVisible *bool  `json:"background_video_visible"`
	AdsEnabled             bool   `json:"ads_enabled"`
}

func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	visible := true
	if req.BackgroundVideoVisible != nil {
		visible = *req.BackgroundVideoVisible
	}
	s, err := h.settings.Update(c.Request.Context(), actor(c), services.SettingsInput{
		LogoURL:                req.LogoURL,
		BackgroundVideoURL:     req.BackgroundVideoURL,
		BackgroundVideoVisible: visible,
		AdsEnabled:             req.AdsEnabled,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) RecordVisit(c *gin.Context) {
	v, err := h.settings.RecordVisit(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) Visitors(c *gin.Context) {
	v, err := h.settings.Visitors(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
