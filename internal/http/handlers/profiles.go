package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain/models"
)

type profileRequest struct {
	Name           string `json:"name" binding:"required"`
	Mobile         string `json:"mobile"`
	Role           string `json:"role"`
	Vehicle        string `json:"vehicle"`
	TelegramChatID *int64 `json:"telegram_chat_id"`
}

func (h *Handler) GetMyProfile(c *gin.Context) {
	p, err := h.profiles.Get(c.Request.Context(), actor(c).Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpsertMyProfile(c *gin.Context) {
	var req profileRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	p, err := h.profiles.Upsert(c.Request.Context(), actor(c), models.ProfileInput{
		Name:           req.Name,
		Mobile:         req.Mobile,
		Role:           req.Role,
		Vehicle:        req.Vehicle,
		TelegramChatID: req.TelegramChatID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) VerifyMobile(c *gin.Context) {
	p, err := h.profiles.VerifyMobile(c.Request.Context(), actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type referralRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) ApplyReferral(c *gin.Context) {
	var req referralRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	p, err := h.profiles.ApplyReferral(c.Request.Context(), actor(c), req.Code)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ListProfiles(c *gin.Context) {
	list, err := h.profiles.List(c.Request.Context(), actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handler) SetProfileRole(c *gin.Context) {
	var req roleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	p, err := h.profiles.SetRole(c.Request.Context(), actor(c), c.Param("email"), req.Role)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// planRequest clears the plan expiry when PlanExpiry is empty.
type planRequest struct {
	PlanExpiry string `json:"plan_expiry"`
}

func (h *Handler) SetProfilePlan(c *gin.Context) {
	var req planRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	p, err := h.profiles.SetPlanExpiry(c.Request.Context(), actor(c), c.Param("email"), req.PlanExpiry)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
