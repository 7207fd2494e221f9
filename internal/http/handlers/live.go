package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/utils"
)

type locationRequest struct {
	Role string   `json:"role"`
	Lat  *float64 `json:"lat" binding:"required"`
	Lon  *float64 `json:"lon" binding:"required"`
}

func (h *Handler) UpdateLocation(c *gin.Context) {
	var req locationRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	pos, err := h.live.UpdateLocation(c.Request.Context(), actor(c), c.Param("id"), req.Role, *req.Lat, *req.Lon)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, pos)
}

// LiveBooking upgrades to a websocket streaming location, chat and status events.
func (h *Handler) LiveBooking(c *gin.Context) {
	a := actor(c)
	id := c.Param("id")
	if err := h.live.CanWatch(c.Request.Context(), a, id); err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, id, a.Email); err != nil {
		// The upgrader has already written the HTTP error.
		utils.LogError(utils.RequestID(c.Request.Context()), "tracking", "upgrade", err)
	}
}

type messageRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *Handler) PostMessage(c *gin.Context) {
	var req messageRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	m, err := h.live.PostMessage(c.Request.Context(), actor(c), c.Param("id"), req.Body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListMessages(c *gin.Context) {
	msgs, err := h.live.ListMessages(c.Request.Context(), actor(c), c.Param("id"), parseLimit(c, 200))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}
