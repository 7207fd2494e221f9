package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain/models"
)

type geoPayload struct {
	Lat float64 `json:"lat" binding:"latitude"`
	Lon float64 `json:"lon" binding:"longitude"`
}

func (g *geoPayload) point() *models.GeoPoint {
	if g == nil {
		return nil
	}
	return &models.GeoPoint{Lat: g.Lat, Lon: g.Lon}
}

type routeRequest struct {
	From           string      `json:"from" binding:"required"`
	To             string      `json:"to" binding:"required"`
	TravelDate     string      `json:"travel_date" binding:"required"`
	DepartureTime  string      `json:"departure_time" binding:"required"`
	ArrivalTime    string      `json:"arrival_time" binding:"required"`
	AvailableSeats FlexInt     `json:"available_seats"`
	Price          int64       `json:"price" binding:"gte=0"`
	Vehicle        string      `json:"vehicle"`
	PickupPoints   []string    `json:"pickup_points"`
	DropoffPoints  []string    `json:"dropoff_points"`
	Origin         *geoPayload `json:"origin"`
	Destination    *geoPayload `json:"destination"`
}

func (r routeRequest) input() models.RouteInput {
	return models.RouteInput{
		From:           r.From,
		To:             r.To,
		TravelDate:     r.TravelDate,
		DepartureTime:  r.DepartureTime,
		ArrivalTime:    r.ArrivalTime,
		AvailableSeats: r.AvailableSeats.Int(),
		Price:          r.Price,
		Vehicle:        r.Vehicle,
		PickupPoints:   r.PickupPoints,
		DropoffPoints:  r.DropoffPoints,
		Origin:         r.Origin.point(),
		Destination:    r.Destination.point(),
	}
}

// SearchRoutes lists routes, promoted first, filtered by ?from, ?to and ?date.
func (h *Handler) SearchRoutes(c *gin.Context) {
	routes, err := h.routes.Search(c.Request.Context(), models.RouteFilter{
		From:       c.Query("from"),
		To:         c.Query("to"),
		TravelDate: c.Query("date"),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}

func (h *Handler) GetRoute(c *gin.Context) {
	route, err := h.routes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (h *Handler) RouteAvailability(c *gin.Context) {
	av, err := h.routes.Availability(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, av)
}

func (h *Handler) CreateRoute(c *gin.Context) {
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	route, err := h.routes.Create(c.Request.Context(), actor(c), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

func (h *Handler) UpdateRoute(c *gin.Context) {
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	route, err := h.routes.Update(c.Request.Context(), actor(c), c.Param("id"), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

type promoteRequest struct {
	Promoted *bool `json:"promoted" binding:"required"`
}

func (h *Handler) PromoteRoute(c *gin.Context) {
	var req promoteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	route, err := h.routes.SetPromoted(c.Request.Context(), actor(c), c.Param("id"), *req.Promoted)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (h *Handler) RouteBookings(c *gin.Context) {
	bookings, err := h.routes.ListBookings(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// MyRoutes is the owner dashboard.
func (h *Handler) MyRoutes(c *gin.Context) {
	routes, err := h.routes.ListOwned(c.Request.Context(), actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}
