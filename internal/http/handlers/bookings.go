package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/services"
	"carpool/internal/utils"
)

type bookRequest struct {
	Travelers      FlexInt `json:"travelers"`
	PassengerName  string  `json:"passenger_name"`
	PassengerPhone string  `json:"passenger_phone"`
	PaymentMethod  string  `json:"payment_method"`
	ReturnDate     string  `json:"return_date"`
}

// BookRoute answers 201 for a new booking and 200 when it topped up the
// caller's existing booking on the route.
func (h *Handler) BookRoute(c *gin.Context) {
	var req bookRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	in := services.BookInput{
		Travelers:      req.Travelers.Int(),
		PassengerName:  req.PassengerName,
		PassengerPhone: req.PassengerPhone,
		PaymentMethod:  req.PaymentMethod,
	}
	if s := strings.TrimSpace(req.ReturnDate); s != "" {
		t, err := utils.ParseDate(s)
		if err != nil {
			RespondDomainError(c, domain.ValidationError{Field: "return_date", Msg: "must be YYYY-MM-DD"})
			return
		}
		in.ReturnDate = &t
	}

	res, err := h.bookings.Book(c.Request.Context(), actor(c), c.Param("id"), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	status := http.StatusCreated
	if res.ToppedUp {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

func (h *Handler) MyBookings(c *gin.Context) {
	bookings, err := h.bookings.ListMine(c.Request.Context(), actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.bookings.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type topUpRequest struct {
	Seats     FlexInt `json:"seats"`
	Travelers FlexInt `json:"travelers"`
}

func (h *Handler) TopUpBooking(c *gin.Context) {
	var req topUpRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	seats := req.Seats.Int()
	if seats == 0 {
		seats = req.Travelers.Int()
	}
	b, err := h.bookings.TopUp(c.Request.Context(), actor(c), c.Param("id"), seats)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	b, err := h.bookings.Cancel(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) CompleteBooking(c *gin.Context) {
	b, err := h.bookings.Complete(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type paymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

func (h *Handler) UpdatePayment(c *gin.Context) {
	var req paymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	status := models.PaymentStatus(normalizeTitle(req.PaymentStatus))
	b, err := h.bookings.MarkPayment(c.Request.Context(), actor(c), c.Param("id"), status, req.PaymentMethod)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type reportRequest struct {
	Report string `json:"report" binding:"required"`
}

func (h *Handler) UpdateReport(c *gin.Context) {
	var req reportRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bookings.Report(c.Request.Context(), actor(c), c.Param("id"), req.Report)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// BookingResponse is the target of the confirm/reject links sent to owners.
func (h *Handler) BookingResponse(c *gin.Context) {
	id := c.Query("bookingId")
	action := c.Query("action")
	b, err := h.bookings.Respond(c.Request.Context(), id, action, c.Query("token"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("booking %s", strings.ToLower(string(b.Status))),
		"booking": b,
	})
}

func (h *Handler) BookingReceipt(c *gin.Context) {
	pdf, filename, err := h.receipts.Receipt(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// normalizeTitle turns "paid" or "PAID" into "Paid".
func normalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
