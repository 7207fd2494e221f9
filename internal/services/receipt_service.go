package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/services/ports"
	"carpool/internal/utils"
)

// ReceiptService renders booking receipts as PDF.
type ReceiptService struct {
	routes   ports.RouteRepo
	bookings ports.BookingRepo
	now      func() time.Time
}

func NewReceiptService(routes ports.RouteRepo, bookings ports.BookingRepo) *ReceiptService {
	return &ReceiptService{routes: routes, bookings: bookings, now: utils.NowUTC}
}

type receiptData struct {
	Booking models.Booking
	Route   models.Route
	Issued  time.Time
}

// Receipt returns the PDF bytes and a download filename.
func (s *ReceiptService) Receipt(ctx context.Context, actor domain.Actor, id string) ([]byte, string, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	p, err := resolveParties(ctx, s.routes, actor, b)
	if err != nil {
		return nil, "", err
	}
	if !p.Passenger && !p.Owner && !actor.IsAdmin() {
		return nil, "", forbidden(domain.ErrNotParticipant)
	}
	utils.LogEvent(utils.RequestID(ctx), "receipts", "generate", "booking_id="+id)
	return buildReceiptPDF(receiptData{Booking: b, Route: p.Route, Issued: clock(s.now)()})
}

func buildReceiptPDF(d receiptData) ([]byte, string, error) {
	b, r := d.Booking, d.Route
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Receipt no : "+receiptNumber(b.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued     : "+utils.FormatDateTime(d.Issued))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Passenger")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"Name       : " + safe(b.PassengerName, "-"),
		"Email      : " + safe(b.PassengerEmail, "-"),
		"Mobile     : " + safe(b.PassengerPhone, "-"),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Trip")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	lines = []string{
		"Route      : " + safe(b.Destination, "-"),
		"Departure  : " + utils.FormatDate(b.DepartureDate) + " " + utils.FormatClock(b.DepartureDate),
		"Arrival    : " + safe(r.ArrivalTime, "-"),
		"Driver     : " + safe(r.OwnerName, "-"),
		"Vehicle    : " + safe(r.Vehicle, "-"),
		"Pickup     : " + safe(strings.Join(r.PickupPoints, ", "), "-"),
		"Drop-off   : " + safe(strings.Join(r.DropoffPoints, ", "), "-"),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Payment")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	if b.Travelers > 0 {
		pdf.Cell(0, 7, fmt.Sprintf("Seats      : %d x %s", b.Travelers, utils.FormatAmount(b.Amount/int64(b.Travelers))))
		pdf.Ln(7)
	}
	pdf.Cell(0, 7, "Status     : "+string(b.Status)+" / payment "+string(b.PaymentStatus))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Method     : "+safe(b.PaymentMethod, "-"))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Total: "+utils.FormatAmount(b.Amount))
	pdf.Ln(12)

	if b.Status == models.BookingCancelled {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "This booking was cancelled. Seats have been released.", "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("RECEIPT_%s_%s.pdf", receiptNumber(b.ID), safeFilenamePart(b.PassengerName))
	return buf.Bytes(), filename, nil
}

func receiptNumber(id string) string {
	id = strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(id) > 10 {
		id = id[:10]
	}
	return "RCP-" + safe(id, "NA")
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
