package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

// TelegramNotifier messages owners about booking requests and passengers about
// status changes. With an empty token it only logs.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	if token == "" {
		slog.Warn("telegram bot token is empty, notifications disabled")
		return &TelegramNotifier{}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot}, nil
}

func (n *TelegramNotifier) NotifyBookingRequest(ctx context.Context, owner models.Profile, route models.Route, res models.BookingResult, links models.ResponseLinks) {
	n.send(ctx, owner.TelegramChatID, RequestText(route, res, links))
}

func (n *TelegramNotifier) NotifyBookingStatus(ctx context.Context, passenger models.Profile, route models.Route, b models.Booking) {
	n.send(ctx, passenger.TelegramChatID, StatusText(route, b))
}

// RequestText renders the owner message for a new booking or a top-up.
func RequestText(route models.Route, res models.BookingResult, links models.ResponseLinks) string {
	b := res.Booking
	var sb strings.Builder
	if res.ToppedUp {
		fmt.Fprintf(&sb, "*Seats added to a booking*\n\n%s added %d seat(s), now %d in total.\n", b.PassengerName, res.Added, b.Travelers)
	} else {
		fmt.Fprintf(&sb, "*New booking request*\n\n%s booked %d seat(s).\n", b.PassengerName, b.Travelers)
	}
	fmt.Fprintf(&sb, "Route: %s to %s\n", route.From, route.To)
	fmt.Fprintf(&sb, "Departure: %s %s\n", route.TravelDate, route.DepartureTime)
	fmt.Fprintf(&sb, "Amount: %s\n", utils.FormatAmount(b.Amount))
	if b.PassengerPhone != "" {
		fmt.Fprintf(&sb, "Phone: %s\n", b.PassengerPhone)
	}
	if b.Status == models.BookingPending && links.Confirm != "" {
		fmt.Fprintf(&sb, "\n[Confirm](%s) | [Reject](%s)", links.Confirm, links.Reject)
	}
	return sb.String()
}

// StatusText renders the passenger message for a booking status change.
func StatusText(route models.Route, b models.Booking) string {
	var head string
	switch b.Status {
	case models.BookingConfirmed:
		head = "*Booking confirmed*"
	case models.BookingCancelled:
		head = "*Booking cancelled*"
	case models.BookingCompleted:
		head = "*Trip completed*"
	default:
		head = "*Booking " + strings.ToLower(string(b.Status)) + "*"
	}
	return fmt.Sprintf("%s\n\nRoute: %s to %s\nDeparture: %s %s\nSeats: %d",
		head, route.From, route.To, route.TravelDate, route.DepartureTime, b.Travelers)
}

func (n *TelegramNotifier) send(ctx context.Context, chatID *int64, text string) {
	if n.bot == nil {
		slog.Debug("notification skipped (bot disabled)", "text", text)
		return
	}
	if chatID == nil {
		slog.Debug("notification skipped (no chat_id)")
		return
	}
	if err := ctx.Err(); err != nil {
		slog.Debug("notification skipped (context cancelled)", "chat_id", *chatID)
		return
	}

	msg := tgbotapi.NewMessage(*chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := n.bot.Send(msg); err != nil {
		slog.Error("failed to send telegram notification", "chat_id", *chatID, "error", err)
	}
}
