package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/auth"
	intconfig "carpool/internal/config"
	"carpool/internal/domain/models"
	"carpool/internal/events"
	router "carpool/internal/http"
	"carpool/internal/http/handlers"
	"carpool/internal/migrations"
	"carpool/internal/notify"
	"carpool/internal/repositories"
	"carpool/internal/scheduler"
	"carpool/internal/services"
	"carpool/internal/tracking"
	"carpool/internal/utils"
)

// responseLinkTTL bounds how long an owner can act on a booking-response link.
const responseLinkTTL = 24 * time.Hour

type eventPublisher interface {
	PublishBooking(ctx context.Context, key string, b models.Booking) error
	Close() error
}

func main() {
	env := intconfig.LoadEnv()
	logger := utils.InitLogger(env.LogLevel)
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	utils.Location = env.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := intconfig.ConnectDB(ctx, env)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer intconfig.CloseDB()

	if err := migrations.Up(db); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	rdb, err := intconfig.ConnectRedis(ctx, env)
	if err != nil {
		logger.Warn("redis unavailable, visitor counters disabled", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var publisher eventPublisher = events.Nop{}
	if env.RabbitMQURL != "" {
		p, err := events.NewRabbitPublisher(env.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, booking events disabled", "error", err)
		} else {
			publisher = p
		}
	} else {
		logger.Warn("RABBITMQ_URL not set, booking events disabled")
	}
	defer publisher.Close()

	notifier, err := notify.NewTelegramNotifier(env.TelegramToken)
	if err != nil {
		logger.Warn("telegram unavailable, notifications disabled", "error", err)
		notifier, _ = notify.NewTelegramNotifier("")
	}

	tokens := auth.NewTokens(env.JWTSecret, responseLinkTTL)
	hub := tracking.NewHub(env.CORSOrigins)
	defer hub.Close()

	routeRepo := repositories.RouteRepository{DB: db}
	bookingRepo := repositories.BookingRepository{DB: db}
	profileRepo := repositories.ProfileRepository{DB: db}
	chatRepo := repositories.ChatRepository{DB: db}
	settingsRepo := repositories.SettingsRepository{DB: db}
	visitors := repositories.VisitorCounter{Client: rdb}

	bookingSvc := services.NewBookingService(services.BookingDeps{
		Routes:     routeRepo,
		Bookings:   bookingRepo,
		Profiles:   profileRepo,
		Events:     publisher,
		Notifier:   notifier,
		Signer:     tokens,
		Live:       hub,
		BaseURL:    env.PublicBaseURL,
		PendingTTL: env.PendingTTL,
	})

	h := handlers.NewHandler(handlers.Deps{
		Routes:   services.NewRouteService(routeRepo, bookingRepo, profileRepo, env.MaxRoutesPerDay),
		Bookings: bookingSvc,
		Profiles: services.NewProfileService(profileRepo),
		Settings: services.NewSettingsService(settingsRepo, visitors),
		Live:     services.NewLiveService(routeRepo, bookingRepo, chatRepo, hub),
		Receipts: services.NewReceiptService(routeRepo, bookingRepo),
		Hub:      hub,
		DB:       db,
	})

	go scheduler.New(bookingSvc, env.SchedulerInterval, logger).Start(ctx)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           router.NewRouter(env, h, tokens),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return
	}
	logger.Info("server stopped")
}
