package main

import (
	bookingshandler "padelhub/internal/bookings/handler"
	bookingsrepo "padelhub/internal/bookings/repository"
	bookingsservice "padelhub/internal/bookings/service"
	bookingsvalidator "padelhub/internal/bookings/validator"
	courtshandler "padelhub/internal/courts/handler"
	courtsrepo "padelhub/internal/courts/repository"
	courtsservice "padelhub/internal/courts/service"
	courtsvalidator "padelhub/internal/courts/validator"
	"padelhub/internal/notifications"
	"padelhub/internal/pricing"
	rateshandler "padelhub/internal/rateschedules/handler"
	ratesrepo "padelhub/internal/rateschedules/repository"
	ratesservice "padelhub/internal/rateschedules/service"
	ratesvalidator "padelhub/internal/rateschedules/validator"
	"padelhub/internal/settings"
	"padelhub/pkg/app"
	"padelhub/pkg/config"
	"padelhub/pkg/contracts"
)

const ServiceName = "padelhub-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting PadelHub API")

	notifier, err := notifications.New(cfg, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize booking notifications", "error", err)
	}

	handlers := initHandlers(cfg, notifier)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers...)
	serverApp.OnShutdown(func() {
		if err := notifier.Close(); err != nil {
			cfg.Log.Error("Failed to close notifier", "error", err)
		}
	})
	serverApp.Run()
}

func initHandlers(cfg *config.Config, notifier notifications.Notifier) []contracts.Handler {
	courtRepo := courtsrepo.NewMongoCourtRepository(cfg)
	courtService := courtsservice.NewCourtService(courtRepo, courtsvalidator.NewCourtValidator(cfg.Log), cfg)

	rateRepo := ratesrepo.NewMongoRateScheduleRepository(cfg)
	rateService := ratesservice.NewRateScheduleService(rateRepo, courtRepo, ratesvalidator.NewRateScheduleValidator(cfg.Log), cfg)

	settingsService := settings.NewService(
		settings.NewMongoSettingsRepository(cfg),
		settings.NewCache(cfg.Client.Redis, cfg.SettingsCacheTTL, cfg.Log),
		cfg,
	)

	resolver := pricing.NewResolver(courtRepo, rateRepo, cfg.Log)
	bookingService := bookingsservice.NewBookingService(
		bookingsrepo.NewMongoBookingRepository(cfg),
		resolver,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		notifier,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		courtshandler.NewCourtHandler(courtService, cfg.Log),
		rateshandler.NewRateScheduleHandler(rateService, cfg.Log),
		settings.NewHandler(settingsService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, settingsService, cfg.Log),
	}
}
