package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/hoa-community-api/internal/access"
	"github.com/iliyamo/hoa-community-api/internal/booking"
	"github.com/iliyamo/hoa-community-api/internal/config"
	"github.com/iliyamo/hoa-community-api/internal/database"
	"github.com/iliyamo/hoa-community-api/internal/handler"
	"github.com/iliyamo/hoa-community-api/internal/middleware"
	"github.com/iliyamo/hoa-community-api/internal/notifier"
	"github.com/iliyamo/hoa-community-api/internal/queue"
	"github.com/iliyamo/hoa-community-api/internal/repository"
	"github.com/iliyamo/hoa-community-api/internal/router"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	loc := cfg.Location()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis is optional: without it the rate limiter and response cache
	// disable themselves.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	facilities := repository.NewFacilityRepo(db)
	credentials := repository.NewCredentialRepo(db)
	reservations := repository.NewReservationRepo(db)
	blackouts := repository.NewBlackoutRepo(db)

	// Policy cores.  Every visit window is interpreted in the community's
	// timezone regardless of where the request comes from.
	evaluator := access.NewEvaluator(loc, cfg.RollMultiDayEnd)
	issuer := access.NewIssuer(credentials)
	gatekeeper := access.NewGateKeeper(credentials, evaluator)
	checker := booking.NewChecker(repository.NewFacilityTimeline(reservations, blackouts))

	// Notification delivery: email and broker when configured, log-only
	// otherwise.  The broker path also needs the consumer running.
	var targets []notifier.Notifier
	if cfg.SendGridKey != "" {
		targets = append(targets, notifier.NewEmail(cfg.SendGridKey, cfg.EmailFromName, cfg.EmailFrom, cfg.EmailSandbox))
	}
	if cfg.RabbitURL != "" {
		targets = append(targets, notifier.NewBroker(cfg.RabbitURL))
		go queue.StartNotificationConsumer(cfg.RabbitURL)
	}
	var n notifier.Notifier
	switch len(targets) {
	case 0:
		n = notifier.NewLog()
	case 1:
		n = targets[0]
	default:
		n = notifier.NewFanout(targets...)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	visitHandler := handler.NewVisitHandler(credentials, issuer, n)
	gateHandler := handler.NewGateHandler(gatekeeper, n)
	bookingHandler := handler.NewBookingHandler(reservations, facilities, users, checker, n)
	facilityHandler := handler.NewFacilityHandler(facilities)
	blackoutHandler := handler.NewBlackoutHandler(blackouts)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.Validator = handler.NewValidator()

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, gateHandler, facilityHandler, rateLimit, cache)
	router.RegisterResident(e, visitHandler, bookingHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, visitHandler, bookingHandler, facilityHandler, blackoutHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s tz=%s)", addr, cfg.Env, cfg.Timezone)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
