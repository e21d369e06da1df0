package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"studyrace/bot"
	"studyrace/cache"
	"studyrace/config"
	"studyrace/database"
	"studyrace/events"
	"studyrace/metrics"
	"studyrace/repository"
	"studyrace/server"
	"studyrace/service"
)

// services holds every service built for one process
type services struct {
	users    service.UserService
	study    service.StudyService
	subjects service.SubjectService
	races    service.RaceService
	betting  service.BettingService
	clock    service.Clock
}

func newServices(cfg *config.Config, uowFactory service.UnitOfWorkFactory, standings service.StandingsCache) *services {
	clock := service.SystemClock{}
	return &services{
		users:    service.NewUserService(uowFactory, cfg),
		study:    service.NewStudyService(uowFactory, clock, cfg),
		subjects: service.NewSubjectService(uowFactory),
		races:    service.NewRaceService(uowFactory, clock, service.NewOddsEngine(cfg), standings),
		betting:  service.NewBettingService(uowFactory, clock, cfg),
		clock:    clock,
	}
}

// ConfigureLogging applies the configured level and formatter to logrus
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting studyrace...")

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("Closing database connection...")
		db.Close()
	}()
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	var standings service.StandingsCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.WithError(err).Error("Redis unavailable, serving standings without cache")
		} else {
			defer rdb.Close()
			sc := cache.NewStandingsCache(rdb, cfg.StandingsCacheTTL)
			cache.RegisterInvalidation(eventBus, sc)
			standings = sc
			log.WithField("addr", cfg.RedisAddr).Info("Standings cache enabled")
		}
	}

	if cfg.NATSURL != "" {
		nc, err := events.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.WithError(err).Error("NATS unavailable, events will not be forwarded")
		} else {
			defer func() {
				if err := nc.Drain(); err != nil {
					log.WithError(err).Warn("Error draining NATS connection")
				}
			}()
			events.NewNATSForwarder(nc).Register(eventBus)
			log.WithField("url", cfg.NATSURL).Info("Forwarding events to NATS")
		}
	}

	collectors := metrics.New()
	collectors.Register(eventBus)

	svc := newServices(cfg, uowFactory, standings)

	g, gctx := errgroup.WithContext(ctx)

	httpServer := server.New(server.Services{
		Users:    svc.users,
		Study:    svc.study,
		Subjects: svc.subjects,
		Races:    svc.races,
		Betting:  svc.betting,
		Clock:    svc.clock,
	}, collectors.Handler())
	g.Go(func() error {
		return httpServer.ListenAndServe(gctx, cfg.HTTPAddr)
	})

	if cfg.DiscordToken != "" {
		log.Info("Initializing Discord bot...")
		discordBot, err := bot.New(bot.Config{
			Token:   cfg.DiscordToken,
			GuildID: cfg.DiscordGuildID,
		}, bot.Services{
			Users:    svc.users,
			Study:    svc.study,
			Subjects: svc.subjects,
			Races:    svc.races,
			Betting:  svc.betting,
			Clock:    svc.clock,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Discord bot: %w", err)
		}
		g.Go(func() error {
			<-gctx.Done()
			log.Info("Closing Discord connection...")
			return discordBot.Close()
		})
	} else {
		log.Info("DISCORD_TOKEN not set, Discord bot disabled")
	}

	err = g.Wait()
	log.Info("Shutdown completed")
	return err
}

// ResetPeriod zeroes every user's current-period study minutes and exits.
// Meant to be run by an external scheduler at the start of each week.
func ResetPeriod(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	study := service.NewStudyService(repository.NewUnitOfWorkFactory(db, events.NewBus()), service.SystemClock{}, cfg)
	affected, err := study.ResetPeriod(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset period: %w", err)
	}

	// Bus handlers run asynchronously and the process is about to exit, so announce directly
	if cfg.NATSURL != "" {
		nc, err := events.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.WithError(err).Warn("NATS unavailable, period reset will not be announced")
		} else {
			if err := events.NewNATSForwarder(nc).Forward(events.PeriodResetEvent{UsersAffected: affected}); err != nil {
				log.WithError(err).Warn("Failed to announce period reset")
			}
			if err := nc.Drain(); err != nil {
				log.WithError(err).Warn("Error draining NATS connection")
			}
		}
	}

	log.WithField("usersAffected", affected).Info("Study period reset")
	return nil
}
