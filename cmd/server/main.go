package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"libris/internal/circulation/handler"
	"libris/internal/circulation/metrics"
	"libris/internal/circulation/ports"
	"libris/internal/circulation/registry"
	"libris/internal/circulation/service"
	"libris/internal/circulation/settlement"
	"libris/internal/circulation/store/memory"
	"libris/internal/circulation/store/postgres"
	"libris/internal/circulation/store/redisstore"
	"libris/internal/circulation/timesignal"
	"libris/internal/circulation/tracker"
	"libris/internal/jwttoken"
	"libris/internal/notification"
	"libris/internal/platform/config"
	"libris/internal/platform/httpserver"
	"libris/internal/platform/logger"
	platformredis "libris/internal/platform/redis"
	httptransport "libris/internal/transport/http"
)

// main wires the dependencies and runs the HTTP server alongside the time
// signal. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	m := metrics.New()

	recordStore, cleanup, err := buildRecordStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	var ephemeral ports.EphemeralStore
	if redisClient != nil {
		defer redisClient.Close()
		ephemeral = redisstore.NewEphemeralStore(redisClient.Client)
		log.Info("settlement ledger on redis")
	} else {
		ephemeral = memory.NewEphemeralStore(clock)
		log.Warn("redis not configured, settlement ledger is in-memory")
	}

	notifier, notifierClose, err := buildNotifier(cfg, log)
	if err != nil {
		return err
	}
	defer notifierClose()

	penalties, err := tracker.NewPenaltyTracker(
		registry.NewRentalRegistry(),
		recordStore,
		notifier,
		cfg.Circulation.RatePerDay,
		tracker.WithPenaltyLogger(log),
		tracker.WithPenaltyMetrics(m),
	)
	if err != nil {
		return err
	}
	expiry, err := tracker.NewReservationExpiryTracker(
		registry.NewReservationRegistry(),
		recordStore,
		tracker.WithExpiryLogger(log),
		tracker.WithExpiryMetrics(m),
	)
	if err != nil {
		return err
	}

	coordinator, err := settlement.New(
		recordStore,
		ephemeral,
		penalties,
		cfg.Circulation.SettlementTTL,
		settlement.WithLogger(log),
		settlement.WithMetrics(m),
		settlement.WithClock(clock),
	)
	if err != nil {
		return err
	}

	svc, err := service.New(recordStore, penalties, expiry, coordinator, service.Config{
		RentalWindow:      cfg.Circulation.RentalWindow,
		ReservationWindow: cfg.Circulation.ReservationWindow,
		MaxRenewals:       cfg.Circulation.MaxRenewals,
	}, service.WithLogger(log), service.WithClock(clock))
	if err != nil {
		return err
	}
	if err := svc.Rehydrate(ctx); err != nil {
		return err
	}

	ticks := timesignal.New(clock, cfg.Circulation.TickInterval, log, timesignal.WithMetrics(m))
	ticks.Subscribe(penalties)
	ticks.Subscribe(expiry)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	circulationHandler := handler.New(svc, log, m, jwttoken.NewJWTServiceAdapter(jwtService))

	var health httptransport.HealthChecker
	if redisClient != nil {
		health = redisClient
	}
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(circulationHandler, health))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting libris", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := ticks.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		ticks.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildRecordStore picks postgres when configured and falls back to the
// in-memory store for local development.
func buildRecordStore(ctx context.Context, cfg config.Config, log *slog.Logger) (ports.RecordStore, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("database not configured, records are in-memory")
		return memory.New(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	store := postgres.New(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info("records on postgres")
	return store, func() { db.Close() }, nil
}

// buildNotifier publishes to Kafka when brokers are configured, otherwise
// notifications land in the log.
func buildNotifier(cfg config.Config, log *slog.Logger) (ports.Notifier, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warn("kafka not configured, notifications go to the log")
		return notification.NewLogNotifier(log), func() {}, nil
	}

	kafkaNotifier, err := notification.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	log.Info("notifications on kafka", "topic", cfg.Kafka.Topic)
	return kafkaNotifier, kafkaNotifier.Close, nil
}
