// Command server wires dependencies and runs the compliance API. Business
// logic lives in the internal service packages; main only assembles them.
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

	"veristaff/internal/activity"
	activityhandler "veristaff/internal/activity/handler"
	activitymetrics "veristaff/internal/activity/metrics"
	"veristaff/internal/activity/publisher"
	activitymemory "veristaff/internal/activity/store/memory"
	activitypostgres "veristaff/internal/activity/store/postgres"
	"veristaff/internal/compliance"
	compliancehandler "veristaff/internal/compliance/handler"
	"veristaff/internal/documents"
	identityhandler "veristaff/internal/identity/handler"
	identityservice "veristaff/internal/identity/service"
	identitystore "veristaff/internal/identity/store"
	"veristaff/internal/jwttoken"
	orghandler "veristaff/internal/org/handler"
	orgservice "veristaff/internal/org/service"
	orgstore "veristaff/internal/org/store"
	"veristaff/internal/platform/config"
	"veristaff/internal/platform/httpserver"
	"veristaff/internal/platform/kafka"
	"veristaff/internal/platform/logger"
	"veristaff/internal/platform/metrics"
	"veristaff/internal/platform/postgres"
	platformredis "veristaff/internal/platform/redis"
	recordshandler "veristaff/internal/records/handler"
	recordmetrics "veristaff/internal/records/metrics"
	recordservice "veristaff/internal/records/service"
	recordstore "veristaff/internal/records/store"
	httptransport "veristaff/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		db      *sql.DB
		records recordstore.Store
		users   identitystore.Store
		orgs    orgstore.Store
		trailDB activity.Store
		health  func() error
	)
	if cfg.PostgresDSN != "" {
		db, err = postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		records = recordstore.NewPostgres(db)
		users = identitystore.NewPostgres(db)
		orgs = orgstore.NewPostgres(db)
		trailDB = activitypostgres.New(db)
		health = db.Ping
		log.Info("using postgres storage")
	} else {
		records = recordstore.NewInMemory()
		users = identitystore.NewInMemory()
		orgs = orgstore.NewInMemory()
		trailDB = activitymemory.New()
		log.Warn("using in-memory storage, data will not survive restarts")
	}

	// Audit trail, with the optional Kafka feed behind it.
	activityMetrics := activitymetrics.New()
	trailOpts := []activity.Option{activity.WithMetrics(activityMetrics)}

	broker, err := kafka.New(ctx, kafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
	if err != nil {
		return err
	}
	if broker != nil {
		defer broker.Close()
		feed := publisher.New(broker, log, publisher.WithMetrics(activityMetrics))
		go func() {
			if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("activity feed stopped", "error", err)
			}
		}()
		trailOpts = append(trailOpts, activity.WithPublisher(feed))
		log.Info("activity feed enabled", "topic", cfg.KafkaTopic)
	}
	trail := activity.NewLogger(trailDB, log, trailOpts...)

	// Document URL resolution, optionally cached in Redis.
	var resolver documents.Resolver
	if cfg.DocumentBaseURL != "" {
		static, err := documents.NewStaticResolver(cfg.DocumentBaseURL)
		if err != nil {
			return err
		}
		resolver = static

		rdb, err := platformredis.New(ctx, cfg.Redis())
		if err != nil {
			return err
		}
		if rdb != nil {
			defer rdb.Close()
			resolver = documents.NewCachedResolver(static, rdb.Client, log)
			log.Info("document url cache enabled")
		}
	}

	// Services.
	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)

	recordOpts := []recordservice.Option{recordservice.WithMetrics(recordmetrics.New())}
	if resolver != nil {
		recordOpts = append(recordOpts, recordservice.WithResolver(resolver))
	}
	recordSvc := recordservice.New(records, trail, log, recordOpts...)
	complianceSvc := compliance.NewService(records)
	identitySvc := identityservice.New(users, orgs, tokens, trail, log, cfg.TokenTTL)
	orgSvc := orgservice.New(orgs, trail, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Location:   loc,
		Validator:  tokens,
		Metrics:    metrics.NewHTTP(),
		Identity:   identityhandler.New(identitySvc, log),
		Records:    recordshandler.New(recordSvc, log),
		Compliance: compliancehandler.New(complianceSvc, identitySvc, log),
		Orgs:       orghandler.New(orgSvc, log),
		Activity:   activityhandler.New(trail, log),
		Health:     health,
	})

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting veristaff", "addr", cfg.Addr, "timezone", cfg.TimeZone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
