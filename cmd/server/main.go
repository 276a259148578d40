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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"mintbank/internal/ledger/authz"
	"mintbank/internal/ledger/engine"
	"mintbank/internal/ledger/handler"
	ledgermetrics "mintbank/internal/ledger/metrics"
	"mintbank/internal/ledger/models"
	"mintbank/internal/ledger/ports"
	"mintbank/internal/ledger/service"
	"mintbank/internal/ledger/store/account"
	"mintbank/internal/ledger/store/idempotency"
	"mintbank/internal/platform/config"
	"mintbank/internal/platform/httpserver"
	"mintbank/internal/platform/logger"
	"mintbank/internal/platform/middleware"
	"mintbank/internal/platform/postgres"
	platformredis "mintbank/internal/platform/redis"
	"mintbank/pkg/platform/audit/publisher"
	auditkafka "mintbank/pkg/platform/audit/publishers/kafka"
	auditmemory "mintbank/pkg/platform/audit/store/memory"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal/ledger packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		return err
	}
	var accounts ports.AccountStore
	if db != nil {
		defer db.Close()
		accounts = account.NewPostgres(db)
		log.Info("using postgres account store")
	} else {
		accounts = account.NewInMemory()
		log.Info("using in-memory account store")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	var idem ports.IdempotencyStore
	if redisClient != nil {
		defer redisClient.Close()
		idem = idempotency.NewRedis(redisClient.Client, cfg.IdempotencyTTL)
		log.Info("using redis idempotency store")
	} else {
		var opts []idempotency.Option
		if cfg.IdempotencyTTL > 0 {
			opts = append(opts, idempotency.WithTTL(cfg.IdempotencyTTL))
		}
		if cfg.IdempotencyMaxEntries > 0 {
			opts = append(opts, idempotency.WithMaxEntries(cfg.IdempotencyMaxEntries))
		}
		idem = idempotency.NewInMemory(opts...)
	}

	auditPublisher, closeAudit, err := buildAuditPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	mtr := ledgermetrics.New()

	eng, err := engine.New(accounts, idem,
		engine.WithLogger(log),
		engine.WithMetrics(mtr),
		engine.WithMaxAttempts(cfg.MaxTransferAttempts),
	)
	if err != nil {
		return err
	}

	gate := authz.New(models.Role(cfg.MintingRole))

	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(mtr),
		service.WithAuditPublisher(auditPublisher),
	}
	if balance, err := decimal.NewFromString(cfg.InitialBalance); err == nil && balance.Sign() >= 0 {
		svcOpts = append(svcOpts, service.WithInitialBalance(balance))
	} else {
		log.Warn("invalid initial balance, using default", "value", cfg.InitialBalance)
	}

	svc, err := service.New(accounts, eng, gate, svcOpts...)
	if err != nil {
		return err
	}

	if cfg.SeedTreasury {
		if err := seedTreasury(svc, log); err != nil {
			return err
		}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestLogging(log))
	handler.New(svc, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", healthz(db, redisClient))

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting mintbank", "addr", cfg.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

// buildAuditPublisher always records events to the in-process store and, when
// brokers are configured, mirrors them to Kafka.
func buildAuditPublisher(cfg config.Server, log *slog.Logger) (ports.AuditPublisher, func(), error) {
	local := publisher.NewPublisher(auditmemory.NewInMemoryStore(), publisher.WithAsyncBuffer(256))

	if len(cfg.KafkaBrokers) == 0 {
		return local, local.Close, nil
	}

	kafkaPub, err := auditkafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		local.Close()
		return nil, nil, err
	}
	log.Info("audit events mirrored to kafka", "topic", cfg.KafkaTopic)

	closeAll := func() {
		local.Close()
		kafkaPub.Close()
	}
	return publisher.NewMulti(local, kafkaPub), closeAll, nil
}

// seedTreasury makes sure the treasury sink exists (with a zero balance) so
// tax payments have a destination from the first request.
func seedTreasury(svc *service.Service, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.EnsureTreasury(ctx); err != nil {
		return err
	}
	log.Info("treasury account ready", "identity", models.TreasuryIdentity)
	return nil
}

func healthz(db *sql.DB, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "postgres unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
