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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"portflow/internal/clearance/confirm"
	"portflow/internal/clearance/dispatcher"
	"portflow/internal/clearance/duty"
	"portflow/internal/clearance/gateway"
	"portflow/internal/clearance/handler"
	clearancemetrics "portflow/internal/clearance/metrics"
	"portflow/internal/clearance/models"
	"portflow/internal/clearance/ports"
	"portflow/internal/clearance/service"
	"portflow/internal/clearance/store/caserecord"
	"portflow/internal/platform/config"
	"portflow/internal/platform/httpserver"
	"portflow/internal/platform/kafka"
	"portflow/internal/platform/logger"
	platformmetrics "portflow/internal/platform/metrics"
	platformredis "portflow/internal/platform/redis"
	"portflow/pkg/platform/audit"
	auditmemory "portflow/pkg/platform/audit/store/memory"
	auditworker "portflow/pkg/platform/audit/worker"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in internal/clearance.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Case store: postgres when configured, in-memory otherwise.
	var store ports.CaseStore
	if cfg.Postgres.URL != "" {
		db, err := sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, caserecord.Schema); err != nil {
			return err
		}
		store = caserecord.NewPostgres(db)
		log.Info("case store: postgres")
	} else {
		store = caserecord.NewInMemoryStore()
		log.Info("case store: in-memory")
	}

	// Redis backs the confirmation store and the query cache when configured.
	var confirmStore confirm.Store = confirm.NewInMemoryStore()
	var queryCache ports.QueryCache = gateway.NewMemoryQueryCache()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		confirmStore = confirm.NewRedisStore(redisClient.Client)
		queryCache = gateway.NewRedisQueryCache(redisClient.Client)
		log.Info("confirmation store and query cache: redis")
	}

	// Audit pipeline: events flow through a channel worker into Kafka, or
	// into the in-memory store when no brokers are configured.
	var auditSink audit.Store = auditmemory.NewInMemoryStore()
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := kafka.NewPublisher(ctx, cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		defer publisher.Close()
		auditSink = publisher
		log.Info("audit sink: kafka", "brokers", cfg.Kafka.Brokers)
	}
	inbox := make(chan audit.Event, 256)
	worker := auditworker.NewWorker(auditSink, inbox)
	auditPublisher := auditworker.NewChannelPublisher(inbox)

	policies := gateway.DefaultPolicies()
	overridePolicy(policies, models.SystemCustoms, cfg.Gateway.Customs)
	overridePolicy(policies, models.SystemShippingLine, cfg.Gateway.ShippingLine)
	overridePolicy(policies, models.SystemPortAuthority, cfg.Gateway.PortAuthority)

	gw, err := gateway.New([]gateway.SystemClient{
		gateway.NewCustomsClient(),
		gateway.NewShippingLineClient(),
		gateway.NewPortAuthorityClient(),
	}, gateway.WithLogger(log), gateway.WithPolicies(policies))
	if err != nil {
		return err
	}

	gate, err := confirm.New(confirmStore, cfg.Confirm.SigningKey,
		confirm.WithWindow(cfg.Confirm.Window),
		confirm.WithLogger(log),
	)
	if err != nil {
		return err
	}

	orchestrator, err := service.New(store, gw, gate, duty.New(),
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(clearancemetrics.New()),
		service.WithQueryCache(queryCache, cfg.Status.StalenessThreshold),
	)
	if err != nil {
		return err
	}

	httpMetrics := platformmetrics.New()
	h := handler.New(dispatcher.New(orchestrator), orchestrator, log, httpMetrics)

	router := chi.NewRouter()
	h.Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting portflow", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return httpserver.Shutdown(srv, cfg.Server.ShutdownTimeout)
	})

	err = g.Wait()
	close(inbox)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// overridePolicy overlays the env-configured budget onto the default policy,
// keeping the backoff shape.
func overridePolicy(policies map[models.SystemID]gateway.Policy, system models.SystemID, cfg config.SystemPolicy) {
	p := policies[system]
	if cfg.Timeout > 0 {
		p.Timeout = cfg.Timeout
	}
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	policies[system] = p
}
