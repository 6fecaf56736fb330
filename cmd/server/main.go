// Command server wires storage, services and the HTTP surface, then runs
// until interrupted. With no Postgres DSN configured it runs fully in-memory,
// which is how development and the unit test suites exercise the stack.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"newsdesk/internal/activitylog"
	loghandler "newsdesk/internal/activitylog/handler"
	logmodels "newsdesk/internal/activitylog/models"
	logstore "newsdesk/internal/activitylog/store/entry"
	authhandler "newsdesk/internal/auth/handler"
	authservice "newsdesk/internal/auth/service"
	"newsdesk/internal/auth/store/revocation"
	"newsdesk/internal/auth/token"
	httpapi "newsdesk/internal/http"
	"newsdesk/internal/identity"
	newshandler "newsdesk/internal/news/handler"
	newsservice "newsdesk/internal/news/service"
	newsstore "newsdesk/internal/news/store/news"
	"newsdesk/internal/platform/config"
	"newsdesk/internal/platform/db"
	"newsdesk/internal/platform/httpserver"
	"newsdesk/internal/platform/kafka"
	"newsdesk/internal/platform/logger"
	"newsdesk/internal/platform/metrics"
	"newsdesk/internal/platform/redis"
	tenanthandler "newsdesk/internal/tenant/handler"
	tenantservice "newsdesk/internal/tenant/service"
	membershipstore "newsdesk/internal/tenant/store/membership"
	tenantstore "newsdesk/internal/tenant/store/tenant"
	userhandler "newsdesk/internal/user/handler"
	userservice "newsdesk/internal/user/service"
	userstore "newsdesk/internal/user/store/user"
	"newsdesk/pkg/platform/tx"
)

const auditOutboxSize = 256

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	stores, runner, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		log.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	var revocations authservice.RevocationList = revocation.NewInMemory()
	if cfg.Redis.URL != "" {
		redisClient, err := redis.New(cfg.Redis)
		if err != nil {
			log.Error("redis init failed", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		revocations = revocation.NewFailover(revocation.NewRedis(redisClient.Client), log)
	}

	producer, err := kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		log.Error("kafka init failed", "error", err)
		os.Exit(1)
	}

	recorderOpts := []activitylog.RecorderOption{activitylog.WithRecorderMetrics(m)}
	var outbox chan logmodels.Entry
	if producer != nil {
		outbox = make(chan logmodels.Entry, auditOutboxSize)
		recorderOpts = append(recorderOpts, activitylog.WithOutbox(outbox))
	}
	recorder := activitylog.NewRecorder(stores.logs, recorderOpts...)

	tenantSvc := tenantservice.New(stores.tenants, stores.memberships, stores.users, stores.news, runner,
		tenantservice.WithLogger(log), tenantservice.WithMetrics(m), tenantservice.WithRecorder(recorder))
	userSvc := userservice.New(stores.users, stores.memberships, stores.tenants, stores.news, runner,
		userservice.WithLogger(log), userservice.WithMetrics(m), userservice.WithRecorder(recorder))
	newsSvc := newsservice.New(stores.news, stores.tenants, stores.users, runner,
		newsservice.WithLogger(log), newsservice.WithMetrics(m), newsservice.WithRecorder(recorder))
	logSvc := activitylog.NewService(stores.logs,
		activitylog.WithLogger(log), activitylog.WithMetrics(m))

	tokens := token.NewService(cfg.Auth)
	authSvc := authservice.New(stores.users, stores.memberships, tokens, revocations,
		authservice.WithLogger(log), authservice.WithMetrics(m))

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:        authhandler.New(authSvc, userSvc, log),
		Tenants:     tenanthandler.New(tenantSvc, log),
		Users:       userhandler.New(userSvc, log),
		News:        newshandler.New(newsSvc, log),
		Logs:        loghandler.New(logSvc, log),
		Validator:   token.NewMiddlewareAdapter(tokens),
		Revocations: revocations,
		Resolver:    identity.NewStoreResolver(stores.users, stores.memberships),
		Logger:      log,
		Metrics:     m,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting newsdesk", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if producer != nil {
		worker := activitylog.NewWorker(producer, outbox, log)
		group.Go(func() error {
			return worker.Run(groupCtx)
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if producer != nil {
			defer producer.Close()
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("newsdesk stopped")
}

// storeSet gathers the persistence layer behind consumer-shaped interfaces so
// the memory and Postgres implementations wire identically.
type storeSet struct {
	tenants     tenantStoreIface
	memberships membershipStoreIface
	users       userStoreIface
	news        newsStoreIface
	logs        activitylog.Store
}

type tenantStoreIface interface {
	tenantservice.TenantStore
	userservice.TenantDirectory
	newsservice.TenantDirectory
}

type membershipStoreIface interface {
	tenantservice.MembershipStore
	userservice.MembershipStore
	authservice.MembershipStore
	identity.MembershipDirectory
}

type userStoreIface interface {
	userservice.UserStore
	authservice.UserStore
	tenantservice.UserDirectory
	newsservice.UserDirectory
	identity.UserDirectory
}

type newsStoreIface interface {
	newsservice.NewsStore
	tenantservice.NewsCounter
	userservice.NewsCounter
}

func buildStores(ctx context.Context, cfg config.Config) (*storeSet, tx.Runner, func(), error) {
	if cfg.Postgres.DSN == "" {
		return &storeSet{
			tenants:     tenantstore.NewInMemory(),
			memberships: membershipstore.NewInMemory(),
			users:       userstore.NewInMemory(),
			news:        newsstore.NewInMemory(),
			logs:        logstore.NewInMemory(),
		}, tx.NewPassthrough(), func() {}, nil
	}

	sqlDB, err := db.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, nil, err
	}
	return &storeSet{
		tenants:     tenantstore.NewPostgres(sqlDB),
		memberships: membershipstore.NewPostgres(sqlDB),
		users:       userstore.NewPostgres(sqlDB),
		news:        newsstore.NewPostgres(sqlDB),
		logs:        logstore.NewPostgres(sqlDB),
	}, tx.NewSQLRunner(sqlDB), func() { _ = sqlDB.Close() }, nil
}
