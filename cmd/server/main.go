package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"medregistry/internal/audit"
	"medregistry/internal/auth"
	authhandler "medregistry/internal/auth/handler"
	"medregistry/internal/contacts"
	contactshandler "medregistry/internal/contacts/handler"
	"medregistry/internal/doctors"
	doctorshandler "medregistry/internal/doctors/handler"
	httpapi "medregistry/internal/http"
	"medregistry/internal/jwttoken"
	"medregistry/internal/platform/config"
	"medregistry/internal/platform/httpserver"
	"medregistry/internal/platform/logger"
	"medregistry/internal/platform/metrics"
	platformredis "medregistry/internal/platform/redis"
	"medregistry/internal/registration"
	registrationhandler "medregistry/internal/registration/handler"
)

// main wires storage backends from the environment: PostgreSQL, redis, and
// Kafka each fall back to in-memory implementations when unconfigured, so a
// bare `go run` brings up a fully working single-process instance.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogFormat)
	m := metrics.New()

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err == nil {
			err = db.Ping()
		}
		if err != nil {
			log.Error("postgres connection failed", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
	}

	rdb, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Doctor records and the transactional commit boundary.
	var (
		doctorStore doctors.Store
		txRunner    doctors.TxRunner
	)
	if db != nil {
		doctorStore = doctors.NewPostgres(db)
		txRunner = newDoctorsPostgresTx(db)
	} else {
		mem := doctors.NewMemoryStore()
		doctorStore = mem
		txRunner = mem
	}

	// Wizard sessions. The redis key TTL trails the logical expiry window so
	// lazy reclamation, not redis, decides when a session dies.
	var sessions registration.SessionStore
	if rdb != nil {
		sessions = registration.NewRedisSessionStore(rdb.Client, cfg.SessionTTL+time.Hour)
	} else {
		sessions = registration.NewMemorySessionStore()
	}

	var otps auth.OTPStore
	if rdb != nil {
		otps = auth.NewRedisOTPStore(rdb.Client, cfg.OTPTTL)
	} else {
		otps = auth.NewMemoryOTPStore(cfg.OTPTTL)
	}

	var users auth.UserStore
	if db != nil {
		users = auth.NewPostgresUserStore(db)
	} else {
		users = auth.NewMemoryUserStore()
	}

	var contactStore contacts.Store
	if db != nil {
		contactStore = contacts.NewPostgres(db)
	} else {
		contactStore = contacts.NewMemoryStore()
	}

	var auditStore audit.Store
	if len(cfg.KafkaBrokers) > 0 {
		kafkaStore, err := audit.NewKafkaStore(cfg.KafkaBrokers)
		if err != nil {
			log.Error("kafka connection failed", "error", err.Error())
			os.Exit(1)
		}
		defer kafkaStore.Close()
		auditStore = kafkaStore
	} else {
		auditStore = audit.NewMemoryStore()
	}
	auditPub := audit.NewPublisher(log, 256)
	auditWorker := audit.NewWorker(auditStore, auditPub.Inbox(), log)

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, "medregistry", "medregistry-api")
	limits := registration.Limits{MaxAttachmentBytes: cfg.MaxAttachmentBytes}

	registrationSvc := registration.NewService(sessions, txRunner, log, m, auditPub, limits, registration.Config{
		SessionTTL:   cfg.SessionTTL,
		MaxDocuments: cfg.MaxDocuments,
	})
	doctorsSvc := doctors.NewService(doctorStore, log)
	authSvc := auth.NewService(users, otps, tokens, log, auditPub, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	contactsSvc := contacts.NewService(contactStore, log)

	router := httpapi.NewRouter(httpapi.Handlers{
		Registration: registrationhandler.New(registrationSvc, log, m, cfg.MaxMultipartMemory, cfg.SessionTTL),
		Doctors:      doctorshandler.New(doctorsSvc, log, m, tokens),
		Auth:         authhandler.New(authSvc, log, m, tokens),
		Contacts:     contactshandler.New(contactsSvc, log, m, tokens),
	})
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return auditWorker.Run(ctx)
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}
