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
	"go.uber.org/zap"

	"realtorcrm/internal/config"
	"realtorcrm/internal/database"
	"realtorcrm/internal/domain/activity"
	"realtorcrm/internal/domain/crm"
	"realtorcrm/internal/domain/lead"
	"realtorcrm/internal/domain/realtime"
	"realtorcrm/internal/events"
	jwtsvc "realtorcrm/internal/pkg/jwt"
	"realtorcrm/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("database connection failed", logging.Err(err))
	}
	if err := lead.Migrate(db); err != nil {
		log.Fatal("lead migration failed", logging.Err(err))
	}
	if err := activity.Migrate(db); err != nil {
		log.Fatal("activity migration failed", logging.Err(err))
	}

	var publisher crm.ActivityPublisher
	var producer *events.KafkaProducer
	if cfg.EventsEnabled() {
		producer = events.NewKafkaProducer(cfg.KafkaBrokers)
		publisher = events.NewActivityPublisher(producer, cfg.KafkaActivityTopic)
		log.Info("activity events enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaActivityTopic),
		)
	}

	hub := realtime.NewHub(cfg.CORSAllowedOrigins, log.Named("realtime"))
	coordinator := crm.NewCoordinator(
		lead.NewRepository(db),
		activity.NewRepository(db),
		hub,
		publisher,
		log.Named("crm"),
	)
	handler := crm.NewHandler(coordinator, crm.NewSessions(), hub)
	jwt := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(cfg, log, db, jwt, handler)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", logging.Err(err))
		}
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownCh
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", logging.Err(err))
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("kafka producer close", logging.Err(err))
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
