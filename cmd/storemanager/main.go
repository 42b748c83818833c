package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/store_manager/internal/config"
	pkgdb "github.com/Skotchmaster/store_manager/internal/db"
	"github.com/Skotchmaster/store_manager/internal/events"
	"github.com/Skotchmaster/store_manager/internal/httpserver"
	"github.com/Skotchmaster/store_manager/internal/logging"
	loggingmw "github.com/Skotchmaster/store_manager/internal/middleware/logging"
	"github.com/Skotchmaster/store_manager/internal/repo"
	"github.com/Skotchmaster/store_manager/internal/search"
	"github.com/Skotchmaster/store_manager/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	cfg.Validate()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := pkgdb.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()
		publisher = producer
	} else {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS not set")
	}

	var index search.Index
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index = search.NewESIndex(es, cfg.ESIndex)
	} else {
		logger.Info("search_index_disabled", "reason", "ES_URL not set")
	}

	r := &repo.GormRepo{DB: db}
	authSvc := &service.AuthService{
		Repo:      r,
		JWTSecret: cfg.JWTAccessSecret,
		AccessTTL: cfg.AccessTokenTTL,
		Events:    publisher,
	}
	userSvc := &service.UserService{Repo: r}
	catalog := &service.CatalogService{Repo: r, Events: publisher, Search: index}
	sales := &service.SaleService{Repo: r, Events: publisher}

	if cfg.AdminUsername != "" {
		bootCtx := logging.IntoContext(context.Background(), logger)
		if err := userSvc.EnsureAdmin(bootCtx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatalf("ensure admin: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(echomw.Secure())

	httpserver.Register(e, &httpserver.Deps{
		DB:              db,
		JWTSecret:       cfg.JWTAccessSecret,
		Authenticator:   authSvc,
		AuthHandler:     &httpserver.AuthHTTP{Svc: authSvc},
		CategoryHandler: &httpserver.CategoryHTTP{Svc: catalog},
		ProductHandler:  &httpserver.ProductHTTP{Svc: catalog},
		SaleHandler:     &httpserver.SaleHTTP{Svc: sales},
		UserHandler:     &httpserver.UserHTTP{Svc: userSvc},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("server_stopped")
}
