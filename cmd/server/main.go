package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/catalog"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/config"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/docstore"
	httpserver "github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/http"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/repository"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/store"
)

// backend is what both document-store implementations provide.
type backend interface {
	catalog.Source
	httpserver.Content
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stdout, "[catalog-api] ", log.LstdFlags|log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		logger.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var content backend
	switch cfg.StoreBackend {
	case config.BackendHTTP:
		client, err := docstore.NewClient(cfg.DocstoreURL, cfg.DocstoreAPIKey, time.Duration(cfg.DocstoreTimeoutSecs)*time.Second, logger)
		if err != nil {
			log.Fatalf("init docstore client: %v", err)
		}
		content = client
	default:
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		st, err := store.New(dbCtx, cfg.DBURL, store.Options{
			MaxConns:               int32(cfg.DBMaxConns),
			MinConns:               int32(cfg.DBMinConns),
			MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
			MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
			ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
			StatementCacheCapacity: cfg.DBStatementCache,
			ApplicationName:        "catalog-api",
			AutoMigrate:            cfg.DBAutoMigrate,
			Logger:                 logger,
		})
		cancel()
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer st.Close()
		content = repository.New(st)
	}

	svc := catalog.NewService(content, catalog.ServiceOptions{
		Strategy:     cfg.CatalogStrategy,
		Planner:      catalog.Planner{Slack: cfg.QuerySlack()},
		FetchTimeout: cfg.FetchTimeout(),
		Logger:       logger,
	})
	refresher := catalog.NewRefresher(svc, time.Now, logger)
	logger.Printf("catalog: strategy=%s backend=%s refresh=%s", svc.Strategy(), cfg.StoreBackend, cfg.RefreshInterval())

	if interval := cfg.RefreshInterval(); interval > 0 {
		go refresher.Run(ctx, interval)
	}

	server := httpserver.New(cfg, content, svc, refresher, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
