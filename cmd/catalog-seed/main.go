package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/fixture"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/repository"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/store"
)

type options struct {
	DBURL       string `long:"db-url" env:"DB_URL" required:"true" description:"Postgres connection URL"`
	Fixture     string `long:"fixture" env:"SEED_FIXTURE" default:"fixtures/catalog.yaml" description:"YAML fixture to load"`
	MigrateOnly bool   `long:"migrate-only" description:"Apply migrations and exit without seeding"`
	Timeout     int    `long:"timeout" default:"30" description:"Overall timeout in seconds"`
}

func main() {
	logger := log.New(os.Stdout, "[catalog-seed] ", log.LstdFlags)
	if err := godotenv.Load(); err != nil {
		logger.Printf("no .env file loaded: %v", err)
	}

	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(opts.Timeout)*time.Second)
	defer cancel()

	if err := run(ctx, opts, logger); err != nil {
		logger.Fatalf("seed failed: %v", err)
	}
}

func run(ctx context.Context, opts options, logger *log.Logger) error {
	var file fixture.File
	if !opts.MigrateOnly {
		var err error
		if file, err = fixture.Load(opts.Fixture); err != nil {
			return err
		}
	}

	st, err := store.New(ctx, opts.DBURL, store.Options{
		MaxConns:               4,
		StatementCacheCapacity: -1,
		ApplicationName:        "catalog-seed",
		AutoMigrate:            true,
		Logger:                 logger,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.MigrateOnly {
		return nil
	}

	repo := repository.New(st)
	collections := file.Collections()
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		stored, err := repo.Collection(name).CreateMany(ctx, collections[name])
		if err != nil {
			return err
		}
		logger.Printf("seeded %d %s", len(stored), name)
	}
	return nil
}
