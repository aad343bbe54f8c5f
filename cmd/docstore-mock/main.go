package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/docstore"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/fixture"
)

type options struct {
	Port   string `long:"port" env:"MOCK_PORT" default:"9099" description:"Port to listen on"`
	Data   string `long:"data" env:"MOCK_DATA" default:"fixtures/catalog.yaml" description:"YAML fixture with movies, promotions and articles"`
	APIKey string `long:"api-key" env:"DOCSTORE_API_KEY" default:"dev-key" description:"Key expected in the X-API-Key header"`
	Strict bool   `long:"strict" env:"MOCK_STRICT" description:"Evaluate inclusive range bounds as strict, like stores with coarse date support"`
}

func main() {
	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	logger := log.New(os.Stdout, "[docstore-mock] ", log.LstdFlags)

	file, err := fixture.Load(opts.Data)
	if err != nil {
		logger.Fatalf("load fixture: %v", err)
	}

	mem := docstore.NewMemory(file.Collections())
	mem.Strict = opts.Strict
	logger.Printf("loaded %d movies, %d promotions, %d articles (strict=%t)",
		mem.Len(domain.CollectionMovies), mem.Len(domain.CollectionPromotions), mem.Len(domain.CollectionArticles), opts.Strict)

	srv := &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           mem.Handler(opts.APIKey, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Printf("listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server error: %v", err)
	}
}
