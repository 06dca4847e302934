package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	conf "github.com/bartek5186/ymlfeed/internal/config"
	"github.com/bartek5186/ymlfeed/internal/db"
	"github.com/bartek5186/ymlfeed/internal/feed"
	"github.com/bartek5186/ymlfeed/internal/fetch"
	"github.com/bartek5186/ymlfeed/internal/integrations"
	_ "github.com/bartek5186/ymlfeed/internal/integrations/jsonfeed" // rejestracja
	"github.com/bartek5186/ymlfeed/internal/integrations/prompower"
	_ "github.com/bartek5186/ymlfeed/internal/integrations/woocommerce"
	"github.com/bartek5186/ymlfeed/internal/integrations/ymlfeed"
	logs "github.com/bartek5186/ymlfeed/internal/logs"
	"github.com/bartek5186/ymlfeed/internal/observability"
	"github.com/rs/zerolog"
)

// wersję możesz nadpisać przez: -ldflags "-X 'main.ver=1.0.1'"
var ver = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, usedDefaults, err := conf.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	logs.Level(cfg.LogLevel)
	log := logs.New(cfg.LogFile, true)
	log.Info().Str("ver", ver).Bool("default_config", usedDefaults).Msg("YmlFeed start")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := fetch.New(log, time.Duration(cfg.HTTPTimeoutSeconds)*time.Second,
		fetch.WithRate(cfg.RequestsPerSecond))

	sources, brands := buildSources(log, cfg, client)

	var images feed.ImageSource
	if cfg.ImagesURL != "" {
		images = ymlfeed.NewResolver(log, client, cfg.ImagesURL)
	}

	sinks, closeSinks := buildSinks(log, cfg)
	defer closeSinks()

	gen := feed.New(log, feed.Params{
		Categories: &prompower.Categories{Client: client, URL: cfg.CategoriesURL},
		Images:     images,
		Sources:    sources,
		Mapper: feed.NewMapper(log, feed.Options{
			KeyFields:          cfg.Mapping.KeyFields,
			PricePolicy:        feed.PricePolicy(cfg.Mapping.PricePolicy),
			PreorderPolicy:     feed.PreorderPolicy(cfg.Mapping.PreorderPolicy),
			FallbackCategoryID: cfg.Mapping.FallbackCategoryID,
			VAT:                cfg.Mapping.VAT,
			DefaultVendor:      cfg.Mapping.DefaultVendor,
			Warehouses:         cfg.Mapping.Warehouses,
			PlainDescriptions:  cfg.Mapping.PlainDescriptions,
			Brands:             brands,
		}),
		Shop: feed.ShopInfo{
			Name:    cfg.Shop.Name,
			Company: cfg.Shop.Company,
			URL:     cfg.Shop.URL,
		},
		Output: cfg.Output,
		Sinks:  sinks,
	})

	if _, err := gen.Run(ctx); err != nil {
		switch {
		case errors.Is(err, feed.ErrNoCategories):
			log.Error().Err(err).Msg("Nie udało się pobrać kategorii – przerywam")
		case errors.Is(err, feed.ErrNoProducts):
			log.Error().Err(err).Msg("Brak produktów ze wszystkich źródeł – przerywam")
		default:
			log.Error().Err(err).Msg("Generowanie feedu nieudane")
		}
		return 1
	}
	return 0
}

func buildSources(log zerolog.Logger, cfg *conf.Config, client *fetch.Client) ([]integrations.Source, []string) {
	deps := integrations.Deps{
		Log:    log,
		Client: client,
		Credentials: fetch.Credentials{
			Email: cfg.Credentials.Email,
			Key:   cfg.Credentials.Key,
		},
	}

	var (
		out    []integrations.Source
		brands []string
	)
	for i, raw := range cfg.Sources {
		src, err := integrations.Build(deps, raw)
		if err != nil {
			log.Error().Err(err).Int("index", i).Strs("kinds", integrations.Kinds()).Msg("błąd inicjalizacji źródła – pomijam")
			continue
		}
		out = append(out, src)
		brands = append(brands, src.Brand())
	}
	log.Info().Int("count", len(out)).Msg("Sources built")
	return out, brands
}

func buildSinks(log zerolog.Logger, cfg *conf.Config) ([]feed.Sink, func()) {
	var (
		sinks   []feed.Sink
		closers []func()
	)

	if cfg.Audit != nil && cfg.Audit.DSN != "" {
		h, err := db.Open(cfg.Audit.Driver, cfg.Audit.DSN)
		switch {
		case err != nil:
			log.Error().Err(err).Str("driver", cfg.Audit.Driver).Msg("DB open error – audyt wyłączony")
		default:
			if err := h.Migrate(); err != nil {
				log.Error().Err(err).Msg("DB migrate error – audyt wyłączony")
				_ = h.Close()
				break
			}
			log.Info().Str("driver", h.Driver).Msg("DB ready")
			sinks = append(sinks, db.NewStore(log, h))
			closers = append(closers, func() { _ = h.Close() })
		}
	}

	if cfg.MetricsTextfile != "" {
		sinks = append(sinks, observability.NewTextfile(cfg.MetricsTextfile))
	}

	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}
