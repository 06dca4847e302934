// internal/integrations/prompower/prompower.go
package prompower

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bartek5186/ymlfeed/internal/fetch"
	"github.com/bartek5186/ymlfeed/internal/integrations"
	"github.com/rs/zerolog"
)

// Kind pod którym źródło jest w rejestrze.
const Kind = "api"

// Config bloku źródła: {"kind":"api","brand":"Prompower","url":"https://.../getProducts"}
type Config struct {
	integrations.Common
}

// API – produkty z endpointu POST z danymi dostępowymi w body.
type API struct {
	log    zerolog.Logger
	cfg    Config
	client *fetch.Client
	cred   fetch.Credentials
}

func (a *API) Brand() string { return a.cfg.Brand }

// Products zwraca listę produktów; błąd oznacza brak danych z tego źródła.
func (a *API) Products(ctx context.Context) ([]integrations.Record, error) {
	v, err := a.client.PostJSON(ctx, a.cfg.URL, a.cred)
	if err != nil {
		return nil, err
	}
	items, skipped, err := integrations.ProductList(v)
	if err != nil {
		a.log.Error().Err(err).Str("url", a.cfg.URL).Msg("nieprawidłowa odpowiedź produktów")
		return nil, fmt.Errorf("%s: %w", a.cfg.URL, err)
	}
	if skipped > 0 {
		a.log.Warn().Int("skipped", skipped).Msg("pominięto elementy niebędące obiektami")
	}
	a.log.Info().Int("products", len(items)).Msg("produkty pobrane")
	return items, nil
}

func factory(deps integrations.Deps, raw json.RawMessage) (integrations.Source, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	cfg.Brand = strings.TrimSpace(cfg.Brand)
	if cfg.URL == "" {
		return nil, fmt.Errorf("źródło %q: brak url", cfg.Brand)
	}
	return &API{
		log:    deps.Log.With().Str("source", cfg.Brand).Logger(),
		cfg:    cfg,
		client: deps.Client,
		cred:   deps.Credentials,
	}, nil
}

func init() {
	integrations.Register(Kind, factory)
}
