// internal/integrations/jsonfeed/jsonfeed.go
package jsonfeed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bartek5186/ymlfeed/internal/fetch"
	"github.com/bartek5186/ymlfeed/internal/integrations"
	"github.com/rs/zerolog"
)

const Kind = "json"

// Static – lista produktów wystawiona jako zwykły plik JSON (GET, bez autoryzacji).
type Static struct {
	log    zerolog.Logger
	cfg    integrations.Common
	client *fetch.Client
}

func (s *Static) Brand() string { return s.cfg.Brand }

func (s *Static) Products(ctx context.Context) ([]integrations.Record, error) {
	v, err := s.client.GetJSON(ctx, s.cfg.URL)
	if err != nil {
		return nil, err
	}
	items, skipped, err := integrations.ProductList(v)
	if err != nil {
		s.log.Error().Err(err).Str("url", s.cfg.URL).Msg("nieprawidłowa odpowiedź produktów")
		return nil, fmt.Errorf("%s: %w", s.cfg.URL, err)
	}
	if skipped > 0 {
		s.log.Warn().Int("skipped", skipped).Msg("pominięto elementy niebędące obiektami")
	}
	return items, nil
}

func factory(deps integrations.Deps, raw json.RawMessage) (integrations.Source, error) {
	var cfg integrations.Common
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("źródło %q: brak url", cfg.Brand)
	}
	return &Static{
		log:    deps.Log.With().Str("source", cfg.Brand).Logger(),
		cfg:    cfg,
		client: deps.Client,
	}, nil
}

func init() {
	integrations.Register(Kind, factory)
}
