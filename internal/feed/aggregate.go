// internal/feed/aggregate.go
package feed

import (
	"context"

	"github.com/bartek5186/ymlfeed/internal/integrations"
	"github.com/rs/zerolog"
)

// SourceResult – wynik pobrania jednego źródła.
type SourceResult struct {
	Brand    string
	Products int
	Err      error
}

// Aggregate pobiera źródła po kolei. Padnięte źródło jest logowane i pomijane,
// każdy rekord dostaje tag marki; brak deduplikacji.
func Aggregate(ctx context.Context, log zerolog.Logger, sources []integrations.Source) ([]integrations.Record, []SourceResult) {
	var all []integrations.Record
	results := make([]SourceResult, 0, len(sources))

	for _, src := range sources {
		brand := src.Brand()
		items, err := src.Products(ctx)
		if err != nil {
			log.Error().Err(err).Str("source", brand).Msg("źródło niedostępne – pomijam")
			results = append(results, SourceResult{Brand: brand, Err: err})
			continue
		}
		for _, rec := range items {
			rec[integrations.BrandField] = brand
		}
		all = append(all, items...)
		results = append(results, SourceResult{Brand: brand, Products: len(items)})
	}

	log.Info().Int("sources", len(sources)).Int("products", len(all)).Msg("agregacja zakończona")
	return all, results
}
