// internal/feed/generator.go
package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bartek5186/ymlfeed/internal/integrations"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNoCategories = errors.New("categories unavailable")
	ErrNoProducts   = errors.New("no products after aggregation")
)

type CategorySource interface {
	Categories(ctx context.Context) ([]integrations.Category, error)
}

// ImageSource nigdy nie zwraca błędu – najwyżej pustą mapę.
type ImageSource interface {
	Images(ctx context.Context) map[string]string
}

// Sink dostaje raport po zapisaniu feedu (audyt, metryki). Błąd sinka nie psuje przebiegu.
type Sink interface {
	Name() string
	Flush(ctx context.Context, r *Report, offers []Offer) error
}

type ShopInfo struct {
	Name    string
	Company string
	URL     string
}

// Report – podsumowanie jednego przebiegu.
type Report struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	Output        string
	Categories    int
	Images        int
	Products      int
	Offers        int
	Sources       []SourceResult
	Skipped       []SkipIssue
	FailedSources int
	// Err – przyczyna nieudanego przebiegu; nil = feed zapisany.
	Err error
}

// OK mówi, czy feed został zapisany.
func (r *Report) OK() bool { return r.Err == nil }

// SkippedBy zlicza odrzucone rekordy per powód.
func (r *Report) SkippedBy() map[string]int {
	out := map[string]int{}
	for _, s := range r.Skipped {
		out[s.Reason]++
	}
	return out
}

type Generator struct {
	log        zerolog.Logger
	categories CategorySource
	images     ImageSource
	sources    []integrations.Source
	mapper     *Mapper
	shop       ShopInfo
	output     string
	sinks      []Sink

	// Now – do testów; domyślnie time.Now.
	Now func() time.Time
}

type Params struct {
	Categories CategorySource
	Images     ImageSource // nil = bez zewnętrznych zdjęć
	Sources    []integrations.Source
	Mapper     *Mapper
	Shop       ShopInfo
	Output     string
	Sinks      []Sink
}

func New(log zerolog.Logger, p Params) *Generator {
	return &Generator{
		log:        log.With().Str("component", "generator").Logger(),
		categories: p.Categories,
		images:     p.Images,
		sources:    p.Sources,
		mapper:     p.Mapper,
		shop:       p.Shop,
		output:     p.Output,
		sinks:      p.Sinks,
		Now:        time.Now,
	}
}

// Run: kategorie -> zdjęcia -> źródła -> mapowanie -> zapis -> sinki. Wszystko po kolei.
// Sinki dostają raport także z nieudanego przebiegu (rep.Err != nil).
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	rep := &Report{
		RunID:     uuid.NewString(),
		StartedAt: g.Now(),
		Output:    g.output,
	}
	log := g.log.With().Str("run_id", rep.RunID).Logger()
	log.Info().Int("sources", len(g.sources)).Msg("start generowania feedu")

	offers, err := g.run(ctx, log, rep)
	rep.Err = err
	rep.FinishedAt = g.Now()

	for _, s := range g.sinks {
		if serr := s.Flush(ctx, rep, offers); serr != nil {
			log.Error().Err(serr).Str("sink", s.Name()).Msg("sink nieudany")
		}
	}

	if err != nil {
		return rep, err
	}
	g.logSummary(log, rep)
	return rep, nil
}

func (g *Generator) run(ctx context.Context, log zerolog.Logger, rep *Report) ([]Offer, error) {
	rawCats, err := g.categories.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCategories, err)
	}
	cats := g.mapper.Categories(rawCats)
	rep.Categories = len(cats)
	if len(cats) == 0 {
		log.Warn().Int("raw", len(rawCats)).Msg("brak poprawnych kategorii")
	}

	images := map[string]string{}
	if g.images != nil {
		images = g.images.Images(ctx)
	}
	rep.Images = len(images)

	records, results := Aggregate(ctx, log, g.sources)
	rep.Sources = results
	for _, r := range results {
		if r.Err != nil {
			rep.FailedSources++
		}
	}
	rep.Products = len(records)
	if len(records) == 0 {
		return nil, ErrNoProducts
	}

	offers, skipped := g.mapper.Offers(records, images)
	rep.Offers = len(offers)
	rep.Skipped = skipped

	data, err := Render(Catalog{
		Date: g.Now().Format(DateLayout),
		Shop: Shop{
			Name:       g.shop.Name,
			Company:    g.shop.Company,
			URL:        g.shop.URL,
			Categories: Categories{Items: cats},
			Offers:     Offers{Items: offers},
		},
	})
	if err != nil {
		return nil, err
	}
	if err := WriteFile(g.output, data); err != nil {
		return nil, fmt.Errorf("write %s: %w", g.output, err)
	}
	return offers, nil
}

func (g *Generator) logSummary(log zerolog.Logger, rep *Report) {
	by := rep.SkippedBy()
	reasons := make([]string, 0, len(by))
	for k := range by {
		reasons = append(reasons, k)
	}
	sort.Strings(reasons)

	skipped := zerolog.Dict()
	for _, k := range reasons {
		skipped = skipped.Int(k, by[k])
	}

	log.Info().
		Str("output", rep.Output).
		Int("categories", rep.Categories).
		Int("images", rep.Images).
		Int("products", rep.Products).
		Int("offers", rep.Offers).
		Int("failed_sources", rep.FailedSources).
		Dict("skipped", skipped).
		Dur("took", rep.FinishedAt.Sub(rep.StartedAt)).
		Msg("Plik feed zapisany")
}
