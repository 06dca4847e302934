// internal/integrations/woocommerce/woocommerce.go
package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bartek5186/ymlfeed/internal/fetch"
	"github.com/bartek5186/ymlfeed/internal/integrations"
	"github.com/rs/zerolog"
)

const (
	Kind = "woocommerce"

	productsPath   = "/wp-json/wc/v3/products"
	defaultPerPage = 100
	defaultMaxPage = 200
)

type Config struct {
	integrations.Common
	ConsumerKey string `json:"consumer_key"`
	ConsumerSec string `json:"consumer_secret"`
	PerPage     int    `json:"per_page"`
	MaxPages    int    `json:"max_pages"`
}

// Woo – produkty sklepu WooCommerce przez REST API, strona po stronie.
type Woo struct {
	log    zerolog.Logger
	cfg    Config
	client *fetch.Client
}

func (w *Woo) Brand() string { return w.cfg.Brand }

func (w *Woo) Products(ctx context.Context) ([]integrations.Record, error) {
	base, err := url.Parse(w.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("woo url: %w", err)
	}
	base.Path = strings.TrimRight(base.Path, "/") + productsPath

	var (
		out     []integrations.Record
		drafts  int
		noSKU   int
		perPage = w.cfg.PerPage
	)
	for page := 1; page <= w.cfg.MaxPages; page++ {
		q := base.Query()
		q.Set("orderby", "id")
		q.Set("order", "asc")
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))
		base.RawQuery = q.Encode()

		body, err := w.client.GetRaw(ctx, base.String(), fetch.WithBasicAuth(w.cfg.ConsumerKey, w.cfg.ConsumerSec))
		if err != nil {
			return nil, fmt.Errorf("woo page %d: %w", page, err)
		}

		var items []wcProduct
		if err := json.Unmarshal(body, &items); err != nil {
			w.log.Error().Err(err).Int("page", page).Msg("decode strony produktów")
			return nil, fmt.Errorf("decode page %d: %w", page, err)
		}

		for _, p := range items {
			if p.Status != "" && p.Status != "publish" {
				drafts++
				continue
			}
			if strings.TrimSpace(p.SKU) == "" {
				noSKU++
			}
			out = append(out, toRecord(p))
		}

		if len(items) < perPage {
			break
		}
	}

	w.log.Info().
		Int("products", len(out)).
		Int("unpublished", drafts).
		Int("without_sku", noSKU).
		Msg("Woo produkty pobrane")
	return out, nil
}

// toRecord przepisuje produkt Woo na pola, które zna mapper feedu.
func toRecord(p wcProduct) integrations.Record {
	rec := integrations.Record{
		"id":          json.Number(strconv.FormatInt(p.ID, 10)),
		"title":       p.Name,
		"description": p.Description,
	}
	if p.SKU != "" {
		rec["article"] = p.SKU
	}
	if p.Description == "" && p.ShortDescription != "" {
		rec["description"] = p.ShortDescription
	}

	price := p.RegularPrice
	if p.SalePrice != "" {
		price = p.SalePrice
	}
	rec["price"] = price

	// manage_stock=true: liczy się stock_quantity; inaczej Woo zna tylko stock_status
	switch {
	case p.ManageStock && p.StockQty != nil:
		rec["instock"] = *p.StockQty
	case !p.ManageStock && p.StockStatus == "instock":
		rec["instock"] = json.Number("1")
	default:
		rec["instock"] = json.Number("0")
	}
	rec["can_preorder"] = (p.Backorders != "" && p.Backorders != "no") || p.StockStatus == "onbackorder"

	if len(p.Categories) > 0 {
		rec["categoryId"] = json.Number(strconv.FormatInt(p.Categories[0].ID, 10))
	}
	if len(p.Images) > 0 && p.Images[0].Src != "" {
		rec["picture"] = p.Images[0].Src
	}
	if p.Weight != "" {
		rec["weight"] = p.Weight
	}
	rec["height"] = p.Dimensions.Height
	rec["width"] = p.Dimensions.Width
	rec["depth"] = p.Dimensions.Length
	return rec
}

func factory(deps integrations.Deps, raw json.RawMessage) (integrations.Source, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("źródło %q: brak url sklepu", cfg.Brand)
	}
	if cfg.ConsumerKey == "" || cfg.ConsumerSec == "" {
		return nil, fmt.Errorf("źródło %q: brak consumer_key/consumer_secret", cfg.Brand)
	}
	if cfg.PerPage <= 0 || cfg.PerPage > 100 {
		cfg.PerPage = defaultPerPage
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPage
	}
	return &Woo{
		log:    deps.Log.With().Str("source", cfg.Brand).Str("integration", Kind).Logger(),
		cfg:    cfg,
		client: deps.Client,
	}, nil
}

func init() {
	integrations.Register(Kind, factory)
}
