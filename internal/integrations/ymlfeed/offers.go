// internal/integrations/ymlfeed/offers.go
package ymlfeed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bartek5186/ymlfeed/internal/fetch"
	"github.com/bartek5186/ymlfeed/internal/integrations"
	"github.com/rs/zerolog"
)

const Kind = "yml"

type Config struct {
	integrations.Common
	Path string `json:"path"` // lokalny plik zamiast url, np. ~/feeds/supplier.xml
}

// Offers – źródło produktów z cudzego feedu YML (url albo plik).
type Offers struct {
	log    zerolog.Logger
	cfg    Config
	client *fetch.Client
}

func (o *Offers) Brand() string { return o.cfg.Brand }

func (o *Offers) Products(ctx context.Context) ([]integrations.Record, error) {
	body, err := o.load(ctx)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(body)

	recs, err := ParseOffers(bytes.NewReader(body))
	if err != nil {
		o.log.Error().Err(err).Msg("nieczytelny feed YML")
		return nil, fmt.Errorf("%s: %w", o.location(), err)
	}
	o.log.Info().
		Str("from", o.location()).
		Str("sha256", hex.EncodeToString(sum[:])).
		Int("offers", len(recs)).
		Msg("feed YML wczytany")
	return recs, nil
}

func (o *Offers) load(ctx context.Context) ([]byte, error) {
	if o.cfg.Path != "" {
		return os.ReadFile(expandHome(o.cfg.Path))
	}
	return o.client.GetRaw(ctx, o.cfg.URL)
}

func (o *Offers) location() string {
	if o.cfg.Path != "" {
		return o.cfg.Path
	}
	return o.cfg.URL
}

type xmlParam struct {
	Name  string `xml:"name,attr"`
	Unit  string `xml:"unit,attr"`
	Value string `xml:",chardata"`
}

type xmlWarehouse struct {
	Name     string `xml:"name,attr"`
	Quantity string `xml:",chardata"`
}

type xmlOffer struct {
	ID          string         `xml:"id,attr"`
	Available   string         `xml:"available,attr"`
	VendorCode  string         `xml:"vendorCode"`
	Name        string         `xml:"name"`
	CategoryID  string         `xml:"categoryId"`
	Price       string         `xml:"price"`
	Pictures    []string       `xml:"picture"`
	Description string         `xml:"description"`
	Count       string         `xml:"count"`
	Quantity    string         `xml:"quantity"`
	Warehouses  []xmlWarehouse `xml:"warehouse"`
	Preorder    string         `xml:"preorder"`
	Params      []xmlParam     `xml:"param"`
}

// ParseOffers zamienia <offer> na rekordy z polami rozumianymi przez mapper feedu.
// Oferty bez id i vendorCode są pomijane.
func ParseOffers(rd io.Reader) ([]integrations.Record, error) {
	var out []integrations.Record
	err := walkOffers(rd, func(dec *xml.Decoder, se *xml.StartElement) error {
		var x xmlOffer
		if err := dec.DecodeElement(&x, se); err != nil {
			return err
		}
		if rec, ok := offerRecord(x); ok {
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func offerRecord(x xmlOffer) (integrations.Record, bool) {
	article := strings.TrimSpace(x.VendorCode)
	if article == "" {
		article = strings.TrimSpace(x.ID)
	}
	if article == "" {
		return nil, false
	}

	rec := integrations.Record{
		"article":     article,
		"title":       strings.TrimSpace(x.Name),
		"categoryId":  strings.TrimSpace(x.CategoryID),
		"price":       strings.TrimSpace(x.Price),
		"description": strings.TrimSpace(x.Description),
	}
	for _, p := range x.Pictures {
		if p = strings.TrimSpace(p); p != "" {
			rec["picture"] = p
			break
		}
	}

	switch {
	case strings.TrimSpace(x.Count) != "":
		rec["instock"] = strings.TrimSpace(x.Count)
	case strings.TrimSpace(x.Quantity) != "":
		rec["instock"] = strings.TrimSpace(x.Quantity)
	case len(x.Warehouses) > 0:
		rec["instock"] = strings.TrimSpace(x.Warehouses[0].Quantity)
	case strings.EqualFold(x.Available, "false"):
		rec["instock"] = "0"
	}
	if p := strings.TrimSpace(x.Preorder); p != "" {
		rec["can_preorder"] = p
	}

	for _, p := range x.Params {
		v := strings.TrimSpace(p.Value)
		switch strings.TrimSpace(p.Name) {
		case "Вес":
			rec["weight"] = v
		case "Габариты":
			parts := strings.Split(dimSeparators.Replace(v), "x")
			if len(parts) == 3 {
				rec["height"] = strings.TrimSpace(parts[0])
				rec["width"] = strings.TrimSpace(parts[1])
				rec["depth"] = strings.TrimSpace(parts[2])
			}
		}
	}
	return rec, true
}

// dimSeparators sprowadza zapisy "10х20х30", "10×20×30", "10X20X30", "10*20*30" do "x".
var dimSeparators = strings.NewReplacer("\u0445", "x", "\u0425", "x", "\u00d7", "x", "X", "x", "*", "x")

func expandHome(p string) string {
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func factory(deps integrations.Deps, raw json.RawMessage) (integrations.Source, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.URL == "" && cfg.Path == "" {
		return nil, fmt.Errorf("źródło %q: podaj url albo path", cfg.Brand)
	}
	return &Offers{
		log:    deps.Log.With().Str("source", cfg.Brand).Str("integration", Kind).Logger(),
		cfg:    cfg,
		client: deps.Client,
	}, nil
}

func init() {
	integrations.Register(Kind, factory)
}
