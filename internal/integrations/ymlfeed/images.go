// internal/integrations/ymlfeed/images.go
package ymlfeed

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/bartek5186/ymlfeed/internal/fetch"
	"github.com/rs/zerolog"
)

// Resolver buduje mapę offer id -> zdjęcie z zewnętrznego feedu YML.
type Resolver struct {
	log    zerolog.Logger
	client *fetch.Client
	url    string
}

func NewResolver(log zerolog.Logger, client *fetch.Client, url string) *Resolver {
	return &Resolver{
		log:    log.With().Str("component", "images").Logger(),
		client: client,
		url:    url,
	}
}

// Images nigdy nie przerywa przebiegu: każdy błąd = pusta mapa.
func (r *Resolver) Images(ctx context.Context) map[string]string {
	if r.url == "" {
		return map[string]string{}
	}
	body, err := r.client.GetRaw(ctx, r.url)
	if err != nil {
		r.log.Warn().Str("url", r.url).Msg("feed zdjęć niedostępny – lecę bez niego")
		return map[string]string{}
	}
	m, err := ParseImages(bytes.NewReader(body))
	if err != nil {
		r.log.Warn().Err(err).Str("url", r.url).Msg("feed zdjęć nieczytelny – lecę bez niego")
		return map[string]string{}
	}
	r.log.Info().Int("images", len(m)).Msg("mapa zdjęć gotowa")
	return m
}

type xmlOfferPictures struct {
	ID       string   `xml:"id,attr"`
	Pictures []string `xml:"picture"`
}

// ParseImages czyta feed strumieniowo; pierwsze niepuste <picture> wygrywa.
func ParseImages(rd io.Reader) (map[string]string, error) {
	out := map[string]string{}
	err := walkOffers(rd, func(dec *xml.Decoder, se *xml.StartElement) error {
		var o xmlOfferPictures
		if err := dec.DecodeElement(&o, se); err != nil {
			return err
		}
		id := strings.TrimSpace(o.ID)
		if id == "" {
			return nil
		}
		if _, dup := out[id]; dup {
			return nil
		}
		for _, p := range o.Pictures {
			if p = strings.TrimSpace(p); p != "" {
				out[id] = p
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
