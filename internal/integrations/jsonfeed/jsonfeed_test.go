package jsonfeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bartek5186/ymlfeed/internal/fetch"
	"github.com/bartek5186/ymlfeed/internal/integrations"
	"github.com/rs/zerolog"
)

func TestStaticSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Write([]byte(`[{"article": "B1"}, {"article": "B2"}, {"article": "B3"}]`))
	}))
	defer srv.Close()

	raw, _ := json.Marshal(map[string]string{"kind": Kind, "brand": "Brand B", "url": srv.URL})
	src, err := integrations.Build(integrations.Deps{
		Log:    zerolog.Nop(),
		Client: fetch.New(zerolog.Nop(), time.Second),
	}, raw)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	items, err := src.Products(context.Background())
	if err != nil {
		t.Fatalf("Products failed: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("expected 3 products, got %d", len(items))
	}
}

func TestStaticSourceBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	raw, _ := json.Marshal(map[string]string{"kind": Kind, "brand": "Brand B", "url": srv.URL})
	src, err := integrations.Build(integrations.Deps{
		Log:    zerolog.Nop(),
		Client: fetch.New(zerolog.Nop(), time.Second),
	}, raw)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	_, err = src.Products(context.Background())
	if err == nil || errors.Is(err, fetch.ErrUnavailable) {
		t.Fatalf("expected payload shape error, got %v", err)
	}
}
