// internal/integrations/types.go
package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bartek5186/ymlfeed/internal/fetch"
	"github.com/rs/zerolog"
)

// Record – jeden produkt z upstreamu, pola heterogeniczne (liczby jako json.Number).
type Record map[string]any

// BrandField – pole, którym agregator oznacza źródło rekordu.
const BrandField = "_brand"

// Source to jedno źródło produktów marki (np. Prompower API).
type Source interface {
	Brand() string
	Products(ctx context.Context) ([]Record, error)
}

// Deps – to, co fabryka dostaje od generatora.
type Deps struct {
	Log         zerolog.Logger
	Client      *fetch.Client
	Credentials fetch.Credentials
}

type Factory func(deps Deps, raw json.RawMessage) (Source, error)

// Common – pola wspólne każdego bloku "sources" w configu.
type Common struct {
	Kind  string `json:"kind"`
	Brand string `json:"brand"`
	URL   string `json:"url"`
}

// Build rozwiązuje blok configu przez rejestr.
func Build(deps Deps, raw json.RawMessage) (Source, error) {
	var c Common
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("source config: %w", err)
	}
	kind := strings.TrimSpace(c.Kind)
	if kind == "" {
		kind = "api"
	}
	f, ok := Get(kind)
	if !ok {
		return nil, fmt.Errorf("brak fabryki dla kind=%q", kind)
	}
	return f(deps, raw)
}

// ProductList akceptuje tablicę albo obiekt z kluczem "products".
// Elementy niebędące obiektami są pomijane.
func ProductList(v any) ([]Record, int, error) {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case map[string]any:
		list, ok := t["products"].([]any)
		if !ok {
			return nil, 0, fmt.Errorf("response object has no products array")
		}
		items = list
	default:
		return nil, 0, fmt.Errorf("unexpected products payload %T", v)
	}

	out := make([]Record, 0, len(items))
	skipped := 0
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			skipped++
			continue
		}
		out = append(out, Record(m))
	}
	return out, skipped, nil
}

// Category – pozycja drzewa kategorii, przepisywana do feedu bez zmian.
type Category struct {
	ID    string
	Title string
}

// Text zamienia wartość z JSON-a na string; nil i typy złożone dają "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Field zwraca tekst pierwszego niepustego pola z listy.
func (r Record) Field(names ...string) (string, bool) {
	for _, n := range names {
		if s := Text(r[n]); s != "" {
			return s, true
		}
	}
	return "", false
}
