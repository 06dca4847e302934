package prompower

import (
	"context"
	"fmt"

	"github.com/bartek5186/ymlfeed/internal/fetch"
	"github.com/bartek5186/ymlfeed/internal/integrations"
)

// Categories pobiera drzewo kategorii (GET, tablica {id,title}).
type Categories struct {
	Client *fetch.Client
	URL    string
}

func (c *Categories) Categories(ctx context.Context) ([]integrations.Category, error) {
	v, err := c.Client.GetJSON(ctx, c.URL)
	if err != nil {
		return nil, err
	}
	return ParseCategories(v)
}

// ParseCategories nie filtruje – pola tylko zamieniane na tekst.
func ParseCategories(v any) ([]integrations.Category, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("categories: expected array, got %T", v)
	}
	out := make([]integrations.Category, 0, len(list))
	for _, it := range list {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, integrations.Category{
			ID:    integrations.Text(m["id"]),
			Title: integrations.Text(m["title"]),
		})
	}
	return out, nil
}
