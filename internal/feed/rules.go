// internal/feed/rules.go
package feed

import (
	"github.com/bartek5186/ymlfeed/internal/integrations"
)

// ruleCtx – to, co reguła może zobaczyć poza samym rekordem.
type ruleCtx struct {
	key       string
	images    map[string]string
	opts      *Options
	defaulted *[]string // nazwy reguł, które skończyły na Else
}

// Rule: najpierw Lookup (jeśli jest), potem pola From po kolei, na końcu Else.
// Else == nil oznacza, że pole zostaje puste i jest pomijane w feedzie.
type Rule struct {
	Name   string
	Lookup func(c ruleCtx) string
	From   []string
	Else   func(c ruleCtx) string
}

func (r Rule) Resolve(rec integrations.Record, c ruleCtx) string {
	if r.Lookup != nil {
		if v := r.Lookup(c); v != "" {
			return v
		}
	}
	if v, ok := rec.Field(r.From...); ok {
		return v
	}
	if r.Else != nil {
		if c.defaulted != nil {
			*c.defaulted = append(*c.defaulted, r.Name)
		}
		return r.Else(c)
	}
	return ""
}

func keyValue(c ruleCtx) string { return c.key }

var (
	ruleVendorCode = Rule{
		Name: "vendorCode",
		From: []string{"article", "vendorCode"},
		Else: keyValue,
	}
	ruleName = Rule{
		Name: "name",
		From: []string{"title", "name"},
		Else: func(c ruleCtx) string { return "Товар " + c.key },
	}
	ruleCategory = Rule{
		Name: "categoryId",
		From: []string{"categoryId", "category_id"},
		Else: func(c ruleCtx) string { return c.opts.FallbackCategoryID },
	}
	rulePicture = Rule{
		Name:   "picture",
		Lookup: func(c ruleCtx) string { return c.images[c.key] },
		From:   []string{"picture", "image", "image_url"},
	}
	ruleDescription = Rule{
		Name: "description",
		From: []string{"description", "full_description"},
	}
	rulePrice = Rule{
		Name: "price",
		From: []string{"price"},
	}
	ruleStock = Rule{
		Name: "stock",
		From: []string{"instock", "quantity", "stock"},
	}
)

