package feed

import (
	"encoding/json"
	"testing"

	"github.com/bartek5186/ymlfeed/internal/integrations"
	"github.com/rs/zerolog"
)

func testOptions() Options {
	return Options{
		KeyFields:          []string{"article"},
		PricePolicy:        PricePositive,
		PreorderPolicy:     PreorderCanPreorder,
		FallbackCategoryID: "10",
		VAT:                "7",
		DefaultVendor:      "Prompower",
		Warehouses:         []string{"Главный склад", "Склад Москва"},
		Brands:             []string{"Prompower", "Brand B"},
	}
}

func mapOne(t *testing.T, opts Options, rec integrations.Record, images map[string]string) (Offer, SkipIssue, bool) {
	t.Helper()
	return NewMapper(zerolog.Nop(), opts).Offer(rec, images)
}

func TestCategoriesFilterAndOrder(t *testing.T) {
	m := NewMapper(zerolog.Nop(), testOptions())
	got := m.Categories([]integrations.Category{
		{ID: "3", Title: "C"},
		{ID: "", Title: "no id"},
		{ID: "1", Title: "A"},
		{ID: "2", Title: ""},
		{ID: "3", Title: "C again"},
		{ID: " 4 ", Title: " D "},
	})
	want := []Category{{ID: "3", Title: "C"}, {ID: "1", Title: "A"}, {ID: "4", Title: "D"}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestMissingKeyIsDropped(t *testing.T) {
	_, issue, ok := mapOne(t, testOptions(), integrations.Record{"title": "No article", "price": json.Number("10")}, nil)
	if ok {
		t.Fatal("record without key must be dropped")
	}
	if issue.Reason != ReasonMissingKey {
		t.Errorf("expected reason %s, got %s", ReasonMissingKey, issue.Reason)
	}
}

func TestConfiguredKeyFields(t *testing.T) {
	opts := testOptions()
	opts.KeyFields = []string{"article", "id"}
	o, _, ok := mapOne(t, opts, integrations.Record{"id": json.Number("77"), "price": json.Number("5")}, nil)
	if !ok {
		t.Fatal("expected fallback to id key")
	}
	if o.ID != "77" || o.VendorCode != "77" {
		t.Errorf("expected id/vendorCode 77, got %q/%q", o.ID, o.VendorCode)
	}
}

func TestPricePolicy(t *testing.T) {
	tests := []struct {
		name      string
		policy    PricePolicy
		price     any
		wantOK    bool
		wantPrice string
		wantWhy   string
	}{
		{"positive keeps valid", PricePositive, json.Number("100.50"), true, "100.5", ""},
		{"positive keeps string", PricePositive, "1 234,00", true, "1234", ""},
		{"positive drops zero", PricePositive, json.Number("0"), false, "", ReasonNonPositivePrice},
		{"positive drops negative", PricePositive, "-5", false, "", ReasonNonPositivePrice},
		{"positive drops missing", PricePositive, nil, false, "", ReasonNonPositivePrice},
		{"positive drops garbage", PricePositive, "call us", false, "", ReasonBadPrice},
		{"any keeps zero", PriceAny, json.Number("0"), true, "0", ""},
		{"any keeps negative", PriceAny, "-5", true, "-5", ""},
		{"any zero for missing", PriceAny, nil, true, "0", ""},
		{"any zero for garbage", PriceAny, "call us", true, "0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			opts.PricePolicy = tt.policy
			rec := integrations.Record{"article": "P1"}
			if tt.price != nil {
				rec["price"] = tt.price
			}
			o, issue, ok := mapOne(t, opts, rec, nil)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (issue %+v)", ok, tt.wantOK, issue)
			}
			if ok && o.Price != tt.wantPrice {
				t.Errorf("expected price %q, got %q", tt.wantPrice, o.Price)
			}
			if !ok {
				if issue.Reason != tt.wantWhy {
					t.Errorf("expected reason %q, got %q", tt.wantWhy, issue.Reason)
				}
				if issue.Key != "P1" {
					t.Errorf("expected issue key P1, got %q", issue.Key)
				}
			}
		})
	}
}

func TestFieldDefaults(t *testing.T) {
	o, _, ok := mapOne(t, testOptions(), integrations.Record{
		"article":               "K9",
		"price":                 json.Number("1"),
		integrations.BrandField: "Unknown Co",
	}, nil)
	if !ok {
		t.Fatal("expected offer")
	}
	checks := map[string][2]string{
		"name":          {"Товар K9", o.Name},
		"vendorCode":    {"K9", o.VendorCode},
		"categoryId":    {"10", o.CategoryID},
		"vat":           {"7", o.VAT},
		"step-quantity": {"1", o.StepQuantity},
		"brand":         {"Prompower", o.Brand},
		"vendor":        {"Prompower", o.Vendor},
		"picture":       {"", o.Picture},
		"description":   {"", o.Description},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s: expected %q, got %q", field, c[0], c[1])
		}
	}
}

func TestSourceFieldsWin(t *testing.T) {
	o, _, ok := mapOne(t, testOptions(), integrations.Record{
		"article":               "K9",
		"vendorCode":            "VC-9",
		"title":                 "Pump 9",
		"categoryId":            json.Number("55"),
		"price":                 json.Number("12"),
		"description":           "Nice pump",
		integrations.BrandField: "Brand B",
	}, nil)
	if !ok {
		t.Fatal("expected offer")
	}
	if o.VendorCode != "K9" {
		t.Errorf("article goes first for vendorCode, got %q", o.VendorCode)
	}
	if o.Name != "Pump 9" || o.CategoryID != "55" || o.Description != "Nice pump" {
		t.Errorf("unexpected fields %+v", o)
	}
	if o.Brand != "Brand B" || o.Vendor != "Brand B" {
		t.Errorf("expected brand from source tag, got %q/%q", o.Brand, o.Vendor)
	}
}

func TestPicturePrecedence(t *testing.T) {
	images := map[string]string{"A1": "http://x/a.jpg"}

	tests := []struct {
		name string
		rec  integrations.Record
		want string
	}{
		{"image map wins", integrations.Record{"article": "A1", "price": "1", "picture": "http://x/old.jpg"}, "http://x/a.jpg"},
		{"record picture", integrations.Record{"article": "B1", "price": "1", "picture": "http://x/b.jpg"}, "http://x/b.jpg"},
		{"record image", integrations.Record{"article": "B2", "price": "1", "image": "http://x/b2.jpg"}, "http://x/b2.jpg"},
		{"omitted", integrations.Record{"article": "B3", "price": "1"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _, ok := mapOne(t, testOptions(), tt.rec, images)
			if !ok {
				t.Fatal("expected offer")
			}
			if o.Picture != tt.want {
				t.Errorf("expected picture %q, got %q", tt.want, o.Picture)
			}
		})
	}
}

func TestWarehousesAndPreorder(t *testing.T) {
	tests := []struct {
		name         string
		policy       PreorderPolicy
		rec          integrations.Record
		wantStock    string
		wantPreorder string
	}{
		{"out of stock", PreorderCanPreorder, integrations.Record{"instock": "0"}, "0", "1"},
		{"in stock", PreorderCanPreorder, integrations.Record{"instock": "5"}, "5", "0"},
		{"quantity field", PreorderCanPreorder, integrations.Record{"quantity": json.Number("3")}, "3", "0"},
		{"fractional truncated", PreorderCanPreorder, integrations.Record{"instock": "2.7"}, "2", "0"},
		{"invalid stock", PreorderCanPreorder, integrations.Record{"instock": "many"}, "0", "1"},
		{"negative stock", PreorderCanPreorder, integrations.Record{"instock": "-4"}, "0", "1"},
		{"huge integer clamped", PreorderCanPreorder, integrations.Record{"instock": "99999999999"}, "2147483647", "0"},
		{"huge decimal clamped", PreorderCanPreorder, integrations.Record{"instock": json.Number("1000000000000000000000000000000.5")}, "2147483647", "0"},
		{"opt out respected", PreorderCanPreorder, integrations.Record{"instock": "0", "can_preorder": false}, "0", "0"},
		{"opt out as string", PreorderCanPreorder, integrations.Record{"instock": "0", "can_preorder": "0"}, "0", "0"},
		{"opt in explicit", PreorderCanPreorder, integrations.Record{"instock": "0", "can_preorder": true}, "0", "1"},
		{"always ignores opt out", PreorderAlways, integrations.Record{"instock": "0", "can_preorder": false}, "0", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			opts.PreorderPolicy = tt.policy
			rec := integrations.Record{"article": "B2", "price": json.Number("100")}
			for k, v := range tt.rec {
				rec[k] = v
			}
			o, _, ok := mapOne(t, opts, rec, nil)
			if !ok {
				t.Fatal("expected offer")
			}
			if len(o.Warehouses) != 2 {
				t.Fatalf("expected 2 warehouses, got %d", len(o.Warehouses))
			}
			if o.Warehouses[0].Quantity != tt.wantStock {
				t.Errorf("expected stock %q, got %q", tt.wantStock, o.Warehouses[0].Quantity)
			}
			if o.Warehouses[0].Name != "Главный склад" || o.Warehouses[0].Unit != WarehouseUnit {
				t.Errorf("unexpected first warehouse %+v", o.Warehouses[0])
			}
			if o.Warehouses[1].Quantity != "0" {
				t.Errorf("second warehouse should be 0, got %q", o.Warehouses[1].Quantity)
			}
			if o.Preorder != tt.wantPreorder {
				t.Errorf("expected preorder %q, got %q", tt.wantPreorder, o.Preorder)
			}
		})
	}
}

func TestParams(t *testing.T) {
	tests := []struct {
		name string
		rec  integrations.Record
		want []Param
	}{
		{
			name: "dimensions",
			rec:  integrations.Record{"height": json.Number("10"), "width": json.Number("20"), "depth": json.Number("30")},
			want: []Param{{Name: "Габариты", Unit: "мм", Value: "10x20x30"}},
		},
		{
			name: "weight and dimensions",
			rec:  integrations.Record{"weight": "14", "height": "940", "width": "230", "depth": "520"},
			want: []Param{
				{Name: "Вес", Unit: "кг", Value: "14"},
				{Name: "Габариты", Unit: "мм", Value: "940x230x520"},
			},
		},
		{
			name: "missing depth",
			rec:  integrations.Record{"height": json.Number("10"), "width": json.Number("20")},
			want: nil,
		},
		{
			name: "zero width",
			rec:  integrations.Record{"height": "10", "width": "0", "depth": "30"},
			want: nil,
		},
		{
			name: "zero weight",
			rec:  integrations.Record{"weight": json.Number("0.0")},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := integrations.Record{"article": "D1", "price": "1"}
			for k, v := range tt.rec {
				rec[k] = v
			}
			o, _, ok := mapOne(t, testOptions(), rec, nil)
			if !ok {
				t.Fatal("expected offer")
			}
			if len(o.Params) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, o.Params)
			}
			for i := range tt.want {
				if o.Params[i] != tt.want[i] {
					t.Errorf("param %d: expected %+v, got %+v", i, tt.want[i], o.Params[i])
				}
			}
		})
	}
}

func TestPlainDescriptions(t *testing.T) {
	opts := testOptions()
	opts.PlainDescriptions = true
	o, _, ok := mapOne(t, opts, integrations.Record{
		"article":     "H1",
		"price":       "1",
		"description": "<p>Насос <b>ВОДА</b></p>\n<ul><li>220 V</li></ul>",
	}, nil)
	if !ok {
		t.Fatal("expected offer")
	}
	if o.Description != "Насос ВОДА 220 V" {
		t.Errorf("unexpected plain description %q", o.Description)
	}
}

func TestOffersKeepOrderWithoutDedup(t *testing.T) {
	m := NewMapper(zerolog.Nop(), testOptions())
	offers, issues := m.Offers([]integrations.Record{
		{"article": "X", "price": "1"},
		{"price": "1"},
		{"article": "Y", "price": "0"},
		{"article": "X", "price": "2"},
	}, nil)
	if len(offers) != 2 || offers[0].ID != "X" || offers[1].ID != "X" {
		t.Fatalf("expected both X offers in order, got %+v", offers)
	}
	if offers[1].Price != "2" {
		t.Errorf("expected second X price 2, got %s", offers[1].Price)
	}
	if len(issues) != 2 {
		t.Errorf("expected 2 skip issues, got %d", len(issues))
	}
}

func TestRulesRecordDefaultedFields(t *testing.T) {
	opts := testOptions()
	var defaulted []string
	c := ruleCtx{key: "K1", opts: &opts, defaulted: &defaulted}

	rec := integrations.Record{"title": "Pump"}
	if got := ruleName.Resolve(rec, c); got != "Pump" {
		t.Errorf("expected source title, got %q", got)
	}
	if got := ruleCategory.Resolve(rec, c); got != "10" {
		t.Errorf("expected fallback category, got %q", got)
	}
	if got := ruleVendorCode.Resolve(rec, c); got != "K1" {
		t.Errorf("expected key as vendorCode, got %q", got)
	}
	if got := rulePicture.Resolve(rec, c); got != "" {
		t.Errorf("picture has no default, got %q", got)
	}

	want := []string{"categoryId", "vendorCode"}
	if len(defaulted) != len(want) {
		t.Fatalf("expected defaulted %v, got %v", want, defaulted)
	}
	for i := range want {
		if defaulted[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], defaulted[i])
		}
	}
}
