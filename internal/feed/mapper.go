// internal/feed/mapper.go
package feed

import (
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bartek5186/ymlfeed/internal/integrations"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type PricePolicy string

const (
	// PricePositive odrzuca ceny nieparsowalne i <= 0.
	PricePositive PricePolicy = "positive"
	// PriceAny przepuszcza wszystko; brak/błąd ceny = "0".
	PriceAny PricePolicy = "any"
)

type PreorderPolicy string

const (
	// PreorderCanPreorder: brak na stanie i can_preorder nie jest jawnie false.
	PreorderCanPreorder PreorderPolicy = "can_preorder"
	// PreorderAlways: każdy brak na stanie to preorder.
	PreorderAlways PreorderPolicy = "always"
)

const (
	StepQuantity  = "1"
	WarehouseUnit = "шт"
)

// Powody odrzucenia rekordu.
const (
	ReasonMissingKey       = "missing_key"
	ReasonBadPrice         = "bad_price"
	ReasonNonPositivePrice = "non_positive_price"
)

type Options struct {
	KeyFields          []string
	PricePolicy        PricePolicy
	PreorderPolicy     PreorderPolicy
	FallbackCategoryID string
	VAT                string
	DefaultVendor      string
	Warehouses         []string
	PlainDescriptions  bool
	// Brands – marki skonfigurowanych źródeł; inne tagi dostają DefaultVendor.
	Brands []string
}

// SkipIssue – rekord odrzucony przez mapper (nie jest błędem przebiegu).
type SkipIssue struct {
	Key     string
	Brand   string
	Reason  string
	Details string
}

type Mapper struct {
	log    zerolog.Logger
	opts   Options
	brands map[string]struct{}
}

func NewMapper(log zerolog.Logger, opts Options) *Mapper {
	if len(opts.KeyFields) == 0 {
		opts.KeyFields = []string{"article"}
	}
	if opts.PricePolicy == "" {
		opts.PricePolicy = PricePositive
	}
	if opts.PreorderPolicy == "" {
		opts.PreorderPolicy = PreorderCanPreorder
	}
	if len(opts.Warehouses) == 0 {
		opts.Warehouses = []string{"Главный склад"}
	}
	brands := make(map[string]struct{}, len(opts.Brands))
	for _, b := range opts.Brands {
		if b = strings.TrimSpace(b); b != "" {
			brands[b] = struct{}{}
		}
	}
	return &Mapper{
		log:    log.With().Str("component", "mapper").Logger(),
		opts:   opts,
		brands: brands,
	}
}

// Categories: tylko pary z niepustym id i tytułem, kolejność źródła, pierwsze id wygrywa.
func (m *Mapper) Categories(in []integrations.Category) []Category {
	out := make([]Category, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		id := strings.TrimSpace(c.ID)
		title := strings.TrimSpace(c.Title)
		if id == "" || title == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Category{ID: id, Title: title})
	}
	return out
}

// Offers mapuje rekordy w kolejności wejścia; bez deduplikacji między źródłami.
func (m *Mapper) Offers(records []integrations.Record, images map[string]string) ([]Offer, []SkipIssue) {
	offers := make([]Offer, 0, len(records))
	var issues []SkipIssue
	for _, rec := range records {
		o, issue, ok := m.Offer(rec, images)
		if !ok {
			issues = append(issues, issue)
			continue
		}
		offers = append(offers, o)
	}
	return offers, issues
}

// Offer mapuje jeden rekord; ok=false oznacza odrzucenie z podanym powodem.
func (m *Mapper) Offer(rec integrations.Record, images map[string]string) (Offer, SkipIssue, bool) {
	brand := integrations.Text(rec[integrations.BrandField])

	// 1) klucz
	key, ok := rec.Field(m.opts.KeyFields...)
	if !ok {
		m.log.Warn().Str("brand", brand).Strs("key_fields", m.opts.KeyFields).Msg("rekord bez klucza – pomijam")
		return Offer{}, SkipIssue{Brand: brand, Reason: ReasonMissingKey, Details: "brak pól " + strings.Join(m.opts.KeyFields, "/")}, false
	}

	var defaulted []string
	c := ruleCtx{key: key, images: images, opts: &m.opts, defaulted: &defaulted}

	// 2) cena
	price, issue, ok := m.price(rulePrice.Resolve(rec, c))
	if !ok {
		issue.Key, issue.Brand = key, brand
		m.log.Warn().Str("key", key).Str("brand", brand).Str("reason", issue.Reason).Msg("odrzucono rekord")
		return Offer{}, issue, false
	}

	// 3) pola z regułami
	vendor := m.vendor(brand)
	o := Offer{
		ID:           key,
		VendorCode:   ruleVendorCode.Resolve(rec, c),
		Name:         ruleName.Resolve(rec, c),
		CategoryID:   ruleCategory.Resolve(rec, c),
		Price:        price,
		VAT:          m.opts.VAT,
		StepQuantity: StepQuantity,
		Brand:        vendor,
		Vendor:       vendor,
		// 4) zdjęcie: mapa > rekord > brak
		Picture:     rulePicture.Resolve(rec, c),
		Description: m.description(ruleDescription.Resolve(rec, c)),
	}

	// 5) magazyny
	qty := parseStock(ruleStock.Resolve(rec, c))
	for i, name := range m.opts.Warehouses {
		q := "0"
		if i == 0 {
			q = strconv.Itoa(qty)
		}
		o.Warehouses = append(o.Warehouses, Warehouse{Name: name, Unit: WarehouseUnit, Quantity: q})
	}

	// 6) preorder
	o.Preorder = "0"
	if m.preorder(rec, qty) {
		o.Preorder = "1"
	}

	// 7) parametry
	o.Params = params(rec)

	if len(defaulted) > 0 {
		m.log.Debug().Str("key", key).Strs("defaulted", defaulted).Msg("pola z wartości domyślnych")
	}

	return o, SkipIssue{}, true
}

func (m *Mapper) price(raw string) (string, SkipIssue, bool) {
	d, err := parseDecimal(raw)
	if m.opts.PricePolicy == PriceAny {
		if err != nil {
			return "0", SkipIssue{}, true
		}
		return d.String(), SkipIssue{}, true
	}
	if err != nil {
		if raw == "" {
			return "", SkipIssue{Reason: ReasonNonPositivePrice, Details: "brak ceny"}, false
		}
		return "", SkipIssue{Reason: ReasonBadPrice, Details: "cena " + strconv.Quote(raw)}, false
	}
	if d.Sign() <= 0 {
		return "", SkipIssue{Reason: ReasonNonPositivePrice, Details: "cena " + d.String()}, false
	}
	return d.String(), SkipIssue{}, true
}

func (m *Mapper) vendor(brand string) string {
	if _, ok := m.brands[brand]; ok {
		return brand
	}
	return m.opts.DefaultVendor
}

func (m *Mapper) preorder(rec integrations.Record, qty int) bool {
	if qty >= 1 {
		return false
	}
	if m.opts.PreorderPolicy == PreorderAlways {
		return true
	}
	v, present := rec["can_preorder"]
	if !present {
		return true
	}
	return !isFalse(v)
}

func (m *Mapper) description(s string) string {
	if !m.opts.PlainDescriptions || s == "" {
		return s
	}
	return PlainText(s)
}

// PlainText zdejmuje HTML z opisu i normalizuje białe znaki.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	var parts []string
	doc.Find("body").Contents().Each(func(_ int, sel *goquery.Selection) {
		if t := strings.Join(strings.Fields(sel.Text()), " "); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

func params(rec integrations.Record) []Param {
	var out []Param
	if truthy(rec["weight"]) {
		out = append(out, Param{Name: "Вес", Unit: "кг", Value: integrations.Text(rec["weight"])})
	}
	h, w, d := rec["height"], rec["width"], rec["depth"]
	if truthy(h) && truthy(w) && truthy(d) {
		out = append(out, Param{
			Name:  "Габариты",
			Unit:  "мм",
			Value: integrations.Text(h) + "x" + integrations.Text(w) + "x" + integrations.Text(d),
		})
	}
	return out
}

// parseDecimal akceptuje "1 234,50" tak samo jak "1234.50".
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// maxStock – górna granica stanu; większe wartości są przycinane.
const maxStock = math.MaxInt32

// parseStock: liczba całkowita, ułamki obcinane, błąd/brak/ujemne = 0, powyżej maxStock = maxStock.
func parseStock(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return min(max(n, 0), maxStock)
	}
	d, err := parseDecimal(s)
	if err != nil {
		return 0
	}
	if d.Sign() <= 0 {
		return 0
	}
	if d.GreaterThan(decimal.NewFromInt(maxStock)) {
		return maxStock
	}
	return int(d.IntPart())
}

func truthy(v any) bool {
	s := integrations.Text(v)
	if s == "" || isFalse(v) {
		return false
	}
	if d, err := parseDecimal(s); err == nil && d.IsZero() {
		return false
	}
	return true
}

func isFalse(v any) bool {
	switch strings.ToLower(integrations.Text(v)) {
	case "false", "0", "no", "n", "нет":
		return true
	}
	return false
}
