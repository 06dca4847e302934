// internal/config/config.go
package conf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Dozwolone polityki mapowania.
var (
	PricePolicies    = []string{"positive", "any"}
	PreorderPolicies = []string{"can_preorder", "always"}
)

const (
	EnvEmail  = "API_EMAIL"
	EnvKey    = "API_KEY"
	EnvConfig = "FEED_CONFIG"

	DefaultPath = "config.json"
)

// Credentials nigdy nie trafiają do pliku – tylko env.
type Credentials struct {
	Email string `json:"-"`
	Key   string `json:"-"`
}

type Shop struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	URL     string `json:"url"`
}

type Mapping struct {
	KeyFields          []string `json:"key_fields"`
	PricePolicy        string   `json:"price_policy"`    // positive | any
	PreorderPolicy     string   `json:"preorder_policy"` // can_preorder | always
	FallbackCategoryID string   `json:"fallback_category_id"`
	VAT                string   `json:"vat"`
	DefaultVendor      string   `json:"default_vendor"`
	Warehouses         []string `json:"warehouses"`
	PlainDescriptions  bool     `json:"plain_descriptions"`
}

// Audit – opcjonalna baza z raportem przebiegu (driver: sqlite | sqlite3 | mysql | postgres)
type Audit struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

// Główny config generatora
type Config struct {
	LogFile  string `json:"log_file,omitempty"`
	LogLevel string `json:"log_level,omitempty"`
	Output   string `json:"output"`

	CategoriesURL string `json:"categories_url"`
	ImagesURL     string `json:"images_url,omitempty"` // pusty = bez zewnętrznych zdjęć

	HTTPTimeoutSeconds int     `json:"http_timeout_seconds"`
	RequestsPerSecond  float64 `json:"requests_per_second,omitempty"`

	// surowe bloki źródeł, rozwiązywane przez rejestr integracji (pole "kind")
	Sources []json.RawMessage `json:"sources"`

	Shop    Shop    `json:"shop"`
	Mapping Mapping `json:"mapping"`

	Audit           *Audit `json:"audit,omitempty"`
	MetricsTextfile string `json:"metrics_textfile,omitempty"`

	Credentials Credentials `json:"-"`
}

// Default zwraca konfigurację odpowiadającą pierwotnemu feedowi Prompower.
func Default() *Config {
	src, _ := json.Marshal(map[string]string{
		"kind":  "api",
		"brand": "Prompower",
		"url":   "https://prompower.ru/api/prod/getProducts",
	})
	return &Config{
		Output:             "feed.xml",
		CategoriesURL:      "https://prompower.ru/api/categories",
		HTTPTimeoutSeconds: 30,
		Sources:            []json.RawMessage{src},
		Shop: Shop{
			Name:    "Prompower",
			Company: "Мотрум",
			URL:     "https://ruslanchik63.github.io/prompower-feed/",
		},
		Mapping: Mapping{
			KeyFields:          []string{"article"},
			PricePolicy:        "positive",
			PreorderPolicy:     "can_preorder",
			FallbackCategoryID: "10",
			VAT:                "7",
			DefaultVendor:      "Prompower",
			Warehouses:         []string{"Главный склад", "Склад Москва"},
		},
	}
}

// Load czyta config z pliku (JSON lub YAML) i nakłada env.
// Brak pliku nie jest błędem – wtedy wraca Default() i usedDefaults=true.
func Load(path string) (*Config, bool, error) {
	// .env z katalogu roboczego, jeśli jest
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	usedDefaults := false

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		usedDefaults = true
	case err != nil:
		return nil, false, fmt.Errorf("błąd otwierania configa: %w", err)
	default:
		if err := decode(path, data, cfg); err != nil {
			return nil, false, fmt.Errorf("błąd parsowania configa %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, false, fmt.Errorf("błędny config %s: %w", path, err)
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, usedDefaults, nil
}

func decode(path string, data []byte, cfg *Config) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		// YAML -> generyczna mapa -> JSON, żeby trzymać jeden zestaw tagów
		var generic map[string]any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
		raw, err := json.Marshal(generic)
		if err != nil {
			return fmt.Errorf("yaml->json: %w", err)
		}
		data = raw
	}

	// nadpisujemy tylko to, co jest w pliku; reszta zostaje z Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// ApplyEnv nakłada dane dostępowe z środowiska.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvEmail)); v != "" {
		c.Credentials.Email = v
	}
	if v := strings.TrimSpace(getenv(EnvKey)); v != "" {
		c.Credentials.Key = v
	}
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Output == "" {
		c.Output = d.Output
	}
	if c.HTTPTimeoutSeconds <= 0 {
		c.HTTPTimeoutSeconds = d.HTTPTimeoutSeconds
	}
	if len(c.Mapping.KeyFields) == 0 {
		c.Mapping.KeyFields = d.Mapping.KeyFields
	}
	if c.Mapping.PricePolicy == "" {
		c.Mapping.PricePolicy = d.Mapping.PricePolicy
	}
	if c.Mapping.PreorderPolicy == "" {
		c.Mapping.PreorderPolicy = d.Mapping.PreorderPolicy
	}
	if c.Mapping.FallbackCategoryID == "" {
		c.Mapping.FallbackCategoryID = d.Mapping.FallbackCategoryID
	}
	if c.Mapping.VAT == "" {
		c.Mapping.VAT = d.Mapping.VAT
	}
	if c.Mapping.DefaultVendor == "" {
		c.Mapping.DefaultVendor = d.Mapping.DefaultVendor
	}
	if len(c.Mapping.Warehouses) == 0 {
		c.Mapping.Warehouses = d.Mapping.Warehouses
	}
	if c.Audit != nil && c.Audit.Driver == "" {
		c.Audit.Driver = "sqlite"
	}
}

// validate normalizuje i sprawdza nazwy polityk mapowania.
func (c *Config) validate() error {
	c.Mapping.PricePolicy = strings.ToLower(strings.TrimSpace(c.Mapping.PricePolicy))
	if !slices.Contains(PricePolicies, c.Mapping.PricePolicy) {
		return fmt.Errorf("mapping.price_policy %q: dozwolone %v", c.Mapping.PricePolicy, PricePolicies)
	}
	c.Mapping.PreorderPolicy = strings.ToLower(strings.TrimSpace(c.Mapping.PreorderPolicy))
	if !slices.Contains(PreorderPolicies, c.Mapping.PreorderPolicy) {
		return fmt.Errorf("mapping.preorder_policy %q: dozwolone %v", c.Mapping.PreorderPolicy, PreorderPolicies)
	}
	return nil
}
