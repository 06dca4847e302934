package observability

import (
	"context"

	"github.com/bartek5186/ymlfeed/internal/feed"
	"github.com/prometheus/client_golang/prometheus"
)

// Textfile zapisuje metryki przebiegu w formacie textfile collectora node_exportera.
// Job jest jednorazowy, więc nie ma endpointu /metrics – tylko plik na koniec.
type Textfile struct {
	path string
	reg  *prometheus.Registry

	offers       prometheus.Gauge
	products     prometheus.Gauge
	categories   prometheus.Gauge
	images       prometheus.Gauge
	skipped      *prometheus.GaugeVec
	sourceOK     *prometheus.GaugeVec
	lastSuccess  prometheus.Gauge
	lastRunOK    prometheus.Gauge
	durationSecs prometheus.Gauge
}

func NewTextfile(path string) *Textfile {
	t := &Textfile{
		path: path,
		reg:  prometheus.NewRegistry(),
		offers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ymlfeed_offers",
			Help: "Oferty zapisane w feedzie",
		}),
		products: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ymlfeed_products",
			Help: "Produkty po agregacji źródeł",
		}),
		categories: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ymlfeed_categories",
			Help: "Kategorie zapisane w feedzie",
		}),
		images: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ymlfeed_images",
			Help: "Wpisy w mapie zdjęć",
		}),
		skipped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ymlfeed_skipped",
			Help: "Odrzucone rekordy per powód",
		}, []string{"reason"}),
		sourceOK: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ymlfeed_source_up",
			Help: "1 jeśli źródło odpowiedziało",
		}, []string{"brand"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ymlfeed_last_success_timestamp_seconds",
			Help: "Czas ostatniego udanego zapisu feedu",
		}),
		lastRunOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ymlfeed_last_run_success",
			Help: "1 jeśli ostatni przebieg zapisał feed",
		}),
		durationSecs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ymlfeed_duration_seconds",
			Help: "Czas trwania przebiegu",
		}),
	}
	t.reg.MustRegister(t.offers, t.products, t.categories, t.images,
		t.skipped, t.sourceOK, t.lastSuccess, t.lastRunOK, t.durationSecs)
	return t
}

func (t *Textfile) Name() string { return "metrics" }

func (t *Textfile) Flush(_ context.Context, r *feed.Report, _ []feed.Offer) error {
	t.offers.Set(float64(r.Offers))
	t.products.Set(float64(r.Products))
	t.categories.Set(float64(r.Categories))
	t.images.Set(float64(r.Images))
	for reason, n := range r.SkippedBy() {
		t.skipped.WithLabelValues(reason).Set(float64(n))
	}
	for _, s := range r.Sources {
		up := 1.0
		if s.Err != nil {
			up = 0
		}
		t.sourceOK.WithLabelValues(s.Brand).Set(up)
	}
	if r.OK() {
		t.lastRunOK.Set(1)
		t.lastSuccess.Set(float64(r.FinishedAt.Unix()))
	} else {
		t.lastRunOK.Set(0)
	}
	t.durationSecs.Set(r.FinishedAt.Sub(r.StartedAt).Seconds())

	return prometheus.WriteToTextfile(t.path, t.reg)
}
