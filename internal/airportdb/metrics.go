package airportdb

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors of the airport database. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	AirportsResident prometheus.Gauge
	TilesResident    prometheus.Gauge
	IndexEntries     prometheus.Gauge
	TileEvents       *prometheus.CounterVec
	IndexDamage      prometheus.Counter
	CacheOpens       *prometheus.CounterVec
	RebuildDuration  prometheus.Histogram
}

// NewMetrics registers the database metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	airports, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "airportdb_airports_resident",
		Help: "Number of airports currently held in the primary index.",
	}), "airportdb_airports_resident")
	if err != nil {
		return nil, err
	}
	tiles, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "airportdb_tiles_resident",
		Help: "Number of 1x1 degree tiles currently resident.",
	}), "airportdb_tiles_resident")
	if err != nil {
		return nil, err
	}
	entries, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "airportdb_index_entries",
		Help: "Number of entries in the global airport index.",
	}), "airportdb_index_entries")
	if err != nil {
		return nil, err
	}
	tileEvents, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "airportdb_tile_events_total",
		Help: "Tile loads and unloads, labeled by event.",
	}, []string{"event"}), "airportdb_tile_events_total")
	if err != nil {
		return nil, err
	}
	damage, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "airportdb_index_damage_total",
		Help: "Index entries whose airport could not be found in its tile.",
	}), "airportdb_index_damage_total")
	if err != nil {
		return nil, err
	}
	opens, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "airportdb_cache_opens_total",
		Help: "Cache opens, labeled by result (cached, rebuilt, failed).",
	}, []string{"result"}), "airportdb_cache_opens_total")
	if err != nil {
		return nil, err
	}
	rebuild, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "airportdb_rebuild_duration_seconds",
		Help:    "Duration of full cache rebuilds in seconds.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}), "airportdb_rebuild_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:         gatherer,
		AirportsResident: airports,
		TilesResident:    tiles,
		IndexEntries:     entries,
		TileEvents:       tileEvents,
		IndexDamage:      damage,
		CacheOpens:       opens,
		RebuildDuration:  rebuild,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		gatherer = m.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) setResident(airports, tiles int) {
	if m == nil {
		return
	}
	m.AirportsResident.Set(float64(airports))
	m.TilesResident.Set(float64(tiles))
}

func (m *Metrics) setIndexEntries(n int) {
	if m == nil {
		return
	}
	m.IndexEntries.Set(float64(n))
}

func (m *Metrics) tileEvent(event string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.TileEvents.WithLabelValues(event).Add(float64(n))
}

func (m *Metrics) indexDamaged() {
	if m == nil {
		return
	}
	m.IndexDamage.Inc()
}

func (m *Metrics) cacheOpened(result string, rebuild time.Duration) {
	if m == nil {
		return
	}
	m.CacheOpens.WithLabelValues(result).Inc()
	if result == "rebuilt" {
		m.RebuildDuration.Observe(rebuild.Seconds())
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
