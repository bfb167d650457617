package infra

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the ledger's Prometheus collectors in a private registry, so
// NewMetrics can be called more than once (tests). A nil *Metrics is a no-op.
type Metrics struct {
	Registry *prometheus.Registry

	operaciones  *prometheus.CounterVec
	duracion     *prometheus.HistogramVec
	conversiones *prometheus.CounterVec
	vencidas     prometheus.Counter
	cotizaciones *prometheus.CounterVec
	cache        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		operaciones: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kairo_ledger_operaciones_total",
				Help: "Ledger write operations by kind and result.",
			},
			[]string{"operacion", "resultado"},
		),
		duracion: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kairo_ledger_operacion_duracion_seconds",
				Help:    "Duration of ledger write operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operacion"},
		),
		conversiones: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kairo_conversiones_total",
				Help: "Currency conversions by outcome (identidad, convertido, sin_convertir).",
			},
			[]string{"resultado"},
		),
		vencidas: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "kairo_cuentas_vencidas_total",
				Help: "Accounts transitioned to overdue by the aging job.",
			},
		),
		cotizaciones: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kairo_cotizaciones_total",
				Help: "Exchange-rate refresh attempts by result.",
			},
			[]string{"resultado"},
		),
		cache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kairo_cache_total",
				Help: "Currency registry cache lookups by result.",
			},
			[]string{"resultado"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RecordOperacion counts a ledger write and observes its duration.
func (m *Metrics) RecordOperacion(operacion string, start time.Time, err error) {
	if m == nil {
		return
	}
	resultado := "ok"
	if err != nil {
		resultado = "error"
	}
	m.operaciones.WithLabelValues(operacion, resultado).Inc()
	m.duracion.WithLabelValues(operacion).Observe(time.Since(start).Seconds())
}

func (m *Metrics) RecordConversion(resultado string) {
	if m == nil {
		return
	}
	m.conversiones.WithLabelValues(resultado).Inc()
}

func (m *Metrics) RecordVencidas(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.vencidas.Add(float64(n))
}

func (m *Metrics) RecordCotizacion(resultado string) {
	if m == nil {
		return
	}
	m.cotizaciones.WithLabelValues(resultado).Inc()
}

func (m *Metrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cache.WithLabelValues("hit").Inc()
		return
	}
	m.cache.WithLabelValues("miss").Inc()
}
