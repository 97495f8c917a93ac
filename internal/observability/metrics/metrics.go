package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels attached to every series.
type Config struct {
	ServiceName string
	Environment string
}

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics exposes application-level instruments. A nil *Metrics is a valid no-op.
type Metrics struct {
	invoiceOps     *prometheus.CounterVec
	exports        *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	exportPages    prometheus.Histogram
	logoFallbacks  prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers the instruments on registerer.
func New(registerer prometheus.Registerer, cfg Config) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "freelanceflow"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &Metrics{
		invoiceOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "freelanceflow_invoice_operations_total",
			Help:        "Invoice lifecycle operations by action and result.",
			ConstLabels: constLabels,
		}, []string{"action", "result"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "freelanceflow_exports_total",
			Help:        "Document exports by kind and result.",
			ConstLabels: constLabels,
		}, []string{"kind", "result"}),
		exportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "freelanceflow_export_duration_seconds",
			Help:        "Time spent rendering and delivering a document.",
			ConstLabels: constLabels,
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"kind"}),
		exportPages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "freelanceflow_export_pages",
			Help:        "Pages per exported invoice document.",
			ConstLabels: constLabels,
			Buckets:     []float64{1, 2, 3, 5, 8, 13},
		}),
		logoFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "freelanceflow_export_logo_fallbacks_total",
			Help:        "Exports that dropped a logo that could not be embedded.",
			ConstLabels: constLabels,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "freelanceflow_http_requests_total",
			Help:        "HTTP requests by method, route and status.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "freelanceflow_http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	collectors := []prometheus.Collector{
		m.invoiceOps,
		m.exports,
		m.exportDuration,
		m.exportPages,
		m.logoFallbacks,
		m.httpRequests,
		m.httpDuration,
	}
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordInvoiceOperation counts a lifecycle action outcome.
func (m *Metrics) RecordInvoiceOperation(action string, err error) {
	if m == nil {
		return
	}
	m.invoiceOps.WithLabelValues(strings.TrimSpace(action), result(err == nil)).Inc()
}

// RecordExport counts a document export and observes its latency.
func (m *Metrics) RecordExport(kind string, success bool, pages int, elapsed time.Duration) {
	if m == nil {
		return
	}
	kind = strings.TrimSpace(kind)
	m.exports.WithLabelValues(kind, result(success)).Inc()
	m.exportDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if success && pages > 0 {
		m.exportPages.Observe(float64(pages))
	}
}

func (m *Metrics) RecordLogoFallback() {
	if m == nil {
		return
	}
	m.logoFallbacks.Inc()
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, statusCode(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}

func statusCode(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
