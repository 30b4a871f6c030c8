// Package observability exposes Prometheus metrics for the HTTP layer and
// the document pipeline.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salesledger/internal/core/entity"
)

// Metrics owns a private registry and every collector the service exports.
// It satisfies the recorder interfaces of the documents, posting and
// numbering packages.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	documents       *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	ledgerRows      *prometheus.CounterVec
	numbers         *prometheus.CounterVec
}

// NewMetrics initialises the registry with process and Go collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesledger_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "salesledger_http_request_duration_seconds",
			Help:    "HTTP request latency per route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesledger_documents_written_total",
			Help: "Documents persisted by type and action.",
		}, []string{"document_type", "action"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesledger_documents_rejected_total",
			Help: "Document writes rejected by type and error code.",
		}, []string{"document_type", "code"}),
		ledgerRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesledger_ledger_rows_posted_total",
			Help: "Register rows written by ledger and document type.",
		}, []string{"ledger", "document_type"}),
		numbers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesledger_numbers_allocated_total",
			Help: "Document numbers allocated by document type.",
		}, []string{"document_type"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.documents,
		m.rejections,
		m.ledgerRows,
		m.numbers,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Middleware records request count and latency keyed by the matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// DocumentWritten counts a persisted create, update or delete.
func (m *Metrics) DocumentWritten(docType entity.DocumentType, action string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(string(docType), action).Inc()
}

// DocumentRejected counts a write that failed with an application error.
func (m *Metrics) DocumentRejected(docType entity.DocumentType, code string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(string(docType), code).Inc()
}

// LedgerRowsPosted counts rows written to the journal or stock register.
func (m *Metrics) LedgerRowsPosted(ledger string, docType string, rows int) {
	if m == nil || rows <= 0 {
		return
	}
	m.ledgerRows.WithLabelValues(ledger, docType).Add(float64(rows))
}

// NumberAllocated counts issued document numbers.
func (m *Metrics) NumberAllocated(docType string) {
	if m == nil {
		return
	}
	m.numbers.WithLabelValues(docType).Inc()
}
