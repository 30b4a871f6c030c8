package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/entity"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/posting"
	"salesledger/pkg/numerator"
)

var (
	_ documents.Recorder = (*Metrics)(nil)
	_ posting.Recorder   = (*Metrics)(nil)
	_ numerator.Recorder = (*Metrics)(nil)
)

func TestRecorders(t *testing.T) {
	m := NewMetrics()

	m.DocumentWritten(entity.DocumentTypeInvoice, "create")
	m.DocumentWritten(entity.DocumentTypeInvoice, "create")
	m.DocumentRejected(entity.DocumentTypeReceipt, "DISCREPANCY")
	m.LedgerRowsPosted("journal", "invoice", 4)
	m.LedgerRowsPosted("stock", "invoice", 0)
	m.NumberAllocated("invoice")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.documents.WithLabelValues("invoice", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("receipt", "DISCREPANCY")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ledgerRows.WithLabelValues("journal", "invoice")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.numbers.WithLabelValues("invoice")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.DocumentWritten(entity.DocumentTypeQuote, "create")
	m.LedgerRowsPosted("journal", "quote", 1)
	m.NumberAllocated("quote")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/items/:id", "GET", "204")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "salesledger_http_requests_total")
}
