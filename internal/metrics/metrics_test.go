package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abgdnv/store-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTotalsProvider is a mock implementation of the TotalsProvider interface
type mockTotalsProvider struct {
	totals store.Totals
	calls  int
}

func (m *mockTotalsProvider) Totals(_ context.Context) (store.Totals, error) {
	m.calls++
	return m.totals, nil
}

func Test_RefreshBusiness(t *testing.T) {
	// given
	provider := &mockTotalsProvider{totals: store.Totals{Clients: 2, Products: 3, Sales: 4, Revenue: 99.5}}
	m := New(provider)
	// when
	m.RefreshBusiness(context.Background())
	// then
	assert.Equal(t, 2.0, testutil.ToFloat64(m.activeClients))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeProducts))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.totalSales))
	assert.Equal(t, 99.5, testutil.ToFloat64(m.totalRevenue))
}

func Test_Handler_RefreshesOnScrape(t *testing.T) {
	// given
	provider := &mockTotalsProvider{totals: store.Totals{Clients: 1, Sales: 1, Revenue: 30.0}}
	m := New(provider)

	// when
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// then: gauges were recomputed before exposition
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, provider.calls)
	body := rec.Body.String()
	assert.Contains(t, body, "active_clients_total 1")
	assert.Contains(t, body, "active_products_total 0")
	assert.Contains(t, body, "sales_total 1")
	assert.Contains(t, body, "revenue_total 30")
}

func Test_Instrument_RecordsRequests(t *testing.T) {
	// given
	provider := &mockTotalsProvider{}
	m := New(provider)
	mux := chi.NewRouter()
	mux.Use(m.Instrument)
	mux.Get("/api/v1/clients/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.Post("/api/v1/clients", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	// when
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/clients/c1", nil))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/clients", nil))

	// then: counters are labeled by route pattern and status code
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/api/v1/clients/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodPost, "/api/v1/clients", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpErrors.WithLabelValues(http.MethodGet, "/api/v1/clients/{id}", "client_error")))

	// the successful POST triggered a business refresh, the failed GET did not
	assert.Equal(t, 1, provider.calls)
}

func Test_Instrument_ServerErrorClass(t *testing.T) {
	// given
	m := New(&mockTotalsProvider{})
	mux := chi.NewRouter()
	mux.Use(m.Instrument)
	mux.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	// when
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	// then
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpErrors.WithLabelValues(http.MethodGet, "/boom", "server_error")))
}
