package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/store-api/internal/service"
	"github.com/abgdnv/store-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStoreService is a mock implementation of the StoreService interface
type mockStoreService struct {
	client   *service.ClientDto
	clients  []service.ClientDto
	product  *service.ProductDto
	products []service.ProductDto
	sale     *service.SaleDto
	sales    []service.SaleDto
	totals   store.Totals
	error    error
}

func (m *mockStoreService) CreateClient(_ context.Context, _ service.ClientCreateDto) (*service.ClientDto, error) {
	return m.client, m.error
}

func (m *mockStoreService) FindClientByID(_ context.Context, _ string) (*service.ClientDto, error) {
	return m.client, m.error
}

func (m *mockStoreService) FindAllClients(_ context.Context) ([]service.ClientDto, error) {
	return m.clients, m.error
}

func (m *mockStoreService) UpdateClient(_ context.Context, _ string, _ service.ClientUpdateDto) (*service.ClientDto, error) {
	return m.client, m.error
}

func (m *mockStoreService) DeleteClientByID(_ context.Context, _ string) error {
	return m.error
}

func (m *mockStoreService) CreateProduct(_ context.Context, _ service.ProductCreateDto) (*service.ProductDto, error) {
	return m.product, m.error
}

func (m *mockStoreService) FindProductByID(_ context.Context, _ string) (*service.ProductDto, error) {
	return m.product, m.error
}

func (m *mockStoreService) FindAllProducts(_ context.Context) ([]service.ProductDto, error) {
	return m.products, m.error
}

func (m *mockStoreService) UpdateProduct(_ context.Context, _ string, _ service.ProductUpdateDto) (*service.ProductDto, error) {
	return m.product, m.error
}

func (m *mockStoreService) DeleteProductByID(_ context.Context, _ string) error {
	return m.error
}

func (m *mockStoreService) CreateSale(_ context.Context, _ service.SaleCreateDto) (*service.SaleDto, error) {
	return m.sale, m.error
}

func (m *mockStoreService) FindSaleByID(_ context.Context, _ string) (*service.SaleDto, error) {
	return m.sale, m.error
}

func (m *mockStoreService) FindAllSales(_ context.Context) ([]service.SaleDto, error) {
	return m.sales, m.error
}

func (m *mockStoreService) FindSalesByClientID(_ context.Context, _ string) ([]service.SaleDto, error) {
	return m.sales, m.error
}

func (m *mockStoreService) FindSalesByProductID(_ context.Context, _ string) ([]service.SaleDto, error) {
	return m.sales, m.error
}

func (m *mockStoreService) Totals(_ context.Context) (store.Totals, error) {
	return m.totals, m.error
}

func newTestRouter(svc service.StoreService) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := chi.NewRouter()
	NewHandler(svc, logger).RegisterRoutes(mux)
	return mux
}

func doRequest(t *testing.T, mux *chi.Mux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func Test_Handler_CreateClient(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockStoreService
		body         string
		expectStatus int
	}{
		{
			name:         "Success - client created",
			mockService:  &mockStoreService{client: &service.ClientDto{ID: "c1", Name: "Juan"}},
			body:         `{"name": "Juan"}`,
			expectStatus: http.StatusCreated,
		},
		{
			name:         "Error - missing name",
			mockService:  &mockStoreService{},
			body:         `{"email": "juan@example.com"}`,
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "Error - invalid body",
			mockService:  &mockStoreService{},
			body:         `{not json`,
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "Error - whitespace name rejected by core",
			mockService:  &mockStoreService{error: store.ErrNameRequired},
			body:         `{"name": "   "}`,
			expectStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mockService)
			// when
			rec := doRequest(t, mux, http.MethodPost, "/api/v1/clients", tc.body)
			// then
			assert.Equal(t, tc.expectStatus, rec.Code)
			if tc.expectStatus == http.StatusCreated {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "c1", resp["client_id"])
				assert.Equal(t, "Client created successfully", resp["message"])
			}
		})
	}
}

func Test_Handler_FindClientByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockStoreService
		expectStatus int
	}{
		{
			name:         "Success - client found",
			mockService:  &mockStoreService{client: &service.ClientDto{ID: "c1", Name: "Juan"}},
			expectStatus: http.StatusOK,
		},
		{
			name:         "Error - client not found",
			mockService:  &mockStoreService{error: store.ErrClientNotFound},
			expectStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mockService)
			// when
			rec := doRequest(t, mux, http.MethodGet, "/api/v1/clients/c1", "")
			// then
			assert.Equal(t, tc.expectStatus, rec.Code)
		})
	}
}

func Test_Handler_DeleteClient(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockStoreService
		expectStatus int
	}{
		{
			name:         "Success - client deleted",
			mockService:  &mockStoreService{},
			expectStatus: http.StatusNoContent,
		},
		{
			name:         "Error - client not found",
			mockService:  &mockStoreService{error: store.ErrClientNotFound},
			expectStatus: http.StatusNotFound,
		},
		{
			name:         "Error - client referenced by a sale",
			mockService:  &mockStoreService{error: store.ErrClientHasSales},
			expectStatus: http.StatusConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mockService)
			// when
			rec := doRequest(t, mux, http.MethodDelete, "/api/v1/clients/c1", "")
			// then
			assert.Equal(t, tc.expectStatus, rec.Code)
		})
	}
}

func Test_Handler_CreateProduct(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockStoreService
		body         string
		expectStatus int
	}{
		{
			name:         "Success - product created",
			mockService:  &mockStoreService{product: &service.ProductDto{ID: "p1", Name: "Widget"}},
			body:         `{"name": "Widget", "price": 10.0, "stock": 5}`,
			expectStatus: http.StatusCreated,
		},
		{
			name:         "Error - zero price",
			mockService:  &mockStoreService{},
			body:         `{"name": "Widget", "price": 0}`,
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "Error - negative stock",
			mockService:  &mockStoreService{},
			body:         `{"name": "Widget", "price": 10.0, "stock": -1}`,
			expectStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mockService)
			// when
			rec := doRequest(t, mux, http.MethodPost, "/api/v1/products", tc.body)
			// then
			assert.Equal(t, tc.expectStatus, rec.Code)
		})
	}
}

func Test_Handler_DeleteProduct_Conflict(t *testing.T) {
	// given
	mux := newTestRouter(&mockStoreService{error: store.ErrProductHasSales})
	// when
	rec := doRequest(t, mux, http.MethodDelete, "/api/v1/products/p1", "")
	// then
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func Test_Handler_CreateSale(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockStoreService
		body         string
		expectStatus int
		expectError  string
	}{
		{
			name:         "Success - sale created",
			mockService:  &mockStoreService{sale: &service.SaleDto{ID: "s1", TotalAmount: 30.0}},
			body:         `{"client_id": "c1", "product_id": "p1", "quantity": 3}`,
			expectStatus: http.StatusCreated,
		},
		{
			name:         "Error - unknown client is a validation error",
			mockService:  &mockStoreService{error: store.ErrClientNotFound},
			body:         `{"client_id": "missing", "product_id": "p1", "quantity": 1}`,
			expectStatus: http.StatusBadRequest,
			expectError:  "client not found",
		},
		{
			name:         "Error - unknown product is a validation error",
			mockService:  &mockStoreService{error: store.ErrProductNotFound},
			body:         `{"client_id": "c1", "product_id": "missing", "quantity": 1}`,
			expectStatus: http.StatusBadRequest,
			expectError:  "product not found",
		},
		{
			name:         "Error - insufficient stock",
			mockService:  &mockStoreService{error: store.ErrInsufficientStock},
			body:         `{"client_id": "c1", "product_id": "p1", "quantity": 100}`,
			expectStatus: http.StatusBadRequest,
			expectError:  "insufficient stock",
		},
		{
			name:         "Error - zero quantity rejected by binding",
			mockService:  &mockStoreService{},
			body:         `{"client_id": "c1", "product_id": "p1", "quantity": 0}`,
			expectStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mockService)
			// when
			rec := doRequest(t, mux, http.MethodPost, "/api/v1/sales", tc.body)
			// then
			assert.Equal(t, tc.expectStatus, rec.Code)
			if tc.expectStatus == http.StatusCreated {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "s1", resp["sale_id"])
				assert.Equal(t, "30.00", resp["total_amount"])
			}
			if tc.expectError != "" {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tc.expectError, resp["error"])
			}
		})
	}
}

func Test_Handler_FindSalesByClient(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockStoreService
		expectStatus int
	}{
		{
			name:         "Success - sales listed",
			mockService:  &mockStoreService{sales: []service.SaleDto{{ID: "s1", ClientID: "c1"}}},
			expectStatus: http.StatusOK,
		},
		{
			name:         "Error - client not found",
			mockService:  &mockStoreService{error: store.ErrClientNotFound},
			expectStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mockService)
			// when
			rec := doRequest(t, mux, http.MethodGet, "/api/v1/sales/client/c1", "")
			// then
			assert.Equal(t, tc.expectStatus, rec.Code)
		})
	}
}

func Test_Handler_HealthCheck(t *testing.T) {
	// given
	mux := newTestRouter(&mockStoreService{})
	// when
	rec := doRequest(t, mux, http.MethodGet, "/healthz", "")
	// then
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "store-api", resp["service"])
}
