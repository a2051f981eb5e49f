// Package rest provides HTTP handlers for the store-management API.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/store-api/internal/service"
	"github.com/abgdnv/store-api/internal/store"
	"github.com/abgdnv/store-api/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.StoreService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler with the provided service.
func NewHandler(service service.StoreService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the store service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/clients", func(r chi.Router) {
		r.Get("/", h.FindAllClients)
		r.Post("/", h.CreateClient)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindClientByID)
			r.Put("/", h.UpdateClient)
			r.Delete("/", h.DeleteClientByID)
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAllProducts)
		r.Post("/", h.CreateProduct)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindProductByID)
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.DeleteProductByID)
		})
	})

	r.Route("/api/v1/sales", func(r chi.Router) {
		r.Get("/", h.FindAllSales)
		r.Post("/", h.CreateSale)
		r.Get("/{id}", h.FindSaleByID)
		r.Get("/client/{clientID}", h.FindSalesByClient)
		r.Get("/product/{productID}", h.FindSalesByProduct)
	})

	r.Get("/healthz", h.HealthCheck)
}

// CreateClient handles the creation of a new client.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.ClientCreateDto
	if !h.bindJSON(w, r, mLogger, &dto) {
		return
	}
	created, err := h.service.CreateClient(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to create client")
		return
	}
	mLogger.InfoContext(r.Context(), "Client created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, map[string]string{
		"message":   "Client created successfully",
		"client_id": created.ID,
	})
}

// FindClientByID retrieves a client by its ID.
func (h *Handler) FindClientByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	found, err := h.service.FindClientByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve client with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAllClients retrieves a list of all clients.
func (h *Handler) FindAllClients(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.FindAllClients(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving client list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch clients")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// UpdateClient applies a partial update to a client.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	var dto service.ClientUpdateDto
	if !h.bindJSON(w, r, mLogger, &dto) {
		return
	}
	updated, err := h.service.UpdateClient(r.Context(), id, dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to update client with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Client updated successfully", "ID", updated.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]string{"message": "Client updated successfully"})
}

// DeleteClientByID deletes a client by its ID.
func (h *Handler) DeleteClientByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteClientByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to delete client with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Client deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// CreateProduct handles the creation of a new product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.ProductCreateDto
	if !h.bindJSON(w, r, mLogger, &dto) {
		return
	}
	created, err := h.service.CreateProduct(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, map[string]string{
		"message":    "Product created successfully",
		"product_id": created.ID,
	})
}

// FindProductByID retrieves a product by its ID.
func (h *Handler) FindProductByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	found, err := h.service.FindProductByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAllProducts retrieves a list of all products.
func (h *Handler) FindAllProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.FindAllProducts(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// UpdateProduct applies a partial update to a product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	var dto service.ProductUpdateDto
	if !h.bindJSON(w, r, mLogger, &dto) {
		return
	}
	updated, err := h.service.UpdateProduct(r.Context(), id, dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]string{"message": "Product updated successfully"})
}

// DeleteProductByID deletes a product by its ID.
func (h *Handler) DeleteProductByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteProductByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// CreateSale handles the creation of a new sale. Reference failures are
// reported as validation errors, not as not-found.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.SaleCreateDto
	if !h.bindJSON(w, r, mLogger, &dto) {
		return
	}
	created, err := h.service.CreateSale(r.Context(), dto)
	if err != nil {
		if status, message, ok := mapStoreError(err); ok {
			if status == http.StatusNotFound {
				status = http.StatusBadRequest
			}
			mLogger.WarnContext(r.Context(), "Sale rejected", "reason", message)
			web.RespondError(w, mLogger, status, message)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating sale", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create sale")
		return
	}
	mLogger.InfoContext(r.Context(), "Sale created successfully",
		"ID", created.ID, "ClientID", created.ClientID, "ProductID", created.ProductID, "TotalAmount", created.TotalAmount)
	web.RespondJSON(w, mLogger, http.StatusCreated, map[string]string{
		"message":      "Sale created successfully",
		"sale_id":      created.ID,
		"total_amount": fmt.Sprintf("%.2f", created.TotalAmount),
	})
}

// FindSaleByID retrieves a sale by its ID.
func (h *Handler) FindSaleByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	found, err := h.service.FindSaleByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve sale with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAllSales retrieves all sales in insertion order.
func (h *Handler) FindAllSales(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.FindAllSales(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving sale list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch sales")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindSalesByClient retrieves all sales for a specific client.
func (h *Handler) FindSalesByClient(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	clientID := chi.URLParam(r, "clientID")
	list, err := h.service.FindSalesByClientID(r.Context(), clientID)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to fetch sales for client %s", clientID))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindSalesByProduct retrieves all sales for a specific product.
func (h *Handler) FindSalesByProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	productID := chi.URLParam(r, "productID")
	list, err := h.service.FindSalesByProductID(r.Context(), productID)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to fetch sales for product %s", productID))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.loggerWithReqID(r), http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "store-api",
	})
}

// bindJSON decodes the request body into dst and validates it. On failure it
// writes the error response and returns false.
func (h *Handler) bindJSON(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				// fieldErr.Tag() returns "required", "gt", etc.
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondServiceError maps store sentinel errors to HTTP statuses; anything
// unmapped is a 500 with the fallback message.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, fallback string) {
	if status, message, ok := mapStoreError(err); ok {
		mLogger.WarnContext(r.Context(), "Request rejected", "status", status, "reason", message)
		web.RespondError(w, mLogger, status, message)
		return
	}
	mLogger.ErrorContext(r.Context(), fallback, "error", err)
	web.RespondError(w, mLogger, http.StatusInternalServerError, fallback)
}

// storeErrorStatuses orders the sentinel checks; sentinels are disjoint.
var storeErrorStatuses = []struct {
	err    error
	status int
}{
	{store.ErrClientNotFound, http.StatusNotFound},
	{store.ErrProductNotFound, http.StatusNotFound},
	{store.ErrSaleNotFound, http.StatusNotFound},
	{store.ErrNameRequired, http.StatusBadRequest},
	{store.ErrInvalidPrice, http.StatusBadRequest},
	{store.ErrInvalidStock, http.StatusBadRequest},
	{store.ErrInvalidQuantity, http.StatusBadRequest},
	{store.ErrInsufficientStock, http.StatusBadRequest},
	{store.ErrClientHasSales, http.StatusConflict},
	{store.ErrProductHasSales, http.StatusConflict},
}

func mapStoreError(err error) (int, string, bool) {
	for _, m := range storeErrorStatuses {
		if errors.Is(err, m.err) {
			return m.status, m.err.Error(), true
		}
	}
	return 0, "", false
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
