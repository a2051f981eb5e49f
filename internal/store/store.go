package store

import (
	"context"
	"sync"
	"time"
)

// Client represents a registered client of the store.
type Client struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// Product represents a product available for sale.
type Product struct {
	ID          string
	Name        string
	Price       float64
	Description string
	Stock       int32
	CreatedAt   time.Time
}

// Sale represents a completed sale. Sales are immutable once created and
// reference their client and product by ID only.
type Sale struct {
	ID          string
	ClientID    string
	ProductID   string
	Quantity    int32
	TotalAmount float64
	CreatedAt   time.Time
}

// ClientUpdate carries a partial client update. Nil fields are left unchanged.
type ClientUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

// ProductUpdate carries a partial product update. Nil fields are left unchanged.
type ProductUpdate struct {
	Name        *string
	Price       *float64
	Description *string
	Stock       *int32
}

// Totals is a snapshot of the business counters derived from the live collections.
type Totals struct {
	Clients  int
	Products int
	Sales    int
	Revenue  float64
}

// EntityStore is the interface for all entity storage operations.
// Every mutation, including the multi-step sale creation, is atomic with
// respect to concurrent readers and writers.
type EntityStore interface {
	// CreateClient adds a new client and returns it with a generated ID.
	// Returns ErrNameRequired if the name is empty after trimming.
	CreateClient(ctx context.Context, name, email, phone string) (*Client, error)

	// FindClientByID retrieves a client by its ID.
	// Returns ErrClientNotFound if no client exists with the given ID.
	FindClientByID(ctx context.Context, id string) (*Client, error)

	// FindAllClients returns all clients in insertion order.
	FindAllClients(ctx context.Context) ([]Client, error)

	// UpdateClient applies a partial update to an existing client.
	// Returns ErrClientNotFound if the client does not exist and
	// ErrNameRequired if a supplied name is empty after trimming.
	UpdateClient(ctx context.Context, id string, upd ClientUpdate) (*Client, error)

	// DeleteClientByID removes a client.
	// Returns ErrClientNotFound if the client does not exist and
	// ErrClientHasSales if any sale references it.
	DeleteClientByID(ctx context.Context, id string) error

	// CreateProduct adds a new product and returns it with a generated ID.
	// Returns ErrNameRequired, ErrInvalidPrice or ErrInvalidStock on invalid input.
	CreateProduct(ctx context.Context, name string, price float64, description string, stock int32) (*Product, error)

	// FindProductByID retrieves a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindProductByID(ctx context.Context, id string) (*Product, error)

	// FindAllProducts returns all products in insertion order.
	FindAllProducts(ctx context.Context) ([]Product, error)

	// UpdateProduct applies a partial update to an existing product,
	// re-validating any supplied name, price or stock.
	UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*Product, error)

	// DeleteProductByID removes a product.
	// Returns ErrProductNotFound if the product does not exist and
	// ErrProductHasSales if any sale references it.
	DeleteProductByID(ctx context.Context, id string) error

	// CreateSale validates the references, quantity and stock, decrements the
	// product stock and appends the sale record as one atomic operation.
	CreateSale(ctx context.Context, clientID, productID string, quantity int32) (*Sale, error)

	// FindSaleByID retrieves a sale by its ID.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	FindSaleByID(ctx context.Context, id string) (*Sale, error)

	// FindAllSales returns all sales in insertion order.
	FindAllSales(ctx context.Context) ([]Sale, error)

	// FindSalesByClientID returns all sales referencing the given client.
	// Returns ErrClientNotFound if the client itself does not exist.
	FindSalesByClientID(ctx context.Context, clientID string) ([]Sale, error)

	// FindSalesByProductID returns all sales referencing the given product.
	// Returns ErrProductNotFound if the product itself does not exist.
	FindSalesByProductID(ctx context.Context, productID string) ([]Sale, error)

	// Totals computes the business counters from the current collections.
	Totals(ctx context.Context) (Totals, error)
}

// memoryStore implements EntityStore with in-memory maps guarded by a single
// RWMutex. One lock over all three collections keeps cross-entity sequences
// (sale creation, reference-checked deletes) atomic.
type memoryStore struct {
	mu           sync.RWMutex
	clients      map[string]Client
	clientOrder  []string
	products     map[string]Product
	productOrder []string
	sales        []Sale
}

// NewMemoryStore creates a new EntityStore with empty collections.
func NewMemoryStore() EntityStore {
	return &memoryStore{
		clients:  make(map[string]Client),
		products: make(map[string]Product),
	}
}

// Totals computes the business counters under the read lock, so it never
// observes a sale whose stock decrement has not been applied yet.
func (s *memoryStore) Totals(_ context.Context) (Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := Totals{
		Clients:  len(s.clients),
		Products: len(s.products),
		Sales:    len(s.sales),
	}
	for _, sale := range s.sales {
		t.Revenue += sale.TotalAmount
	}
	return t, nil
}

// removeID deletes the first occurrence of id from the order slice.
func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
