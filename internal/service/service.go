// Package service provides the store-management business operations.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/abgdnv/store-api/internal/store"
)

// StoreService defines the operations exposed to the transport layer.
// It abstracts the underlying business logic and data access.
type StoreService interface {
	// CreateClient adds a new client to the system.
	// Returns ErrNameRequired if the name is empty after trimming.
	CreateClient(ctx context.Context, client ClientCreateDto) (*ClientDto, error)

	// FindClientByID retrieves a single client by its unique identifier.
	// Returns ErrClientNotFound if no client exists with the given ID.
	FindClientByID(ctx context.Context, id string) (*ClientDto, error)

	// FindAllClients returns all clients.
	// Returns an empty slice if no clients exist.
	FindAllClients(ctx context.Context) ([]ClientDto, error)

	// UpdateClient applies a partial update to an existing client.
	// Returns ErrClientNotFound if no client exists with the given ID.
	UpdateClient(ctx context.Context, id string, client ClientUpdateDto) (*ClientDto, error)

	// DeleteClientByID removes a client by its ID.
	// Returns ErrClientHasSales if any sale still references the client.
	DeleteClientByID(ctx context.Context, id string) error

	// CreateProduct adds a new product to the system.
	// Returns ErrNameRequired or ErrInvalidPrice on invalid input.
	CreateProduct(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// FindProductByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindProductByID(ctx context.Context, id string) (*ProductDto, error)

	// FindAllProducts returns all products.
	// Returns an empty slice if no products exist.
	FindAllProducts(ctx context.Context) ([]ProductDto, error)

	// UpdateProduct applies a partial update to an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	UpdateProduct(ctx context.Context, id string, product ProductUpdateDto) (*ProductDto, error)

	// DeleteProductByID removes a product by its ID.
	// Returns ErrProductHasSales if any sale still references the product.
	DeleteProductByID(ctx context.Context, id string) error

	// CreateSale creates a new sale, decrementing the product stock.
	// Returns ErrClientNotFound, ErrProductNotFound, ErrInvalidQuantity or
	// ErrInsufficientStock when a precondition fails; no state changes then.
	CreateSale(ctx context.Context, sale SaleCreateDto) (*SaleDto, error)

	// FindSaleByID retrieves a single sale by its unique identifier.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	FindSaleByID(ctx context.Context, id string) (*SaleDto, error)

	// FindAllSales returns all sales in insertion order.
	FindAllSales(ctx context.Context) ([]SaleDto, error)

	// FindSalesByClientID returns all sales for the given client.
	// Returns ErrClientNotFound if the client does not exist.
	FindSalesByClientID(ctx context.Context, clientID string) ([]SaleDto, error)

	// FindSalesByProductID returns all sales for the given product.
	// Returns ErrProductNotFound if the product does not exist.
	FindSalesByProductID(ctx context.Context, productID string) ([]SaleDto, error)

	// Totals computes the business counters from the current store state.
	Totals(ctx context.Context) (store.Totals, error)
}

// Service implements StoreService on top of an EntityStore.
type Service struct {
	store store.EntityStore
}

// NewService creates a new StoreService with the provided store.
func NewService(entityStore store.EntityStore) *Service {
	return &Service{
		store: entityStore,
	}
}

// ClientCreateDto represents the payload for creating a new client.
type ClientCreateDto struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// ClientDto represents a client returned to the caller.
type ClientDto struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ClientUpdateDto represents a partial client update. Absent fields are
// left unchanged.
type ClientUpdateDto struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
}

// ProductCreateDto represents the payload for creating a new product.
type ProductCreateDto struct {
	Name        string  `json:"name"  validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Description string  `json:"description"`
	Stock       int32   `json:"stock" validate:"gte=0"`
}

// ProductDto represents a product returned to the caller.
type ProductDto struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Stock       int32   `json:"stock"`
	CreatedAt   string  `json:"created_at"`
}

// ProductUpdateDto represents a partial product update. Absent fields are
// left unchanged.
type ProductUpdateDto struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Description *string  `json:"description"`
	Stock       *int32   `json:"stock" validate:"omitempty,gte=0"`
}

// SaleCreateDto represents the payload for creating a new sale.
type SaleCreateDto struct {
	ClientID  string `json:"client_id"  validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int32  `json:"quantity"   validate:"required,gt=0"`
}

// SaleDto represents a sale returned to the caller.
type SaleDto struct {
	ID          string  `json:"id"`
	ClientID    string  `json:"client_id"`
	ProductID   string  `json:"product_id"`
	Quantity    int32   `json:"quantity"`
	TotalAmount float64 `json:"total_amount"`
	CreatedAt   string  `json:"created_at"`
}

// CreateClient adds a new client and returns it as a ClientDto.
func (s *Service) CreateClient(ctx context.Context, client ClientCreateDto) (*ClientDto, error) {
	created, err := s.store.CreateClient(ctx, client.Name, client.Email, client.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return toClientDto(created), nil
}

// FindClientByID retrieves a client by its ID and returns it as a ClientDto.
func (s *Service) FindClientByID(ctx context.Context, id string) (*ClientDto, error) {
	client, err := s.store.FindClientByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client %s: %w", id, err)
	}
	return toClientDto(client), nil
}

// FindAllClients retrieves all clients and returns them as ClientDtos.
func (s *Service) FindAllClients(ctx context.Context) ([]ClientDto, error) {
	clients, err := s.store.FindAllClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}
	dtos := make([]ClientDto, len(clients))
	for i, c := range clients {
		dtos[i] = *toClientDto(&c)
	}
	return dtos, nil
}

// UpdateClient applies a partial update and returns the updated ClientDto.
func (s *Service) UpdateClient(ctx context.Context, id string, client ClientUpdateDto) (*ClientDto, error) {
	updated, err := s.store.UpdateClient(ctx, id, store.ClientUpdate{
		Name:  client.Name,
		Email: client.Email,
		Phone: client.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update client %s: %w", id, err)
	}
	return toClientDto(updated), nil
}

// DeleteClientByID deletes a client by its ID.
func (s *Service) DeleteClientByID(ctx context.Context, id string) error {
	return s.store.DeleteClientByID(ctx, id)
}

// CreateProduct adds a new product and returns it as a ProductDto.
func (s *Service) CreateProduct(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	created, err := s.store.CreateProduct(ctx, product.Name, product.Price, product.Description, product.Stock)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toProductDto(created), nil
}

// FindProductByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindProductByID(ctx context.Context, id string) (*ProductDto, error) {
	product, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", id, err)
	}
	return toProductDto(product), nil
}

// FindAllProducts retrieves all products and returns them as ProductDtos.
func (s *Service) FindAllProducts(ctx context.Context) ([]ProductDto, error) {
	products, err := s.store.FindAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	dtos := make([]ProductDto, len(products))
	for i, p := range products {
		dtos[i] = *toProductDto(&p)
	}
	return dtos, nil
}

// UpdateProduct applies a partial update and returns the updated ProductDto.
func (s *Service) UpdateProduct(ctx context.Context, id string, product ProductUpdateDto) (*ProductDto, error) {
	updated, err := s.store.UpdateProduct(ctx, id, store.ProductUpdate{
		Name:        product.Name,
		Price:       product.Price,
		Description: product.Description,
		Stock:       product.Stock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return toProductDto(updated), nil
}

// DeleteProductByID deletes a product by its ID.
func (s *Service) DeleteProductByID(ctx context.Context, id string) error {
	return s.store.DeleteProductByID(ctx, id)
}

// CreateSale creates a new sale and returns it as a SaleDto.
func (s *Service) CreateSale(ctx context.Context, sale SaleCreateDto) (*SaleDto, error) {
	created, err := s.store.CreateSale(ctx, sale.ClientID, sale.ProductID, sale.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}
	return toSaleDto(created), nil
}

// FindSaleByID retrieves a sale by its ID and returns it as a SaleDto.
func (s *Service) FindSaleByID(ctx context.Context, id string) (*SaleDto, error) {
	sale, err := s.store.FindSaleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale %s: %w", id, err)
	}
	return toSaleDto(sale), nil
}

// FindAllSales retrieves all sales and returns them as SaleDtos.
func (s *Service) FindAllSales(ctx context.Context) ([]SaleDto, error) {
	sales, err := s.store.FindAllSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	return toSaleDtos(sales), nil
}

// FindSalesByClientID retrieves all sales for a client as SaleDtos.
func (s *Service) FindSalesByClientID(ctx context.Context, clientID string) ([]SaleDto, error) {
	sales, err := s.store.FindSalesByClientID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales for client %s: %w", clientID, err)
	}
	return toSaleDtos(sales), nil
}

// FindSalesByProductID retrieves all sales for a product as SaleDtos.
func (s *Service) FindSalesByProductID(ctx context.Context, productID string) ([]SaleDto, error) {
	sales, err := s.store.FindSalesByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales for product %s: %w", productID, err)
	}
	return toSaleDtos(sales), nil
}

// Totals computes the business counters from the current store state.
func (s *Service) Totals(ctx context.Context) (store.Totals, error) {
	return s.store.Totals(ctx)
}

// toClientDto converts a store.Client to a ClientDto.
func toClientDto(client *store.Client) *ClientDto {
	return &ClientDto{
		ID:        client.ID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
		CreatedAt: client.CreatedAt.Format(time.RFC3339),
	}
}

// toProductDto converts a store.Product to a ProductDto.
func toProductDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Price:       product.Price,
		Description: product.Description,
		Stock:       product.Stock,
		CreatedAt:   product.CreatedAt.Format(time.RFC3339),
	}
}

// toSaleDto converts a store.Sale to a SaleDto.
func toSaleDto(sale *store.Sale) *SaleDto {
	return &SaleDto{
		ID:          sale.ID,
		ClientID:    sale.ClientID,
		ProductID:   sale.ProductID,
		Quantity:    sale.Quantity,
		TotalAmount: sale.TotalAmount,
		CreatedAt:   sale.CreatedAt.Format(time.RFC3339),
	}
}

func toSaleDtos(sales []store.Sale) []SaleDto {
	dtos := make([]SaleDto, len(sales))
	for i, sale := range sales {
		dtos[i] = *toSaleDto(&sale)
	}
	return dtos
}
