package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateProduct adds a new product and returns it with a generated ID.
func (s *memoryStore) CreateProduct(_ context.Context, name string, price float64, description string, stock int32) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product := Product{
		ID:          uuid.NewString(),
		Name:        name,
		Price:       price,
		Description: description,
		Stock:       stock,
		CreatedAt:   time.Now().UTC(),
	}
	s.products[product.ID] = product
	s.productOrder = append(s.productOrder, product.ID)

	return &product, nil
}

// FindProductByID retrieves a product by its ID.
func (s *memoryStore) FindProductByID(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// FindAllProducts returns all products in insertion order.
func (s *memoryStore) FindAllProducts(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		list = append(list, s.products[id])
	}
	return list, nil
}

// UpdateProduct applies a partial update to an existing product.
// Only non-nil fields of upd are applied; supplied fields are re-validated
// with the same rules as CreateProduct.
func (s *memoryStore) UpdateProduct(_ context.Context, id string, upd ProductUpdate) (*Product, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, ErrNameRequired
	}
	if upd.Price != nil && *upd.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		return nil, ErrInvalidStock
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	if upd.Name != nil {
		product.Name = *upd.Name
	}
	if upd.Price != nil {
		product.Price = *upd.Price
	}
	if upd.Description != nil {
		product.Description = *upd.Description
	}
	if upd.Stock != nil {
		product.Stock = *upd.Stock
	}
	s.products[id] = product

	return &product, nil
}

// DeleteProductByID removes a product unless a sale still references it.
// The reference scan and the removal run under one write lock.
func (s *memoryStore) DeleteProductByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrProductNotFound
	}
	for _, sale := range s.sales {
		if sale.ProductID == id {
			return ErrProductHasSales
		}
	}
	delete(s.products, id)
	s.productOrder = removeID(s.productOrder, id)

	return nil
}
