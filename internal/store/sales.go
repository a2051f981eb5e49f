package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CreateSale performs the whole sale sequence under one write lock: resolve
// the client and product, validate the quantity against current stock,
// decrement the stock and append the sale record. No partial effect is ever
// visible to a concurrent reader.
func (s *memoryStore) CreateSale(_ context.Context, clientID, productID string, quantity int32) (*Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[clientID]; !ok {
		return nil, ErrClientNotFound
	}
	product, ok := s.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if product.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	sale := Sale{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		ProductID:   productID,
		Quantity:    quantity,
		TotalAmount: product.Price * float64(quantity),
		CreatedAt:   time.Now().UTC(),
	}
	product.Stock -= quantity
	s.products[productID] = product
	s.sales = append(s.sales, sale)

	return &sale, nil
}

// FindSaleByID retrieves a sale by its ID.
func (s *memoryStore) FindSaleByID(_ context.Context, id string) (*Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sale := range s.sales {
		if sale.ID == id {
			return &sale, nil
		}
	}
	return nil, ErrSaleNotFound
}

// FindAllSales returns all sales in insertion order.
func (s *memoryStore) FindAllSales(_ context.Context) ([]Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Sale, len(s.sales))
	copy(list, s.sales)
	return list, nil
}

// FindSalesByClientID returns all sales referencing the given client,
// in insertion order.
func (s *memoryStore) FindSalesByClientID(_ context.Context, clientID string) ([]Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.clients[clientID]; !ok {
		return nil, ErrClientNotFound
	}
	list := make([]Sale, 0)
	for _, sale := range s.sales {
		if sale.ClientID == clientID {
			list = append(list, sale)
		}
	}
	return list, nil
}

// FindSalesByProductID returns all sales referencing the given product,
// in insertion order.
func (s *memoryStore) FindSalesByProductID(_ context.Context, productID string) ([]Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.products[productID]; !ok {
		return nil, ErrProductNotFound
	}
	list := make([]Sale, 0)
	for _, sale := range s.sales {
		if sale.ProductID == productID {
			list = append(list, sale)
		}
	}
	return list, nil
}
