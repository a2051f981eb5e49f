package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateClient adds a new client and returns it with a generated ID.
func (s *memoryStore) CreateClient(_ context.Context, name, email, phone string) (*Client, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	client := Client{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}
	s.clients[client.ID] = client
	s.clientOrder = append(s.clientOrder, client.ID)

	return &client, nil
}

// FindClientByID retrieves a client by its ID.
func (s *memoryStore) FindClientByID(_ context.Context, id string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	return &client, nil
}

// FindAllClients returns all clients in insertion order.
func (s *memoryStore) FindAllClients(_ context.Context) ([]Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Client, 0, len(s.clientOrder))
	for _, id := range s.clientOrder {
		list = append(list, s.clients[id])
	}
	return list, nil
}

// UpdateClient applies a partial update to an existing client.
// Only non-nil fields of upd are applied.
func (s *memoryStore) UpdateClient(_ context.Context, id string, upd ClientUpdate) (*Client, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	client, ok := s.clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	if upd.Name != nil {
		client.Name = *upd.Name
	}
	if upd.Email != nil {
		client.Email = *upd.Email
	}
	if upd.Phone != nil {
		client.Phone = *upd.Phone
	}
	s.clients[id] = client

	return &client, nil
}

// DeleteClientByID removes a client unless a sale still references it.
// The reference scan and the removal run under one write lock.
func (s *memoryStore) DeleteClientByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return ErrClientNotFound
	}
	for _, sale := range s.sales {
		if sale.ClientID == id {
			return ErrClientHasSales
		}
	}
	delete(s.clients, id)
	s.clientOrder = removeID(s.clientOrder, id)

	return nil
}
