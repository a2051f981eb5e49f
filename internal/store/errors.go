// Package store owns the in-memory entity collections and the rules that
// keep them consistent.
package store

import "errors"

var ErrClientNotFound = errors.New("client not found")
var ErrProductNotFound = errors.New("product not found")
var ErrSaleNotFound = errors.New("sale not found")

var ErrNameRequired = errors.New("name cannot be empty")
var ErrInvalidPrice = errors.New("price must be greater than 0")
var ErrInvalidStock = errors.New("stock cannot be negative")
var ErrInvalidQuantity = errors.New("quantity must be greater than 0")
var ErrInsufficientStock = errors.New("insufficient stock")

var ErrClientHasSales = errors.New("cannot delete client with existing sales")
var ErrProductHasSales = errors.New("cannot delete product with existing sales")
