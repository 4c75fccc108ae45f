// Package cart implements the session-scoped shopping cart aggregate.
package cart

import (
	"encoding/json"
	"sync"

	"github.com/suoapvs/alexcoffee/internal/models"
)

// ShoppingCart holds the sale positions of one session. At most one
// position exists per distinct product: adding a product that is
// already carted increments the existing line instead of appending a
// duplicate. The mutex serializes concurrent requests from the same
// session, so double-submits cannot break that invariant.
type ShoppingCart struct {
	mu        sync.Mutex
	positions []models.SalePosition
}

// New returns an empty cart.
func New() *ShoppingCart {
	return &ShoppingCart{}
}

// AddSalePosition adds a line item. A nil position or one without a
// product is ignored. If a line for the same product already exists,
// its quantity is incremented by one and the incoming quantity is
// ignored; otherwise the position is appended as given.
func (c *ShoppingCart) AddSalePosition(position *models.SalePosition) {
	if position == nil || position.Product.ID == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(*position)
}

// add assumes c.mu is held.
func (c *ShoppingCart) add(position models.SalePosition) {
	for i := range c.positions {
		if c.positions[i].SameProduct(&position) {
			c.positions[i].IncrementNumber()
			return
		}
	}
	c.positions = append(c.positions, position)
}

// AddSalePositions adds every element of positions; nil or empty input
// is a no-op.
func (c *ShoppingCart) AddSalePositions(positions []models.SalePosition) {
	if len(positions) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range positions {
		if positions[i].Product.ID == 0 {
			continue
		}
		c.add(positions[i])
	}
}

// RemoveSalePosition removes the line for the given position's product.
// Absent products and nil input are no-ops.
func (c *ShoppingCart) RemoveSalePosition(position *models.SalePosition) {
	if position == nil {
		return
	}
	c.RemoveProduct(position.Product.ID)
}

// RemoveProduct removes the line holding the product with the given ID.
func (c *ShoppingCart) RemoveProduct(productID int64) {
	if productID == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.positions {
		if c.positions[i].Product.ID == productID {
			c.positions = append(c.positions[:i], c.positions[i+1:]...)
			return
		}
	}
}

// RemoveSalePositions removes every matching line; nil or empty input
// is a no-op.
func (c *ShoppingCart) RemoveSalePositions(positions []models.SalePosition) {
	for i := range positions {
		c.RemoveProduct(positions[i].Product.ID)
	}
}

// Clear empties the cart. Safe to call repeatedly.
func (c *ShoppingCart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = nil
}

// SalePositions returns a defensive copy of the cart contents. Callers
// cannot mutate cart state through the returned slice.
func (c *ShoppingCart) SalePositions() []models.SalePosition {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]models.SalePosition, len(c.positions))
	copy(snapshot, c.positions)
	return snapshot
}

// SetSalePositions replaces the cart contents: clear, then re-add with
// the usual merge semantics.
func (c *ShoppingCart) SetSalePositions(positions []models.SalePosition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = nil
	for i := range positions {
		if positions[i].Product.ID == 0 {
			continue
		}
		c.add(positions[i])
	}
}

// Price returns the total over all lines; 0 for an empty cart.
func (c *ShoppingCart) Price() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for i := range c.positions {
		total += c.positions[i].Price()
	}
	return total
}

// Size returns the total item count across all lines (not the line
// count); 0 for an empty cart.
func (c *ShoppingCart) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var size int
	for i := range c.positions {
		size += c.positions[i].Number
	}
	return size
}

// Lines returns the number of distinct product lines.
func (c *ShoppingCart) Lines() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.positions)
}

// MarshalJSON serializes the cart as its position list, which is the
// format the Redis-backed session store persists.
func (c *ShoppingCart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.SalePositions())
}

// UnmarshalJSON restores a cart from a persisted position list.
func (c *ShoppingCart) UnmarshalJSON(data []byte) error {
	var positions []models.SalePosition
	if err := json.Unmarshal(data, &positions); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = positions
	return nil
}
