package domain

import (
	"math/big"
	"time"
)

// CartItem is a Listing plus a requested purchase quantity.
type CartItem struct {
	Listing
	Quantity int `json:"quantity"`
}

// Cart is an insertion-ordered ledger of cart items for one storefront
// session. At most one item exists per listing ID, and quantities are
// always >= 1: reducing a quantity below 1 removes the item entirely.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart creates an empty cart for the given session.
func NewCart(sessionID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		SessionID: sessionID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// findItemIndex returns the index of the cart item with the given listing ID,
// or -1 if not found.
func (c *Cart) findItemIndex(listingID string) int {
	for i := range c.Items {
		if c.Items[i].ID == listingID {
			return i
		}
	}
	return -1
}

// AddListing merges the listing into the cart: an existing item has its
// quantity incremented by 1, a new item is appended with quantity 1,
// preserving first-seen insertion order.
func (c *Cart) AddListing(l Listing) {
	if i := c.findItemIndex(l.ID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	c.Items = append(c.Items, CartItem{Listing: l, Quantity: 1})
}

// RemoveListing deletes the item with the given listing ID. Removing an
// absent ID is a no-op, not an error.
func (c *Cart) RemoveListing(listingID string) {
	if i := c.findItemIndex(listingID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// SetQuantity sets the quantity of an existing item. A quantity below 1
// removes the item. Setting a quantity for an absent ID is a no-op: the
// cart never implicitly creates an item with an arbitrary quantity.
func (c *Cart) SetQuantity(listingID string, quantity int) {
	if quantity < 1 {
		c.RemoveListing(listingID)
		return
	}
	if i := c.findItemIndex(listingID); i >= 0 {
		c.Items[i].Quantity = quantity
	}
}

// TotalItems returns the sum of all quantities, 0 for an empty cart.
func (c *Cart) TotalItems() int {
	var total int
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalWei returns the sum of price*quantity over all items in wei. An item
// whose price cannot be parsed contributes 0 rather than failing the whole
// computation.
func (c *Cart) TotalWei() *big.Int {
	total := new(big.Int)
	for _, item := range c.Items {
		price, ok := ParseWei(item.Price)
		if !ok {
			continue
		}
		line := new(big.Int).Mul(price, big.NewInt(int64(item.Quantity)))
		total.Add(total, line)
	}
	return total
}
