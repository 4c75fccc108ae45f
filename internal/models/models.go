package models

import "time"

// Role is a user's access level.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleClient  Role = "client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleClient:
		return true
	}
	return false
}

// Category groups products in the catalog
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	URL         string    `json:"url" db:"url"`
	Description string    `json:"description" db:"description"`
	PhotoID     int64     `json:"photo_id,omitempty" db:"photo_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Photo holds image paths for a product or category
type Photo struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	SmallURL  string    `json:"small_url" db:"small_url"`
	LargeURL  string    `json:"large_url" db:"large_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Product represents a product in the catalog
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Article     string    `json:"article" db:"article"`
	Title       string    `json:"title" db:"title"`
	URL         string    `json:"url" db:"url"`
	Description string    `json:"description" db:"description"`
	CategoryID  int64     `json:"category_id,omitempty" db:"category_id"`
	PhotoID     int64     `json:"photo_id,omitempty" db:"photo_id"`
	Price       float64   `json:"price" db:"price"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// User represents a staff member or a checkout client
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Role         Role      `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SalePosition is one order or cart line item: a product with a quantity.
// OrderID stays 0 until the position is attached to a persisted order.
type SalePosition struct {
	ID      int64   `json:"id" db:"id"`
	OrderID int64   `json:"order_id,omitempty" db:"order_id"`
	Product Product `json:"product"`
	Number  int     `json:"number" db:"number"`
}

// SetProduct associates the product and resets the quantity: 1 for a
// real product, 0 for the zero value.
func (p *SalePosition) SetProduct(product Product) {
	p.Product = product
	if product.ID != 0 {
		p.Number = 1
	} else {
		p.Number = 0
	}
}

// SetNumber sets the quantity, clamping negatives to zero.
func (p *SalePosition) SetNumber(n int) {
	if n < 0 {
		n = 0
	}
	p.Number = n
}

// IncrementNumber bumps the quantity by one.
func (p *SalePosition) IncrementNumber() {
	p.Number++
}

// Price returns quantity times the product price.
func (p *SalePosition) Price() float64 {
	return float64(p.Number) * p.Product.Price
}

// SameProduct reports whether other holds the same product. This is the
// cart merge key: quantity is deliberately not part of it, so a second
// add of an already carted product always merges instead of inserting
// a duplicate line.
func (p *SalePosition) SameProduct(other *SalePosition) bool {
	return other != nil && p.Product.ID != 0 && p.Product.ID == other.Product.ID
}

// Order is an immutable-after-creation snapshot of sale positions plus
// client and status metadata, created at checkout.
type Order struct {
	ID              int64          `json:"id" db:"id"`
	Number          string         `json:"number" db:"number"`
	Status          OrderStatus    `json:"status" db:"status"`
	Client          User           `json:"client"`
	ManagerID       int64          `json:"manager_id,omitempty" db:"manager_id"`
	SalePositions   []SalePosition `json:"sale_positions"`
	ShippingAddress string         `json:"shipping_address" db:"shipping_address"`
	ShippingDetails string         `json:"shipping_details" db:"shipping_details"`
	Description     string         `json:"description" db:"description"`
	Date            time.Time      `json:"date" db:"date"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// Price returns the total over all sale positions.
func (o *Order) Price() float64 {
	var total float64
	for i := range o.SalePositions {
		total += o.SalePositions[i].Price()
	}
	return total
}

// CartView is the read-only cart projection rendered to clients
type CartView struct {
	SalePositions []SalePosition `json:"sale_positions"`
	Size          int            `json:"size"`
	Price         float64        `json:"price"`
}

// CheckoutResponse is the confirmation payload after a successful checkout
type CheckoutResponse struct {
	Order         *Order         `json:"order"`
	SalePositions []SalePosition `json:"sale_positions"`
	Price         float64        `json:"price"`
}

// CartItemRequest identifies a product for cart add/remove calls
type CartItemRequest struct {
	ProductID int64 `json:"product_id"`
}

// LoginRequest carries staff credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

// UpdateOrderRequest is the manager's order edit payload
type UpdateOrderRequest struct {
	Status          OrderStatus `json:"status"`
	ManagerID       int64       `json:"manager_id"`
	ShippingAddress string      `json:"shipping_address"`
	ShippingDetails string      `json:"shipping_details"`
	Description     string      `json:"description"`
}

// CreateUserRequest is the admin's user create/update payload
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`
	Password string `json:"password"`
}
