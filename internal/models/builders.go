package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Builders accumulate optional fields through chained WithX calls and
// apply defaults when Build is called. They are stateful, single use
// and not safe for concurrent use.

// randomSuffix returns a short lowercase alphanumeric token for
// generated URLs and articles.
func randomSuffix(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

// OrderBuilder assembles an Order.
type OrderBuilder struct {
	order Order
}

func NewOrderBuilder() *OrderBuilder { return &OrderBuilder{} }

func (b *OrderBuilder) WithNumber(number string) *OrderBuilder {
	b.order.Number = number
	return b
}

func (b *OrderBuilder) WithDate(date time.Time) *OrderBuilder {
	b.order.Date = date
	return b
}

func (b *OrderBuilder) WithStatus(status OrderStatus) *OrderBuilder {
	b.order.Status = status
	return b
}

func (b *OrderBuilder) WithClient(client User) *OrderBuilder {
	b.order.Client = client
	return b
}

func (b *OrderBuilder) WithManagerID(id int64) *OrderBuilder {
	b.order.ManagerID = id
	return b
}

// WithSalePositions copies the given positions into the order, so the
// built order is independent from the caller's slice.
func (b *OrderBuilder) WithSalePositions(positions []SalePosition) *OrderBuilder {
	b.order.SalePositions = make([]SalePosition, len(positions))
	copy(b.order.SalePositions, positions)
	return b
}

func (b *OrderBuilder) WithShippingAddress(address string) *OrderBuilder {
	b.order.ShippingAddress = address
	return b
}

func (b *OrderBuilder) WithShippingDetails(details string) *OrderBuilder {
	b.order.ShippingDetails = details
	return b
}

func (b *OrderBuilder) WithDescription(description string) *OrderBuilder {
	b.order.Description = description
	return b
}

// Build materializes the order, generating a number and date when
// absent and defaulting the status to NEW.
func (b *OrderBuilder) Build() Order {
	order := b.order
	if order.Number == "" {
		order.Number = strings.ToUpper(randomSuffix(10))
	}
	if order.Date.IsZero() {
		order.Date = time.Now()
	}
	if order.Status == "" {
		order.Status = StatusNew
	}
	if order.SalePositions == nil {
		order.SalePositions = []SalePosition{}
	}
	return order
}

// ProductBuilder assembles a Product.
type ProductBuilder struct {
	product Product
}

func NewProductBuilder() *ProductBuilder { return &ProductBuilder{} }

func (b *ProductBuilder) WithArticle(article string) *ProductBuilder {
	b.product.Article = article
	return b
}

func (b *ProductBuilder) WithTitle(title string) *ProductBuilder {
	b.product.Title = title
	return b
}

func (b *ProductBuilder) WithURL(url string) *ProductBuilder {
	b.product.URL = url
	return b
}

func (b *ProductBuilder) WithDescription(description string) *ProductBuilder {
	b.product.Description = description
	return b
}

func (b *ProductBuilder) WithCategoryID(id int64) *ProductBuilder {
	b.product.CategoryID = id
	return b
}

func (b *ProductBuilder) WithPhotoID(id int64) *ProductBuilder {
	b.product.PhotoID = id
	return b
}

func (b *ProductBuilder) WithPrice(price float64) *ProductBuilder {
	b.product.Price = price
	return b
}

// Build materializes the product. A missing URL is generated from the
// transliterated title plus a random suffix, a missing article gets a
// random value and a negative price is clamped to zero.
func (b *ProductBuilder) Build() Product {
	product := b.product
	if product.URL == "" {
		slug := Translit(product.Title)
		if slug != "" {
			product.URL = slug + "-" + randomSuffix(6)
		} else {
			product.URL = randomSuffix(12)
		}
	}
	if product.Article == "" {
		product.Article = strings.ToUpper(randomSuffix(8))
	}
	if product.Price < 0 {
		product.Price = 0
	}
	return product
}

// CategoryBuilder assembles a Category.
type CategoryBuilder struct {
	category Category
}

func NewCategoryBuilder() *CategoryBuilder { return &CategoryBuilder{} }

func (b *CategoryBuilder) WithTitle(title string) *CategoryBuilder {
	b.category.Title = title
	return b
}

func (b *CategoryBuilder) WithURL(url string) *CategoryBuilder {
	b.category.URL = url
	return b
}

func (b *CategoryBuilder) WithDescription(description string) *CategoryBuilder {
	b.category.Description = description
	return b
}

func (b *CategoryBuilder) WithPhotoID(id int64) *CategoryBuilder {
	b.category.PhotoID = id
	return b
}

func (b *CategoryBuilder) Build() Category {
	category := b.category
	if category.URL == "" {
		slug := Translit(category.Title)
		if slug != "" {
			category.URL = slug + "-" + randomSuffix(6)
		} else {
			category.URL = randomSuffix(12)
		}
	}
	return category
}

// PhotoBuilder assembles a Photo.
type PhotoBuilder struct {
	photo Photo
}

func NewPhotoBuilder() *PhotoBuilder { return &PhotoBuilder{} }

func (b *PhotoBuilder) WithTitle(title string) *PhotoBuilder {
	b.photo.Title = title
	return b
}

func (b *PhotoBuilder) WithSmallURL(url string) *PhotoBuilder {
	b.photo.SmallURL = url
	return b
}

func (b *PhotoBuilder) WithLargeURL(url string) *PhotoBuilder {
	b.photo.LargeURL = url
	return b
}

func (b *PhotoBuilder) Build() Photo {
	photo := b.photo
	if photo.Title == "" {
		photo.Title = "photo-" + randomSuffix(6)
	}
	return photo
}

// UserBuilder assembles a User.
type UserBuilder struct {
	user User
}

func NewUserBuilder() *UserBuilder { return &UserBuilder{} }

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.user.Name = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithPhone(phone string) *UserBuilder {
	b.user.Phone = phone
	return b
}

func (b *UserBuilder) WithRole(role Role) *UserBuilder {
	b.user.Role = role
	return b
}

func (b *UserBuilder) WithPasswordHash(hash string) *UserBuilder {
	b.user.PasswordHash = hash
	return b
}

// Build materializes the user, defaulting the role to client. Guest
// checkout clients carry no credentials.
func (b *UserBuilder) Build() User {
	user := b.user
	if user.Role == "" {
		user.Role = RoleClient
	}
	return user
}
