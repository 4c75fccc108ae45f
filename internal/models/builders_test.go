package models

import (
	"strings"
	"testing"
	"time"
)

func TestOrderBuilderDefaults(t *testing.T) {
	order := NewOrderBuilder().Build()

	if len(order.Number) != 10 {
		t.Errorf("generated number %q has length %d, want 10", order.Number, len(order.Number))
	}
	if order.Number != strings.ToUpper(order.Number) {
		t.Errorf("generated number %q is not uppercase", order.Number)
	}
	if order.Date.IsZero() {
		t.Error("generated date is zero")
	}
	if order.Status != StatusNew {
		t.Errorf("default status = %s, want %s", order.Status, StatusNew)
	}
	if order.SalePositions == nil {
		t.Error("SalePositions is nil, want empty slice")
	}
}

func TestOrderBuilderExplicitFields(t *testing.T) {
	date := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client := User{Name: "Anna", Email: "anna@example.com", Role: RoleClient}

	order := NewOrderBuilder().
		WithNumber("ABCDEF1234").
		WithDate(date).
		WithStatus(StatusWork).
		WithClient(client).
		WithManagerID(3).
		WithShippingAddress("Khreshchatyk 1").
		WithShippingDetails("call first").
		WithDescription("gift wrap").
		Build()

	if order.Number != "ABCDEF1234" {
		t.Errorf("Number = %q, want ABCDEF1234", order.Number)
	}
	if !order.Date.Equal(date) {
		t.Errorf("Date = %v, want %v", order.Date, date)
	}
	if order.Status != StatusWork {
		t.Errorf("Status = %s, want %s", order.Status, StatusWork)
	}
	if order.Client.Email != "anna@example.com" {
		t.Errorf("Client.Email = %q", order.Client.Email)
	}
	if order.ManagerID != 3 {
		t.Errorf("ManagerID = %d, want 3", order.ManagerID)
	}
	if order.ShippingAddress != "Khreshchatyk 1" || order.ShippingDetails != "call first" {
		t.Error("shipping fields not carried through")
	}
}

func TestOrderBuilderCopiesSalePositions(t *testing.T) {
	positions := []SalePosition{
		{Product: Product{ID: 1, Price: 40}, Number: 2},
	}
	order := NewOrderBuilder().WithSalePositions(positions).Build()

	positions[0].Number = 99

	if order.SalePositions[0].Number != 2 {
		t.Errorf("order position Number = %d after caller mutation, want 2", order.SalePositions[0].Number)
	}
}

func TestOrderNumbersAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := NewOrderBuilder().Build().Number
		if seen[n] {
			t.Fatalf("duplicate generated number %q", n)
		}
		seen[n] = true
	}
}

func TestProductBuilderGeneratesURL(t *testing.T) {
	product := NewProductBuilder().WithTitle("Кофе в зернах").WithPrice(250).Build()

	if !strings.HasPrefix(product.URL, "kofe-v-zernah-") {
		t.Errorf("URL = %q, want kofe-v-zernah- prefix", product.URL)
	}
	if product.Article == "" {
		t.Error("generated article is empty")
	}
	if product.Price != 250 {
		t.Errorf("Price = %f, want 250", product.Price)
	}
}

func TestProductBuilderKeepsExplicitURL(t *testing.T) {
	product := NewProductBuilder().WithTitle("Espresso").WithURL("espresso").Build()
	if product.URL != "espresso" {
		t.Errorf("URL = %q, want espresso", product.URL)
	}
}

func TestProductBuilderClampsNegativePrice(t *testing.T) {
	product := NewProductBuilder().WithTitle("Espresso").WithPrice(-10).Build()
	if product.Price != 0 {
		t.Errorf("Price = %f, want 0", product.Price)
	}
}

func TestProductBuilderUntitled(t *testing.T) {
	product := NewProductBuilder().Build()
	if product.URL == "" {
		t.Error("URL is empty for untitled product")
	}
}

func TestCategoryBuilderGeneratesURL(t *testing.T) {
	category := NewCategoryBuilder().WithTitle("Молотый кофе").Build()
	if !strings.HasPrefix(category.URL, "molotyj-kofe-") {
		t.Errorf("URL = %q, want molotyj-kofe- prefix", category.URL)
	}
}

func TestUserBuilderDefaultsToClient(t *testing.T) {
	user := NewUserBuilder().WithName("Anna").WithEmail("anna@example.com").Build()
	if user.Role != RoleClient {
		t.Errorf("Role = %s, want %s", user.Role, RoleClient)
	}
}

func TestUserBuilderKeepsRole(t *testing.T) {
	user := NewUserBuilder().WithEmail("boss@example.com").WithRole(RoleAdmin).WithPasswordHash("x").Build()
	if user.Role != RoleAdmin {
		t.Errorf("Role = %s, want %s", user.Role, RoleAdmin)
	}
	if user.PasswordHash != "x" {
		t.Errorf("PasswordHash = %q, want x", user.PasswordHash)
	}
}

func TestPhotoBuilderDefaultTitle(t *testing.T) {
	photo := NewPhotoBuilder().WithSmallURL("/img/s.png").Build()
	if photo.Title == "" {
		t.Error("generated photo title is empty")
	}
	if photo.SmallURL != "/img/s.png" {
		t.Errorf("SmallURL = %q", photo.SmallURL)
	}
}
