package models

import "testing"

func TestSalePositionSetProduct(t *testing.T) {
	var sp SalePosition
	sp.SetProduct(Product{ID: 7, Price: 40})

	if sp.Number != 1 {
		t.Errorf("Number = %d after SetProduct, want 1", sp.Number)
	}
	if sp.Product.ID != 7 {
		t.Errorf("Product.ID = %d, want 7", sp.Product.ID)
	}

	sp.SetProduct(Product{})
	if sp.Number != 0 {
		t.Errorf("Number = %d after zero product, want 0", sp.Number)
	}
}

func TestSalePositionSetNumber(t *testing.T) {
	var sp SalePosition
	sp.SetProduct(Product{ID: 1, Price: 10})

	sp.SetNumber(5)
	if sp.Number != 5 {
		t.Errorf("Number = %d, want 5", sp.Number)
	}

	sp.SetNumber(-3)
	if sp.Number != 0 {
		t.Errorf("Number = %d after negative SetNumber, want 0", sp.Number)
	}
}

func TestSalePositionPrice(t *testing.T) {
	sp := SalePosition{Product: Product{ID: 1, Price: 32.5}, Number: 4}
	if got := sp.Price(); got != 130 {
		t.Errorf("Price() = %f, want 130", got)
	}

	sp.Number = 0
	if got := sp.Price(); got != 0 {
		t.Errorf("Price() = %f with zero quantity, want 0", got)
	}
}

func TestSalePositionSameProduct(t *testing.T) {
	a := SalePosition{Product: Product{ID: 1}, Number: 1}
	b := SalePosition{Product: Product{ID: 1}, Number: 9}
	c := SalePosition{Product: Product{ID: 2}, Number: 1}
	var zero SalePosition

	if !a.SameProduct(&b) {
		t.Error("positions with equal product IDs should match regardless of quantity")
	}
	if a.SameProduct(&c) {
		t.Error("positions with different products should not match")
	}
	if a.SameProduct(nil) {
		t.Error("nil should not match")
	}
	if zero.SameProduct(&zero) {
		t.Error("zero products should not match each other")
	}
}

func TestOrderPrice(t *testing.T) {
	order := Order{
		SalePositions: []SalePosition{
			{Product: Product{ID: 1, Price: 40}, Number: 2},
			{Product: Product{ID: 2, Price: 55}, Number: 1},
		},
	}
	if got := order.Price(); got != 135 {
		t.Errorf("Price() = %f, want 135", got)
	}

	var empty Order
	if got := empty.Price(); got != 0 {
		t.Errorf("empty order Price() = %f, want 0", got)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleClient} {
		if !r.Valid() {
			t.Errorf("%s.Valid() = false, want true", r)
		}
	}
	if Role("superuser").Valid() {
		t.Error(`Role("superuser").Valid() = true, want false`)
	}
}

func TestTranslit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Кофе в зернах", "kofe-v-zernah"},
		{"Espresso Blend", "espresso-blend"},
		{"Щедрий смак", "shchedrij-smak"},
		{"  Молотый!  ", "molotyj"},
		{"100 грамм", "100-gramm"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Translit(tt.in); got != tt.want {
			t.Errorf("Translit(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
