package models

import "testing"

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusNew, StatusWork, StatusDelivery, StatusClosed, StatusRejection} {
		if !s.Valid() {
			t.Errorf("%s.Valid() = false, want true", s)
		}
	}
	if OrderStatus("SHIPPED").Valid() {
		t.Error(`OrderStatus("SHIPPED").Valid() = true, want false`)
	}
	if OrderStatus("").Valid() {
		t.Error(`empty status Valid() = true, want false`)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{StatusNew, false},
		{StatusWork, false},
		{StatusDelivery, false},
		{StatusClosed, true},
		{StatusRejection, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestOrderStatusCanTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   OrderStatus
		to     OrderStatus
		want   bool
	}{
		{"new to work", StatusNew, StatusWork, true},
		{"work to delivery", StatusWork, StatusDelivery, true},
		{"delivery to closed", StatusDelivery, StatusClosed, true},
		{"new to delivery skips work", StatusNew, StatusDelivery, false},
		{"new to closed skips everything", StatusNew, StatusClosed, false},
		{"work to closed skips delivery", StatusWork, StatusClosed, false},
		{"delivery back to new", StatusDelivery, StatusNew, false},
		{"work back to new", StatusWork, StatusNew, false},
		{"new to rejection", StatusNew, StatusRejection, true},
		{"work to rejection", StatusWork, StatusRejection, true},
		{"delivery to rejection", StatusDelivery, StatusRejection, true},
		{"closed to rejection", StatusClosed, StatusRejection, false},
		{"closed to work", StatusClosed, StatusWork, false},
		{"rejection to new", StatusRejection, StatusNew, false},
		{"same status allowed", StatusWork, StatusWork, true},
		{"same terminal status allowed", StatusClosed, StatusClosed, true},
		{"unknown target", StatusNew, OrderStatus("SHIPPED"), false},
		{"unknown source", OrderStatus("SHIPPED"), StatusWork, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
