package models

// OrderStatus is the order workflow state.
type OrderStatus string

const (
	StatusNew       OrderStatus = "NEW"
	StatusWork      OrderStatus = "WORK"
	StatusDelivery  OrderStatus = "DELIVERY"
	StatusClosed    OrderStatus = "CLOSED"
	StatusRejection OrderStatus = "REJECTION"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusWork, StatusDelivery, StatusClosed, StatusRejection:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusClosed || s == StatusRejection
}

// CanTransition reports whether a manager may move an order from s to
// target. The workflow is NEW -> WORK -> DELIVERY -> CLOSED, with
// REJECTION reachable from any non-terminal state. Re-asserting the
// current status is allowed so an edit that only touches shipping
// fields does not have to special-case the status.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	if !s.Valid() || !target.Valid() {
		return false
	}
	if s == target {
		return true
	}
	if s.Terminal() {
		return false
	}
	if target == StatusRejection {
		return true
	}
	switch s {
	case StatusNew:
		return target == StatusWork
	case StatusWork:
		return target == StatusDelivery
	case StatusDelivery:
		return target == StatusClosed
	}
	return false
}
