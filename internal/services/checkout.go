package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/suoapvs/alexcoffee/internal/cart"
	"github.com/suoapvs/alexcoffee/internal/errs"
	"github.com/suoapvs/alexcoffee/internal/mail"
	"github.com/suoapvs/alexcoffee/internal/metrics"
	"github.com/suoapvs/alexcoffee/internal/models"
	"github.com/suoapvs/alexcoffee/pkg/logging"
)

// ErrEmptyCart is returned when checkout is attempted on an empty
// cart. The handler answers with a redirect home instead of an error
// page.
var ErrEmptyCart = errs.E(errs.KindBadRequest, "cart is empty")

// OrderStore persists a built order.
type OrderStore interface {
	Save(ctx context.Context, order *models.Order) error
}

// CheckoutService turns a session cart into a persisted order.
type CheckoutService struct {
	orders   OrderStore
	notifier mail.Sender
	metrics  *metrics.AppMetrics
	log      *logging.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(orders OrderStore, notifier mail.Sender, m *metrics.AppMetrics, log *logging.Logger) *CheckoutService {
	return &CheckoutService{
		orders:   orders,
		notifier: notifier,
		metrics:  m,
		log:      log.With("service", "checkout"),
	}
}

// Checkout runs the order creation workflow:
//
//  1. an empty cart aborts with ErrEmptyCart and no side effects;
//  2. a CLIENT user is built from the submitted contacts;
//  3. an order with status NEW is built from a snapshot of the cart,
//     so later cart mutations cannot touch it;
//  4. the order is persisted; a persistence failure aborts and leaves
//     the cart untouched;
//  5. staff is notified; a notification failure is logged only;
//  6. the cart is cleared.
func (s *CheckoutService) Checkout(ctx context.Context, c *cart.ShoppingCart, name, email, phone string) (*models.Order, error) {
	if c.Size() == 0 {
		return nil, ErrEmptyCart
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if name == "" || email == "" || phone == "" {
		return nil, errs.E(errs.KindBadRequest, "name, email and phone are required")
	}

	client := models.NewUserBuilder().
		WithName(name).
		WithEmail(email).
		WithPhone(phone).
		WithRole(models.RoleClient).
		Build()

	order := models.NewOrderBuilder().
		WithStatus(models.StatusNew).
		WithClient(client).
		WithSalePositions(c.SalePositions()).
		Build()

	if err := s.orders.Save(ctx, &order); err != nil {
		return nil, err
	}

	if err := s.notifier.Send(ctx, &order); err != nil {
		s.log.Error("order notification failed", "order_number", order.Number, "error", err)
	}

	c.Clear()

	s.metrics.OrdersCreated.Add(ctx, 1, metric.WithAttributes(s.metrics.WithServiceName(nil)...))
	s.metrics.RevenueTotal.Add(ctx, order.Price(), metric.WithAttributes(s.metrics.WithServiceName(nil)...))
	s.log.Info("order created", "order_number", order.Number, "positions", len(order.SalePositions), "total", order.Price())

	return &order, nil
}
