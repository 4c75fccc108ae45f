package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/suoapvs/alexcoffee/internal/db"
	"github.com/suoapvs/alexcoffee/internal/errs"
	"github.com/suoapvs/alexcoffee/internal/metrics"
	"github.com/suoapvs/alexcoffee/internal/models"
	"github.com/suoapvs/alexcoffee/pkg/logging"
)

// OrderService persists orders and runs the manager workflow over them.
type OrderService struct {
	db      *db.DB
	metrics *metrics.AppMetrics
	log     *logging.Logger
}

// NewOrderService creates a new order service
func NewOrderService(database *db.DB, m *metrics.AppMetrics, log *logging.Logger) *OrderService {
	return &OrderService{db: database, metrics: m, log: log.With("service", "orders")}
}

// nullableID maps a zero ID to SQL NULL so optional foreign keys stay
// consistent.
func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

// Save persists a checkout order in one transaction: the client row
// (reused by email when the guest ordered before), the order row and
// its sale positions.
func (s *OrderService) Save(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	clientID, err := s.upsertClient(ctx, tx, &order.Client)
	if err != nil {
		return err
	}
	order.Client.ID = clientID

	start := time.Now()
	orderQuery := `INSERT INTO orders (number, status, client_id, manager_id, shipping_address, shipping_details, description, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, orderQuery,
		order.Number, order.Status, clientID, nullableID(order.ManagerID),
		order.ShippingAddress, order.ShippingDetails, order.Description, order.Date)
	s.metrics.RecordDBQuery(ctx, "INSERT", "orders", start, err == nil)
	if err != nil {
		if isDuplicateEntry(err) {
			return errs.E(errs.KindDuplicate, "order number already exists")
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get order ID: %w", err)
	}

	start = time.Now()
	positionQuery := "INSERT INTO sale_positions (order_id, product_id, number) VALUES (?, ?, ?)"
	for i := range order.SalePositions {
		p := &order.SalePositions[i]
		posResult, err := tx.ExecContext(ctx, positionQuery, orderID, p.Product.ID, p.Number)
		if err != nil {
			s.metrics.RecordDBQuery(ctx, "INSERT", "sale_positions", start, false)
			return fmt.Errorf("failed to create sale position: %w", err)
		}
		p.OrderID = orderID
		if p.ID, err = posResult.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get sale position ID: %w", err)
		}
	}
	s.metrics.RecordDBQuery(ctx, "INSERT", "sale_positions", start, true)

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	order.ID = orderID
	return nil
}

// upsertClient returns the ID of the client row for the guest, reusing
// an existing account with the same email.
func (s *OrderService) upsertClient(ctx context.Context, tx *sql.Tx, client *models.User) (int64, error) {
	start := time.Now()
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ?", client.Email).Scan(&id)
	s.metrics.RecordDBQuery(ctx, "SELECT", "users", start, err == nil || err == sql.ErrNoRows)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up client: %w", err)
	}

	start = time.Now()
	result, err := tx.ExecContext(ctx,
		"INSERT INTO users (name, email, phone, role, password_hash) VALUES (?, ?, ?, ?, '')",
		client.Name, client.Email, client.Phone, models.RoleClient)
	s.metrics.RecordDBQuery(ctx, "INSERT", "users", start, err == nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create client: %w", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get client ID: %w", err)
	}
	return id, nil
}

const orderSelect = `SELECT o.id, o.number, o.status, o.manager_id, o.shipping_address, o.shipping_details, o.description,
	o.date, o.created_at, o.updated_at, u.id, u.name, u.email, u.phone, u.role
	FROM orders o JOIN users u ON o.client_id = u.id`

func scanOrder(row interface{ Scan(...interface{}) error }, o *models.Order) error {
	var managerID sql.NullInt64
	err := row.Scan(&o.ID, &o.Number, &o.Status, &managerID, &o.ShippingAddress, &o.ShippingDetails,
		&o.Description, &o.Date, &o.CreatedAt, &o.UpdatedAt,
		&o.Client.ID, &o.Client.Name, &o.Client.Email, &o.Client.Phone, &o.Client.Role)
	o.ManagerID = managerID.Int64
	return err
}

// Get returns an order with its client and sale positions
func (s *OrderService) Get(ctx context.Context, id int64) (*models.Order, error) {
	start := time.Now()
	var o models.Order
	err := scanOrder(s.db.QueryRowContext(ctx, orderSelect+" WHERE o.id = ?", id), &o)
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", start, err == nil || err == sql.ErrNoRows)
	if err == sql.ErrNoRows {
		return nil, errs.E(errs.KindNotFound, "order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if o.SalePositions, err = s.loadPositions(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *OrderService) loadPositions(ctx context.Context, orderID int64) ([]models.SalePosition, error) {
	start := time.Now()
	query := `SELECT sp.id, sp.order_id, sp.number,
		p.id, p.article, p.title, p.url, p.description, p.category_id, p.photo_id, p.price, p.created_at, p.updated_at
		FROM sale_positions sp JOIN products p ON sp.product_id = p.id WHERE sp.order_id = ?`
	rows, err := s.db.QueryContext(ctx, query, orderID)
	s.metrics.RecordDBQuery(ctx, "SELECT", "sale_positions", start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale positions: %w", err)
	}
	defer rows.Close()

	positions := []models.SalePosition{}
	for rows.Next() {
		var sp models.SalePosition
		var categoryID, photoID sql.NullInt64
		if err := rows.Scan(&sp.ID, &sp.OrderID, &sp.Number,
			&sp.Product.ID, &sp.Product.Article, &sp.Product.Title, &sp.Product.URL, &sp.Product.Description,
			&categoryID, &photoID, &sp.Product.Price, &sp.Product.CreatedAt, &sp.Product.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale position: %w", err)
		}
		sp.Product.CategoryID = categoryID.Int64
		sp.Product.PhotoID = photoID.Int64
		positions = append(positions, sp)
	}
	return positions, rows.Err()
}

// List returns orders newest first, optionally filtered by status
func (s *OrderService) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, errs.Ef(errs.KindBadRequest, "invalid status: %s", status)
	}
	start := time.Now()
	query := orderSelect
	args := []interface{}{}
	if status != "" {
		query += " WHERE o.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY o.created_at DESC"
	rows, err := s.db.QueryContext(ctx, query, args...)
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].SalePositions, err = s.loadPositions(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// Update applies a validated manager edit: status transition, manager
// assignment and shipping fields, in one atomic write.
func (s *OrderService) Update(ctx context.Context, id int64, req *models.UpdateOrderRequest) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	target := req.Status
	if target == "" {
		target = order.Status
	}
	if !target.Valid() {
		return nil, errs.Ef(errs.KindBadRequest, "invalid status: %s", target)
	}
	if !order.Status.CanTransition(target) {
		return nil, errs.Ef(errs.KindBadRequest, "cannot move order from %s to %s", order.Status, target)
	}

	start := time.Now()
	query := `UPDATE orders SET status = ?, manager_id = ?, shipping_address = ?, shipping_details = ?, description = ?, updated_at = NOW() WHERE id = ?`
	_, err = s.db.ExecContext(ctx, query,
		target, nullableID(req.ManagerID), req.ShippingAddress, req.ShippingDetails, req.Description, id)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "orders", start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.log.Info("order updated", "order_id", id, "from", order.Status, "to", target)
	return s.Get(ctx, id)
}

// Delete removes an order; its sale positions go with it through the
// ON DELETE CASCADE foreign key.
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	result, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	s.metrics.RecordDBQuery(ctx, "DELETE", "orders", start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errs.E(errs.KindNotFound, "order not found")
	}
	return nil
}
