package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/suoapvs/alexcoffee/internal/db"
	"github.com/suoapvs/alexcoffee/internal/errs"
	"github.com/suoapvs/alexcoffee/internal/metrics"
	"github.com/suoapvs/alexcoffee/internal/models"
)

const productColumns = "id, article, title, url, description, category_id, photo_id, price, created_at, updated_at"

// productCache holds recently read products keyed by ID.
type productCache struct {
	mu    sync.RWMutex
	items map[int64]cachedProduct
}

type cachedProduct struct {
	product models.Product
	expires time.Time
}

// ProductService handles catalog product operations
type ProductService struct {
	db      *db.DB
	metrics *metrics.AppMetrics
	cache   productCache
}

// NewProductService creates a new product service
func NewProductService(database *db.DB, m *metrics.AppMetrics) *ProductService {
	return &ProductService{
		db:      database,
		metrics: m,
		cache:   productCache{items: make(map[int64]cachedProduct)},
	}
}

func scanProduct(row interface{ Scan(...interface{}) error }, p *models.Product) error {
	var categoryID, photoID sql.NullInt64
	err := row.Scan(&p.ID, &p.Article, &p.Title, &p.URL, &p.Description,
		&categoryID, &photoID, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	p.CategoryID = categoryID.Int64
	p.PhotoID = photoID.Int64
	return err
}

// List returns a paginated product listing
func (s *ProductService) List(ctx context.Context, limit, offset int) ([]models.Product, error) {
	start := time.Now()
	query := "SELECT " + productColumns + " FROM products ORDER BY id LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	s.metrics.RecordDBQuery(ctx, "SELECT", "products", start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListByCategoryURL returns the products of one category
func (s *ProductService) ListByCategoryURL(ctx context.Context, categoryURL string) ([]models.Product, error) {
	start := time.Now()
	query := `SELECT p.id, p.article, p.title, p.url, p.description, p.category_id, p.photo_id, p.price, p.created_at, p.updated_at
		FROM products p JOIN categories c ON p.category_id = c.id WHERE c.url = ? ORDER BY p.id`
	rows, err := s.db.QueryContext(ctx, query, categoryURL)
	s.metrics.RecordDBQuery(ctx, "SELECT", "products", start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query products by category: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Get returns a product by ID, serving repeated reads from the cache
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	s.cache.mu.RLock()
	cached, ok := s.cache.items[id]
	s.cache.mu.RUnlock()
	if ok && time.Now().Before(cached.expires) {
		s.metrics.CacheHits.Add(ctx, 1, metric.WithAttributes(s.metrics.WithServiceName(nil)...))
		s.recordView(ctx, &cached.product)
		return &cached.product, nil
	}
	s.metrics.CacheMisses.Add(ctx, 1, metric.WithAttributes(s.metrics.WithServiceName(nil)...))

	start := time.Now()
	query := "SELECT " + productColumns + " FROM products WHERE id = ?"
	var p models.Product
	err := scanProduct(s.db.QueryRowContext(ctx, query, id), &p)
	s.metrics.RecordDBQuery(ctx, "SELECT", "products", start, err == nil || err == sql.ErrNoRows)
	if err == sql.ErrNoRows {
		return nil, errs.E(errs.KindNotFound, "product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	s.cache.mu.Lock()
	s.cache.items[id] = cachedProduct{product: p, expires: time.Now().Add(5 * time.Minute)}
	s.cache.mu.Unlock()

	s.recordView(ctx, &p)
	return &p, nil
}

// GetByURL returns a product by its URL slug
func (s *ProductService) GetByURL(ctx context.Context, url string) (*models.Product, error) {
	start := time.Now()
	query := "SELECT " + productColumns + " FROM products WHERE url = ?"
	var p models.Product
	err := scanProduct(s.db.QueryRowContext(ctx, query, url), &p)
	s.metrics.RecordDBQuery(ctx, "SELECT", "products", start, err == nil || err == sql.ErrNoRows)
	if err == sql.ErrNoRows {
		return nil, errs.E(errs.KindNotFound, "product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	s.recordView(ctx, &p)
	return &p, nil
}

// Create inserts a product built by the handler
func (s *ProductService) Create(ctx context.Context, p *models.Product) error {
	start := time.Now()
	query := "INSERT INTO products (article, title, url, description, category_id, photo_id, price) VALUES (?, ?, ?, ?, ?, ?, ?)"
	result, err := s.db.ExecContext(ctx, query, p.Article, p.Title, p.URL, p.Description, nullableID(p.CategoryID), nullableID(p.PhotoID), p.Price)
	s.metrics.RecordDBQuery(ctx, "INSERT", "products", start, err == nil)
	if err != nil {
		if isDuplicateEntry(err) {
			return errs.E(errs.KindDuplicate, "product already exists")
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	p.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get product ID: %w", err)
	}
	return nil
}

// Update overwrites a product's fields
func (s *ProductService) Update(ctx context.Context, p *models.Product) error {
	start := time.Now()
	query := "UPDATE products SET article = ?, title = ?, url = ?, description = ?, category_id = ?, photo_id = ?, price = ?, updated_at = NOW() WHERE id = ?"
	result, err := s.db.ExecContext(ctx, query, p.Article, p.Title, p.URL, p.Description, nullableID(p.CategoryID), nullableID(p.PhotoID), p.Price, p.ID)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "products", start, err == nil)
	if err != nil {
		if isDuplicateEntry(err) {
			return errs.E(errs.KindDuplicate, "product url already taken")
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errs.E(errs.KindNotFound, "product not found")
	}
	s.invalidate(p.ID)
	return nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	query := "DELETE FROM products WHERE id = ?"
	result, err := s.db.ExecContext(ctx, query, id)
	s.metrics.RecordDBQuery(ctx, "DELETE", "products", start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errs.E(errs.KindNotFound, "product not found")
	}
	s.invalidate(id)
	return nil
}

func (s *ProductService) invalidate(id int64) {
	s.cache.mu.Lock()
	delete(s.cache.items, id)
	s.cache.mu.Unlock()
}

func (s *ProductService) recordView(ctx context.Context, p *models.Product) {
	attrs := s.metrics.WithServiceName([]attribute.KeyValue{
		attribute.Int64("product_id", p.ID),
	})
	s.metrics.ProductsViewed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// isDuplicateEntry detects a MySQL unique-constraint violation (1062)
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
