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
)

const categoryColumns = "id, title, url, description, photo_id, created_at, updated_at"

// CategoryService handles catalog category operations
type CategoryService struct {
	db      *db.DB
	metrics *metrics.AppMetrics
}

// NewCategoryService creates a new category service
func NewCategoryService(database *db.DB, m *metrics.AppMetrics) *CategoryService {
	return &CategoryService{db: database, metrics: m}
}

func scanCategory(row interface{ Scan(...interface{}) error }, c *models.Category) error {
	var photoID sql.NullInt64
	err := row.Scan(&c.ID, &c.Title, &c.URL, &c.Description, &photoID, &c.CreatedAt, &c.UpdatedAt)
	c.PhotoID = photoID.Int64
	return err
}

// List returns all categories
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	start := time.Now()
	query := "SELECT " + categoryColumns + " FROM categories ORDER BY id"
	rows, err := s.db.QueryContext(ctx, query)
	s.metrics.RecordDBQuery(ctx, "SELECT", "categories", start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Get returns a category by ID
func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	start := time.Now()
	query := "SELECT " + categoryColumns + " FROM categories WHERE id = ?"
	var c models.Category
	err := scanCategory(s.db.QueryRowContext(ctx, query, id), &c)
	s.metrics.RecordDBQuery(ctx, "SELECT", "categories", start, err == nil || err == sql.ErrNoRows)
	if err == sql.ErrNoRows {
		return nil, errs.E(errs.KindNotFound, "category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// GetByURL returns a category by its URL slug
func (s *CategoryService) GetByURL(ctx context.Context, url string) (*models.Category, error) {
	start := time.Now()
	query := "SELECT " + categoryColumns + " FROM categories WHERE url = ?"
	var c models.Category
	err := scanCategory(s.db.QueryRowContext(ctx, query, url), &c)
	s.metrics.RecordDBQuery(ctx, "SELECT", "categories", start, err == nil || err == sql.ErrNoRows)
	if err == sql.ErrNoRows {
		return nil, errs.E(errs.KindNotFound, "category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// Create inserts a category
func (s *CategoryService) Create(ctx context.Context, c *models.Category) error {
	start := time.Now()
	query := "INSERT INTO categories (title, url, description, photo_id) VALUES (?, ?, ?, ?)"
	result, err := s.db.ExecContext(ctx, query, c.Title, c.URL, c.Description, nullableID(c.PhotoID))
	s.metrics.RecordDBQuery(ctx, "INSERT", "categories", start, err == nil)
	if err != nil {
		if isDuplicateEntry(err) {
			return errs.E(errs.KindDuplicate, "category already exists")
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	c.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category ID: %w", err)
	}
	return nil
}

// Update overwrites a category's fields
func (s *CategoryService) Update(ctx context.Context, c *models.Category) error {
	start := time.Now()
	query := "UPDATE categories SET title = ?, url = ?, description = ?, photo_id = ?, updated_at = NOW() WHERE id = ?"
	result, err := s.db.ExecContext(ctx, query, c.Title, c.URL, c.Description, nullableID(c.PhotoID), c.ID)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "categories", start, err == nil)
	if err != nil {
		if isDuplicateEntry(err) {
			return errs.E(errs.KindDuplicate, "category url already taken")
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errs.E(errs.KindNotFound, "category not found")
	}
	return nil
}

// Delete removes a category
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	query := "DELETE FROM categories WHERE id = ?"
	result, err := s.db.ExecContext(ctx, query, id)
	s.metrics.RecordDBQuery(ctx, "DELETE", "categories", start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errs.E(errs.KindNotFound, "category not found")
	}
	return nil
}
