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

// PhotoService handles photo records referenced by products and categories.
type PhotoService struct {
	db      *db.DB
	metrics *metrics.AppMetrics
}

func NewPhotoService(database *db.DB, m *metrics.AppMetrics) *PhotoService {
	return &PhotoService{db: database, metrics: m}
}

// List returns all photos
func (s *PhotoService) List(ctx context.Context) ([]models.Photo, error) {
	start := time.Now()
	query := "SELECT id, title, small_url, large_url, created_at FROM photos ORDER BY id"
	rows, err := s.db.QueryContext(ctx, query)
	s.metrics.RecordDBQuery(ctx, "SELECT", "photos", start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.Title, &p.SmallURL, &p.LargeURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// Get returns a photo by ID
func (s *PhotoService) Get(ctx context.Context, id int64) (*models.Photo, error) {
	start := time.Now()
	query := "SELECT id, title, small_url, large_url, created_at FROM photos WHERE id = ?"
	var p models.Photo
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Title, &p.SmallURL, &p.LargeURL, &p.CreatedAt)
	s.metrics.RecordDBQuery(ctx, "SELECT", "photos", start, err == nil || err == sql.ErrNoRows)
	if err == sql.ErrNoRows {
		return nil, errs.E(errs.KindNotFound, "photo not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &p, nil
}

// Create inserts a photo
func (s *PhotoService) Create(ctx context.Context, p *models.Photo) error {
	start := time.Now()
	query := "INSERT INTO photos (title, small_url, large_url) VALUES (?, ?, ?)"
	result, err := s.db.ExecContext(ctx, query, p.Title, p.SmallURL, p.LargeURL)
	s.metrics.RecordDBQuery(ctx, "INSERT", "photos", start, err == nil)
	if err != nil {
		if isDuplicateEntry(err) {
			return errs.E(errs.KindDuplicate, "photo already exists")
		}
		return fmt.Errorf("failed to create photo: %w", err)
	}
	p.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get photo ID: %w", err)
	}
	return nil
}

// Update overwrites a photo's fields
func (s *PhotoService) Update(ctx context.Context, p *models.Photo) error {
	start := time.Now()
	query := "UPDATE photos SET title = ?, small_url = ?, large_url = ? WHERE id = ?"
	result, err := s.db.ExecContext(ctx, query, p.Title, p.SmallURL, p.LargeURL, p.ID)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "photos", start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to update photo: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errs.E(errs.KindNotFound, "photo not found")
	}
	return nil
}

// Delete removes a photo
func (s *PhotoService) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	query := "DELETE FROM photos WHERE id = ?"
	result, err := s.db.ExecContext(ctx, query, id)
	s.metrics.RecordDBQuery(ctx, "DELETE", "photos", start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errs.E(errs.KindNotFound, "photo not found")
	}
	return nil
}
