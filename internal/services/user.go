package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/suoapvs/alexcoffee/internal/auth"
	"github.com/suoapvs/alexcoffee/internal/db"
	"github.com/suoapvs/alexcoffee/internal/errs"
	"github.com/suoapvs/alexcoffee/internal/metrics"
	"github.com/suoapvs/alexcoffee/internal/models"
	"github.com/suoapvs/alexcoffee/pkg/logging"
)

const userColumns = "id, name, email, phone, role, password_hash, created_at"

// UserService handles staff and client accounts
type UserService struct {
	db      *db.DB
	metrics *metrics.AppMetrics
	log     *logging.Logger
}

// NewUserService creates a new user service
func NewUserService(database *db.DB, m *metrics.AppMetrics, log *logging.Logger) *UserService {
	return &UserService{db: database, metrics: m, log: log.With("service", "users")}
}

func scanUser(row interface{ Scan(...interface{}) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.PasswordHash, &u.CreatedAt)
}

// Create inserts a user. The password, when present, arrives already hashed.
func (s *UserService) Create(ctx context.Context, u *models.User) error {
	start := time.Now()
	query := "INSERT INTO users (name, email, phone, role, password_hash) VALUES (?, ?, ?, ?, ?)"
	result, err := s.db.ExecContext(ctx, query, u.Name, u.Email, u.Phone, u.Role, u.PasswordHash)
	s.metrics.RecordDBQuery(ctx, "INSERT", "users", start, err == nil)
	if err != nil {
		if isDuplicateEntry(err) {
			return errs.E(errs.KindDuplicate, "user already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user ID: %w", err)
	}
	return nil
}

// Get returns a user by ID
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	start := time.Now()
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	var u models.User
	err := scanUser(s.db.QueryRowContext(ctx, query, id), &u)
	s.metrics.RecordDBQuery(ctx, "SELECT", "users", start, err == nil || err == sql.ErrNoRows)
	if err == sql.ErrNoRows {
		return nil, errs.E(errs.KindNotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetByEmail returns a user by email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	start := time.Now()
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	var u models.User
	err := scanUser(s.db.QueryRowContext(ctx, query, email), &u)
	s.metrics.RecordDBQuery(ctx, "SELECT", "users", start, err == nil || err == sql.ErrNoRows)
	if err == sql.ErrNoRows {
		return nil, errs.E(errs.KindNotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// List returns users, optionally filtered by role
func (s *UserService) List(ctx context.Context, role models.Role) ([]models.User, error) {
	start := time.Now()
	query := "SELECT " + userColumns + " FROM users"
	args := []interface{}{}
	if role != "" {
		query += " WHERE role = ?"
		args = append(args, role)
	}
	query += " ORDER BY id"
	rows, err := s.db.QueryContext(ctx, query, args...)
	s.metrics.RecordDBQuery(ctx, "SELECT", "users", start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update overwrites a user's fields. An empty hash keeps the stored password.
func (s *UserService) Update(ctx context.Context, u *models.User) error {
	start := time.Now()
	var (
		result sql.Result
		err    error
	)
	if u.PasswordHash != "" {
		query := "UPDATE users SET name = ?, email = ?, phone = ?, role = ?, password_hash = ? WHERE id = ?"
		result, err = s.db.ExecContext(ctx, query, u.Name, u.Email, u.Phone, u.Role, u.PasswordHash, u.ID)
	} else {
		query := "UPDATE users SET name = ?, email = ?, phone = ?, role = ? WHERE id = ?"
		result, err = s.db.ExecContext(ctx, query, u.Name, u.Email, u.Phone, u.Role, u.ID)
	}
	s.metrics.RecordDBQuery(ctx, "UPDATE", "users", start, err == nil)
	if err != nil {
		if isDuplicateEntry(err) {
			return errs.E(errs.KindDuplicate, "email already taken")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errs.E(errs.KindNotFound, "user not found")
	}
	return nil
}

// Delete removes a user
func (s *UserService) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	query := "DELETE FROM users WHERE id = ?"
	result, err := s.db.ExecContext(ctx, query, id)
	s.metrics.RecordDBQuery(ctx, "DELETE", "users", start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errs.E(errs.KindNotFound, "user not found")
	}
	return nil
}

// Authenticate verifies staff credentials. Clients have no password
// and can never log in.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errs.NotFound(err) {
			return nil, errs.E(errs.KindForbidden, "invalid credentials")
		}
		return nil, err
	}
	if user.Role == models.RoleClient || user.PasswordHash == "" {
		return nil, errs.E(errs.KindForbidden, "invalid credentials")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errs.E(errs.KindForbidden, "invalid credentials")
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account when none exists yet.
// A blank password disables the bootstrap.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if password == "" {
		return nil
	}
	start := time.Now()
	query := "SELECT COUNT(*) FROM users WHERE role = ?"
	var count int
	err := s.db.QueryRowContext(ctx, query, models.RoleAdmin).Scan(&count)
	s.metrics.RecordDBQuery(ctx, "SELECT", "users", start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.NewUserBuilder().
		WithName("Administrator").
		WithEmail(email).
		WithRole(models.RoleAdmin).
		WithPasswordHash(hash).
		Build()
	if err := s.Create(ctx, &admin); err != nil {
		return err
	}
	s.log.Info("bootstrap admin created", "email", email)
	return nil
}
