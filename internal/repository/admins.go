package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fabricstore/internal/domain"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// EnsureAdmin creates the named manager account when it does not exist yet.
func (r *Repository) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM admins WHERE username = $1)",
		username,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check default admin: %w", err)
	}
	if exists {
		return nil
	}
	if _, err := r.CreateAdmin(ctx, username, password, RoleManager, 5); err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	return nil
}

// AuthenticateAdmin returns nil, nil when the credentials do not match.
func (r *Repository) AuthenticateAdmin(ctx context.Context, username, password string) (*domain.AdminUser, error) {
	var (
		admin domain.AdminUser
		hash  string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, role, auto_lock_minutes, password_hash
		FROM admins
		WHERE username = $1
	`, strings.TrimSpace(username)).Scan(&admin.AdminID, &admin.Username, &admin.Role, &admin.AutoLockMinutes, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate admin query: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, nil
	}
	return &admin, nil
}

func (r *Repository) ListAdmins(ctx context.Context) ([]domain.AdminUser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, role, auto_lock_minutes
		FROM admins
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanAdmin)
	if err != nil {
		return nil, fmt.Errorf("scan admins: %w", err)
	}
	return items, nil
}

func (r *Repository) CreateAdmin(
	ctx context.Context,
	username, password, role string,
	autoLockMinutes int,
) (*domain.AdminUser, error) {
	username = strings.TrimSpace(username)
	role = strings.ToLower(strings.TrimSpace(role))
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if role != RoleManager && role != RoleEmployee {
		return nil, fmt.Errorf("role must be manager or employee")
	}
	autoLockMinutes = min(max(autoLockMinutes, 1), 60)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		INSERT INTO admins (username, password_hash, role, auto_lock_minutes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, role, auto_lock_minutes
	`, username, string(hash), role, autoLockMinutes)
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanAdmin)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("admin %q: %w", username, ErrConflict)
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return &created, nil
}

func (r *Repository) UpdateAdminPassword(ctx context.Context, adminID int64, password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	cmd, err := r.pool.Exec(ctx,
		"UPDATE admins SET password_hash = $2 WHERE id = $1",
		adminID,
		string(hash),
	)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteAdmin(ctx context.Context, adminID int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM admins WHERE id = $1", adminID)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetAdminByID(ctx context.Context, adminID int64) (*domain.AdminUser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, role, auto_lock_minutes
		FROM admins
		WHERE id = $1
	`, adminID)
	if err != nil {
		return nil, fmt.Errorf("get admin by id: %w", err)
	}
	admin, err := pgx.CollectExactlyOneRow(rows, scanAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by id: %w", err)
	}
	return &admin, nil
}

func scanAdmin(row pgx.CollectableRow) (domain.AdminUser, error) {
	var admin domain.AdminUser
	err := row.Scan(&admin.AdminID, &admin.Username, &admin.Role, &admin.AutoLockMinutes)
	return admin, err
}
