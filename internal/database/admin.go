// internal/database/admin.go
package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// CreateAdmin inserts an operator account.
func CreateAdmin(ctx context.Context, admin *models.Admin) error {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	q := `INSERT INTO admin_users (id, email, password_hash) VALUES ($1, $2, $3)`
	_, err := DB.Exec(ctx, q, admin.ID, admin.Email, admin.PasswordHash)
	return err
}

// GetAdminByEmail fetches an operator account, nil when absent.
func GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	q := `SELECT id, email, password_hash, created_at FROM admin_users WHERE email = $1`
	err := DB.QueryRow(ctx, q, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AdminExists reports whether the id belongs to an operator account.
func AdminExists(ctx context.Context, adminID uuid.UUID) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM admin_users WHERE id = $1)`
	if err := DB.QueryRow(ctx, q, adminID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
