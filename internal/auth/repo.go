package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/salesdesk/salesdesk/internal/platform/db"
	"github.com/salesdesk/salesdesk/internal/platform/httpx"
)

// Repository defines persistence operations for user accounts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	TouchSignIn(ctx context.Context, id int64, at time.Time) error
	CreateUser(ctx context.Context, email, passwordHash, fullName string) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const userColumns = `id, email, full_name, password_hash, is_active, created_at, updated_at, last_sign_in_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.LastSignInAt); err != nil {
		if db.IsNoRows(err) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByEmail fetches a user by email, case-insensitively.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE lower(email) = lower($1)`, email))
}

// FindByID fetches a user by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = $1`, id))
}

// TouchSignIn records the time of the latest successful sign-in.
func (r *PGRepository) TouchSignIn(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE app_user SET last_sign_in_at = $2, updated_at = $2 WHERE id = $1`, id, at.UTC())
	return err
}

// CreateUser inserts an active account.
func (r *PGRepository) CreateUser(ctx context.Context, email, passwordHash, fullName string) (*User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `
		INSERT INTO app_user (email, password_hash, full_name)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns, email, passwordHash, fullName))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

var _ Repository = (*PGRepository)(nil)
