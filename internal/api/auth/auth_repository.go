package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jharris/campwise/app/observability/metrics"
	"github.com/jharris/campwise/internal/api"
	"github.com/jharris/campwise/internal/models"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the user persistence operations the auth flows need.
type Repository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error
	UpdatePasswordAndClearReset(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool api.DB
}

func NewRepository(pgpool api.DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = `id, username, email, password_hash, first_name, last_name,
       image_url, image_id, bio, is_admin, reset_password_token,
       reset_password_expires, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.ImageID, &u.Bio, &u.IsAdmin, &u.ResetPasswordToken,
		&u.ResetPasswordExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *RepositoryImpl) getUserWhere(ctx context.Context, clause string, arg any) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE %s", userColumns, clause)
	user, err := scanUser(r.pgpool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", api.ErrNotFound)
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *RepositoryImpl) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getUserWhere(ctx, "id = $1", id)
}

func (r *RepositoryImpl) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUserWhere(ctx, "username = $1", username)
}

func (r *RepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUserWhere(ctx, "email = $1", email)
}

// GetUserByResetToken resolves a reset token that has not yet expired.
func (r *RepositoryImpl) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	return r.getUserWhere(ctx, "reset_password_token = $1 AND reset_password_expires > now()", token)
}

// CreateUser inserts a new account. Unique violations on username or
// email surface as api.ErrConflict with a user-presentable message.
func (r *RepositoryImpl) CreateUser(ctx context.Context, user *models.User) error {
	query := `
        INSERT INTO users (
            id, username, email, password_hash, first_name, last_name,
            image_url, image_id, bio, is_admin, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err := r.pgpool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.ImageURL, user.ImageID, user.Bio, user.IsAdmin, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			field := "username"
			if pgErr.ConstraintName == "users_email_key" {
				field = "email"
			}
			return &ConflictError{Field: field}
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// SetResetToken attaches a reset token and its expiry to the user.
func (r *RepositoryImpl) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users SET reset_password_token = $1, reset_password_expires = $2, updated_at = $3 WHERE id = $4`,
		token, expires, time.Now(), userID)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user: %w", api.ErrNotFound)
	}
	return nil
}

// UpdatePasswordAndClearReset stores the new credential hash and clears
// both reset fields in one statement.
func (r *RepositoryImpl) UpdatePasswordAndClearReset(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users SET password_hash = $1, reset_password_token = NULL,
             reset_password_expires = NULL, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now(), userID)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user: %w", api.ErrNotFound)
	}
	return nil
}
