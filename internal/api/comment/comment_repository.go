package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jharris/campwise/app/observability/metrics"
	"github.com/jharris/campwise/internal/api"
	"github.com/jharris/campwise/internal/models"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Create(ctx context.Context, cm *models.Comment) error
	Update(ctx context.Context, cm *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
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

func (r *RepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var cm models.Comment
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, campground_id, body, author_id, author_username, created_at, updated_at
         FROM comments WHERE id = $1`, id).
		Scan(&cm.ID, &cm.CampgroundID, &cm.Body, &cm.Author.ID, &cm.Author.Username,
			&cm.CreatedAt, &cm.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("comment: %w", api.ErrNotFound)
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to get comment", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &cm, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, cm *models.Comment) error {
	_, err := r.pgpool.Exec(ctx,
		`INSERT INTO comments (id, campground_id, body, author_id, author_username, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cm.ID, cm.CampgroundID, cm.Body, cm.Author.ID, cm.Author.Username, cm.CreatedAt, cm.UpdatedAt)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to create comment", slog.Any("error", err))
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) Update(ctx context.Context, cm *models.Comment) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE comments SET body = $1, updated_at = $2 WHERE id = $3`,
		cm.Body, time.Now(), cm.ID)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comment: %w", api.ErrNotFound)
	}
	return nil
}

// Delete removes only the comment row; the id stays in the campground's
// reference list.
func (r *RepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comment: %w", api.ErrNotFound)
	}
	return nil
}
