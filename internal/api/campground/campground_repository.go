package campground

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jharris/campwise/app/observability/metrics"
	"github.com/jharris/campwise/internal/api"
	"github.com/jharris/campwise/internal/models"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the campground persistence surface. GetWithComments also
// hydrates the comment list in stored reference order.
type Repository interface {
	List(ctx context.Context) ([]*models.Campground, error)
	Search(ctx context.Context, term string) ([]*models.Campground, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campground, error)
	GetWithComments(ctx context.Context, id uuid.UUID) (*models.Campground, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Campground, error)
	Create(ctx context.Context, cg *models.Campground) error
	Update(ctx context.Context, cg *models.Campground) error
	Delete(ctx context.Context, id uuid.UUID) error
	AppendCommentRef(ctx context.Context, campgroundID, commentID uuid.UUID) error
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

// likeEscaper neutralises LIKE metacharacters so a search term only ever
// matches literally. Backslash is the default escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

const campgroundColumns = `id, name, description, location, price, image_url, image_id,
       author_id, author_username, comment_ids, created_at, updated_at`

func scanCampground(row pgx.Row) (*models.Campground, error) {
	var c models.Campground
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Location, &c.Price, &c.ImageURL, &c.ImageID,
		&c.Author.ID, &c.Author.Username, &c.CommentIDs, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *RepositoryImpl) queryCampgrounds(ctx context.Context, query string, args ...any) ([]*models.Campground, error) {
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to query campgrounds", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query campgrounds: %w", err)
	}
	defer rows.Close()

	var out []*models.Campground
	for rows.Next() {
		cg, err := scanCampground(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campground: %w", err)
		}
		out = append(out, cg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read campground rows: %w", err)
	}
	return out, nil
}

func (r *RepositoryImpl) List(ctx context.Context) ([]*models.Campground, error) {
	query := fmt.Sprintf("SELECT %s FROM campgrounds ORDER BY created_at DESC", campgroundColumns)
	return r.queryCampgrounds(ctx, query)
}

// Search matches the name case-insensitively as a literal substring.
func (r *RepositoryImpl) Search(ctx context.Context, term string) ([]*models.Campground, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM campgrounds WHERE name ILIKE '%%' || $1 || '%%' ORDER BY created_at DESC",
		campgroundColumns)
	return r.queryCampgrounds(ctx, query, escapeLike(term))
}

func (r *RepositoryImpl) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Campground, error) {
	query := fmt.Sprintf("SELECT %s FROM campgrounds WHERE author_id = $1 ORDER BY created_at DESC", campgroundColumns)
	return r.queryCampgrounds(ctx, query, authorID)
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Campground, error) {
	query := fmt.Sprintf("SELECT %s FROM campgrounds WHERE id = $1", campgroundColumns)
	cg, err := scanCampground(r.pgpool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("campground: %w", api.ErrNotFound)
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to get campground", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get campground: %w", err)
	}
	return cg, nil
}

// GetWithComments loads the campground and resolves its comment references
// in stored order. References without a backing row are skipped.
func (r *RepositoryImpl) GetWithComments(ctx context.Context, id uuid.UUID) (*models.Campground, error) {
	cg, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(cg.CommentIDs) == 0 {
		return cg, nil
	}

	rows, err := r.pgpool.Query(ctx,
		`SELECT id, campground_id, body, author_id, author_username, created_at, updated_at
         FROM comments WHERE id = ANY($1)`, cg.CommentIDs)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*models.Comment, len(cg.CommentIDs))
	for rows.Next() {
		var cm models.Comment
		if err := rows.Scan(&cm.ID, &cm.CampgroundID, &cm.Body, &cm.Author.ID,
			&cm.Author.Username, &cm.CreatedAt, &cm.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		byID[cm.ID] = &cm
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comment rows: %w", err)
	}

	for _, cid := range cg.CommentIDs {
		if cm, ok := byID[cid]; ok {
			cg.Comments = append(cg.Comments, cm)
		}
	}
	return cg, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, cg *models.Campground) error {
	query := `
        INSERT INTO campgrounds (
            id, name, description, location, price, image_url, image_id,
            author_id, author_username, comment_ids, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err := r.pgpool.Exec(ctx, query,
		cg.ID, cg.Name, cg.Description, cg.Location, cg.Price, cg.ImageURL, cg.ImageID,
		cg.Author.ID, cg.Author.Username, cg.CommentIDs, cg.CreatedAt, cg.UpdatedAt,
	)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to create campground", slog.Any("error", err))
		return fmt.Errorf("failed to create campground: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) Update(ctx context.Context, cg *models.Campground) error {
	query := `
        UPDATE campgrounds
        SET name = $1, description = $2, location = $3, price = $4,
            image_url = $5, image_id = $6, updated_at = $7
        WHERE id = $8
    `
	tag, err := r.pgpool.Exec(ctx, query,
		cg.Name, cg.Description, cg.Location, cg.Price,
		cg.ImageURL, cg.ImageID, time.Now(), cg.ID,
	)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to update campground", slog.Any("error", err))
		return fmt.Errorf("failed to update campground: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campground: %w", api.ErrNotFound)
	}
	return nil
}

// Delete removes only the campground row. Its comments keep their rows and
// become unreferenced.
func (r *RepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM campgrounds WHERE id = $1", id)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("failed to delete campground: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campground: %w", api.ErrNotFound)
	}
	return nil
}

// AppendCommentRef adds a comment id to the campground's reference list.
func (r *RepositoryImpl) AppendCommentRef(ctx context.Context, campgroundID, commentID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE campgrounds SET comment_ids = array_append(comment_ids, $1), updated_at = $2 WHERE id = $3`,
		commentID, time.Now(), campgroundID)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("failed to append comment reference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campground: %w", api.ErrNotFound)
	}
	return nil
}
