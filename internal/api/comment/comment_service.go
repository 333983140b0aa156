package comment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jharris/campwise/internal/models"
)

var _ Service = (*ServiceImpl)(nil)

// CampgroundStore is the slice of the campground repository the comment
// flows need: existence checks and the reference-list append.
type CampgroundStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campground, error)
	AppendCommentRef(ctx context.Context, campgroundID, commentID uuid.UUID) error
}

type Service interface {
	Campground(ctx context.Context, id uuid.UUID) (*models.Campground, error)
	Create(ctx context.Context, campgroundID uuid.UUID, body string, author models.Author) (*models.Comment, error)
	Update(ctx context.Context, cm *models.Comment, body string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceImpl struct {
	logger      *slog.Logger
	repo        Repository
	campgrounds CampgroundStore
	tracer      trace.Tracer
}

func NewService(repo Repository, campgrounds CampgroundStore, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		repo:        repo,
		campgrounds: campgrounds,
		tracer:      otel.Tracer("CommentService"),
	}
}

// Campground resolves the parent record for the comment forms.
func (s *ServiceImpl) Campground(ctx context.Context, id uuid.UUID) (*models.Campground, error) {
	return s.campgrounds.GetByID(ctx, id)
}

// Create inserts the comment and then appends its id to the campground's
// reference list. The two writes are separate statements; a failure after
// the insert leaves the comment row without a reference.
func (s *ServiceImpl) Create(ctx context.Context, campgroundID uuid.UUID, body string, author models.Author) (*models.Comment, error) {
	ctx, span := s.tracer.Start(ctx, "Create", trace.WithAttributes(
		attribute.String("campground.id", campgroundID.String()),
	))
	defer span.End()

	cg, err := s.campgrounds.GetByID(ctx, campgroundID)
	if err != nil {
		return nil, err
	}

	cm := models.NewComment(cg.ID, body, author)
	if err := s.repo.Create(ctx, cm); err != nil {
		return nil, err
	}
	if err := s.campgrounds.AppendCommentRef(ctx, cg.ID, cm.ID); err != nil {
		s.logger.ErrorContext(ctx, "Comment stored but not referenced",
			slog.String("commentID", cm.ID.String()),
			slog.Any("error", err))
		return nil, err
	}

	return cm, nil
}

func (s *ServiceImpl) Update(ctx context.Context, cm *models.Comment, body string) error {
	cm.Body = body
	return s.repo.Update(ctx, cm)
}

func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
