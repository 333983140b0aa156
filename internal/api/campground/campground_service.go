package campground

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jharris/campwise/app/media"
	"github.com/jharris/campwise/internal/models"
)

var _ Service = (*ServiceImpl)(nil)

// Service owns the campground workflows, including the image lifecycle
// against the asset host.
type Service interface {
	List(ctx context.Context) ([]*models.Campground, error)
	Search(ctx context.Context, term string) ([]*models.Campground, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Campground, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Campground, error)
	Create(ctx context.Context, input Input, image io.Reader, filename string, author models.Author) (*models.Campground, error)
	Update(ctx context.Context, id uuid.UUID, input Input, image io.Reader, filename string) (*models.Campground, error)
	Delete(ctx context.Context, cg *models.Campground) error
}

// Input carries the campground form fields.
type Input struct {
	Name        string
	Description string
	Location    string
	Price       float64
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	media  media.Store
	tracer trace.Tracer
}

func NewService(repo Repository, mediaStore media.Store, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		media:  mediaStore,
		tracer: otel.Tracer("CampgroundService"),
	}
}

func (s *ServiceImpl) List(ctx context.Context) ([]*models.Campground, error) {
	ctx, span := s.tracer.Start(ctx, "List")
	defer span.End()
	return s.repo.List(ctx)
}

func (s *ServiceImpl) Search(ctx context.Context, term string) ([]*models.Campground, error) {
	ctx, span := s.tracer.Start(ctx, "Search", trace.WithAttributes(
		attribute.String("search.term", term),
	))
	defer span.End()
	return s.repo.Search(ctx, term)
}

func (s *ServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.Campground, error) {
	ctx, span := s.tracer.Start(ctx, "Get", trace.WithAttributes(
		attribute.String("campground.id", id.String()),
	))
	defer span.End()
	return s.repo.GetWithComments(ctx, id)
}

func (s *ServiceImpl) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Campground, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}

// Create uploads the image first; the row is only written once the asset
// host has accepted the file.
func (s *ServiceImpl) Create(ctx context.Context, input Input, image io.Reader, filename string, author models.Author) (*models.Campground, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()

	asset, err := s.media.Upload(ctx, image, filename)
	if err != nil {
		span.SetStatus(codes.Error, "image upload failed")
		return nil, err
	}

	cg := models.NewCampground(input.Name, input.Description, input.Location, input.Price, asset.URL, asset.AssetID, author)

	if err := s.repo.Create(ctx, cg); err != nil {
		span.SetStatus(codes.Error, "insert failed")
		return nil, err
	}

	s.logger.InfoContext(ctx, "Campground created",
		slog.String("campgroundID", cg.ID.String()),
		slog.String("authorID", author.ID.String()))
	return cg, nil
}

// Update replaces the image when a new file is supplied: the old asset is
// destroyed, the new one uploaded, then the row is written. A nil image
// keeps the current asset.
func (s *ServiceImpl) Update(ctx context.Context, id uuid.UUID, input Input, image io.Reader, filename string) (*models.Campground, error) {
	ctx, span := s.tracer.Start(ctx, "Update", trace.WithAttributes(
		attribute.String("campground.id", id.String()),
	))
	defer span.End()

	cg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if image != nil {
		if err := s.media.Destroy(ctx, cg.ImageID); err != nil {
			span.SetStatus(codes.Error, "asset destroy failed")
			return nil, fmt.Errorf("failed to replace image: %w", err)
		}
		asset, err := s.media.Upload(ctx, image, filename)
		if err != nil {
			span.SetStatus(codes.Error, "image upload failed")
			return nil, err
		}
		cg.ImageURL = asset.URL
		cg.ImageID = asset.AssetID
	}

	cg.Name = input.Name
	cg.Description = input.Description
	cg.Location = input.Location
	cg.Price = input.Price

	if err := s.repo.Update(ctx, cg); err != nil {
		return nil, err
	}
	return cg, nil
}

// Delete removes the asset first, then the row. Comments referenced by the
// campground are left in place.
func (s *ServiceImpl) Delete(ctx context.Context, cg *models.Campground) error {
	ctx, span := s.tracer.Start(ctx, "Delete", trace.WithAttributes(
		attribute.String("campground.id", cg.ID.String()),
	))
	defer span.End()

	if err := s.media.Destroy(ctx, cg.ImageID); err != nil {
		span.SetStatus(codes.Error, "asset destroy failed")
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if err := s.repo.Delete(ctx, cg.ID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Campground deleted", slog.String("campgroundID", cg.ID.String()))
	return nil
}
