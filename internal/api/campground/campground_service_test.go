package campground

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jharris/campwise/app/media"
	"github.com/jharris/campwise/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]*models.Campground, error) {
	args := m.Called(ctx)
	cgs, _ := args.Get(0).([]*models.Campground)
	return cgs, args.Error(1)
}

func (m *MockRepository) Search(ctx context.Context, term string) ([]*models.Campground, error) {
	args := m.Called(ctx, term)
	cgs, _ := args.Get(0).([]*models.Campground)
	return cgs, args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Campground, error) {
	args := m.Called(ctx, id)
	cg, _ := args.Get(0).(*models.Campground)
	return cg, args.Error(1)
}

func (m *MockRepository) GetWithComments(ctx context.Context, id uuid.UUID) (*models.Campground, error) {
	args := m.Called(ctx, id)
	cg, _ := args.Get(0).(*models.Campground)
	return cg, args.Error(1)
}

func (m *MockRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Campground, error) {
	args := m.Called(ctx, authorID)
	cgs, _ := args.Get(0).([]*models.Campground)
	return cgs, args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, cg *models.Campground) error {
	return m.Called(ctx, cg).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, cg *models.Campground) error {
	return m.Called(ctx, cg).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) AppendCommentRef(ctx context.Context, campgroundID, commentID uuid.UUID) error {
	return m.Called(ctx, campgroundID, commentID).Error(0)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upload(ctx context.Context, r io.Reader, filename string) (media.Asset, error) {
	args := m.Called(ctx, r, filename)
	asset, _ := args.Get(0).(media.Asset)
	return asset, args.Error(1)
}

func (m *MockStore) Destroy(ctx context.Context, assetID string) error {
	return m.Called(ctx, assetID).Error(0)
}

func newTestService(repo *MockRepository, store *MockStore) *ServiceImpl {
	return NewService(repo, store, slog.Default())
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	author := models.Author{ID: uuid.New(), Username: "bert"}
	input := Input{Name: "Salmon Creek", Location: "Big Sur", Price: 9.50}
	image := strings.NewReader("fake image bytes")

	t.Run("stores the uploaded asset on the new row", func(t *testing.T) {
		repo := new(MockRepository)
		store := new(MockStore)
		store.On("Upload", mock.Anything, image, "camp.jpg").
			Return(media.Asset{URL: "http://assets/abc.jpg", AssetID: "abc.jpg"}, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(cg *models.Campground) bool {
			return cg.ImageURL == "http://assets/abc.jpg" && cg.ImageID == "abc.jpg" &&
				cg.Author == author && cg.Name == "Salmon Creek"
		})).Return(nil)

		cg, err := newTestService(repo, store).Create(ctx, input, image, "camp.jpg", author)
		require.NoError(t, err)
		assert.Equal(t, author.ID, cg.Author.ID)
		repo.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("no row is written when the upload fails", func(t *testing.T) {
		repo := new(MockRepository)
		store := new(MockStore)
		store.On("Upload", mock.Anything, image, "camp.txt").Return(media.Asset{}, media.ErrInvalidImage)

		_, err := newTestService(repo, store).Create(ctx, input, image, "camp.txt", author)
		assert.ErrorIs(t, err, media.ErrInvalidImage)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()
	author := models.Author{ID: uuid.New(), Username: "bert"}
	// Update mutates the campground in place, so each subtest gets its own.
	newExisting := func() *models.Campground {
		return models.NewCampground("Old Name", "", "Big Sur", 5, "http://assets/old.jpg", "old.jpg", author)
	}
	input := Input{Name: "New Name", Location: "Big Sur", Price: 7}

	t.Run("keeps the asset when no image is supplied", func(t *testing.T) {
		existing := newExisting()
		repo := new(MockRepository)
		store := new(MockStore)
		repo.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(cg *models.Campground) bool {
			return cg.Name == "New Name" && cg.ImageID == "old.jpg"
		})).Return(nil)

		_, err := newTestService(repo, store).Update(ctx, existing.ID, input, nil, "")
		require.NoError(t, err)
		store.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("replaces the asset when an image is supplied", func(t *testing.T) {
		existing := newExisting()
		repo := new(MockRepository)
		store := new(MockStore)
		image := strings.NewReader("new image")
		repo.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
		store.On("Destroy", mock.Anything, "old.jpg").Return(nil)
		store.On("Upload", mock.Anything, image, "new.png").
			Return(media.Asset{URL: "http://assets/new.png", AssetID: "new.png"}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(cg *models.Campground) bool {
			return cg.ImageID == "new.png" && cg.Name == "New Name"
		})).Return(nil)

		_, err := newTestService(repo, store).Update(ctx, existing.ID, input, image, "new.png")
		require.NoError(t, err)
		repo.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("aborts when the old asset cannot be destroyed", func(t *testing.T) {
		existing := newExisting()
		repo := new(MockRepository)
		store := new(MockStore)
		image := strings.NewReader("new image")
		repo.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
		store.On("Destroy", mock.Anything, "old.jpg").Return(errors.New("asset host down"))

		_, err := newTestService(repo, store).Update(ctx, existing.ID, input, image, "new.png")
		require.Error(t, err)
		store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	author := models.Author{ID: uuid.New(), Username: "bert"}
	cg := models.NewCampground("Salmon Creek", "", "Big Sur", 5, "http://assets/a.jpg", "a.jpg", author)

	t.Run("destroys the asset then the row", func(t *testing.T) {
		repo := new(MockRepository)
		store := new(MockStore)
		store.On("Destroy", mock.Anything, "a.jpg").Return(nil)
		repo.On("Delete", mock.Anything, cg.ID).Return(nil)

		require.NoError(t, newTestService(repo, store).Delete(ctx, cg))
		repo.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("keeps the row when the asset cannot be destroyed", func(t *testing.T) {
		repo := new(MockRepository)
		store := new(MockStore)
		store.On("Destroy", mock.Anything, "a.jpg").Return(errors.New("asset host down"))

		require.Error(t, newTestService(repo, store).Delete(ctx, cg))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
