package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jharris/campwise/app/media"
	"github.com/jharris/campwise/internal/api"
	"github.com/jharris/campwise/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockRepository) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockRepository) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error {
	return m.Called(ctx, userID, token, expires).Error(0)
}

func (m *MockRepository) UpdatePasswordAndClearReset(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
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

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestServiceAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		repo := new(MockRepository)
		user := models.NewUser("bert", "bert@example.com", hashOf(t, "hunter2"))
		repo.On("GetUserByUsername", ctx, "bert").Return(user, nil)

		got, err := NewService(repo, nil, nil, "", slog.Default()).Authenticate(ctx, "bert", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockRepository)
		user := models.NewUser("bert", "bert@example.com", hashOf(t, "hunter2"))
		repo.On("GetUserByUsername", ctx, "bert").Return(user, nil)

		_, err := NewService(repo, nil, nil, "", slog.Default()).Authenticate(ctx, "bert", "wrong")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByUsername", ctx, "ghost").Return(nil, fmt.Errorf("user: %w", api.ErrNotFound))

		_, err := NewService(repo, nil, nil, "", slog.Default()).Authenticate(ctx, "ghost", "hunter2")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
	})
}

func TestServiceRegister(t *testing.T) {
	ctx := context.Background()
	image := strings.NewReader("fake image")
	input := RegisterInput{Username: "bert", Password: "hunter2", Email: "bert@example.com"}

	register := func(t *testing.T, adminCode, submitted string) *models.User {
		t.Helper()
		repo := new(MockRepository)
		store := new(MockStore)
		store.On("Upload", ctx, image, "me.png").
			Return(media.Asset{URL: "http://assets/me.png", AssetID: "me.png"}, nil)
		repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil)

		in := input
		in.AdminCode = submitted
		user, err := NewService(repo, store, nil, adminCode, slog.Default()).Register(ctx, in, image, "me.png")
		require.NoError(t, err)
		return user
	}

	t.Run("matching admin code grants admin", func(t *testing.T) {
		assert.True(t, register(t, "secret-code", "secret-code").IsAdmin)
	})
	t.Run("wrong admin code does not", func(t *testing.T) {
		assert.False(t, register(t, "secret-code", "guess").IsAdmin)
	})
	t.Run("unconfigured admin code never grants admin", func(t *testing.T) {
		assert.False(t, register(t, "", "").IsAdmin)
	})

	t.Run("password is stored hashed", func(t *testing.T) {
		user := register(t, "", "")
		assert.NotEqual(t, "hunter2", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2")))
	})

	t.Run("invalid image aborts before any insert", func(t *testing.T) {
		repo := new(MockRepository)
		store := new(MockStore)
		store.On("Upload", ctx, image, "me.txt").Return(media.Asset{}, media.ErrInvalidImage)

		_, err := NewService(repo, store, nil, "", slog.Default()).Register(ctx, input, image, "me.txt")
		assert.ErrorIs(t, err, media.ErrInvalidImage)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})
}

func TestServiceRequestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a one hour token and mails the link", func(t *testing.T) {
		repo := new(MockRepository)
		mailer := new(MockMailer)
		user := models.NewUser("bert", "bert@example.com", "hash")

		var token string
		repo.On("GetUserByEmail", ctx, "bert@example.com").Return(user, nil)
		repo.On("SetResetToken", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Run(func(args mock.Arguments) {
				token = args.String(2)
				expires := args.Get(3).(time.Time)
				assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)
			}).Return(nil)
		mailer.On("Send", ctx, "bert@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
			Return(nil)

		_, err := NewService(repo, nil, mailer, "", slog.Default()).
			RequestPasswordReset(ctx, "bert@example.com", "example.com")
		require.NoError(t, err)

		// 20 random bytes, hex encoded.
		assert.Len(t, token, 40)
		_, err = hex.DecodeString(token)
		assert.NoError(t, err)

		body := mailer.Calls[0].Arguments.String(3)
		assert.Contains(t, body, "http://example.com/reset/"+token)
	})

	t.Run("unknown email is reported as not found", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, fmt.Errorf("user: %w", api.ErrNotFound))

		_, err := NewService(repo, nil, nil, "", slog.Default()).
			RequestPasswordReset(ctx, "ghost@example.com", "example.com")
		assert.ErrorIs(t, err, api.ErrNotFound)
	})
}

func TestServiceResetPassword(t *testing.T) {
	ctx := context.Background()
	user := models.NewUser("bert", "bert@example.com", "old-hash")

	t.Run("mismatched confirmation changes nothing", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByResetToken", ctx, "tok").Return(user, nil)

		_, err := NewService(repo, nil, nil, "", slog.Default()).ResetPassword(ctx, "tok", "newpass", "different")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
		repo.AssertNotCalled(t, "UpdatePasswordAndClearReset", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByResetToken", ctx, "stale").Return(nil, fmt.Errorf("user: %w", api.ErrNotFound))

		_, err := NewService(repo, nil, nil, "", slog.Default()).ResetPassword(ctx, "stale", "newpass", "newpass")
		assert.ErrorIs(t, err, api.ErrNotFound)
	})

	t.Run("stores the new hash and clears the token", func(t *testing.T) {
		repo := new(MockRepository)
		mailer := new(MockMailer)
		repo.On("GetUserByResetToken", ctx, "tok").Return(user, nil)
		repo.On("UpdatePasswordAndClearReset", ctx, user.ID, mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpass")) == nil
		})).Return(nil)
		mailer.On("Send", ctx, "bert@example.com", "Your password has been changed", mock.AnythingOfType("string")).
			Return(nil)

		_, err := NewService(repo, nil, mailer, "", slog.Default()).ResetPassword(ctx, "tok", "newpass", "newpass")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("a failed confirmation mail does not fail the reset", func(t *testing.T) {
		repo := new(MockRepository)
		mailer := new(MockMailer)
		repo.On("GetUserByResetToken", ctx, "tok").Return(user, nil)
		repo.On("UpdatePasswordAndClearReset", ctx, user.ID, mock.AnythingOfType("string")).Return(nil)
		mailer.On("Send", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("relay down"))

		_, err := NewService(repo, nil, mailer, "", slog.Default()).ResetPassword(ctx, "tok", "newpass", "newpass")
		assert.NoError(t, err)
	})
}
