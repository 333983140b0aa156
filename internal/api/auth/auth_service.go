package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jharris/campwise/app/mail"
	"github.com/jharris/campwise/app/media"
	"github.com/jharris/campwise/internal/api"
	"github.com/jharris/campwise/internal/models"
)

// ErrPasswordMismatch is returned when the reset confirmation does not
// match the chosen password. No state is changed in that case.
var ErrPasswordMismatch = errors.New("Passwords do not match.")

const resetTokenTTL = time.Hour

var _ Service = (*ServiceImpl)(nil)

// Service wraps account lifecycle: registration, credential checks and
// the password recovery flow.
type Service interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, input RegisterInput, image io.Reader, filename string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email, host string) (*models.User, error)
	ValidateResetToken(ctx context.Context, token string) (*models.User, error)
	ResetPassword(ctx context.Context, token, password, confirm string) (*models.User, error)
}

// RegisterInput carries the sign-up form fields.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	AdminCode string
}

type ServiceImpl struct {
	logger    *slog.Logger
	repo      Repository
	media     media.Store
	mailer    mail.Mailer
	adminCode string
}

func NewService(repo Repository, mediaStore media.Store, mailer mail.Mailer, adminCode string, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		media:     mediaStore,
		mailer:    mailer,
		adminCode: adminCode,
	}
}

// Authenticate checks the username/password pair. Unknown users and bad
// passwords both come back as api.ErrUnauthenticated.
func (s *ServiceImpl) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, api.ErrUnauthenticated
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, api.ErrUnauthenticated
	}
	return user, nil
}

// Register uploads the avatar, hashes the password and creates the
// account. Submitting the configured admin code grants admin rights.
func (s *ServiceImpl) Register(ctx context.Context, input RegisterInput, image io.Reader, filename string) (*models.User, error) {
	l := s.logger.With(slog.String("method", "Register"), slog.String("username", input.Username))

	asset, err := s.media.Upload(ctx, image, filename)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(input.Username, input.Email, string(hash))
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Bio = input.Bio
	user.ImageURL = asset.URL
	user.ImageID = asset.AssetID
	user.IsAdmin = s.adminCode != "" && input.AdminCode == s.adminCode

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "User registered", slog.Bool("admin", user.IsAdmin))
	return user, nil
}

// RequestPasswordReset issues a fresh token and mails the reset link.
// An unknown email address is reported back as api.ErrNotFound.
func (s *ServiceImpl) RequestPasswordReset(ctx context.Context, email, host string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := s.repo.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return nil, err
	}

	body := "You are receiving this because you (or someone else) have requested the reset of the password for your account.\n\n" +
		"Please click on the following link, or paste this into your browser to complete the process:\n\n" +
		"http://" + host + "/reset/" + token + "\n\n" +
		"If you did not request this, please ignore this email and your password will remain unchanged.\n"
	if err := s.mailer.Send(ctx, user.Email, "CampWise Password Reset", body); err != nil {
		return nil, fmt.Errorf("failed to send reset email: %w", err)
	}

	s.logger.InfoContext(ctx, "Password reset requested", slog.String("userID", user.ID.String()))
	return user, nil
}

// ValidateResetToken resolves a live token to its user.
func (s *ServiceImpl) ValidateResetToken(ctx context.Context, token string) (*models.User, error) {
	return s.repo.GetUserByResetToken(ctx, token)
}

// ResetPassword completes the recovery flow: the token must still be
// valid and both password fields must match before anything is written.
// A failed confirmation mail does not roll back the change.
func (s *ServiceImpl) ResetPassword(ctx context.Context, token, password, confirm string) (*models.User, error) {
	user, err := s.repo.GetUserByResetToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordAndClearReset(ctx, user.ID, string(hash)); err != nil {
		return nil, err
	}

	body := "Hello,\n\n" +
		"This is a confirmation that the password for your account " + user.Email + " has just been changed.\n"
	if err := s.mailer.Send(ctx, user.Email, "Your password has been changed", body); err != nil {
		s.logger.WarnContext(ctx, "Failed to send password change confirmation", slog.Any("error", err))
	}

	return user, nil
}
