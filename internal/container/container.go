// Package container wires repositories, services and handlers together so
// main and the router only deal with one assembled object.
package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jharris/campwise/app/mail"
	"github.com/jharris/campwise/app/media"
	"github.com/jharris/campwise/config"
	"github.com/jharris/campwise/internal/api/auth"
	"github.com/jharris/campwise/internal/api/campground"
	"github.com/jharris/campwise/internal/api/comment"
	"github.com/jharris/campwise/internal/api/session"
	"github.com/jharris/campwise/internal/api/user"
	"github.com/jharris/campwise/internal/render"
)

type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	Pool     *pgxpool.Pool
	Sessions *session.Manager
	Renderer *render.Renderer

	AuthHandler       auth.Handler
	CampgroundHandler campground.Handler
	CommentHandler    comment.Handler
	UserHandler       user.Handler

	// The ownership guards need direct repository access.
	CampgroundRepo campground.Repository
	CommentRepo    comment.Repository
}

func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Container, error) {
	mediaStore, err := media.NewS3Store(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset store: %w", err)
	}
	mailer, err := mail.NewSMTPMailer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}

	authRepo := auth.NewRepository(pool, logger)
	campgroundRepo := campground.NewRepository(pool, logger)
	commentRepo := comment.NewRepository(pool, logger)

	sessions := session.NewManager(cfg, authRepo, logger)

	renderer, err := render.New(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	renderer.BaseData = sessions.BaseData

	authService := auth.NewService(authRepo, mediaStore, mailer, cfg.Auth.AdminCode, logger)
	campgroundService := campground.NewService(campgroundRepo, mediaStore, logger)
	commentService := comment.NewService(commentRepo, campgroundRepo, logger)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Pool:     pool,
		Sessions: sessions,
		Renderer: renderer,

		AuthHandler:       auth.NewHandler(authService, sessions, renderer, logger),
		CampgroundHandler: campground.NewHandler(campgroundService, sessions, renderer, logger),
		CommentHandler:    comment.NewHandler(commentService, sessions, renderer, logger),
		UserHandler:       user.NewHandler(authRepo, campgroundRepo, sessions, renderer, logger),

		CampgroundRepo: campgroundRepo,
		CommentRepo:    commentRepo,
	}, nil
}
