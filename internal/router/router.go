// Package router builds the HTTP route table.
package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jharris/campwise/app/logger"
	"github.com/jharris/campwise/internal/api"
	"github.com/jharris/campwise/internal/api/auth"
	"github.com/jharris/campwise/internal/api/campground"
	"github.com/jharris/campwise/internal/api/comment"
	"github.com/jharris/campwise/internal/container"
)

// New assembles the full middleware chain and route table.
func New(c *container.Container) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.StructuredLogger(c.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(api.MethodOverride)
	r.Use(c.Sessions.LoadUser)

	r.Get("/", c.AuthHandler.Landing)
	r.Get("/register", c.AuthHandler.RegisterForm)
	r.Post("/register", c.AuthHandler.Register)
	r.Get("/login", c.AuthHandler.LoginForm)
	r.Post("/login", c.AuthHandler.Login)
	r.With(auth.RequireLogin(c.Sessions)).Get("/logout", c.AuthHandler.Logout)
	r.Get("/forgot", c.AuthHandler.ForgotForm)
	r.Post("/forgot", c.AuthHandler.Forgot)
	r.Get("/reset/{token}", c.AuthHandler.ResetForm)
	r.Post("/reset/{token}", c.AuthHandler.Reset)

	r.Get("/users/{userID}", c.UserHandler.Show)

	r.Route("/campgrounds", func(r chi.Router) {
		r.Get("/", c.CampgroundHandler.Index)
		r.Get("/{campgroundID}", c.CampgroundHandler.Show)
		// Updates go through without an ownership check; only the edit
		// form and delete are guarded.
		r.Put("/{campgroundID}", c.CampgroundHandler.Update)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireLogin(c.Sessions))
			r.Get("/new", c.CampgroundHandler.NewForm)
			r.Post("/", c.CampgroundHandler.Create)
			r.Get("/{campgroundID}/comments/new", c.CommentHandler.NewForm)
			r.Post("/{campgroundID}/comments", c.CommentHandler.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(campground.RequireOwnership(c.CampgroundRepo, c.Sessions))
			r.Get("/{campgroundID}/edit", c.CampgroundHandler.EditForm)
			r.Delete("/{campgroundID}", c.CampgroundHandler.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(comment.RequireOwnership(c.CommentRepo, c.Sessions))
			r.Get("/{campgroundID}/comments/{commentID}/edit", c.CommentHandler.EditForm)
			r.Put("/{campgroundID}/comments/{commentID}", c.CommentHandler.Update)
			r.Delete("/{campgroundID}/comments/{commentID}", c.CommentHandler.Delete)
		})
	})

	return r
}
