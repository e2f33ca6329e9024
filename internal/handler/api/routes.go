// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/pressroom-io/pressroom/internal/middleware"
)

// Routes assembles the /api/v1 router: a public surface for reading
// published content, commenting and newsletter signup, and a bearer-token
// surface for everything workflow-related.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	globalLimiter := middleware.NewGlobalRateLimiter(100, 200)
	r.Use(globalLimiter.Middleware())

	// Public endpoints.
	r.Get("/status", h.Status)
	r.Get("/published/{slug}", h.GetPublishedArticle)
	r.Get("/articles/{id}/comments", h.ListArticleComments)
	r.Post("/articles/{id}/comments", h.CreateComment)
	r.Post("/subscribers", h.Subscribe)
	r.Post("/subscribers/unsubscribe", h.Unsubscribe)

	r.Group(func(r chi.Router) {
		r.Use(h.login.Middleware())
		r.Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.Refresh)
	})

	// Bearer-token endpoints.
	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(h.db))
		r.Use(middleware.APIRateLimit(10, 20))

		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)

		r.Get("/review-queue", h.ReviewQueue)
		r.Get("/events", h.ListEvents)
		r.Get("/subscribers", h.ListSubscribers)

		// Comment moderation.
		r.Get("/comments/review-queue", h.ListCommentsInReview)
		r.Post("/comments/{id}/approve", h.ApproveComment)
		r.Post("/comments/{id}/reject", h.RejectComment)

		// Per-kind creation and editing.
		r.Post("/articles", h.CreateArticle)
		r.Put("/articles/{id}", h.UpdateArticle)
		r.Get("/articles/{id}/authors", h.ListArticleAuthors)
		r.Post("/articles/{id}/authors", h.AddArticleAuthor)
		r.Delete("/articles/{id}/authors/{userID}", h.RemoveArticleAuthor)
		r.Post("/articles/{id}/authors/reorder", h.ReorderArticleAuthors)
		r.Post("/categories", h.CreateCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Post("/ads", h.CreateAd)
		r.Put("/ads/{id}", h.UpdateAd)
		r.Post("/users", h.CreateUser)
		r.Put("/users/{id}", h.UpdateUser)

		// The uniform workflow surface, one route set for every kind.
		r.Get("/{kind}", h.List)
		r.Get("/{kind}/review-queue", h.ReviewQueue)
		r.Get("/{kind}/{id}", h.Get)
		r.Delete("/{kind}/{id}", h.Delete)
		r.Post("/{kind}/{id}/submit", h.Submit)
		r.Post("/{kind}/{id}/approve", h.Approve)
		r.Post("/{kind}/{id}/reject", h.Reject)
		r.Post("/{kind}/{id}/archive", h.Archive)
		r.Patch("/{kind}/{id}/publish", h.Publish)
		r.Patch("/{kind}/{id}/unpublish", h.Unpublish)
	})

	return r
}
