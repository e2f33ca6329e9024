// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web is the session-authenticated admin surface: login and a
// newsroom dashboard with status counts and the review queue. The token
// API under /api/v1 is the programmatic surface; this one is for browsers.
package web

import (
	"database/sql"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/pressroom-io/pressroom/internal/auth"
	"github.com/pressroom-io/pressroom/internal/cache"
	"github.com/pressroom-io/pressroom/internal/middleware"
	"github.com/pressroom-io/pressroom/internal/service"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the admin pages.
type Handler struct {
	db       *sql.DB
	queries  *store.Queries
	sessions *scs.SessionManager
	login    *middleware.LoginProtection
	events   *service.EventService
	queue    *service.QueueService
	tmpl     *template.Template
}

// NewHandler builds the web handler. The session manager and login
// protection are shared with the composition root.
func NewHandler(db *sql.DB, c cache.Cacher, sm *scs.SessionManager, lp *middleware.LoginProtection, events *service.EventService) *Handler {
	return &Handler{
		db:       db,
		queries:  store.New(db),
		sessions: sm,
		login:    lp,
		events:   events,
		queue:    service.NewQueueService(db, c, 30*time.Second),
		tmpl:     template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// Routes returns the session-cookie router: login flow plus the
// authenticated dashboard.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/login", h.LoginForm)
	r.With(h.login.Middleware()).Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.sessions))
		r.Use(middleware.LoadUser(h.sessions, h.db))
		// Newsroom staff only; reader accounts have no admin access.
		r.Use(middleware.RequireRole(workflow.RoleJournalist))
		r.Get("/admin", h.Dashboard)
	})

	return r
}

type loginData struct {
	Flash     string
	FlashType string
}

// LoginForm renders the login page. Authenticated users go straight to
// the dashboard.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sessions.GetInt64(r.Context(), middleware.SessionKeyUserID) > 0 {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	data := loginData{
		Flash:     h.sessions.PopString(r.Context(), "flash"),
		FlashType: h.sessions.PopString(r.Context(), "flash_type"),
	}
	h.render(w, "login.html", data)
}

// Login handles the login form submission.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flashError(w, r, "Invalid form data")
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.flashError(w, r, "Email and password are required")
		return
	}

	if locked, wait := h.login.IsAccountLocked(email); locked {
		h.flashError(w, r, "Account temporarily locked, try again in "+wait.Round(time.Second).String())
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		_, _ = auth.CheckPassword(password, auth.DummyHash)
		h.failLogin(w, r, email)
		return
	}
	if ok, err := auth.CheckPassword(password, user.PasswordHash); err != nil || !ok {
		h.failLogin(w, r, email)
		return
	}
	if !user.IsActive() {
		h.flashError(w, r, "Account is not active")
		return
	}

	h.login.RecordSuccessfulLogin(email)

	if err := h.sessions.RenewToken(r.Context()); err != nil {
		slog.Error("renewing session token", "error", err)
		h.flashError(w, r, "Login failed")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	_ = h.queries.TouchUserLogin(r.Context(), user.ID, time.Now())
	_ = h.events.LogAuthEvent(r.Context(), "info", "session login", &user.ID, nil)

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout destroys the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessions.GetInt64(r.Context(), middleware.SessionKeyUserID)
	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.Error("destroying session", "error", err)
	}
	if userID > 0 {
		_ = h.events.LogAuthEvent(r.Context(), "info", "session logout", &userID, nil)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type statusCount struct {
	Status workflow.Status
	Count  int64
}

type dashboardData struct {
	UserName   string
	UserRole   string
	Privileged bool
	Articles   []statusCount
	Queue      []service.QueueItem
}

// Dashboard shows article counts by status and, for privileged users,
// the global review queue.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	actor := user.Actor()

	data := dashboardData{
		UserName:   user.Name,
		UserRole:   user.Role,
		Privileged: actor.Privileged(),
	}

	for _, status := range []workflow.Status{
		workflow.StatusDraft, workflow.StatusInReview,
		workflow.StatusRejected, workflow.StatusPublished, workflow.StatusArchived,
	} {
		count, err := h.queries.CountArticlesByStatus(r.Context(), status)
		if err != nil {
			slog.Error("counting articles", "status", status, "error", err)
			continue
		}
		data.Articles = append(data.Articles, statusCount{Status: status, Count: count})
	}

	if data.Privileged {
		items, err := h.queue.ReviewQueue(r.Context(), actor)
		if err != nil {
			slog.Error("building review queue", "error", err)
		} else {
			data.Queue = items
		}
	}

	h.render(w, "dashboard.html", data)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("rendering template", "template", name, "error", err)
	}
}

func (h *Handler) flashError(w http.ResponseWriter, r *http.Request, message string) {
	h.sessions.Put(r.Context(), "flash", message)
	h.sessions.Put(r.Context(), "flash_type", "error")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, email string) {
	if locked, wait := h.login.RecordFailedAttempt(email); locked {
		h.flashError(w, r, "Account temporarily locked, try again in "+wait.Round(time.Second).String())
		return
	}
	h.flashError(w, r, "Invalid credentials")
}
