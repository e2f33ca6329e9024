// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST handlers for the publication workflow.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pressroom-io/pressroom/internal/cache"
	"github.com/pressroom-io/pressroom/internal/middleware"
	"github.com/pressroom-io/pressroom/internal/service"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db         *sql.DB
	queries    *store.Queries
	cache      cache.Cacher
	moderation *service.ModerationService
	queue      *service.QueueService
	events     *service.EventService
	login      *middleware.LoginProtection
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Options configures token lifetimes and login protection for the handler.
type Options struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	LoginProtection *middleware.LoginProtection
}

// NewHandler creates the API handler. The cache may be nil.
func NewHandler(db *sql.DB, c cache.Cacher, events *service.EventService, opts Options) *Handler {
	if opts.AccessTokenTTL == 0 {
		opts.AccessTokenTTL = time.Hour
	}
	if opts.RefreshTokenTTL == 0 {
		opts.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if opts.LoginProtection == nil {
		opts.LoginProtection = middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	}
	return &Handler{
		db:         db,
		queries:    store.New(db),
		cache:      c,
		moderation: service.NewModerationService(db, c, events),
		queue:      service.NewQueueService(db, c, 30*time.Second),
		events:     events,
		login:      opts.LoginProtection,
		accessTTL:  opts.AccessTokenTTL,
		refreshTTL: opts.RefreshTokenTTL,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total,omitempty"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Pages   int   `json:"pages,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeServiceError maps moderation service errors to API responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		WriteForbidden(w, "Action not permitted")
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, "Entity not found")
	case errors.Is(err, service.ErrUnknownKind):
		WriteNotFound(w, "Unknown entity kind")
	case errors.Is(err, workflow.ErrInvalidTransition):
		WriteError(w, http.StatusConflict, "invalid_transition", err.Error(), nil)
	default:
		WriteInternalError(w, "Operation failed")
	}
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{Status: "ok", Version: "v1"}, nil)
}

// ParseIDParam parses the {id} URL parameter as a positive int64.
func ParseIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parseKindParam parses and validates the {kind} URL parameter.
func parseKindParam(w http.ResponseWriter, r *http.Request) (workflow.Kind, bool) {
	kind := workflow.Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		WriteNotFound(w, "Unknown entity kind")
		return "", false
	}
	return kind, true
}

// parsePagination parses page and per_page query parameters.
// Invalid or missing values fall back to page 1 and the default page size.
func parsePagination(r *http.Request, defaultPerPage, maxPerPage int) (page, perPage int) {
	page = parseIntQuery(r, "page", 1, 1, 0)
	perPage = parseIntQuery(r, "per_page", defaultPerPage, 1, maxPerPage)
	return page, perPage
}

func parseIntQuery(r *http.Request, name string, defaultVal, minVal, maxVal int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	if val < minVal {
		return defaultVal
	}
	if maxVal > 0 && val > maxVal {
		return defaultVal
	}
	return val
}

// listParamsFor converts one-based pagination into store list parameters.
func listParamsFor(page, perPage int) store.ListParams {
	return store.ListParams{Limit: int64(perPage), Offset: int64((page - 1) * perPage)}
}

// totalPages computes page count for a total and page size.
func totalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// requireEntityByID parses an ID from the URL and fetches the entity.
// On failure the response is already written and ok is false.
func requireEntityByID[T any](w http.ResponseWriter, r *http.Request, entityName string, fetch func(id int64) (T, error)) (T, bool) {
	var zero T

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid "+entityName+" ID", nil)
		return zero, false
	}

	entity, err := fetch(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, capitalizeFirst(entityName)+" not found")
		} else {
			WriteInternalError(w, "Failed to retrieve "+entityName)
		}
		return zero, false
	}
	return entity, true
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// decodeJSON decodes a request body, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}
