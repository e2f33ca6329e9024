// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pressroom-io/pressroom/internal/auth"
	"github.com/pressroom-io/pressroom/internal/cache"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/service"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/testutil"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

// testAPI bundles a handler, its router and the backing store for tests.
type testAPI struct {
	handler *Handler
	router  chi.Router
	queries *store.Queries
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	h := NewHandler(db, c, service.NewEventService(db), Options{
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	})
	return &testAPI{handler: h, router: h.Routes(), queries: store.New(db)}
}

// issueToken stores a fresh access token for the user and returns its raw value.
func (a *testAPI) issueToken(t *testing.T, userID int64) string {
	t.Helper()

	raw := auth.NewAccessToken()
	_, err := a.queries.CreateToken(t.Context(), store.CreateTokenParams{
		UserID:    userID,
		TokenHash: model.HashToken(raw),
		Kind:      model.TokenKindAccess,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("creating token: %v", err)
	}
	return raw
}

// do performs a request against the router, JSON-encoding body when non-nil
// and attaching token as a bearer token when non-empty.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the "data" field of a response into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if err := json.Unmarshal(resp.Data, dst); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
}

// seedUser creates a user with the role in the given workflow status.
func (a *testAPI) seedUser(t *testing.T, role string, status workflow.Status) model.User {
	t.Helper()
	return testutil.CreateUser(t, a.queries, role, status)
}

// seedArticle creates a draft article owned by createdBy.
func (a *testAPI) seedArticle(t *testing.T, createdBy int64, title string) model.Article {
	t.Helper()
	return testutil.CreateArticle(t, a.queries, createdBy, title)
}
