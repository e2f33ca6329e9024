// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/service"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

func TestStatus(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/status", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var data StatusResponse
	decodeData(t, rec, &data)
	if data.Status != "ok" || data.Version != "v1" {
		t.Errorf("unexpected status payload: %+v", data)
	}
}

func TestWorkflowEndpointsRequireToken(t *testing.T) {
	a := newTestAPI(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/articles"},
		{http.MethodGet, "/review-queue"},
		{http.MethodPost, "/articles/1/submit"},
		{http.MethodPost, "/articles/1/approve"},
		{http.MethodPatch, "/articles/1/publish"},
		{http.MethodDelete, "/articles/1"},
	}
	for _, p := range paths {
		rec := a.do(t, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestSubmitApproveOverHTTP(t *testing.T) {
	a := newTestAPI(t)

	journalist := a.seedUser(t, workflow.RoleJournalist, workflow.StatusActive)
	editor := a.seedUser(t, workflow.RoleEditor, workflow.StatusActive)
	article := a.seedArticle(t, journalist.ID, "Breaking News")

	jToken := a.issueToken(t, journalist.ID)
	eToken := a.issueToken(t, editor.ID)

	rec := a.do(t, http.MethodPost, fmt.Sprintf("/articles/%d/submit", article.ID), jToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit = %d, body %s", rec.Code, rec.Body.String())
	}
	var result service.TransitionResult
	decodeData(t, rec, &result)
	if result.From != workflow.StatusDraft || result.To != workflow.StatusInReview {
		t.Errorf("submit transition = %s -> %s", result.From, result.To)
	}

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/articles/%d/approve", article.ID), eToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve = %d, body %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &result)
	if result.To != workflow.StatusPublished {
		t.Errorf("approve landed in %s, want published", result.To)
	}
}

func TestJournalistCannotApproveOverHTTP(t *testing.T) {
	a := newTestAPI(t)

	journalist := a.seedUser(t, workflow.RoleJournalist, workflow.StatusActive)
	article := a.seedArticle(t, journalist.ID, "Own Story")
	token := a.issueToken(t, journalist.ID)

	rec := a.do(t, http.MethodPost, fmt.Sprintf("/articles/%d/submit", article.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit = %d", rec.Code)
	}

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/articles/%d/approve", article.ID), token, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("journalist approve = %d, want 403", rec.Code)
	}
}

func TestRejectCarriesComment(t *testing.T) {
	a := newTestAPI(t)

	journalist := a.seedUser(t, workflow.RoleJournalist, workflow.StatusActive)
	editor := a.seedUser(t, workflow.RoleEditor, workflow.StatusActive)
	article := a.seedArticle(t, journalist.ID, "Needs Work")

	jToken := a.issueToken(t, journalist.ID)
	eToken := a.issueToken(t, editor.ID)

	a.do(t, http.MethodPost, fmt.Sprintf("/articles/%d/submit", article.ID), jToken, nil)

	rec := a.do(t, http.MethodPost, fmt.Sprintf("/articles/%d/reject", article.ID), eToken,
		RejectRequest{Comment: "missing sources"})
	if rec.Code != http.StatusOK {
		t.Fatalf("reject = %d, body %s", rec.Code, rec.Body.String())
	}

	got, err := a.queries.GetArticleByID(t.Context(), article.ID)
	if err != nil {
		t.Fatalf("loading article: %v", err)
	}
	if got.Status != workflow.StatusRejected {
		t.Errorf("status = %s, want rejected", got.Status)
	}
	if !got.ReviewComment.Valid || got.ReviewComment.String != "missing sources" {
		t.Errorf("review comment = %+v", got.ReviewComment)
	}
}

func TestRejectWithoutBodyStoresEmptyComment(t *testing.T) {
	a := newTestAPI(t)

	editor := a.seedUser(t, workflow.RoleEditor, workflow.StatusActive)
	article := a.seedArticle(t, editor.ID, "Silent Reject")
	token := a.issueToken(t, editor.ID)

	a.do(t, http.MethodPost, fmt.Sprintf("/articles/%d/submit", article.ID), token, nil)

	rec := a.do(t, http.MethodPost, fmt.Sprintf("/articles/%d/reject", article.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reject without body = %d, body %s", rec.Code, rec.Body.String())
	}

	got, err := a.queries.GetArticleByID(t.Context(), article.ID)
	if err != nil {
		t.Fatalf("loading article: %v", err)
	}
	if !got.ReviewComment.Valid || got.ReviewComment.String != "" {
		t.Errorf("review comment = %+v, want valid empty string", got.ReviewComment)
	}
}

func TestArchivedIsTerminalOverHTTP(t *testing.T) {
	a := newTestAPI(t)

	editor := a.seedUser(t, workflow.RoleEditor, workflow.StatusActive)
	article := a.seedArticle(t, editor.ID, "Old Story")
	token := a.issueToken(t, editor.ID)

	a.do(t, http.MethodPatch, fmt.Sprintf("/articles/%d/publish", article.ID), token, nil)
	rec := a.do(t, http.MethodPost, fmt.Sprintf("/articles/%d/archive", article.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("archive = %d", rec.Code)
	}

	for _, action := range []string{"submit", "approve", "reject", "archive"} {
		rec := a.do(t, http.MethodPost, fmt.Sprintf("/articles/%d/%s", article.ID, action), token, nil)
		if rec.Code != http.StatusConflict {
			t.Errorf("%s on archived = %d, want 409", action, rec.Code)
		}
	}
	rec = a.do(t, http.MethodPatch, fmt.Sprintf("/articles/%d/publish", article.ID), token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("publish on archived = %d, want 409", rec.Code)
	}
}

func TestReviewQueueGatedByTier(t *testing.T) {
	a := newTestAPI(t)

	journalist := a.seedUser(t, workflow.RoleJournalist, workflow.StatusActive)
	editor := a.seedUser(t, workflow.RoleEditor, workflow.StatusActive)
	article := a.seedArticle(t, journalist.ID, "Queued Story")

	jToken := a.issueToken(t, journalist.ID)
	eToken := a.issueToken(t, editor.ID)

	a.do(t, http.MethodPost, fmt.Sprintf("/articles/%d/submit", article.ID), jToken, nil)

	rec := a.do(t, http.MethodGet, "/review-queue", jToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("journalist review-queue = %d, want 403", rec.Code)
	}

	rec = a.do(t, http.MethodGet, "/articles/review-queue", eToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("editor review-queue = %d", rec.Code)
	}
	var items []service.QueueItem
	decodeData(t, rec, &items)
	if len(items) != 1 || items[0].ID != article.ID {
		t.Errorf("queue items = %+v", items)
	}
}

func TestListVisibilityByTier(t *testing.T) {
	a := newTestAPI(t)

	journalist := a.seedUser(t, workflow.RoleJournalist, workflow.StatusActive)
	editor := a.seedUser(t, workflow.RoleEditor, workflow.StatusActive)
	a.seedArticle(t, journalist.ID, "Draft Story")

	published := a.seedArticle(t, journalist.ID, "Live Story")
	eToken := a.issueToken(t, editor.ID)
	a.do(t, http.MethodPatch, fmt.Sprintf("/articles/%d/publish", published.ID), eToken, nil)

	// Privileged callers see drafts.
	rec := a.do(t, http.MethodGet, "/articles?status=draft", eToken, nil)
	var drafts []model.Article
	decodeData(t, rec, &drafts)
	if len(drafts) != 1 {
		t.Errorf("editor drafts = %d, want 1", len(drafts))
	}

	// Non-privileged callers are pinned to the live listing.
	jToken := a.issueToken(t, journalist.ID)
	rec = a.do(t, http.MethodGet, "/articles?status=draft", jToken, nil)
	var visible []model.Article
	decodeData(t, rec, &visible)
	if len(visible) != 1 || visible[0].ID != published.ID {
		t.Errorf("journalist sees %+v, want only the published article", visible)
	}
}

func TestCreateArticleStartsDraft(t *testing.T) {
	a := newTestAPI(t)

	journalist := a.seedUser(t, workflow.RoleJournalist, workflow.StatusActive)
	token := a.issueToken(t, journalist.ID)

	rec := a.do(t, http.MethodPost, "/articles", token, CreateArticleRequest{
		Title: "Élection Coverage",
		Body:  "## The story so far",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rec.Code, rec.Body.String())
	}

	var created model.Article
	decodeData(t, rec, &created)
	if created.Status != workflow.StatusDraft {
		t.Errorf("status = %s, want draft", created.Status)
	}
	if created.Slug != "election-coverage" {
		t.Errorf("slug = %q", created.Slug)
	}
	if created.CreatedBy != journalist.ID {
		t.Errorf("created_by = %d, want %d", created.CreatedBy, journalist.ID)
	}

	authors, err := a.queries.ListArticleAuthors(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("listing authors: %v", err)
	}
	if len(authors) != 1 || !authors[0].IsMain || authors[0].UserID != journalist.ID {
		t.Errorf("initial authors = %+v", authors)
	}
}

func TestJournalistCannotCreateAds(t *testing.T) {
	a := newTestAPI(t)

	journalist := a.seedUser(t, workflow.RoleJournalist, workflow.StatusActive)
	token := a.issueToken(t, journalist.ID)

	rec := a.do(t, http.MethodPost, "/ads", token, CreateAdRequest{
		Title: "Banner", Placement: "top", TargetURL: "https://example.com",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("journalist ad create = %d, want 403", rec.Code)
	}
}

func TestUpdateLockedOnceInReview(t *testing.T) {
	a := newTestAPI(t)

	journalist := a.seedUser(t, workflow.RoleJournalist, workflow.StatusActive)
	article := a.seedArticle(t, journalist.ID, "Locked Story")
	token := a.issueToken(t, journalist.ID)

	title := "Retitled"
	rec := a.do(t, http.MethodPut, fmt.Sprintf("/articles/%d", article.ID), token,
		UpdateArticleRequest{Title: &title})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit draft = %d, body %s", rec.Code, rec.Body.String())
	}

	a.do(t, http.MethodPost, fmt.Sprintf("/articles/%d/submit", article.ID), token, nil)

	rec = a.do(t, http.MethodPut, fmt.Sprintf("/articles/%d", article.ID), token,
		UpdateArticleRequest{Title: &title})
	if rec.Code != http.StatusForbidden {
		t.Errorf("edit in_review = %d, want 403", rec.Code)
	}
}

func TestUserApprovalOverHTTP(t *testing.T) {
	a := newTestAPI(t)

	admin := a.seedUser(t, workflow.RoleAdmin, workflow.StatusActive)
	token := a.issueToken(t, admin.ID)

	rec := a.do(t, http.MethodPost, "/users", token, CreateUserRequest{
		Email:    "newhire@example.com",
		Password: "s3cret-enough",
		Name:     "New Hire",
		Role:     workflow.RoleJournalist,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user = %d, body %s", rec.Code, rec.Body.String())
	}
	var created model.User
	decodeData(t, rec, &created)
	if created.Status != workflow.StatusDraft {
		t.Fatalf("new user status = %s, want draft", created.Status)
	}

	a.do(t, http.MethodPost, fmt.Sprintf("/users/%d/submit", created.ID), token, nil)
	rec = a.do(t, http.MethodPost, fmt.Sprintf("/users/%d/approve", created.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve user = %d, body %s", rec.Code, rec.Body.String())
	}

	got, err := a.queries.GetUserByID(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("loading user: %v", err)
	}
	if got.Status != workflow.StatusActive {
		t.Errorf("approved user status = %s, want active", got.Status)
	}
	if !got.ActivatedAt.Valid {
		t.Error("activated_at not stamped")
	}
}

func TestUnknownKindIs404(t *testing.T) {
	a := newTestAPI(t)

	editor := a.seedUser(t, workflow.RoleEditor, workflow.StatusActive)
	token := a.issueToken(t, editor.ID)

	rec := a.do(t, http.MethodGet, "/widgets", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown kind list = %d, want 404", rec.Code)
	}
	rec = a.do(t, http.MethodPost, "/widgets/1/submit", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown kind submit = %d, want 404", rec.Code)
	}
}
