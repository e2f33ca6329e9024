package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

func requestWithUser(role string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	user := model.User{ID: 1, Role: role, Status: workflow.StatusActive}
	return r.WithContext(context.WithValue(r.Context(), ContextKeyUser, user))
}

func TestRoleLevel(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{workflow.RoleAdmin, 3},
		{workflow.RoleEditor, 2},
		{workflow.RoleJournalist, 1},
		{workflow.RoleUser, 0},
		{"", 0},
		{"unknown", 0},
	}

	for _, tt := range tests {
		if got := roleLevel(tt.role); got != tt.want {
			t.Errorf("roleLevel(%q) = %d, want %d", tt.role, got, tt.want)
		}
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		minRole    string
		userRole   string
		wantStatus int
	}{
		{"admin passes admin gate", workflow.RoleAdmin, workflow.RoleAdmin, http.StatusOK},
		{"editor fails admin gate", workflow.RoleAdmin, workflow.RoleEditor, http.StatusForbidden},
		{"admin passes editor gate", workflow.RoleEditor, workflow.RoleAdmin, http.StatusOK},
		{"journalist fails editor gate", workflow.RoleEditor, workflow.RoleJournalist, http.StatusForbidden},
		{"journalist passes journalist gate", workflow.RoleJournalist, workflow.RoleJournalist, http.StatusOK},
		{"reader fails journalist gate", workflow.RoleJournalist, workflow.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RequireRole(tt.minRole)(next).ServeHTTP(w, requestWithUser(tt.userRole))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireRole_NoUserRedirects(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	RequireRole(workflow.RoleEditor)(next).ServeHTTP(w, r)

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestGetActor(t *testing.T) {
	actor := GetActor(requestWithUser(workflow.RoleEditor))
	if actor.ID != 1 || actor.Role != workflow.RoleEditor {
		t.Errorf("actor = %+v", actor)
	}

	empty := GetActor(httptest.NewRequest(http.MethodGet, "/", nil))
	if empty.ID != 0 || empty.Role != "" {
		t.Errorf("unauthenticated actor = %+v, want zero", empty)
	}
}
