package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "pressroom-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

func createTestUser(t *testing.T, q *Queries, email, role string, status workflow.Status) int64 {
	t.Helper()

	now := time.Now()
	u, err := q.CreateUser(context.Background(), CreateUserParams{
		PublicID:     uuid.NewString(),
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		Name:         "Test User",
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u.ID
}

func createTestArticle(t *testing.T, q *Queries, createdBy int64, title string) int64 {
	t.Helper()

	now := time.Now()
	a, err := q.CreateArticle(context.Background(), CreateArticleParams{
		PublicID:  uuid.NewString(),
		Title:     title,
		Slug:      uuid.NewString(),
		Status:    workflow.StatusDraft,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	return a.ID
}

func TestCreateUser(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		PublicID:     uuid.NewString(),
		Email:        "test@example.com",
		PasswordHash: "hashed-password",
		Role:         workflow.RoleEditor,
		Name:         "Test User",
		Status:       workflow.StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if user.ID == 0 {
		t.Error("user.ID should not be 0")
	}
	if user.Email != "test@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "test@example.com")
	}
	if user.Role != workflow.RoleEditor {
		t.Errorf("Role = %q, want %q", user.Role, workflow.RoleEditor)
	}
	if user.Status != workflow.StatusDraft {
		t.Errorf("Status = %q, want %q", user.Status, workflow.StatusDraft)
	}
	if user.Permissions != "[]" {
		t.Errorf("Permissions = %q, want %q", user.Permissions, "[]")
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	q := New(db)

	_, err := q.GetUserByEmail(context.Background(), "nobody@example.com")
	if err != sql.ErrNoRows {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestSetArticleWorkflow(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	owner := createTestUser(t, q, "author@example.com", workflow.RoleJournalist, workflow.StatusActive)
	reviewer := createTestUser(t, q, "editor@example.com", workflow.RoleEditor, workflow.StatusActive)
	id := createTestArticle(t, q, owner, "Workflow Test")

	now := time.Now()
	submitted, err := q.SetArticleWorkflow(ctx, SetWorkflowParams{
		ID:          id,
		Status:      workflow.StatusInReview,
		SubmittedBy: sql.NullInt64{Int64: owner, Valid: true},
		SubmittedAt: sql.NullTime{Time: now, Valid: true},
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("SetArticleWorkflow (submit): %v", err)
	}
	if submitted.Status != workflow.StatusInReview {
		t.Errorf("Status = %q, want %q", submitted.Status, workflow.StatusInReview)
	}
	if !submitted.SubmittedBy.Valid || submitted.SubmittedBy.Int64 != owner {
		t.Errorf("SubmittedBy = %+v, want %d", submitted.SubmittedBy, owner)
	}

	rejected, err := q.SetArticleWorkflow(ctx, SetWorkflowParams{
		ID:            id,
		Status:        workflow.StatusRejected,
		ReviewComment: sql.NullString{String: "needs sources", Valid: true},
		SubmittedBy:   submitted.SubmittedBy,
		SubmittedAt:   submitted.SubmittedAt,
		ReviewedBy:    sql.NullInt64{Int64: reviewer, Valid: true},
		ReviewedAt:    sql.NullTime{Time: now, Valid: true},
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("SetArticleWorkflow (reject): %v", err)
	}
	if rejected.Status != workflow.StatusRejected {
		t.Errorf("Status = %q, want %q", rejected.Status, workflow.StatusRejected)
	}
	if rejected.ReviewComment.String != "needs sources" {
		t.Errorf("ReviewComment = %q, want %q", rejected.ReviewComment.String, "needs sources")
	}
	if !rejected.SubmittedBy.Valid {
		t.Error("SubmittedBy should survive a reject")
	}
}

func TestListArticlesInReview_Order(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	owner := createTestUser(t, q, "author@example.com", workflow.RoleJournalist, workflow.StatusActive)
	first := createTestArticle(t, q, owner, "First")
	second := createTestArticle(t, q, owner, "Second")

	// Submit in reverse order so submission time, not insertion order, decides.
	base := time.Now()
	for i, id := range []int64{second, first} {
		at := base.Add(time.Duration(i) * time.Minute)
		if _, err := q.SetArticleWorkflow(ctx, SetWorkflowParams{
			ID:          id,
			Status:      workflow.StatusInReview,
			SubmittedBy: sql.NullInt64{Int64: owner, Valid: true},
			SubmittedAt: sql.NullTime{Time: at, Valid: true},
			UpdatedAt:   at,
		}); err != nil {
			t.Fatalf("SetArticleWorkflow: %v", err)
		}
	}

	queue, err := q.ListArticlesInReview(ctx)
	if err != nil {
		t.Fatalf("ListArticlesInReview: %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("len(queue) = %d, want 2", len(queue))
	}
	if queue[0].ID != second || queue[1].ID != first {
		t.Errorf("queue order = [%d %d], want [%d %d]", queue[0].ID, queue[1].ID, second, first)
	}
}

func TestListScheduledArticlesDue(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	owner := createTestUser(t, q, "author@example.com", workflow.RoleJournalist, workflow.StatusActive)
	now := time.Now()

	due, err := q.CreateArticle(ctx, CreateArticleParams{
		PublicID:    uuid.NewString(),
		Title:       "Due",
		Slug:        "due",
		Status:      workflow.StatusDraft,
		CreatedBy:   owner,
		ScheduledAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	if _, err := q.CreateArticle(ctx, CreateArticleParams{
		PublicID:    uuid.NewString(),
		Title:       "Future",
		Slug:        "future",
		Status:      workflow.StatusDraft,
		CreatedBy:   owner,
		ScheduledAt: sql.NullTime{Time: now.Add(time.Hour), Valid: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	articles, err := q.ListScheduledArticlesDue(ctx, now)
	if err != nil {
		t.Fatalf("ListScheduledArticlesDue: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("len(articles) = %d, want 1", len(articles))
	}
	if articles[0].ID != due.ID {
		t.Errorf("articles[0].ID = %d, want %d", articles[0].ID, due.ID)
	}
}

func TestArticleAuthors_AddAndReorder(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	a := createTestUser(t, q, "a@example.com", workflow.RoleJournalist, workflow.StatusActive)
	b := createTestUser(t, q, "b@example.com", workflow.RoleJournalist, workflow.StatusActive)
	c := createTestUser(t, q, "c@example.com", workflow.RoleJournalist, workflow.StatusActive)
	articleID := createTestArticle(t, q, a, "Bylines")

	now := time.Now()
	for _, userID := range []int64{a, b, c} {
		if _, err := q.AddArticleAuthor(ctx, articleID, userID, now); err != nil {
			t.Fatalf("AddArticleAuthor: %v", err)
		}
	}

	authors, err := q.ListArticleAuthors(ctx, articleID)
	if err != nil {
		t.Fatalf("ListArticleAuthors: %v", err)
	}
	if len(authors) != 3 {
		t.Fatalf("len(authors) = %d, want 3", len(authors))
	}
	if !authors[0].IsMain {
		t.Error("first added author should be main")
	}

	// Move c to the front; it becomes the main author.
	if err := ReorderArticleAuthors(ctx, db, articleID, []int64{c, a, b}); err != nil {
		t.Fatalf("ReorderArticleAuthors: %v", err)
	}

	authors, err = q.ListArticleAuthors(ctx, articleID)
	if err != nil {
		t.Fatalf("ListArticleAuthors: %v", err)
	}
	if authors[0].UserID != c {
		t.Errorf("authors[0].UserID = %d, want %d", authors[0].UserID, c)
	}
	if !authors[0].IsMain {
		t.Error("reordered first author should be main")
	}
	for _, author := range authors[1:] {
		if author.IsMain {
			t.Errorf("author %d should not be main", author.UserID)
		}
	}

	// Incomplete user list must be rejected.
	if err := ReorderArticleAuthors(ctx, db, articleID, []int64{a, b}); err == nil {
		t.Error("ReorderArticleAuthors with missing user should fail")
	}
}

func TestArticleAuthors_ReorderRejectsDuplicates(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	a := createTestUser(t, q, "a@example.com", workflow.RoleJournalist, workflow.StatusActive)
	b := createTestUser(t, q, "b@example.com", workflow.RoleJournalist, workflow.StatusActive)
	articleID := createTestArticle(t, q, a, "Bylines")

	now := time.Now()
	for _, userID := range []int64{a, b} {
		if _, err := q.AddArticleAuthor(ctx, articleID, userID, now); err != nil {
			t.Fatalf("AddArticleAuthor: %v", err)
		}
	}

	// A repeated id has the right length but is not a permutation.
	if err := ReorderArticleAuthors(ctx, db, articleID, []int64{a, a}); err == nil {
		t.Fatal("ReorderArticleAuthors with duplicate id should fail")
	}
	// Substituting an outsider for a current author must fail too.
	if err := ReorderArticleAuthors(ctx, db, articleID, []int64{b, b + 100}); err == nil {
		t.Fatal("ReorderArticleAuthors with non-author id should fail")
	}

	// The rejected calls left the links untouched: exactly one main author.
	authors, err := q.ListArticleAuthors(ctx, articleID)
	if err != nil {
		t.Fatalf("ListArticleAuthors: %v", err)
	}
	if len(authors) != 2 {
		t.Fatalf("len(authors) = %d, want 2", len(authors))
	}
	mains := 0
	for _, author := range authors {
		if author.IsMain {
			mains++
			if author.UserID != a {
				t.Errorf("main author = %d, want %d", author.UserID, a)
			}
		}
	}
	if mains != 1 {
		t.Errorf("main author count = %d, want exactly 1", mains)
	}
}

func TestComments_ReviewFlow(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	owner := createTestUser(t, q, "author@example.com", workflow.RoleJournalist, workflow.StatusActive)
	reviewer := createTestUser(t, q, "editor@example.com", workflow.RoleEditor, workflow.StatusActive)
	articleID := createTestArticle(t, q, owner, "With Comments")

	now := time.Now()
	comment, err := q.CreateComment(ctx, CreateCommentParams{
		ArticleID:   articleID,
		AuthorName:  "Reader",
		AuthorEmail: "reader@example.com",
		Body:        "Great article",
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if comment.Status != workflow.StatusInReview {
		t.Errorf("Status = %q, want %q", comment.Status, workflow.StatusInReview)
	}

	published, err := q.ListPublishedComments(ctx, articleID)
	if err != nil {
		t.Fatalf("ListPublishedComments: %v", err)
	}
	if len(published) != 0 {
		t.Errorf("len(published) = %d, want 0 before approval", len(published))
	}

	if _, err := q.ReviewComment(ctx, ReviewCommentParams{
		ID:         comment.ID,
		Status:     workflow.StatusPublished,
		ReviewedBy: sql.NullInt64{Int64: reviewer, Valid: true},
		ReviewedAt: sql.NullTime{Time: now, Valid: true},
	}); err != nil {
		t.Fatalf("ReviewComment: %v", err)
	}

	published, err = q.ListPublishedComments(ctx, articleID)
	if err != nil {
		t.Fatalf("ListPublishedComments: %v", err)
	}
	if len(published) != 1 {
		t.Errorf("len(published) = %d, want 1 after approval", len(published))
	}
}

func TestSubscribers_UnsubscribeResubscribe(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	sub, err := q.CreateSubscriber(ctx, "reader@example.com", uuid.NewString(), now)
	if err != nil {
		t.Fatalf("CreateSubscriber: %v", err)
	}
	if sub.Status != "active" {
		t.Errorf("Status = %q, want %q", sub.Status, "active")
	}

	if err := q.UnsubscribeSubscriber(ctx, sub.ID, now); err != nil {
		t.Fatalf("UnsubscribeSubscriber: %v", err)
	}
	got, err := q.GetSubscriberByToken(ctx, sub.Token)
	if err != nil {
		t.Fatalf("GetSubscriberByToken: %v", err)
	}
	if got.Status != "unsubscribed" {
		t.Errorf("Status = %q, want %q", got.Status, "unsubscribed")
	}

	if err := q.ResubscribeSubscriber(ctx, sub.ID); err != nil {
		t.Fatalf("ResubscribeSubscriber: %v", err)
	}
	got, err = q.GetSubscriberByToken(ctx, sub.Token)
	if err != nil {
		t.Fatalf("GetSubscriberByToken: %v", err)
	}
	if got.Status != "active" {
		t.Errorf("Status = %q, want %q", got.Status, "active")
	}
}

func TestTokens_Lifecycle(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	userID := createTestUser(t, q, "api@example.com", workflow.RoleEditor, workflow.StatusActive)
	now := time.Now()

	token, err := q.CreateToken(ctx, CreateTokenParams{
		UserID:    userID,
		TokenHash: "deadbeef",
		Kind:      "access",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	got, err := q.GetTokenByHash(ctx, "deadbeef")
	if err != nil {
		t.Fatalf("GetTokenByHash: %v", err)
	}
	if got.ID != token.ID {
		t.Errorf("ID = %d, want %d", got.ID, token.ID)
	}

	if err := q.RevokeUserTokens(ctx, userID, now); err != nil {
		t.Fatalf("RevokeUserTokens: %v", err)
	}
	got, err = q.GetTokenByHash(ctx, "deadbeef")
	if err != nil {
		t.Fatalf("GetTokenByHash after revoke: %v", err)
	}
	if !got.RevokedAt.Valid {
		t.Error("RevokedAt should be set after RevokeUserTokens")
	}

	deleted, err := q.DeleteExpiredTokens(ctx, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("DeleteExpiredTokens: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}

func TestCreateEvent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	event, err := q.CreateEvent(ctx, CreateEventParams{
		Level:     "info",
		Category:  "workflow",
		Message:   "article submitted",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if event.Metadata != "{}" {
		t.Errorf("Metadata = %q, want %q", event.Metadata, "{}")
	}

	count, err := q.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()

	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Seed (second run): %v", err)
	}

	q := New(db)
	admin, err := q.GetUserByEmail(ctx, DefaultAdminEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if admin.Role != workflow.RoleAdmin {
		t.Errorf("Role = %q, want %q", admin.Role, workflow.RoleAdmin)
	}
	if admin.Status != workflow.StatusActive {
		t.Errorf("Status = %q, want %q", admin.Status, workflow.StatusActive)
	}

	count, err := q.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
