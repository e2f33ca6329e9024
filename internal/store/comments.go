// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

const commentColumns = `id, article_id, author_name, author_email, body, status, review_comment,
	reviewed_by, created_at, reviewed_at`

func scanComment(row interface{ Scan(...any) error }) (model.Comment, error) {
	var c model.Comment
	err := row.Scan(
		&c.ID, &c.ArticleID, &c.AuthorName, &c.AuthorEmail, &c.Body, &c.Status, &c.ReviewComment,
		&c.ReviewedBy, &c.CreatedAt, &c.ReviewedAt,
	)
	return c, err
}

// CreateCommentParams holds fields for creating a comment.
type CreateCommentParams struct {
	ArticleID   int64
	AuthorName  string
	AuthorEmail string
	Body        string
	CreatedAt   time.Time
}

// CreateComment inserts a new comment in review status and returns it.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (model.Comment, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO comments (article_id, author_name, author_email, body, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+commentColumns,
		arg.ArticleID, arg.AuthorName, arg.AuthorEmail, arg.Body, workflow.StatusInReview, arg.CreatedAt,
	)
	return scanComment(row)
}

// GetCommentByID returns a comment by its numeric id.
func (q *Queries) GetCommentByID(ctx context.Context, id int64) (model.Comment, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	return scanComment(row)
}

// ListCommentsInReview returns the comment moderation queue, oldest first.
func (q *Queries) ListCommentsInReview(ctx context.Context) ([]model.Comment, error) {
	return q.queryComments(ctx, `
		SELECT `+commentColumns+` FROM comments WHERE status = ?
		ORDER BY created_at ASC`, workflow.StatusInReview)
}

// ListPublishedComments returns approved comments for an article, oldest first.
func (q *Queries) ListPublishedComments(ctx context.Context, articleID int64) ([]model.Comment, error) {
	return q.queryComments(ctx, `
		SELECT `+commentColumns+` FROM comments WHERE article_id = ? AND status = ?
		ORDER BY created_at ASC`, articleID, workflow.StatusPublished)
}

func (q *Queries) queryComments(ctx context.Context, query string, args ...any) ([]model.Comment, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ReviewCommentParams holds fields for moderating a comment.
type ReviewCommentParams struct {
	ID            int64
	Status        workflow.Status
	ReviewComment sql.NullString
	ReviewedBy    sql.NullInt64
	ReviewedAt    sql.NullTime
}

// ReviewComment records a moderation decision on a comment.
func (q *Queries) ReviewComment(ctx context.Context, arg ReviewCommentParams) (model.Comment, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE comments SET status = ?, review_comment = ?, reviewed_by = ?, reviewed_at = ?
		WHERE id = ?
		RETURNING `+commentColumns,
		arg.Status, arg.ReviewComment, arg.ReviewedBy, arg.ReviewedAt, arg.ID,
	)
	return scanComment(row)
}

// DeleteComment removes a comment.
func (q *Queries) DeleteComment(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	return err
}
