// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressroom-io/pressroom/internal/model"
)

const authorColumns = `id, article_id, user_id, is_main, position, created_at`

func scanAuthor(row interface{ Scan(...any) error }) (model.ArticleAuthor, error) {
	var a model.ArticleAuthor
	err := row.Scan(&a.ID, &a.ArticleID, &a.UserID, &a.IsMain, &a.Position, &a.CreatedAt)
	return a, err
}

// ListArticleAuthors returns the author links for an article ordered by
// position. Position 0 is the main author.
func (q *Queries) ListArticleAuthors(ctx context.Context, articleID int64) ([]model.ArticleAuthor, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+authorColumns+` FROM article_authors
		WHERE article_id = ? ORDER BY position ASC`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []model.ArticleAuthor
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// AddArticleAuthor appends a user to an article's author list. The link is
// main only when it is the first author.
func (q *Queries) AddArticleAuthor(ctx context.Context, articleID, userID int64, at time.Time) (model.ArticleAuthor, error) {
	var position int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position)+1, 0) FROM article_authors WHERE article_id = ?`, articleID).Scan(&position)
	if err != nil {
		return model.ArticleAuthor{}, err
	}

	row := q.db.QueryRowContext(ctx, `
		INSERT INTO article_authors (article_id, user_id, is_main, position, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+authorColumns,
		articleID, userID, position == 0, position, at)
	return scanAuthor(row)
}

// RemoveArticleAuthor deletes one author link.
func (q *Queries) RemoveArticleAuthor(ctx context.Context, articleID, userID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM article_authors WHERE article_id = ? AND user_id = ?`,
		articleID, userID)
	return err
}

// ReorderArticleAuthors rewrites the author order for an article in a
// single transaction. userIDs must be a permutation of the current author
// set; index 0 is promoted to main so exactly one link carries is_main.
// The ordering only becomes authoritative once this call returns nil.
func ReorderArticleAuthors(ctx context.Context, db *sql.DB, articleID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return fmt.Errorf("author set must not be empty")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		`SELECT user_id FROM article_authors WHERE article_id = ?`, articleID)
	if err != nil {
		return fmt.Errorf("listing author links: %w", err)
	}
	current := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scanning author link: %w", err)
		}
		current[id] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("listing author links: %w", err)
	}
	rows.Close()

	if len(current) != len(userIDs) {
		return fmt.Errorf("author set mismatch: have %d links, got %d ids", len(current), len(userIDs))
	}
	seen := make(map[int64]bool, len(userIDs))
	for _, userID := range userIDs {
		if seen[userID] {
			return fmt.Errorf("duplicate author id %d", userID)
		}
		seen[userID] = true
		if !current[userID] {
			return fmt.Errorf("user %d is not an author of article %d", userID, articleID)
		}
	}

	for position, userID := range userIDs {
		if _, err := tx.ExecContext(ctx, `
			UPDATE article_authors SET position = ?, is_main = ?
			WHERE article_id = ? AND user_id = ?`,
			position, position == 0, articleID, userID); err != nil {
			return fmt.Errorf("reordering author %d: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reorder: %w", err)
	}
	return nil
}
