// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// CommentStore handles comments and replies.
type CommentStore struct {
	db *sql.DB
}

func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// Create inserts a comment. ParentID, when set, must reference a comment
// on the same post; the caller checks that before getting here.
func (s *CommentStore) Create(c *models.Comment) (*models.Comment, error) {
	var saved models.Comment
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, author_id, parent_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, post_id, author_id, parent_id, content, created_at`,
		c.PostID, c.AuthorID, c.ParentID, c.Content).
		Scan(&saved.ID, &saved.PostID, &saved.AuthorID, &saved.ParentID,
			&saved.Content, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	err = s.db.QueryRow(`SELECT display_name FROM users WHERE id = $1`, saved.AuthorID).
		Scan(&saved.AuthorName)
	if err != nil {
		return nil, fmt.Errorf("loading comment author: %w", err)
	}
	return &saved, nil
}

// FindByID returns one comment, or nil when it does not exist.
func (s *CommentStore) FindByID(id uuid.UUID) (*models.Comment, error) {
	var c models.Comment
	err := s.db.QueryRow(`
		SELECT c.id, c.post_id, c.author_id, c.parent_id, c.content, c.created_at, u.display_name
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1`, id).
		Scan(&c.ID, &c.PostID, &c.AuthorID, &c.ParentID, &c.Content, &c.CreatedAt, &c.AuthorName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding comment: %w", err)
	}
	return &c, nil
}

// ListByPost returns a post's comments, oldest first. Replies carry their
// parent id; threading is assembled by the client.
func (s *CommentStore) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.post_id, c.author_id, c.parent_id, c.content, c.created_at, u.display_name
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.ParentID,
			&c.Content, &c.CreatedAt, &c.AuthorName); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *CommentStore) CountByPost(postID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting comments: %w", err)
	}
	return n, nil
}
