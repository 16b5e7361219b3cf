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

// PostStore handles posts and their attached images.
type PostStore struct {
	db *sql.DB
}

func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, content, status, author_id, approved_by, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Status, &p.AuthorID,
		&p.ApprovedBy, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a post together with its images in one transaction.
// New posts go straight into the moderation queue.
func (s *PostStore) Create(p *models.Post, images []models.Image) (*models.Post, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		INSERT INTO posts (title, content, status, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+postColumns,
		p.Title, p.Content, models.PostStatusPendingApproval, p.AuthorID)
	created, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	created.Images, err = insertImages(tx, created.ID, images)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing post: %w", err)
	}
	return created, nil
}

func insertImages(tx *sql.Tx, postID uuid.UUID, images []models.Image) ([]models.Image, error) {
	out := make([]models.Image, 0, len(images))
	for i, img := range images {
		var saved models.Image
		err := tx.QueryRow(`
			INSERT INTO post_images (post_id, filename, url, sort_order)
			VALUES ($1, $2, $3, $4)
			RETURNING id, filename, url, sort_order`,
			postID, img.Filename, img.URL, i).
			Scan(&saved.ID, &saved.Filename, &saved.URL, &saved.SortOrder)
		if err != nil {
			return nil, fmt.Errorf("inserting post image: %w", err)
		}
		out = append(out, saved)
	}
	return out, nil
}

// FindByID returns the post with its images, or nil if it does not exist.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("finding post: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	p.Images, err = s.loadImages(id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostStore) loadImages(postID uuid.UUID) ([]models.Image, error) {
	rows, err := s.db.Query(`
		SELECT id, filename, url, sort_order
		FROM post_images
		WHERE post_id = $1
		ORDER BY sort_order ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("loading post images: %w", err)
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ID, &img.Filename, &img.URL, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning post image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// Update rewrites title, content and status. When replaceImages is set the
// image rows are swapped for the given set; the removed rows are returned
// so the caller can clean up object storage.
func (s *PostStore) Update(p *models.Post, images []models.Image, replaceImages bool) ([]models.Image, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE posts
		SET title = $2, content = $3, status = $4, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Title, p.Content, p.Status)
	if err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}

	var removed []models.Image
	if replaceImages {
		removed, err = deleteImages(tx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Images, err = insertImages(tx, p.ID, images)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing post update: %w", err)
	}
	return removed, nil
}

func deleteImages(tx *sql.Tx, postID uuid.UUID) ([]models.Image, error) {
	rows, err := tx.Query(`
		DELETE FROM post_images WHERE post_id = $1
		RETURNING id, filename, url, sort_order`, postID)
	if err != nil {
		return nil, fmt.Errorf("deleting post images: %w", err)
	}
	defer rows.Close()

	var removed []models.Image
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ID, &img.Filename, &img.URL, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning removed image: %w", err)
		}
		removed = append(removed, img)
	}
	return removed, rows.Err()
}

// SetStatus records a moderation outcome. approvedBy is the editor who
// decided; it is cleared again when a published post is taken down.
// Returns false if the post does not exist.
func (s *PostStore) SetStatus(id uuid.UUID, status models.PostStatus, approvedBy *uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE posts
		SET status = $2, approved_by = $3, updated_at = NOW()
		WHERE id = $1`, id, status, approvedBy)
	if err != nil {
		return false, fmt.Errorf("setting post status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("setting post status: %w", err)
	}
	return n > 0, nil
}

// Delete removes a post and returns the image rows that were attached,
// so the caller can remove the objects from storage. Comments, likes and
// views go with it via cascading deletes.
func (s *PostStore) Delete(id uuid.UUID) ([]models.Image, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	images, err := deleteImages(tx, id)
	if err != nil {
		return nil, err
	}
	res, err := tx.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("deleting post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("deleting post: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing post delete: %w", err)
	}
	return images, nil
}

// ListPending returns the moderation queue, oldest submission first.
func (s *PostStore) ListPending() ([]models.Post, error) {
	return s.list(`
		SELECT `+postColumns+`
		FROM posts WHERE status = $1
		ORDER BY updated_at ASC`, models.PostStatusPendingApproval)
}

// ListByAuthor returns every post belonging to one author, newest first.
func (s *PostStore) ListByAuthor(authorID uuid.UUID) ([]models.Post, error) {
	return s.list(`
		SELECT `+postColumns+`
		FROM posts WHERE author_id = $1
		ORDER BY created_at DESC`, authorID)
}

// ListPublished returns one page of the public feed, newest first.
// page is 1-indexed; out-of-range values are clamped.
func (s *PostStore) ListPublished(page, pageSize int) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return s.list(`
		SELECT `+postColumns+`
		FROM posts WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		models.PostStatusPublished, pageSize, (page-1)*pageSize)
}

func (s *PostStore) CountPublished() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE status = $1`,
		models.PostStatusPublished).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting published posts: %w", err)
	}
	return n, nil
}

func (s *PostStore) list(query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Images, err = s.loadImages(posts[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return posts, nil
}
