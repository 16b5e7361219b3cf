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

// PendingEditStore holds revision snapshots of published posts. A post
// carries at most one snapshot; submitting a new edit replaces it.
type PendingEditStore struct {
	db *sql.DB
}

func NewPendingEditStore(db *sql.DB) *PendingEditStore {
	return &PendingEditStore{db: db}
}

// Upsert stores the snapshot for a post, replacing any previous one.
// Images discarded with the previous snapshot that were new uploads are
// returned so the caller can remove them from object storage.
func (s *PendingEditStore) Upsert(edit *models.PendingEdit, images []models.PendingEditImage) (*models.PendingEdit, []models.Image, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	orphaned, err := deleteEditTx(tx, edit.PostID, true)
	if err != nil {
		return nil, nil, err
	}

	var saved models.PendingEdit
	err = tx.QueryRow(`
		INSERT INTO pending_edits (post_id, title, content, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, post_id, title, content, author_id, created_at`,
		edit.PostID, edit.Title, edit.Content, edit.AuthorID).
		Scan(&saved.ID, &saved.PostID, &saved.Title, &saved.Content, &saved.AuthorID, &saved.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("creating pending edit: %w", err)
	}

	for i, img := range images {
		var out models.PendingEditImage
		err := tx.QueryRow(`
			INSERT INTO pending_edit_images (pending_edit_id, filename, url, sort_order, is_new)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, filename, url, sort_order, is_new`,
			saved.ID, img.Filename, img.URL, i, img.IsNew).
			Scan(&out.ID, &out.Filename, &out.URL, &out.SortOrder, &out.IsNew)
		if err != nil {
			return nil, nil, fmt.Errorf("inserting pending edit image: %w", err)
		}
		saved.Images = append(saved.Images, out)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing pending edit: %w", err)
	}
	return &saved, orphaned, nil
}

// FindByPostID returns the snapshot for a post, or nil if there is none.
func (s *PendingEditStore) FindByPostID(postID uuid.UUID) (*models.PendingEdit, error) {
	var edit models.PendingEdit
	err := s.db.QueryRow(`
		SELECT id, post_id, title, content, author_id, created_at
		FROM pending_edits WHERE post_id = $1`, postID).
		Scan(&edit.ID, &edit.PostID, &edit.Title, &edit.Content, &edit.AuthorID, &edit.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding pending edit: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT id, filename, url, sort_order, is_new
		FROM pending_edit_images
		WHERE pending_edit_id = $1
		ORDER BY sort_order ASC`, edit.ID)
	if err != nil {
		return nil, fmt.Errorf("loading pending edit images: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var img models.PendingEditImage
		if err := rows.Scan(&img.ID, &img.Filename, &img.URL, &img.SortOrder, &img.IsNew); err != nil {
			return nil, fmt.Errorf("scanning pending edit image: %w", err)
		}
		edit.Images = append(edit.Images, img)
	}
	return &edit, rows.Err()
}

// List returns every waiting snapshot, oldest first, for the editor queue.
func (s *PendingEditStore) List() ([]models.PendingEdit, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, title, content, author_id, created_at
		FROM pending_edits
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing pending edits: %w", err)
	}
	defer rows.Close()

	var edits []models.PendingEdit
	for rows.Next() {
		var e models.PendingEdit
		if err := rows.Scan(&e.ID, &e.PostID, &e.Title, &e.Content, &e.AuthorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pending edit: %w", err)
		}
		edits = append(edits, e)
	}
	return edits, rows.Err()
}

// Promote applies a snapshot to its post: title, content and image set
// are replaced and the snapshot is discarded, all in one transaction.
// Live images not carried over into the new set are returned so the
// caller can remove them from object storage.
func (s *PendingEditStore) Promote(postID uuid.UUID) ([]models.Image, error) {
	edit, err := s.FindByPostID(postID)
	if err != nil {
		return nil, err
	}
	if edit == nil {
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE posts
		SET title = $2, content = $3, updated_at = NOW()
		WHERE id = $1`, postID, edit.Title, edit.Content)
	if err != nil {
		return nil, fmt.Errorf("applying pending edit: %w", err)
	}

	old, err := deleteImages(tx, postID)
	if err != nil {
		return nil, err
	}
	carried := make(map[string]bool, len(edit.Images))
	for i, img := range edit.Images {
		carried[img.Filename] = true
		_, err := tx.Exec(`
			INSERT INTO post_images (post_id, filename, url, sort_order)
			VALUES ($1, $2, $3, $4)`,
			postID, img.Filename, img.URL, i)
		if err != nil {
			return nil, fmt.Errorf("promoting pending edit image: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM pending_edits WHERE post_id = $1`, postID); err != nil {
		return nil, fmt.Errorf("discarding pending edit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing pending edit promotion: %w", err)
	}

	var removed []models.Image
	for _, img := range old {
		if !carried[img.Filename] {
			removed = append(removed, img)
		}
	}
	return removed, nil
}

// Delete discards a snapshot without applying it. Images the snapshot
// introduced (uploads not shared with the live post) are returned for
// storage cleanup.
func (s *PendingEditStore) Delete(postID uuid.UUID) ([]models.Image, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	orphaned, err := deleteEditTx(tx, postID, true)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing pending edit delete: %w", err)
	}
	return orphaned, nil
}

// deleteEditTx removes a post's snapshot inside tx. With newOnly set,
// only images flagged is_new are reported back; those are uploads that
// exist nowhere else once the snapshot is gone.
func deleteEditTx(tx *sql.Tx, postID uuid.UUID, newOnly bool) ([]models.Image, error) {
	rows, err := tx.Query(`
		DELETE FROM pending_edit_images
		WHERE pending_edit_id IN (SELECT id FROM pending_edits WHERE post_id = $1)
		RETURNING id, filename, url, sort_order, is_new`, postID)
	if err != nil {
		return nil, fmt.Errorf("deleting pending edit images: %w", err)
	}
	defer rows.Close()

	var orphaned []models.Image
	for rows.Next() {
		var img models.PendingEditImage
		if err := rows.Scan(&img.ID, &img.Filename, &img.URL, &img.SortOrder, &img.IsNew); err != nil {
			return nil, fmt.Errorf("scanning deleted edit image: %w", err)
		}
		if !newOnly || img.IsNew {
			orphaned = append(orphaned, img.Image)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`DELETE FROM pending_edits WHERE post_id = $1`, postID); err != nil {
		return nil, fmt.Errorf("deleting pending edit: %w", err)
	}
	return orphaned, nil
}
