// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// EngagementStore tracks likes and view events.
type EngagementStore struct {
	db *sql.DB
}

func NewEngagementStore(db *sql.DB) *EngagementStore {
	return &EngagementStore{db: db}
}

// ToggleLike flips the user's like on a post and reports the resulting
// state. Two concurrent toggles race on the unique (post_id, user_id)
// key; the loser's duplicate insert is absorbed as "already liked".
func (s *EngagementStore) ToggleLike(postID, userID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`,
		postID, userID)
	if err != nil {
		return false, fmt.Errorf("removing like: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("removing like: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	_, err = s.db.Exec(`
		INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`,
		postID, userID)
	if err != nil {
		if IsUniqueViolation(err) {
			return true, nil
		}
		return false, fmt.Errorf("adding like: %w", err)
	}
	return true, nil
}

func (s *EngagementStore) CountLikes(postID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting likes: %w", err)
	}
	return n, nil
}

func (s *EngagementStore) HasLiked(postID, userID uuid.UUID) (bool, error) {
	var liked bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2)`,
		postID, userID).Scan(&liked)
	if err != nil {
		return false, fmt.Errorf("checking like: %w", err)
	}
	return liked, nil
}

// RecordView appends a view event. userID is nil for anonymous readers;
// ip is kept for rough dedup analysis later, not enforced here.
func (s *EngagementStore) RecordView(postID uuid.UUID, userID *uuid.UUID, ip *string) error {
	_, err := s.db.Exec(`
		INSERT INTO post_views (post_id, user_id, ip) VALUES ($1, $2, $3)`,
		postID, userID, ip)
	if err != nil {
		return fmt.Errorf("recording view: %w", err)
	}
	return nil
}

func (s *EngagementStore) CountViews(postID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM post_views WHERE post_id = $1`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting views: %w", err)
	}
	return n, nil
}
