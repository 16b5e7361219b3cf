// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents where a post sits in the moderation workflow.
type PostStatus string

const (
	// PostStatusDraft exists in the enum but is never produced by the
	// create path — new posts enter the workflow at pending_approval.
	PostStatusDraft           PostStatus = "draft"
	PostStatusPendingApproval PostStatus = "pending_approval"
	PostStatusPublished       PostStatus = "published"
	PostStatusRejected        PostStatus = "rejected"
)

// Post is an authored article with its ordered image attachments.
// Comments, likes and views hang off the post and are cascade-deleted
// with it.
type Post struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	AuthorID   uuid.UUID  `json:"author_id"`
	Status     PostStatus `json:"status"`
	ApprovedBy *uuid.UUID `json:"approved_by,omitempty"`
	Images     []Image    `json:"images"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsPublished returns true if the post is visible to readers.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// VisibleTo reports whether the post may be returned to the given
// requester: published posts are visible to everyone, everything else
// only to its author. Editors use the separate review fetch instead.
func (p *Post) VisibleTo(userID *uuid.UUID) bool {
	if p.IsPublished() {
		return true
	}
	return userID != nil && *userID == p.AuthorID
}

// Image is a file attached to a post (or to a pending edit), stored in
// object storage and referenced by its public URL. SortOrder defines the
// display sequence.
type Image struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	SortOrder int       `json:"sort_order"`
}

// PendingEdit is a staged revision of an already-published post awaiting
// editor approval. The live post stays untouched and visible until the
// edit is promoted.
type PendingEdit struct {
	ID        uuid.UUID          `json:"id"`
	PostID    uuid.UUID          `json:"post_id"`
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	AuthorID  uuid.UUID          `json:"author_id"`
	Images    []PendingEditImage `json:"images"`
	CreatedAt time.Time          `json:"created_at"`
}

// PendingEditImage is an image slot in a pending edit. IsNew marks a
// freshly uploaded file; carried-over images keep pointing at the live
// post's objects until the edit is promoted.
type PendingEditImage struct {
	Image
	IsNew bool `json:"is_new"`
}
