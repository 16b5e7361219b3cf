// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reader comment on a post. ParentID links a reply to the
// comment it answers; the data model allows arbitrary nesting but the
// client renders one level.
type Comment struct {
	ID         uuid.UUID  `json:"id"`
	PostID     uuid.UUID  `json:"post_id"`
	AuthorID   uuid.UUID  `json:"author_id"`
	AuthorName string     `json:"author_name,omitempty"`
	ParentID   *uuid.UUID `json:"parent_id,omitempty"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
}

// View is an append-only record of a single view event. It is never
// deduplicated — the view count is a raw event count, not unique
// visitors. User and IP are both optional.
type View struct {
	ID        uuid.UUID  `json:"id"`
	PostID    uuid.UUID  `json:"post_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	IP        *string    `json:"ip,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
