// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"inkwell/internal/models"
)

func TestCommentStoreCreateAndList(t *testing.T) {
	db := testDB(t)
	s := NewCommentStore(db)
	author := seedUser(t, db, "comment-create@store-test.local", models.RoleUser)
	post := seedPost(t, db, author.ID)

	top, err := s.Create(&models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Content:  "First!",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if top.AuthorName == "" {
		t.Error("expected author display name on created comment")
	}

	reply, err := s.Create(&models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		ParentID: &top.ID,
		Content:  "Replying to myself.",
	})
	if err != nil {
		t.Fatalf("Create reply: %v", err)
	}
	if reply.ParentID == nil || *reply.ParentID != top.ID {
		t.Error("expected reply to carry its parent id")
	}

	comments, err := s.ListByPost(post.ID)
	if err != nil {
		t.Fatalf("ListByPost: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("comments: got %d, want 2", len(comments))
	}
	// Oldest first.
	if comments[0].ID != top.ID {
		t.Error("expected top-level comment first")
	}

	n, err := s.CountByPost(post.ID)
	if err != nil {
		t.Fatalf("CountByPost: %v", err)
	}
	if n != 2 {
		t.Errorf("count: got %d, want 2", n)
	}
}

func TestCommentStoreCascadeOnPostDelete(t *testing.T) {
	db := testDB(t)
	comments := NewCommentStore(db)
	posts := NewPostStore(db)
	author := seedUser(t, db, "comment-cascade@store-test.local", models.RoleUser)
	post := seedPost(t, db, author.ID)

	if _, err := comments.Create(&models.Comment{
		PostID: post.ID, AuthorID: author.ID, Content: "Soon gone.",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := posts.Delete(post.ID); err != nil {
		t.Fatalf("Delete post: %v", err)
	}

	list, err := comments.ListByPost(post.ID)
	if err != nil {
		t.Fatalf("ListByPost: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected comments to cascade away, got %d", len(list))
	}
}
