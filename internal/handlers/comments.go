// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Comments groups comment handlers.
type Comments struct {
	commentStore *store.CommentStore
	postStore    *store.PostStore
}

func NewComments(comments *store.CommentStore, posts *store.PostStore) *Comments {
	return &Comments{commentStore: comments, postStore: posts}
}

type commentRequest struct {
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// Create adds a comment (or a reply) to a published post.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	post, err := h.postStore.FindByID(postID)
	if err != nil {
		slog.Error("post lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load post")
		return
	}
	if post == nil || !post.IsPublished() {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateComment(req.Content); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if req.ParentID != nil {
		parent, err := h.commentStore.FindByID(*req.ParentID)
		if err != nil {
			slog.Error("parent comment lookup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not load parent comment")
			return
		}
		if parent == nil || parent.PostID != postID {
			writeError(w, http.StatusBadRequest, "parent comment does not belong to this post")
			return
		}
	}

	sess := middleware.SessionFromCtx(r.Context())
	comment, err := h.commentStore.Create(&models.Comment{
		PostID:   postID,
		AuthorID: sess.UserID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		slog.Error("comment create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create comment")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"comment": comment})
}

// List returns a published post's comments, oldest first.
func (h *Comments) List(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	post, err := h.postStore.FindByID(postID)
	if err != nil {
		slog.Error("post lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load post")
		return
	}
	if post == nil || !post.IsPublished() {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	comments, err := h.commentStore.ListByPost(postID)
	if err != nil {
		slog.Error("comment list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list comments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}
