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

// Admin groups account administration handlers.
type Admin struct {
	userStore *store.UserStore
}

func NewAdmin(users *store.UserStore) *Admin {
	return &Admin{userStore: users}
}

// PendingUsers lists registrations waiting for a decision.
func (h *Admin) PendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userStore.ListPending()
	if err != nil {
		slog.Error("pending user list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list pending users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// ApproveUser activates an account. The granted role comes from the
// role query parameter when present, else from what the user asked for
// at registration, else plain user. Admin cannot be granted this way.
func (h *Admin) ApproveUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.userStore.FindByID(id)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	role := models.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = user.RequestedRole
	}
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRequestedRole(role) {
		writeError(w, http.StatusBadRequest, "role must be user or editor")
		return
	}

	approved, err := h.userStore.Approve(id, role)
	if err != nil {
		slog.Error("user approve failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not approve user")
		return
	}
	if approved == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": approved})
}

// RejectUser declines a registration. The row is kept with a rejection
// timestamp so the account stays locked out.
func (h *Admin) RejectUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess.UserID == id {
		writeError(w, http.StatusBadRequest, "cannot reject your own account")
		return
	}

	user, err := h.userStore.Reject(id)
	if err != nil {
		slog.Error("user reject failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not reject user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
