// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/moderation"
	"inkwell/internal/storage"
	"inkwell/internal/store"
)

// Posts groups the post lifecycle handlers: authoring, moderation,
// reading and engagement.
type Posts struct {
	postStore   *store.PostStore
	editStore   *store.PendingEditStore
	commentSt   *store.CommentStore
	engagement  *store.EngagementStore
	files       *storage.Client
	defaultPage int
}

// NewPosts creates a new Posts handler group. files may be nil when
// object storage is not configured; image uploads are then rejected.
func NewPosts(posts *store.PostStore, edits *store.PendingEditStore, comments *store.CommentStore, engagement *store.EngagementStore, files *storage.Client) *Posts {
	return &Posts{
		postStore:   posts,
		editStore:   edits,
		commentSt:   comments,
		engagement:  engagement,
		files:       files,
		defaultPage: 10,
	}
}

// Create accepts a multipart form (title, content, images) and files the
// post straight into the moderation queue.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	if err := r.ParseMultipartForm(maxImageBytes * maxImages); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	title := r.FormValue("title")
	content := r.FormValue("content")
	if msg := validatePost(title, content); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	images, err := h.uploadImages(r.Context(), r.MultipartForm.File["images"])
	if err != nil {
		h.writeUploadError(w, err)
		return
	}

	post, err := h.postStore.Create(&models.Post{
		Title:    strings.TrimSpace(title),
		Content:  content,
		AuthorID: sess.UserID,
	}, images)
	if err != nil {
		slog.Error("post create failed", "error", err)
		h.removeUploaded(r.Context(), images)
		writeError(w, http.StatusInternalServerError, "could not create post")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"post": post})
}

// Get returns one post with its engagement counts. Published posts are
// public; anything else is only visible to its author, editors and admins.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	var viewer *uuid.UUID
	if sess != nil && sess.TwoFADone {
		viewer = &sess.UserID
	}
	if !post.VisibleTo(viewer) {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	resp := map[string]any{"post": post}
	h.attachEngagement(resp, post.ID, viewer)
	writeJSON(w, http.StatusOK, resp)
}

// ListPublished returns one page of the public feed.
func (h *Posts) ListPublished(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	sizeParam := r.URL.Query().Get("pageSize")
	if sizeParam == "" {
		sizeParam = r.URL.Query().Get("page_size")
	}
	size, _ := strconv.Atoi(sizeParam)
	if size < 1 || size > 50 {
		size = h.defaultPage
	}

	posts, err := h.postStore.ListPublished(page, size)
	if err != nil {
		slog.Error("feed list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list posts")
		return
	}
	total, err := h.postStore.CountPublished()
	if err != nil {
		slog.Error("feed count failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list posts")
		return
	}
	if page < 1 {
		page = 1
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"posts":     posts,
		"page":      page,
		"page_size": size,
		"total":     total,
	})
}

// ListMine returns every post of the signed-in author, whatever its status.
func (h *Posts) ListMine(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	posts, err := h.postStore.ListByAuthor(sess.UserID)
	if err != nil {
		slog.Error("author list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list posts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// Update edits a post. Authors editing a published post stage a revision
// snapshot that waits for editor approval; the live post is untouched.
// Pending or rejected posts are rewritten in place and land back in the
// moderation queue. Editors and admins always edit the live post directly
// and the result publishes immediately.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	staff := sess.Role == string(models.RoleEditor) || sess.Role == string(models.RoleAdmin)
	if post.AuthorID != sess.UserID && !staff {
		writeError(w, http.StatusForbidden, "not your post")
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes * maxImages); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	title := r.FormValue("title")
	content := r.FormValue("content")
	if msg := validatePost(title, content); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	// The image set is replaced when the form says anything about images:
	// existing_images lists kept URLs in order, new files are appended.
	_, imagesTouched := r.MultipartForm.Value["existing_images"]
	newFiles := r.MultipartForm.File["images"]
	imagesTouched = imagesTouched || len(newFiles) > 0

	kept, badKeep := h.keptImages(post, r.MultipartForm.Value["existing_images"])
	if badKeep {
		writeError(w, http.StatusBadRequest, "existing_images references an unknown image")
		return
	}

	uploaded, err := h.uploadImages(r.Context(), newFiles)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}

	if post.IsPublished() && !staff {
		h.stageEdit(w, r, post, sess.UserID, imagesTouched, kept, uploaded)
		return
	}

	post.Title = strings.TrimSpace(title)
	post.Content = content
	if staff {
		// Editor edits skip the queue and go straight out.
		post.Status = models.PostStatusPublished
	} else {
		// Author rewrites go back through moderation.
		post.Status = models.PostStatusPendingApproval
		post.ApprovedBy = nil
	}

	imageSet := append(kept, uploaded...)
	removed, err := h.postStore.Update(post, imageSet, imagesTouched)
	if err != nil {
		slog.Error("post update failed", "error", err)
		h.removeUploaded(r.Context(), uploaded)
		writeError(w, http.StatusInternalServerError, "could not update post")
		return
	}
	h.removeUploaded(r.Context(), removed)

	updated, err := h.postStore.FindByID(post.ID)
	if err != nil || updated == nil {
		slog.Error("post reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load updated post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": updated})
}

// SubmitForApproval stages a revision of a published post explicitly.
// It is the dedicated form of the published-post branch of Update.
func (h *Posts) SubmitForApproval(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())
	if post.AuthorID != sess.UserID {
		writeError(w, http.StatusForbidden, "not your post")
		return
	}
	if !post.IsPublished() {
		writeError(w, http.StatusConflict, "only published posts take staged edits; edit directly instead")
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes * maxImages); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if msg := validatePost(r.FormValue("title"), r.FormValue("content")); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	_, imagesTouched := r.MultipartForm.Value["existing_images"]
	newFiles := r.MultipartForm.File["images"]
	imagesTouched = imagesTouched || len(newFiles) > 0

	kept, badKeep := h.keptImages(post, r.MultipartForm.Value["existing_images"])
	if badKeep {
		writeError(w, http.StatusBadRequest, "existing_images references an unknown image")
		return
	}
	uploaded, err := h.uploadImages(r.Context(), newFiles)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}

	h.stageEdit(w, r, post, sess.UserID, imagesTouched, kept, uploaded)
}

// stageEdit stores an author revision of a published post as a snapshot.
func (h *Posts) stageEdit(w http.ResponseWriter, r *http.Request, post *models.Post, authorID uuid.UUID, imagesTouched bool, kept, uploaded []models.Image) {
	var snapshot []models.PendingEditImage
	if imagesTouched {
		for _, img := range kept {
			snapshot = append(snapshot, models.PendingEditImage{Image: img})
		}
		for _, img := range uploaded {
			snapshot = append(snapshot, models.PendingEditImage{Image: img, IsNew: true})
		}
	} else {
		for _, img := range post.Images {
			snapshot = append(snapshot, models.PendingEditImage{Image: img})
		}
	}

	edit, orphaned, err := h.editStore.Upsert(&models.PendingEdit{
		PostID:   post.ID,
		Title:    strings.TrimSpace(r.FormValue("title")),
		Content:  r.FormValue("content"),
		AuthorID: authorID,
	}, snapshot)
	if err != nil {
		slog.Error("pending edit store failed", "error", err)
		h.removeUploaded(r.Context(), uploaded)
		writeError(w, http.StatusInternalServerError, "could not stage edit")
		return
	}
	h.removeUploaded(r.Context(), orphaned)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"pending_edit": edit,
		"message":      "edit staged; awaiting editor approval",
	})
}

// Approve publishes a pending post. On an already-published post it
// promotes a waiting revision snapshot if there is one, and is otherwise
// a no-op. Rejected and draft posts cannot be approved.
func (h *Posts) Approve(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())

	next, err := moderation.Apply(post.Status, moderation.ActionApprove)
	if err != nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("cannot approve a %s post", post.Status))
		return
	}

	if moderation.IsNoOp(post.Status, moderation.ActionApprove) {
		// Published already: approving applies a staged edit, if any.
		removed, err := h.editStore.Promote(post.ID)
		if err != nil {
			slog.Error("pending edit promote failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not apply staged edit")
			return
		}
		h.removeUploaded(r.Context(), removed)
	} else {
		if _, err := h.postStore.SetStatus(post.ID, next, &sess.UserID); err != nil {
			slog.Error("post approve failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not approve post")
			return
		}
	}

	updated, err := h.postStore.FindByID(post.ID)
	if err != nil || updated == nil {
		slog.Error("post reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": updated})
}

// Reject declines a pending post or takes a published one down. A
// published post holding a staged edit gets the edit discarded instead;
// the live post stays up.
func (h *Posts) Reject(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}

	next, err := moderation.Apply(post.Status, moderation.ActionReject)
	if err != nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("cannot reject a %s post", post.Status))
		return
	}

	if post.IsPublished() {
		edit, err := h.editStore.FindByPostID(post.ID)
		if err != nil {
			slog.Error("pending edit lookup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not reject")
			return
		}
		if edit != nil {
			orphaned, err := h.editStore.Delete(post.ID)
			if err != nil {
				slog.Error("pending edit discard failed", "error", err)
				writeError(w, http.StatusInternalServerError, "could not discard staged edit")
				return
			}
			h.removeUploaded(r.Context(), orphaned)
			writeJSON(w, http.StatusOK, map[string]any{
				"post":    post,
				"message": "staged edit rejected; post remains published",
			})
			return
		}
	}

	if !moderation.IsNoOp(post.Status, moderation.ActionReject) {
		if _, err := h.postStore.SetStatus(post.ID, next, nil); err != nil {
			slog.Error("post reject failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not reject post")
			return
		}
	}

	updated, err := h.postStore.FindByID(post.ID)
	if err != nil || updated == nil {
		slog.Error("post reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": updated})
}

// Resubmit sends a rejected post back into the moderation queue without
// requiring an edit.
func (h *Posts) Resubmit(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())
	if post.AuthorID != sess.UserID {
		writeError(w, http.StatusForbidden, "not your post")
		return
	}
	if post.Status != models.PostStatusRejected {
		writeError(w, http.StatusConflict, "only rejected posts can be resubmitted")
		return
	}

	if _, err := h.postStore.SetStatus(post.ID, models.PostStatusPendingApproval, nil); err != nil {
		slog.Error("post resubmit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not resubmit post")
		return
	}
	post.Status = models.PostStatusPendingApproval
	post.ApprovedBy = nil
	writeJSON(w, http.StatusOK, map[string]any{"post": post})
}

// Delete removes a post, its attachments in object storage, and (via
// cascades) its comments, likes, views and any staged edit.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())
	if post.AuthorID != sess.UserID {
		writeError(w, http.StatusForbidden, "not your post")
		return
	}

	// Snapshot uploads would be orphaned by the cascade; collect them first.
	orphaned, err := h.editStore.Delete(post.ID)
	if err != nil {
		slog.Error("pending edit cleanup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete post")
		return
	}

	images, err := h.postStore.Delete(post.ID)
	if err != nil {
		slog.Error("post delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete post")
		return
	}
	h.removeUploaded(r.Context(), append(images, orphaned...))

	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// View records a read of a post. Anonymous readers count too, and every
// call appends a fresh event row regardless of post status.
func (h *Posts) View(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	var userID *uuid.UUID
	if sess != nil && sess.TwoFADone {
		userID = &sess.UserID
	}
	var ip *string
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		ip = &host
	}

	if err := h.engagement.RecordView(post.ID, userID, ip); err != nil {
		slog.Error("view record failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not record view")
		return
	}
	n, err := h.engagement.CountViews(post.ID)
	if err != nil {
		slog.Error("view count failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not count views")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"views": n})
}

// Like toggles the signed-in user's like on a post they can see: any
// published post, or their own regardless of status.
func (h *Posts) Like(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())
	if !post.VisibleTo(&sess.UserID) {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	liked, err := h.engagement.ToggleLike(post.ID, sess.UserID)
	if err != nil {
		slog.Error("like toggle failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not toggle like")
		return
	}
	n, err := h.engagement.CountLikes(post.ID)
	if err != nil {
		slog.Error("like count failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not count likes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"liked": liked, "likes": n})
}

// ListPending returns the moderation queue for editors.
func (h *Posts) ListPending(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postStore.ListPending()
	if err != nil {
		slog.Error("moderation queue list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list pending posts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// ListPendingEdits returns staged revisions awaiting editor review.
func (h *Posts) ListPendingEdits(w http.ResponseWriter, r *http.Request) {
	edits, err := h.editStore.List()
	if err != nil {
		slog.Error("pending edit list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list pending edits")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pending_edits": edits})
}

// Review returns a post together with its staged edit, for the editor
// comparison view.
func (h *Posts) Review(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}
	edit, err := h.editStore.FindByPostID(post.ID)
	if err != nil {
		slog.Error("pending edit lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load review")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"post":         post,
		"pending_edit": edit,
	})
}

// fetchPost resolves the {id} URL parameter. A false return means the
// response is already written.
func (h *Posts) fetchPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return nil, false
	}
	post, err := h.postStore.FindByID(id)
	if err != nil {
		slog.Error("post lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load post")
		return nil, false
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return nil, false
	}
	return post, true
}

func (h *Posts) attachEngagement(resp map[string]any, postID uuid.UUID, viewer *uuid.UUID) {
	if n, err := h.engagement.CountLikes(postID); err == nil {
		resp["likes"] = n
	}
	if n, err := h.engagement.CountViews(postID); err == nil {
		resp["views"] = n
	}
	if n, err := h.commentSt.CountByPost(postID); err == nil {
		resp["comments"] = n
	}
	if viewer != nil {
		if liked, err := h.engagement.HasLiked(postID, *viewer); err == nil {
			resp["liked_by_me"] = liked
		}
	}
}

var errUploadsDisabled = errors.New("uploads disabled")
var errBadImage = errors.New("bad image")

// uploadImages pushes each file to object storage under a fresh key and
// returns the image rows to attach. On any failure the files already
// uploaded are removed again.
func (h *Posts) uploadImages(ctx context.Context, files []*multipart.FileHeader) ([]models.Image, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if h.files == nil {
		return nil, errUploadsDisabled
	}
	if len(files) > maxImages {
		return nil, fmt.Errorf("%w: too many images (max %d)", errBadImage, maxImages)
	}

	var uploaded []models.Image
	for _, fh := range files {
		if fh.Size > maxImageBytes {
			h.removeUploaded(ctx, uploaded)
			return nil, fmt.Errorf("%w: %s is too large", errBadImage, fh.Filename)
		}
		contentType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			h.removeUploaded(ctx, uploaded)
			return nil, fmt.Errorf("%w: %s is not an image", errBadImage, fh.Filename)
		}

		f, err := fh.Open()
		if err != nil {
			h.removeUploaded(ctx, uploaded)
			return nil, fmt.Errorf("opening upload: %w", err)
		}
		key := "posts/" + uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
		url, err := h.files.Upload(ctx, key, contentType, f, fh.Size)
		f.Close()
		if err != nil {
			h.removeUploaded(ctx, uploaded)
			return nil, fmt.Errorf("uploading image: %w", err)
		}
		uploaded = append(uploaded, models.Image{Filename: key, URL: url})
	}
	return uploaded, nil
}

func (h *Posts) writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errUploadsDisabled):
		writeError(w, http.StatusBadRequest, "image uploads are not available")
	case errors.Is(err, errBadImage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("image upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not store images")
	}
}

// removeUploaded best-effort deletes objects that no longer have a row
// referencing them. Failures are logged, not surfaced.
func (h *Posts) removeUploaded(ctx context.Context, images []models.Image) {
	if h.files == nil {
		return
	}
	for _, img := range images {
		if err := h.files.Delete(ctx, img.Filename); err != nil {
			slog.Error("object cleanup failed", "key", img.Filename, "error", err)
		}
	}
}

// keptImages maps existing_images form values (URLs) back onto the
// post's current image rows, preserving the requested order.
func (h *Posts) keptImages(post *models.Post, keepURLs []string) ([]models.Image, bool) {
	if len(keepURLs) == 0 {
		return nil, false
	}
	byURL := make(map[string]models.Image, len(post.Images))
	for _, img := range post.Images {
		byURL[img.URL] = img
	}
	var kept []models.Image
	for _, u := range keepURLs {
		img, ok := byURL[u]
		if !ok {
			return nil, true
		}
		kept = append(kept, img)
	}
	return kept, false
}
