// Package router sets up all HTTP routes and middleware chains for the
// Inkwell API. It organizes routes into public, authenticated, editor
// and admin groups with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, auth *handlers.Auth, posts *handlers.Posts, comments *handlers.Comments, admin *handlers.Admin, enrich *handlers.Enrichment) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/rsa-public", auth.RSAPublicKey)
		r.Post("/register", auth.Register)
		r.Post("/login", auth.Login)
		r.Post("/logout", auth.Logout)

		// Completes a half-open session; needs a session but not full auth.
		r.Post("/2fa/verify", auth.TwoFAVerify)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", auth.Me)
			r.Post("/2fa/setup", auth.TwoFASetup)
			r.Post("/2fa/enable", auth.TwoFAEnable)
		})
	})

	r.Route("/posts", func(r chi.Router) {
		// Public reads. Published posts only; the handlers enforce it.
		r.Get("/", posts.ListPublished)
		r.Get("/published", posts.ListPublished)
		r.Post("/{id}/view", posts.View)
		r.Get("/{id}/comments", comments.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth, middleware.RequireEditor)
			r.Get("/pending", posts.ListPending)
			r.Get("/pending-edits", posts.ListPendingEdits)
			r.Get("/{id}/review", posts.Review)
			r.Post("/{id}/approve", posts.Approve)
			r.Post("/{id}/reject", posts.Reject)
			r.Put("/{id}/edit-by-editor", posts.Update)
		})

		r.Get("/{id}", posts.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/mine", posts.ListMine)
			r.Post("/", posts.Create)
			r.Put("/{id}", posts.Update)
			r.Delete("/{id}", posts.Delete)
			r.Put("/{id}/submit-for-approval", posts.SubmitForApproval)
			r.Post("/{id}/submit", posts.Resubmit)
			r.Post("/{id}/like", posts.Like)
			r.Post("/{id}/comments", comments.Create)
		})
	})

	// Account administration — admin only.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireAdmin)
		r.Get("/pending-users", admin.PendingUsers)
		r.Post("/approve/{id}", admin.ApproveUser)
		r.Post("/reject/{id}", admin.RejectUser)
	})

	// AI writing assistant — any signed-in author.
	r.Route("/ai", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/title/generate", enrich.GenerateTitle)
		r.Post("/summary", enrich.Summarize)
		r.Post("/chat/ask", enrich.Ask)
		r.Get("/blog-insights/tips", enrich.BlogTips)
		r.Get("/image-suggestions", enrich.ImageSuggestions)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
