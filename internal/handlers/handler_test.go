// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/ai"
	"inkwell/internal/database"
	"inkwell/internal/keys"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// mockAIProvider implements ai.Provider for handler tests.
type mockAIProvider struct {
	name     string
	response string
	err      error
}

func (m *mockAIProvider) Name() string { return m.name }
func (m *mockAIProvider) Generate(_ context.Context, _, _ string) (string, error) {
	return m.response, m.err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Valkey     *redis.Client
	Sessions   *session.Store
	Transport  *keys.Transport
	UserStore  *store.UserStore
	PostStore  *store.PostStore
	EditStore  *store.PendingEditStore
	Comments   *store.CommentStore
	Engagement *store.EngagementStore
	AIRegistry *ai.Registry

	Auth       *Auth
	Posts      *Posts
	CommentsH  *Comments
	Admin      *Admin
	Enrichment *Enrichment
}

// newTestEnv creates a complete test environment with all handler
// dependencies. Object storage is left unconfigured; image-less flows
// only.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	transport, err := keys.Load("")
	if err != nil {
		t.Fatalf("keys.Load: %v", err)
	}

	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	editStore := store.NewPendingEditStore(db)
	commentStore := store.NewCommentStore(db)
	engagementStore := store.NewEngagementStore(db)

	aiRegistry := ai.NewRegistry("test", map[string]ai.ProviderConfig{})
	aiRegistry.Register("test", &mockAIProvider{
		name:     "test",
		response: "mock AI response",
	})

	return &testEnv{
		DB:         db,
		Valkey:     vk,
		Sessions:   sessions,
		Transport:  transport,
		UserStore:  userStore,
		PostStore:  postStore,
		EditStore:  editStore,
		Comments:   commentStore,
		Engagement: engagementStore,
		AIRegistry: aiRegistry,

		Auth:       NewAuth(sessions, userStore, transport),
		Posts:      NewPosts(postStore, editStore, commentStore, engagementStore, nil),
		CommentsH:  NewComments(commentStore, postStore),
		Admin:      NewAdmin(userStore),
		Enrichment: NewEnrichment(aiRegistry, ai.NewImageSearch("http://localhost:1")),
	}
}

// seedAccount creates an approved user and returns it.
func (e *testEnv) seedAccount(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()

	u, err := e.UserStore.Create(email, "testpass123", "Test "+string(role), models.RoleUser)
	if err != nil {
		t.Fatalf("seeding account: %v", err)
	}
	t.Cleanup(func() { e.DB.Exec("DELETE FROM users WHERE email = $1", email) })

	u, err = e.UserStore.Approve(u.ID, role)
	if err != nil {
		t.Fatalf("approving account: %v", err)
	}
	return u
}

// reqWithSession injects session data into the request context the way
// middleware.LoadSession would.
func reqWithSession(r *http.Request, u *models.User) *http.Request {
	data := &session.Data{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		TwoFADone:   true,
	}
	ctx := context.WithValue(r.Context(), middleware.SessionKey, data)
	return r.WithContext(ctx)
}

// withURLParam fakes a chi URL parameter on the request context, for
// tests that call handlers directly instead of going through the router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func cleanupPost(t *testing.T, db *sql.DB, id uuid.UUID) {
	t.Helper()
	t.Cleanup(func() {
		db.Exec("DELETE FROM post_images WHERE post_id = $1", id)
		db.Exec("DELETE FROM posts WHERE id = $1", id)
	})
}
