// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanPosts removes test posts by id. Cascades take comments, likes,
// views and pending edits with them. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, ids ...uuid.UUID) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM post_images WHERE post_id = $1", id)
		db.Exec("DELETE FROM posts WHERE id = $1", id)
	}
}

// seedUser creates an approved account for tests that need an author.
func seedUser(t *testing.T, db *sql.DB, email string, role models.Role) *models.User {
	t.Helper()

	s := NewUserStore(db)
	u, err := s.Create(email, "testpass123", "Test "+string(role), models.RoleUser)
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	t.Cleanup(func() { cleanUsers(t, db, email) })

	u, err = s.Approve(u.ID, role)
	if err != nil {
		t.Fatalf("approving seeded user: %v", err)
	}
	return u
}

// seedPost creates a pending post with one image row for the author.
func seedPost(t *testing.T, db *sql.DB, authorID uuid.UUID) *models.Post {
	t.Helper()

	s := NewPostStore(db)
	p, err := s.Create(&models.Post{
		Title:    "Seed Post",
		Content:  "Seed content.",
		AuthorID: authorID,
	}, []models.Image{{Filename: "posts/seed.jpg", URL: "https://cdn.test/posts/seed.jpg"}})
	if err != nil {
		t.Fatalf("seeding post: %v", err)
	}
	t.Cleanup(func() { cleanPosts(t, db, p.ID) })
	return p
}
