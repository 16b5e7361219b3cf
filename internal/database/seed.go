package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed ensures the root admin account exists. The root admin is a normal
// users row — pre-approved with the admin role — and authenticates through
// the same credential path as every other user. Safe to call on every
// startup; it does nothing if the account is already present.
func Seed(db *sql.DB, adminEmail, adminPassword string) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count); err != nil {
		return fmt.Errorf("seed check admin: %w", err)
	}

	if count > 0 {
		slog.Info("admin account already present, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, is_approved, requested_role, role)
		VALUES ($1, $2, $3, TRUE, 'user', 'admin')
	`, adminEmail, string(hash), "Admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with root admin account", "email", adminEmail)
	return nil
}
