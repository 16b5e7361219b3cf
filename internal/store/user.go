// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
)

// UserStore handles account persistence.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, password_hash, display_name, is_approved,
	requested_role, role, rejected_at, totp_secret, totp_enabled, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.IsApproved,
		&u.RequestedRole, &u.Role, &u.RejectedAt, &u.TOTPSecret, &u.TOTPEnabled,
		&u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create registers a new, unapproved account. The password arrives in
// plaintext (already decrypted from transport) and is hashed here.
// A duplicate email surfaces as a unique violation; see IsUniqueViolation.
func (s *UserStore) Create(email, password, displayName string, requestedRole models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, requested_role, role, is_approved)
		VALUES ($1, $2, $3, $4, 'user', FALSE)
		RETURNING `+userColumns,
		email, string(hash), displayName, requestedRole)

	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("finding user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("finding user by id: %w", err)
	}
	return u, nil
}

// ListPending returns accounts awaiting an admin decision, oldest first.
// Accounts that were already rejected are excluded.
func (s *UserStore) ListPending() ([]models.User, error) {
	rows, err := s.db.Query(`
		SELECT `+userColumns+`
		FROM users
		WHERE is_approved = FALSE AND rejected_at IS NULL
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing pending users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pending user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Approve marks the account as approved with the given role. Returns the
// updated user, or nil if the account no longer exists.
func (s *UserStore) Approve(id uuid.UUID, role models.Role) (*models.User, error) {
	row := s.db.QueryRow(`
		UPDATE users
		SET is_approved = TRUE, role = $2, rejected_at = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, role)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("approving user: %w", err)
	}
	return u, nil
}

// Reject marks a pending account as rejected. The row is kept so the
// email stays on record; CanLogin stays false. Returns nil if the
// account no longer exists.
func (s *UserStore) Reject(id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRow(`
		UPDATE users
		SET rejected_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("rejecting user: %w", err)
	}
	return u, nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (s *UserStore) CheckPassword(u *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetTOTPSecret stores a provisional TOTP secret. The secret only counts
// once EnableTOTP confirms the user can produce a valid code.
func (s *UserStore) SetTOTPSecret(id uuid.UUID, secret string) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_secret = $2, totp_enabled = FALSE, updated_at = NOW()
		WHERE id = $1`, id, secret)
	if err != nil {
		return fmt.Errorf("setting totp secret: %w", err)
	}
	return nil
}

func (s *UserStore) EnableTOTP(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_enabled = TRUE, updated_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("enabling totp: %w", err)
	}
	return nil
}
