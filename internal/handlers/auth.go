// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"inkwell/internal/keys"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
	transport *keys.Transport
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore, transport *keys.Transport) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
		transport: transport,
	}
}

type registerRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
	DisplayName   string `json:"display_name" validate:"required,max=100"`
	RequestedRole string `json:"requested_role" validate:"required"`
}

// Register creates an unapproved account. The password field carries an
// RSA-encrypted, base64 blob produced with the key from RSAPublicKey.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid registration fields")
		return
	}
	if !models.ValidRequestedRole(models.Role(req.RequestedRole)) {
		writeError(w, http.StatusBadRequest, "requested role must be user or editor")
		return
	}

	password, err := a.transport.Decrypt(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not decrypt password")
		return
	}
	if len(password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := a.userStore.Create(req.Email, password, req.DisplayName, models.Role(req.RequestedRole))
	if err != nil {
		if store.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		slog.Error("register failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    user,
		"message": "account created; awaiting admin approval",
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and opens a session. Accounts with TOTP
// enabled get a half-open session and must call TwoFAVerify before any
// authenticated endpoint will accept them.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	password, err := a.transport.Decrypt(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not decrypt password")
		return
	}

	user, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	// Unapproved and rejected accounts get the same answer as a bad
	// password so the response never confirms an account exists.
	if user == nil || !a.userStore.CheckPassword(user, password) || !user.CanLogin() {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   !user.TOTPEnabled,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":            user,
		"two_fa_required": user.TOTPEnabled,
	})
}

// Logout destroys the session. Safe to call without one.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// RSAPublicKey hands out the PEM key clients encrypt passwords with.
func (a *Auth) RSAPublicKey(w http.ResponseWriter, r *http.Request) {
	pem, err := a.transport.PublicPEM()
	if err != nil {
		slog.Error("public key encode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "key unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"public_key": pem})
}

// Me returns the signed-in account.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil {
		slog.Error("me lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// TwoFASetup generates a fresh TOTP secret for the signed-in account and
// returns it with a QR code. The secret is provisional until TwoFAEnable
// confirms a valid code.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Inkwell",
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not generate secret")
		return
	}
	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not store secret")
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr encode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not render QR code")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":  key.Secret(),
		"qr_png":  base64.StdEncoding.EncodeToString(png),
		"otp_url": key.URL(),
	})
}

type twoFARequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// TwoFAEnable confirms the provisional secret with a first valid code
// and turns TOTP on for the account.
func (a *Auth) TwoFAEnable(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req twoFARequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "a 6-digit code is required")
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil || user.TOTPSecret == nil {
		writeError(w, http.StatusBadRequest, "no pending 2FA setup")
		return
	}
	if !totp.Validate(req.Code, *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "invalid code")
		return
	}
	if err := a.userStore.EnableTOTP(sess.UserID); err != nil {
		slog.Error("enable totp failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not enable 2FA")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "2FA enabled"})
}

// TwoFAVerify completes a half-open session after login. It only needs a
// loaded session, not a fully authenticated one.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req twoFARequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "a 6-digit code is required")
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil || !user.TOTPEnabled || user.TOTPSecret == nil {
		writeError(w, http.StatusBadRequest, "2FA is not enabled for this account")
		return
	}
	if !totp.Validate(req.Code, *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "invalid code")
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not complete verification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "verified"})
}
