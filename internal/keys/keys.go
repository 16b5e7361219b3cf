// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package keys manages the RSA keypair used for password transport.
// Clients fetch the public key, encrypt the password with RSA-OAEP
// (SHA-256, the WebCrypto default) before submitting login/register
// forms, and the server decrypts it here before the bcrypt check.
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
)

const keyBits = 2048

// Transport wraps the server-side RSA keypair.
type Transport struct {
	private *rsa.PrivateKey
}

// Load reads a PEM-encoded PKCS#8 or PKCS#1 private key from path. When
// path is empty a new ephemeral keypair is generated; sessions opened
// against the old key survive a restart, in-flight login forms do not.
func Load(path string) (*Transport, error) {
	if path == "" {
		key, err := rsa.GenerateKey(rand.Reader, keyBits)
		if err != nil {
			return nil, fmt.Errorf("keys generate: %w", err)
		}
		slog.Info("generated ephemeral RSA transport key", "bits", keyBits)
		return &Transport{private: key}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keys read %s: %w", path, err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("keys: no PEM block in %s", path)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return &Transport{private: key}, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("keys parse %s: %w", path, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("keys: %s is not an RSA private key", path)
	}
	return &Transport{private: key}, nil
}

// PublicPEM returns the public key as a PEM-encoded PKIX block, the
// format WebCrypto's importKey("spki", ...) expects.
func (t *Transport) PublicPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(&t.private.PublicKey)
	if err != nil {
		return "", fmt.Errorf("keys marshal public: %w", err)
	}
	out := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return string(out), nil
}

// Decrypt decodes a base64 RSA-OAEP ciphertext produced by the client
// and returns the plaintext password.
func (t *Transport) Decrypt(encoded string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("keys decode: %w", err)
	}

	plain, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, t.private, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("keys decrypt: %w", err)
	}
	return string(plain), nil
}

// Encrypt is the inverse of Decrypt. Used by tests and by tooling that
// exercises the login flow without a browser.
func (t *Transport) Encrypt(plain string) (string, error) {
	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, &t.private.PublicKey, []byte(plain), nil)
	if err != nil {
		return "", fmt.Errorf("keys encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
