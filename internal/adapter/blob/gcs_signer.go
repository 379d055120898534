// Package blob issues signed URLs against the documents bucket.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/storage"

	"github.com/delphinium/delphinium/internal/ports"
)

// DefaultURLTTL is the lifetime of issued URLs when none is configured.
const DefaultURLTTL = time.Hour

// serviceAccountKey is the subset of a service account JSON key used for signing.
type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// Credentials identify the signer of V4 URLs.
type Credentials struct {
	Email      string
	PrivateKey []byte
}

// LoadCredentials reads a service account JSON key, or a PEM private key paired with email.
func LoadCredentials(path, email string) (*Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing credentials: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var key serviceAccountKey
		if err := json.Unmarshal(trimmed, &key); err != nil {
			return nil, fmt.Errorf("failed to parse service account key: %w", err)
		}
		if email == "" {
			email = key.ClientEmail
		}
		raw = []byte(key.PrivateKey)
	}

	if email == "" {
		return nil, errors.New("signer email is required")
	}
	if !bytes.Contains(raw, []byte("PRIVATE KEY")) {
		return nil, errors.New("signing credentials contain no PEM private key")
	}
	return &Credentials{Email: email, PrivateKey: raw}, nil
}

// GCSSigner issues V4 signed URLs for objects of one bucket.
type GCSSigner struct {
	bucket string
	creds  *Credentials
	ttl    time.Duration
	now    func() time.Time
}

// NewGCSSigner creates a signer. ttl <= 0 selects DefaultURLTTL.
func NewGCSSigner(bucket string, creds *Credentials, ttl time.Duration) *GCSSigner {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	return &GCSSigner{bucket: bucket, creds: creds, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued URLs.
func (s *GCSSigner) TTL() time.Duration {
	return s.ttl
}

// SignedPutURL authorizes one upload of contentType to key.
func (s *GCSSigner) SignedPutURL(ctx context.Context, key, contentType string) (string, error) {
	return s.sign(key, http.MethodPut, contentType)
}

// SignedGetURL authorizes downloading key.
func (s *GCSSigner) SignedGetURL(ctx context.Context, key string) (string, error) {
	return s.sign(key, http.MethodGet, "")
}

func (s *GCSSigner) sign(key, method, contentType string) (string, error) {
	url, err := storage.SignedURL(s.bucket, key, &storage.SignedURLOptions{
		GoogleAccessID: s.creds.Email,
		PrivateKey:     s.creds.PrivateKey,
		Method:         method,
		ContentType:    contentType,
		Expires:        s.now().Add(s.ttl),
		Scheme:         storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign %s URL for %s: %w", method, key, err)
	}
	return url, nil
}

// DisabledSigner is used when no signing credentials are configured.
type DisabledSigner struct{}

func (DisabledSigner) SignedPutURL(ctx context.Context, key, contentType string) (string, error) {
	return "", ports.ErrBlobSignerDisabled
}

func (DisabledSigner) SignedGetURL(ctx context.Context, key string) (string, error) {
	return "", ports.ErrBlobSignerDisabled
}

func (DisabledSigner) TTL() time.Duration {
	return DefaultURLTTL
}
