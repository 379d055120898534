// Package domain holds the records served by the community site: access
// requests, forum threads, blog posts, calendar events, documents, incidents
// and directory users.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Default attribution used when neither the request body nor the caller names an author.
const (
	DefaultAdminAuthor     = "Admin"
	DefaultAnonymousAuthor = "Anonymous"
)

// NewID returns a server-generated, globally unique record identifier.
func NewID() string {
	return uuid.NewString()
}

// Millis converts t to the millisecond timestamps stored on every record.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// firstNonEmpty returns the first candidate that is non-nil and not blank.
func firstNonEmpty(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return c
		}
	}
	return nil
}

// Attribution picks the author for a new record: the explicit body value, then
// the authenticated caller, then fallback.
func Attribution(body *string, caller string, fallback string) string {
	if v := firstNonEmpty(body, &caller); v != nil {
		return *v
	}
	return fallback
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
