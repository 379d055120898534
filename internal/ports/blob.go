package ports

import (
	"context"
	"errors"
	"time"
)

// ErrBlobSignerDisabled is returned when no signing credentials are configured.
var ErrBlobSignerDisabled = errors.New("blob URL signing is not configured")

// BlobSigner issues short-lived URLs against the documents bucket.
type BlobSigner interface {
	// SignedPutURL authorizes a single upload of contentType to key.
	SignedPutURL(ctx context.Context, key, contentType string) (string, error)

	// SignedGetURL authorizes downloading key.
	SignedGetURL(ctx context.Context, key string) (string, error)

	// TTL is the lifetime of issued URLs.
	TTL() time.Duration
}
