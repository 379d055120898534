package usecase

import (
	"github.com/delphinium/delphinium/pkg/apperror"
)

// Client errors returned by the use cases.
var (
	ErrIncidentIDRequired  = apperror.NewBadRequest("Incident ID required")
	ErrIncidentNotFound    = apperror.NewNotFound("Incident not found")
	ErrIncidentConflict    = apperror.NewConflict("Incident was modified concurrently")
	ErrThreadIDRequired    = apperror.NewBadRequest("Thread ID required")
	ErrThreadNotFound      = apperror.NewNotFound("Thread not found")
	ErrThreadConflict      = apperror.NewConflict("Thread was modified concurrently")
	ErrDocumentIDRequired  = apperror.NewBadRequest("Document ID required")
	ErrDocumentNotFound    = apperror.NewNotFound("Document not found")
	ErrDocumentHasNoFile   = apperror.NewNotFound("Document has no stored file")
	ErrFileNameRequired    = apperror.NewBadRequest("File name required")
	ErrUserNotFound        = apperror.NewNotFound("User not found")
	ErrInvalidCredentials  = apperror.NewUnauthorized("Invalid credentials")
	ErrCredentialsRequired = apperror.NewBadRequest("userid and password are required")
)
