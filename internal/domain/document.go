package domain

import (
	"fmt"
	"path"
)

// Document is the metadata of a file stored in the documents bucket.
// BlobKey locates the file; it is named s3Key on the wire for client compatibility.
type Document struct {
	DocumentID  string  `json:"documentId"`
	FileName    *string `json:"fileName"`
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	BlobKey     *string `json:"s3Key"`
	UploadedBy  string  `json:"uploadedBy"`
	UploadedAt  int64   `json:"uploadedAt"`
}

// DocumentInput is the metadata posted once the upload has completed.
type DocumentInput struct {
	DocumentID  *string `json:"documentId"`
	FileName    *string `json:"fileName"`
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	BlobKey     *string `json:"s3Key"`
	UploadedBy  *string `json:"uploadedBy"`
}

// NewDocument builds document metadata for an id obtained from an upload URL.
func NewDocument(id string, in DocumentInput, caller string, uploadedAt int64) *Document {
	return &Document{
		DocumentID:  id,
		FileName:    in.FileName,
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		BlobKey:     in.BlobKey,
		UploadedBy:  Attribution(in.UploadedBy, caller, DefaultAdminAuthor),
		UploadedAt:  uploadedAt,
	}
}

// DocumentBlobKey returns the blob locator for a document file.
// Only the base name of fileName is kept so callers cannot escape the document prefix.
func DocumentBlobKey(documentID, fileName string) string {
	return fmt.Sprintf("documents/%s/%s", documentID, path.Base(fileName))
}
