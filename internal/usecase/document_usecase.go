package usecase

import (
	"context"
	"fmt"

	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/ports"
)

// UploadURLRequest names the file a client is about to upload.
type UploadURLRequest struct {
	FileName *string `json:"fileName"`
	FileType *string `json:"fileType"`
}

// UploadURL is a one-time upload authorization. Nothing is stored until the metadata is posted.
type UploadURL struct {
	UploadURL  string `json:"uploadUrl"`
	DocumentID string `json:"documentId"`
	BlobKey    string `json:"s3Key"`
}

// DocumentUseCase keeps document metadata and issues blob URLs for the files.
type DocumentUseCase struct {
	documents ports.Repository[domain.Document]
	signer    ports.BlobSigner
	opts      options
}

func NewDocumentUseCase(documents ports.Repository[domain.Document], signer ports.BlobSigner, opts ...Option) *DocumentUseCase {
	return &DocumentUseCase{documents: documents, signer: signer, opts: newOptions(opts)}
}

func (uc *DocumentUseCase) List(ctx context.Context) ([]*domain.Document, error) {
	docs, err := uc.documents.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sortByDesc(docs, func(d *domain.Document) int64 { return d.UploadedAt })
	return docs, nil
}

// Create stores metadata under the id obtained from CreateUploadURL.
func (uc *DocumentUseCase) Create(ctx context.Context, in domain.DocumentInput, caller string) (*domain.Document, error) {
	if in.DocumentID == nil || *in.DocumentID == "" {
		return nil, ErrDocumentIDRequired
	}

	doc := domain.NewDocument(*in.DocumentID, in, caller, domain.Millis(uc.opts.now()))
	if err := uc.documents.Put(ctx, doc.DocumentID, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return doc, nil
}

// CreateUploadURL reserves a document id and authorizes uploading the file under it.
func (uc *DocumentUseCase) CreateUploadURL(ctx context.Context, req UploadURLRequest) (*UploadURL, error) {
	if req.FileName == nil || *req.FileName == "" {
		return nil, ErrFileNameRequired
	}

	id := domain.NewID()
	key := domain.DocumentBlobKey(id, *req.FileName)
	url, err := uc.signer.SignedPutURL(ctx, key, deref(req.FileType))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload URL: %w", err)
	}
	return &UploadURL{UploadURL: url, DocumentID: id, BlobKey: key}, nil
}

// DownloadURL authorizes downloading the file of a stored document.
func (uc *DocumentUseCase) DownloadURL(ctx context.Context, documentID string) (string, error) {
	if documentID == "" {
		return "", ErrDocumentIDRequired
	}

	doc, err := uc.documents.Get(ctx, documentID)
	if err != nil {
		if isNotFound(err) {
			return "", ErrDocumentNotFound
		}
		return "", fmt.Errorf("failed to get document: %w", err)
	}
	if doc.BlobKey == nil || *doc.BlobKey == "" {
		return "", ErrDocumentHasNoFile
	}

	url, err := uc.signer.SignedGetURL(ctx, *doc.BlobKey)
	if err != nil {
		return "", fmt.Errorf("failed to create download URL: %w", err)
	}
	return url, nil
}
