package repository

import (
	"context"
	"errors"

	"github.com/docuvault/docuvault/internal/document"
)

var ErrNotFound = errors.New("document not found")

// Repository is the typed data-access contract for documents. Both
// implementations assign id and timestamps server-side on Create and return
// results newest-createdAt-first from FindAll and Search.
type Repository interface {
	Create(ctx context.Context, doc *document.Document) error
	FindAll(ctx context.Context) ([]*document.Document, error)
	FindByID(ctx context.Context, id string) (*document.Document, error)
	Update(ctx context.Context, id string, patch document.Patch) (*document.Document, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, typeFilter document.Type) ([]*document.Document, error)
}

// applyPatch mutates doc according to the update rules: title/content only
// for text documents, description for either type, type and file fields
// immutable.
func applyPatch(doc *document.Document, patch document.Patch) {
	if doc.Type == document.TypeText {
		if patch.Title != nil && *patch.Title != "" {
			doc.Title = *patch.Title
		}
		if patch.Content != nil && *patch.Content != "" {
			doc.Content = *patch.Content
		}
	}
	if patch.Description != nil {
		doc.Description = *patch.Description
	}
}
