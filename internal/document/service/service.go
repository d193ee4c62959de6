package service

import (
	"context"
	"errors"
	"io"

	"github.com/docuvault/docuvault/internal/document"
	"github.com/docuvault/docuvault/internal/document/repository"
	"github.com/docuvault/docuvault/internal/storage"
	"github.com/docuvault/docuvault/internal/upload"
	"github.com/docuvault/docuvault/pkg/logger"
	"github.com/docuvault/docuvault/pkg/metrics"
	"go.uber.org/zap"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrFileMissing = errors.New("file not found on server")
	ErrNotAFile    = errors.New("document is not a file")
)

// Service is the document business layer: it composes the repository with
// the file store and owns the cross-resource consistency rules (upload
// compensation, delete ordering, download resolution).
type Service interface {
	CreateText(ctx context.Context, title, content, description string) (*document.Document, error)
	CreateFile(ctx context.Context, up *upload.Result, originalName, description string) (*document.Document, error)
	List(ctx context.Context) ([]*document.Document, error)
	Get(ctx context.Context, id string) (*document.Document, error)
	Update(ctx context.Context, id string, patch document.Patch) (*document.Document, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, typeFilter document.Type) ([]*document.Document, error)
	Download(ctx context.Context, id string) (*document.Document, io.ReadCloser, error)
}

type documentService struct {
	repo  repository.Repository
	store storage.Store
}

func New(repo repository.Repository, store storage.Store) Service {
	return &documentService{repo: repo, store: store}
}

func (s *documentService) CreateText(ctx context.Context, title, content, description string) (*document.Document, error) {
	doc, err := document.NewText(title, content, description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	metrics.DocumentsCreated.WithLabelValues(string(document.TypeText)).Inc()
	return doc, nil
}

// CreateFile records metadata for an already-stored upload. The bytes were
// written before the metadata, so a failed insert triggers a compensating
// store delete; if that rollback itself fails we only log — the caller
// already gets the original error.
func (s *documentService) CreateFile(ctx context.Context, up *upload.Result, originalName, description string) (*document.Document, error) {
	if originalName == "" {
		originalName = up.OriginalName
	}
	doc, err := document.NewFile(originalName, up.StoredName, up.StoredPath, up.MimeType, up.Size, description)
	if err == nil {
		err = s.repo.Create(ctx, doc)
	}
	if err != nil {
		if derr := s.store.Delete(ctx, up.StoredPath); derr != nil {
			logger.Warn("failed to clean up stored file after metadata save failure",
				zap.String("path", up.StoredPath), zap.Error(derr))
		}
		return nil, err
	}
	metrics.DocumentsCreated.WithLabelValues(string(document.TypeFile)).Inc()
	return doc, nil
}

func (s *documentService) List(ctx context.Context) ([]*document.Document, error) {
	return s.repo.FindAll(ctx)
}

func (s *documentService) Get(ctx context.Context, id string) (*document.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, id string, patch document.Patch) (*document.Document, error) {
	doc, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return doc, nil
}

// Delete removes the backing file (for file documents) before the database
// row. A file already gone is tolerated; other store failures are logged
// and the row is deleted anyway — the row, not the bytes, is the source of
// truth for existence.
func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if doc.Type == document.TypeFile && doc.FilePath != "" {
		if derr := s.store.Delete(ctx, doc.FilePath); derr != nil {
			logger.Warn("failed to delete backing file",
				zap.String("id", id), zap.String("path", doc.FilePath), zap.Error(derr))
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	metrics.DocumentsDeleted.Inc()
	return nil
}

func (s *documentService) Search(ctx context.Context, query string, typeFilter document.Type) ([]*document.Document, error) {
	return s.repo.Search(ctx, query, typeFilter)
}

// Download resolves the document, rejects non-file types, and opens the
// backing bytes. A row without its file is a consistency violation the
// system does not self-heal; it surfaces here as ErrFileMissing, distinct
// from the document itself being absent.
func (s *documentService) Download(ctx context.Context, id string) (*document.Document, io.ReadCloser, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, mapRepoErr(err)
	}
	if doc.Type != document.TypeFile {
		return nil, nil, ErrNotAFile
	}
	rc, err := s.store.Get(ctx, doc.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrFileMissing
		}
		return nil, nil, err
	}
	metrics.DownloadsServed.Inc()
	return doc, rc, nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
