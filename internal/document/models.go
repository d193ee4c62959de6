package document

import (
	"errors"
	"fmt"
	"time"
)

// Type discriminates the two document variants.
type Type string

const (
	TypeText Type = "text"
	TypeFile Type = "file"
)

// ErrInvalid is returned when a document violates the per-type required
// field rules.
var ErrInvalid = errors.New("invalid document")

// Document is the persisted record for either a text note or an uploaded
// file's metadata. Which field group is populated is determined by Type.
// FileName and FilePath are server-internal: they carry the generated
// storage name and location and are never serialized to clients.
type Document struct {
	ID           string    `json:"id" bson:"id"`
	Type         Type      `json:"type" bson:"type"`
	Title        string    `json:"title,omitempty" bson:"title,omitempty"`
	Content      string    `json:"content,omitempty" bson:"content,omitempty"`
	OriginalName string    `json:"originalName,omitempty" bson:"originalName,omitempty"`
	FileName     string    `json:"-" bson:"fileName,omitempty"`
	FilePath     string    `json:"-" bson:"filePath,omitempty"`
	MimeType     string    `json:"mimeType,omitempty" bson:"mimeType,omitempty"`
	FileSize     int64     `json:"fileSize,omitempty" bson:"fileSize,omitempty"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewText builds a text document. Title and content are required.
func NewText(title, content, description string) (*Document, error) {
	d := &Document{
		Type:        TypeText,
		Title:       title,
		Content:     content,
		Description: description,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewFile builds a file document from stored-file metadata.
func NewFile(originalName, fileName, filePath, mimeType string, fileSize int64, description string) (*Document, error) {
	d := &Document{
		Type:         TypeFile,
		OriginalName: originalName,
		FileName:     fileName,
		FilePath:     filePath,
		MimeType:     mimeType,
		FileSize:     fileSize,
		Description:  description,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the variant invariant exhaustively: exactly the field
// group selected by Type is populated.
func (d *Document) Validate() error {
	switch d.Type {
	case TypeText:
		if d.Title == "" || d.Content == "" {
			return fmt.Errorf("%w: title and content are required", ErrInvalid)
		}
		if d.OriginalName != "" || d.FileName != "" || d.FilePath != "" {
			return fmt.Errorf("%w: text document carries file fields", ErrInvalid)
		}
	case TypeFile:
		if d.OriginalName == "" || d.FileName == "" || d.FilePath == "" {
			return fmt.Errorf("%w: file metadata is required", ErrInvalid)
		}
		if d.Title != "" || d.Content != "" {
			return fmt.Errorf("%w: file document carries text fields", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, d.Type)
	}
	return nil
}

// Patch carries the mutable fields of an update request. Nil means
// "leave unchanged". Title and content only apply to text documents.
type Patch struct {
	Title       *string
	Content     *string
	Description *string
}
