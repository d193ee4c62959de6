package upload

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/docuvault/docuvault/internal/storage"
	"github.com/gabriel-vasile/mimetype"
)

const (
	// FieldName is the fixed multipart field carrying the file.
	FieldName = "document"
	// MaxFileSize is the hard upload ceiling (10 MiB).
	MaxFileSize = 10 << 20
)

var (
	ErrNoFile      = errors.New("no file uploaded")
	ErrInvalidType = errors.New("invalid file type")
	ErrTooLarge    = errors.New("file too large")
)

// allowedMimeTypes is the upload allow-list: PDF, Word, plain text, the
// common image formats and both spreadsheet generations.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// Result describes a validated, stored upload.
type Result struct {
	OriginalName string
	StoredName   string
	StoredPath   string
	MimeType     string
	Size         int64
}

// Adapter validates a multipart upload and persists it into a Store.
type Adapter struct {
	store storage.Store
}

func New(store storage.Store) *Adapter {
	return &Adapter{store: store}
}

// FromRequest extracts the single file from the request's `document` field,
// checks the MIME allow-list and the size ceiling, and stores the bytes.
// On any failure no file is left behind in the store.
func (a *Adapter) FromRequest(r *http.Request) (*Result, error) {
	// reject obviously oversized requests before parsing the form at all;
	// the 1 MiB slack covers multipart framing and the extra form fields
	if r.ContentLength > MaxFileSize+(1<<20) {
		return nil, ErrTooLarge
	}

	file, header, err := r.FormFile(FieldName)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrTooLarge
		}
		return nil, ErrNoFile
	}
	defer file.Close()

	mime := normalizeMime(header.Header.Get("Content-Type"))
	if mime == "" || mime == "application/octet-stream" {
		// some clients send no usable type; sniff the content instead
		mt, err := mimetype.DetectReader(file)
		if err != nil {
			return nil, ErrInvalidType
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		mime = normalizeMime(mt.String())
	}
	if !allowedMimeTypes[mime] {
		return nil, ErrInvalidType
	}

	// header size is known after parsing, so oversized uploads are
	// rejected before any byte reaches the store
	if header.Size > MaxFileSize {
		return nil, ErrTooLarge
	}

	stored, err := a.store.Put(r.Context(), io.LimitReader(file, MaxFileSize+1), header.Filename, mime)
	if err != nil {
		return nil, err
	}
	if stored.Size > MaxFileSize {
		// header lied; remove the partial object
		_ = a.store.Delete(r.Context(), stored.Path)
		return nil, ErrTooLarge
	}

	return &Result{
		OriginalName: header.Filename,
		StoredName:   stored.Name,
		StoredPath:   stored.Path,
		MimeType:     mime,
		Size:         stored.Size,
	}, nil
}

// normalizeMime drops parameters such as "; charset=utf-8".
func normalizeMime(m string) string {
	if i := strings.Index(m, ";"); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}
