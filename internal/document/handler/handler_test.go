package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docuvault/docuvault/internal/document/repository"
	"github.com/docuvault/docuvault/internal/document/service"
	"github.com/docuvault/docuvault/internal/storage"
	"github.com/docuvault/docuvault/internal/upload"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*gin.Engine, *storage.LocalStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	h := New(service.New(repo, store), upload.New(store), nil)
	g := gin.New()
	h.Register(g)
	return g, store
}

func doJSON(t *testing.T, g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func uploadFile(t *testing.T, g *gin.Engine, filename, contentType string, payload []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="document"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	g, _ := newTestServer(t)
	w := doJSON(t, g, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	require.Equal(t, "OK", out["status"])
	require.Equal(t, "Server is running", out["message"])
	require.Equal(t, "Disconnected", out["mongodb"])
}

func TestSaveTextAndList(t *testing.T) {
	g, _ := newTestServer(t)

	w := doJSON(t, g, http.MethodPost, "/api/text", `{"title":"Notes","content":"Hello world"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	out := decode(t, w)
	require.Equal(t, "Text saved successfully", out["message"])

	w = doJSON(t, g, http.MethodGet, "/api/documents", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "Notes", list[0]["title"])
	require.Equal(t, "text", list[0]["type"])
	require.NotContains(t, list[0], "filePath")
	require.NotContains(t, list[0], "fileName")
}

func TestSaveTextRequiresFields(t *testing.T) {
	g, _ := newTestServer(t)

	for _, body := range []string{`{}`, `{"title":"x"}`, `{"content":"y"}`, `not json`} {
		w := doJSON(t, g, http.MethodPost, "/api/text", body)
		require.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
		require.Equal(t, "Title and content are required", decode(t, w)["error"])
	}
}

func TestUploadAndDownloadRoundtrip(t *testing.T) {
	g, _ := newTestServer(t)

	payload := []byte("%PDF-1.4 the exact bytes")
	w := uploadFile(t, g, "report.pdf", "application/pdf", payload, map[string]string{"description": "quarterly"})
	require.Equal(t, http.StatusCreated, w.Code)

	out := decode(t, w)
	require.Equal(t, "File uploaded successfully", out["message"])
	doc := out["document"].(map[string]interface{})
	require.Equal(t, "file", doc["type"])
	require.Equal(t, "report.pdf", doc["originalName"])
	require.NotContains(t, doc, "filePath")
	id := doc["id"].(string)

	dl := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/download/"+id, nil)
	g.ServeHTTP(dl, req)
	require.Equal(t, http.StatusOK, dl.Code)
	require.Equal(t, payload, dl.Body.Bytes())
	require.Equal(t, "application/pdf", dl.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="report.pdf"`, dl.Header().Get("Content-Disposition"))
}

func TestUploadHonorsProvidedOriginalName(t *testing.T) {
	g, _ := newTestServer(t)

	w := uploadFile(t, g, "tmp-upload.txt", "text/plain", []byte("x"), map[string]string{"originalName": "notes.txt"})
	require.Equal(t, http.StatusCreated, w.Code)
	doc := decode(t, w)["document"].(map[string]interface{})
	require.Equal(t, "notes.txt", doc["originalName"])
}

func TestUploadRejectsInvalidType(t *testing.T) {
	g, _ := newTestServer(t)

	w := uploadFile(t, g, "script.sh", "application/x-sh", []byte("#!/bin/sh"), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decode(t, w)["error"], "Invalid file type")

	// nothing was created
	lw := doJSON(t, g, http.MethodGet, "/api/documents", "")
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &list))
	require.Empty(t, list)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	g, _ := newTestServer(t)

	big := bytes.Repeat([]byte("a"), upload.MaxFileSize+1)
	w := uploadFile(t, g, "big.txt", "text/plain", big, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "File too large. Maximum size is 10MB.", decode(t, w)["error"])

	lw := doJSON(t, g, http.MethodGet, "/api/documents", "")
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &list))
	require.Empty(t, list)
}

func TestUploadRequiresFile(t *testing.T) {
	g, _ := newTestServer(t)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("description", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "No file uploaded", decode(t, w)["error"])
}

func TestGetDocument(t *testing.T) {
	g, _ := newTestServer(t)

	w := doJSON(t, g, http.MethodPost, "/api/text", `{"title":"a","content":"b"}`)
	id := decode(t, w)["document"].(map[string]interface{})["id"].(string)

	w = doJSON(t, g, http.MethodGet, "/api/document/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "a", decode(t, w)["title"])

	w = doJSON(t, g, http.MethodGet, "/api/document/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Document not found", decode(t, w)["error"])
}

func TestDownloadErrors(t *testing.T) {
	g, _ := newTestServer(t)

	// unknown id
	w := doJSON(t, g, http.MethodGet, "/api/download/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Document not found", decode(t, w)["error"])

	// text documents are not downloadable
	w = doJSON(t, g, http.MethodPost, "/api/text", `{"title":"a","content":"b"}`)
	id := decode(t, w)["document"].(map[string]interface{})["id"].(string)
	w = doJSON(t, g, http.MethodGet, "/api/download/"+id, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Document is not a file", decode(t, w)["error"])
}

func TestDownloadMissingBackingFile(t *testing.T) {
	g, store := newTestServer(t)

	w := uploadFile(t, g, "vanish.txt", "text/plain", []byte("x"), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["document"].(map[string]interface{})["id"].(string)

	// remove the backing file out-of-band: detected lazily on download
	entries := listStoreFiles(t, store)
	require.Len(t, entries, 1)
	require.NoError(t, store.Delete(context.Background(), entries[0]))

	w = doJSON(t, g, http.MethodGet, "/api/download/"+id, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "File not found on server", decode(t, w)["error"])
}

func TestUpdateDocument(t *testing.T) {
	g, _ := newTestServer(t)

	w := doJSON(t, g, http.MethodPost, "/api/text", `{"title":"Notes","content":"original"}`)
	doc := decode(t, w)["document"].(map[string]interface{})
	id := doc["id"].(string)
	createdAt, err := time.Parse(time.RFC3339Nano, doc["createdAt"].(string))
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	w = doJSON(t, g, http.MethodPut, "/api/document/"+id, `{"content":"Updated"}`)
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	require.Equal(t, "Document updated successfully", out["message"])
	updated := out["document"].(map[string]interface{})
	require.Equal(t, "Updated", updated["content"])
	require.Equal(t, "Notes", updated["title"])

	updatedAt, err := time.Parse(time.RFC3339Nano, updated["updatedAt"].(string))
	require.NoError(t, err)
	require.True(t, updatedAt.After(createdAt))

	w = doJSON(t, g, http.MethodPut, "/api/document/nope", `{"content":"x"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Document not found", decode(t, w)["error"])
}

func TestDeleteDocument(t *testing.T) {
	g, _ := newTestServer(t)

	w := doJSON(t, g, http.MethodPost, "/api/text", `{"title":"a","content":"b"}`)
	id := decode(t, w)["document"].(map[string]interface{})["id"].(string)

	w = doJSON(t, g, http.MethodDelete, "/api/document/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Document deleted successfully", decode(t, w)["message"])

	w = doJSON(t, g, http.MethodGet, "/api/document/"+id, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, g, http.MethodDelete, "/api/document/"+id, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Document not found", decode(t, w)["error"])
}

func TestSearch(t *testing.T) {
	g, _ := newTestServer(t)

	doJSON(t, g, http.MethodPost, "/api/text", `{"title":"Meeting notes","content":"found a NEEDLE here"}`)
	doJSON(t, g, http.MethodPost, "/api/text", `{"title":"Groceries","content":"milk and eggs"}`)
	uploadFile(t, g, "needle-report.pdf", "application/pdf", []byte("%PDF"), nil)

	w := doJSON(t, g, http.MethodGet, "/api/search?q=needle", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	for _, item := range list {
		require.NotContains(t, item, "filePath")
	}

	w = doJSON(t, g, http.MethodGet, "/api/search?q=needle&type=file", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "needle-report.pdf", list[0]["originalName"])

	w = doJSON(t, g, http.MethodGet, "/api/search", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Search query is required", decode(t, w)["error"])
}

func TestUnknownRoute(t *testing.T) {
	g, _ := newTestServer(t)
	w := doJSON(t, g, http.MethodGet, "/api/bogus", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Route not found", decode(t, w)["error"])
}

func listStoreFiles(t *testing.T, store *storage.LocalStore) []string {
	t.Helper()
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, filepath.Join(store.Dir(), e.Name()))
	}
	return paths
}
