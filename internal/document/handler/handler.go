package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/docuvault/docuvault/internal/database"
	"github.com/docuvault/docuvault/internal/document"
	"github.com/docuvault/docuvault/internal/document/service"
	"github.com/docuvault/docuvault/internal/upload"
	"github.com/docuvault/docuvault/pkg/logger"
	"github.com/docuvault/docuvault/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler exposes the document API over HTTP. All state it needs arrives
// through the constructor; nothing ambient.
type Handler struct {
	svc      service.Service
	uploader *upload.Adapter
	mongo    *mongo.Client // nil when running without MongoDB
}

func New(svc service.Service, uploader *upload.Adapter, mongoClient *mongo.Client) *Handler {
	return &Handler{svc: svc, uploader: uploader, mongo: mongoClient}
}

// Register mounts the API under /api and installs the JSON 404 fallback.
func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.POST("/text", h.SaveText)
	api.POST("/upload", h.Upload)
	api.GET("/documents", h.List)
	api.GET("/document/:id", h.Get)
	api.GET("/download/:id", h.Download)
	api.PUT("/document/:id", h.Update)
	api.DELETE("/document/:id", h.Delete)
	api.GET("/search", h.Search)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
}

func (h *Handler) Health(c *gin.Context) {
	mongoState := "Disconnected"
	if h.mongo != nil && database.Ping(c.Request.Context(), h.mongo) == nil {
		mongoState = "Connected"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "Server is running",
		"mongodb": mongoState,
	})
}

func (h *Handler) SaveText(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Content     string `json:"content"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
		return
	}

	doc, err := h.svc.CreateText(c.Request.Context(), req.Title, req.Content, req.Description)
	if err != nil {
		if errors.Is(err, document.ErrInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
			return
		}
		logger.Error("saving text failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save text"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Text saved successfully", "document": doc})
}

func (h *Handler) Upload(c *gin.Context) {
	// bound the whole request body; the adapter turns the overflow into
	// a TooLarge rejection before the multipart form finishes parsing
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, upload.MaxFileSize+(1<<20))

	res, err := h.uploader.FromRequest(c.Request)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrNoFile):
			metrics.UploadsRejected.WithLabelValues("no_file").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		case errors.Is(err, upload.ErrInvalidType):
			metrics.UploadsRejected.WithLabelValues("invalid_type").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Allowed types: PDF, DOC, DOCX, TXT, JPG, JPEG, PNG, GIF, XLS, XLSX"})
		case errors.Is(err, upload.ErrTooLarge):
			metrics.UploadsRejected.WithLabelValues("too_large").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "File too large. Maximum size is 10MB."})
		default:
			logger.Error("storing upload failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		}
		return
	}

	doc, err := h.svc.CreateFile(c.Request.Context(), res, c.PostForm("originalName"), c.PostForm("description"))
	if err != nil {
		logger.Error("uploading file failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "File uploaded successfully", "document": doc})
}

func (h *Handler) List(c *gin.Context) {
	docs, err := h.svc.List(c.Request.Context())
	if err != nil {
		logger.Error("fetching documents failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		logger.Error("fetching document failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) Download(c *gin.Context) {
	doc, rc, err := h.svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		case errors.Is(err, service.ErrNotAFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Document is not a file"})
		case errors.Is(err, service.ErrFileMissing):
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found on server"})
		default:
			logger.Error("downloading file failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to download file"})
		}
		return
	}
	defer rc.Close()

	// a client hanging up mid-stream surfaces as a copy error inside gin;
	// it lands on c.Errors and is not fatal to the process
	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, doc.OriginalName),
	}
	c.DataFromReader(http.StatusOK, doc.FileSize, doc.MimeType, rc, extraHeaders)
}

func (h *Handler) Update(c *gin.Context) {
	var req struct {
		Title       *string `json:"title"`
		Content     *string `json:"content"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	patch := document.Patch{Title: req.Title, Content: req.Content, Description: req.Description}
	doc, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		logger.Error("updating document failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document updated successfully", "document": doc})
}

func (h *Handler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		logger.Error("deleting document failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}

func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}

	docs, err := h.svc.Search(c.Request.Context(), q, document.Type(c.Query("type")))
	if err != nil {
		logger.Error("searching documents failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search documents"})
		return
	}
	c.JSON(http.StatusOK, docs)
}
