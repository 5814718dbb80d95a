package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"lexline/internal/middleware"
	"lexline/internal/models"
	"lexline/internal/repository"
	"lexline/internal/services"
)

const maxDocumentSize = 16 * 1024 * 1024 // 16MB

type DocumentHandler struct {
	documentRepo *repository.DocumentRepo
	jobRepo      *repository.JobRepo
	redis        *redis.Client
	storagePath  string
}

func NewDocumentHandler(documentRepo *repository.DocumentRepo, jobRepo *repository.JobRepo, redisClient *redis.Client, storagePath string) *DocumentHandler {
	return &DocumentHandler{
		documentRepo: documentRepo,
		jobRepo:      jobRepo,
		redis:        redisClient,
		storagePath:  storagePath,
	}
}

// Upload accepts a legal document (skeleton argument, claim form, letter)
// and queues it for asynchronous AI review. Progress and the final result
// are delivered over the session's websocket channel.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxDocumentSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds 16MB limit", r))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !services.SupportedExtensions[ext] {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_FORMAT", "Supported formats: .txt, .pdf, .docx", r))
		return
	}

	sessionID := middleware.GetSessionID(r.Context())
	fileID := uuid.New()

	dir := filepath.Join(h.storagePath, "sessions", sessionID.String(), "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}

	path := filepath.Join(dir, fileID.String()+ext)
	dst, err := os.Create(path)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}
	dst.Close()

	doc := &models.DocumentAnalysis{
		ID:        uuid.New(),
		SessionID: sessionID,
		Filename:  header.Filename,
		Status:    "pending",
	}
	if err := h.documentRepo.Create(r.Context(), doc); err != nil {
		os.Remove(path)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create analysis record", r))
		return
	}

	job := &models.Job{
		ID:          uuid.New(),
		SessionID:   sessionID,
		Type:        "document-analysis",
		ReferenceID: doc.ID,
		Status:      "pending",
		MaxRetries:  2,
		CreatedAt:   time.Now(),
	}
	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to queue analysis", r))
		return
	}

	payload := models.QueuedDocumentJob{JobID: job.ID, DocumentID: doc.ID, SessionID: sessionID, FilePath: path}
	jobBytes, _ := json.Marshal(payload)
	if err := h.redis.LPush(r.Context(), services.DocumentQueue, string(jobBytes)).Err(); err != nil {
		log.Printf("Failed to enqueue document job %s: %v", job.ID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to queue analysis", r))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"document_id": doc.ID,
		"job_id":      job.ID,
		"filename":    header.Filename,
		"status":      "pending",
	})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	docs, err := h.documentRepo.ListBySession(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list documents", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
	})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid document ID", r))
		return
	}

	doc, err := h.documentRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Document not found", r))
		return
	}

	if doc.SessionID != middleware.GetSessionID(r.Context()) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Document not found", r))
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
