package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/ankigen/internal/api/shared"
	"github.com/phrazzld/ankigen/internal/document"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/platform/logger"
	"github.com/phrazzld/ankigen/internal/service"
)

// uploadField is the multipart form field carrying the document.
const uploadField = "file"

// multipartOverhead is allowed on top of the file size limit for the
// multipart framing and headers.
const multipartOverhead = 1 << 20

// SessionHandler handles the session, upload, generation, editing and export
// endpoints.
type SessionHandler struct {
	sessions       service.SessionService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewSessionHandler creates a SessionHandler. Uploads larger than
// maxUploadBytes are rejected with 413.
func NewSessionHandler(sessions service.SessionService, maxUploadBytes int64, logger *slog.Logger) *SessionHandler {
	if sessions == nil {
		panic("session service cannot be nil for SessionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		sessions:       sessions,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "session_handler")),
	}
}

// RegisterRoutes mounts the handler's endpoints on r.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Put("/document", h.UploadDocument)
			r.Post("/generate", h.Generate)
			r.Put("/cards/{index}", h.UpdateCard)
			r.Delete("/cards/{index}", h.DeleteCard)
			r.Get("/export", h.Export)
		})
	})
}

// CreateSession handles POST /sessions.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.CreateSession(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, newSessionResponse(session))
}

// GetSession handles GET /sessions/{id}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	session, err := h.sessions.GetSession(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(session))
}

// DeleteSession handles DELETE /sessions/{id}.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.sessions.DeleteSession(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadDocument handles PUT /sessions/{id}/document. The document is sent
// as the "file" field of a multipart form.
func (h *SessionHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	upload, err := h.readUpload(w, r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("document received",
		slog.String("session_id", id.String()),
		slog.String("file_name", upload.Name),
		slog.String("mime_type", upload.MIMEType),
		slog.Int("size_bytes", len(upload.Data)))

	session, err := h.sessions.UploadDocument(r.Context(), id, upload)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(session))
}

func (h *SessionHandler) readUpload(w http.ResponseWriter, r *http.Request) (domain.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if isTooLarge(err) {
			return domain.Upload{}, ErrUploadTooLarge
		}
		return domain.Upload{}, domain.NewValidationError(uploadField, "is required", domain.ErrValidation)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return domain.Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > h.maxUploadBytes {
		return domain.Upload{}, ErrUploadTooLarge
	}

	return domain.Upload{
		Name:     filepath.Base(header.Filename),
		MIMEType: document.DetectMIME(header.Header.Get("Content-Type"), data),
		Data:     data,
	}, nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// Generate handles POST /sessions/{id}/generate.
func (h *SessionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req GenerateRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	style, err := domain.ParseCardStyle(req.Style)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	session, err := h.sessions.Generate(r.Context(), id, service.GenerateRequest{
		Style:        style,
		Count:        req.Count,
		Instructions: req.Instructions,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(session))
}

// UpdateCard handles PUT /sessions/{id}/cards/{index}.
func (h *SessionHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	index, err := getPathIndex(r, "index")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req CardRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	current, err := h.sessions.GetSession(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	session, err := h.sessions.UpdateCard(r.Context(), id, index, req.toCard(current.Deck.Style))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(session))
}

// DeleteCard handles DELETE /sessions/{id}/cards/{index}.
func (h *SessionHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	index, err := getPathIndex(r, "index")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	session, err := h.sessions.DeleteCard(r.Context(), id, index)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(session))
}

// Export handles GET /sessions/{id}/export. The deck is returned as a text
// file attachment ready for Anki's import dialog.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	export, err := h.sessions.Export(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, export.Content); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("failed to write export",
			slog.String("error", err.Error()))
	}
}
