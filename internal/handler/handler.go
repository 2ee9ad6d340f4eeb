package handler

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/terrydolan/catmon-img-tag/internal/config"
	"github.com/terrydolan/catmon-img-tag/internal/domain"
	"github.com/terrydolan/catmon-img-tag/internal/storage"
	"github.com/terrydolan/catmon-img-tag/internal/workflow"
)

// Handler exposes the tagging workflow over HTTP. Sessions live in memory
// only: all durable state is the files themselves, sitting in their current
// storage folder.
type Handler struct {
	store storage.ObjectStore
	cfg   *config.Config
	log   *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*workflow.Session
}

func NewHandler(store storage.ObjectStore, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		store:    store,
		cfg:      cfg,
		log:      log,
		sessions: make(map[string]*workflow.Session),
	}
}

type sessionResponse struct {
	SessionID string         `json:"session_id"`
	State     workflow.State `json:"state"`
	Image     *domain.Image  `json:"image,omitempty"`
	Stats     workflow.Stats `json:"stats"`
	Error     string         `json:"error,omitempty"`
}

func (h *Handler) snapshot(s *workflow.Session) sessionResponse {
	resp := sessionResponse{
		SessionID: s.ID(),
		State:     s.State(),
		Stats:     s.Stats(),
	}
	if img, ok := s.Current(); ok {
		resp.Image = img
	}
	if err := s.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// CreateSession starts a fresh tagging session and advances it to the first
// taggable image. The session is registered even when the initial load
// fails, so the user can see the error and resume.
func (h *Handler) CreateSession(c *gin.Context) {
	s := workflow.NewSession(h.store, h.cfg.Folders(), h.cfg.App.BrightnessThreshold, h.cfg.App.ListLimit, h.log)

	h.mu.Lock()
	h.sessions[s.ID()] = s
	h.mu.Unlock()

	if err := s.Start(c.Request.Context()); err != nil {
		h.log.Error("Session failed to start",
			zap.String("session", s.ID()),
			zap.Error(err))
	}

	c.JSON(http.StatusCreated, h.snapshot(s))
}

func (h *Handler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.snapshot(s))
}

// GetImage serves the bytes of the image currently being presented.
func (h *Handler) GetImage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	img, ok := s.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No image is being presented"})
		return
	}

	c.Data(http.StatusOK, img.ContentType, img.Data)
}

type tagRequest struct {
	Label string `json:"label" binding:"required"`
}

// TagImage applies the chosen label: the presented file is moved into the
// label's folder and the workflow advances to the next candidate.
func (h *Handler) TagImage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A label is required"})
		return
	}

	label, err := domain.ParseLabel(req.Label)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.Tag(c.Request.Context(), label); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.snapshot(s))
}

// UndoTag reverts the previous tag, moving the file back to the source
// folder and queueing it for re-presentation.
func (h *Handler) UndoTag(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	if err := s.Undo(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.snapshot(s))
}

// ResumeSession retries loading after a storage failure.
func (h *Handler) ResumeSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	if err := s.Resume(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.snapshot(s))
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) GetUI(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

func (h *Handler) session(c *gin.Context) (*workflow.Session, bool) {
	h.mu.RLock()
	s, ok := h.sessions[c.Param("id")]
	h.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown session"})
		return nil, false
	}
	return s, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMoveConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusBadGateway
	default:
		// Unknown label, nothing to undo, wrong state: a bad request.
		return http.StatusBadRequest
	}
}
