package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"artassist/internal/catalog"
	"artassist/internal/conversation"
	"artassist/internal/models"
	"artassist/internal/service/ai"
	"artassist/internal/worker"
)

// SessionManager is the subset of the worker manager the handlers need.
type SessionManager interface {
	CreateSession() *models.Session
	Snapshot(id string) (*models.Session, error)
	SetInput(id, text string) (*models.Session, error)
	QuickAction(id, key string) (*models.Session, error)
	SetCredential(id, provider, model, apiKey string) (*models.Session, error)
	ClearCredential(id string) (*models.Session, error)
	Submit(id string) (*models.Message, <-chan *models.Message, error)
	EndSession(id string) error
}

// Handler wires HTTP routes to the session manager.
type Handler struct {
	sessions SessionManager
}

// NewHandler constructs a Handler instance.
func NewHandler(sessions SessionManager) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/ideas", h.listIdeas)
	api.GET("/quick-actions", h.listQuickActions)
	api.POST("/sessions", h.createSession)

	sessionRoutes := api.Group("/sessions/:id")
	sessionRoutes.Use(requireSessionID())
	sessionRoutes.GET("", h.getSession)
	sessionRoutes.DELETE("", h.endSession)
	sessionRoutes.PUT("/input", h.setInput)
	sessionRoutes.POST("/quick-actions/:key", h.applyQuickAction)
	sessionRoutes.PUT("/credential", h.setCredential)
	sessionRoutes.DELETE("/credential", h.clearCredential)
	sessionRoutes.POST("/messages", h.sendMessage)
}

// session ids are uuids; anything else cannot exist
func requireSessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param("id")); err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.Next()
	}
}

func (h *Handler) listIdeas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ideas": catalog.Ideas()})
}

func (h *Handler) listQuickActions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"quick_actions": catalog.QuickActions()})
}

func (h *Handler) createSession(c *gin.Context) {
	c.JSON(http.StatusCreated, h.sessions.CreateSession())
}

func (h *Handler) getSession(c *gin.Context) {
	session, err := h.sessions.Snapshot(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) endSession(c *gin.Context) {
	if err := h.sessions.EndSession(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type inputRequest struct {
	Content string `json:"content"`
}

func (h *Handler) setInput(c *gin.Context) {
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	session, err := h.sessions.SetInput(c.Param("id"), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) applyQuickAction(c *gin.Context) {
	session, err := h.sessions.QuickAction(c.Param("id"), c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type credentialRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key" binding:"required"`
}

func (h *Handler) setCredential(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "api_key is required"})
		return
	}
	if _, err := h.sessions.SetCredential(c.Param("id"), req.Provider, req.Model, req.APIKey); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) clearCredential(c *gin.Context) {
	if _, err := h.sessions.ClearCredential(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type messageRequest struct {
	// Content replaces the draft before sending; nil sends the current draft.
	Content *string `json:"content"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	id := c.Param("id")
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Content != nil {
		if _, err := h.sessions.SetInput(id, *req.Content); err != nil {
			writeError(c, err)
			return
		}
	}

	userMsg, replyCh, err := h.sessions.Submit(id)
	if err != nil {
		if errors.Is(err, conversation.ErrEmptyInput) {
			c.Status(http.StatusNoContent)
			return
		}
		writeError(c, err)
		return
	}

	// SSE Request construction
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	sendEvent := func(event string, payload interface{}) error {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := sendEvent("ack", gin.H{"message": userMsg}); err != nil {
		return
	}
	// the generation keeps running if the client goes away; the reply lands in the session
	select {
	case reply := <-replyCh:
		if reply == nil {
			_ = sendEvent("error", gin.H{"message": "generation failed"})
			return
		}
		_ = sendEvent("done", gin.H{"user_message": userMsg, "assistant_message": reply})
	case <-c.Request.Context().Done():
		log.Printf("client left session %s before the reply", id)
	}
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, worker.ErrSessionNotFound), errors.Is(err, conversation.ErrUnknownQuickAction):
		status = http.StatusNotFound
	case errors.Is(err, conversation.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, worker.ErrQueueFull):
		status = http.StatusTooManyRequests
	case errors.Is(err, conversation.ErrEmptyCredential), errors.Is(err, ai.ErrUnknownProvider):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Printf("request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
