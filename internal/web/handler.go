package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dyike/RedditLens/internal/logger"
)

type AskHandler struct {
	asker Asker
}

func NewAskHandler(asker Asker) *AskHandler {
	return &AskHandler{asker: asker}
}

type AskRequest struct {
	Prompt string `json:"prompt"`
}

type AskResponse struct {
	Answer    string `json:"answer"`
	RequestID string `json:"request_id"`
}

func (h *AskHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	ctx, requestID := logger.WithRequestID(c.Request.Context())
	answer, err := h.asker.Run(ctx, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "error answering prompt", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "request_id": requestID})
		return
	}

	c.JSON(http.StatusOK, AskResponse{Answer: answer, RequestID: requestID})
}

// Stream answers over Server-Sent Events: "delta" events carry text
// fragments as {"text": ...}, then one "done" or "error" event ends the
// stream. Payloads are JSON so leading spaces in fragments survive.
func (h *AskHandler) Stream(c *gin.Context) {
	prompt := strings.TrimSpace(c.Query("prompt"))
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	ctx, requestID := logger.WithRequestID(c.Request.Context())

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Request-ID", requestID)
	c.Status(http.StatusOK)

	_, err := h.asker.Stream(ctx, prompt, func(delta string) error {
		c.SSEvent("delta", gin.H{"text": delta})
		c.Writer.Flush()
		return ctx.Err()
	})
	if err != nil {
		slog.ErrorContext(ctx, "error streaming answer", "error", err)
		c.SSEvent("error", gin.H{"error": err.Error(), "request_id": requestID})
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", gin.H{"request_id": requestID})
	c.Writer.Flush()
}
