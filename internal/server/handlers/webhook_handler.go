package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quimo/inventario/internal/domain/models"
	service "github.com/quimo/inventario/internal/service/whatsapp"
)

// whatsappObject is the only callback object the production line subscribes to.
const whatsappObject = "whatsapp_business_account"

// WebhookHandler handles inbound and outbound WhatsApp HTTP events.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify responds to Meta's webhook verification challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	resp, err := h.svc.VerifyWebhookToken(c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"))
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err), zap.String("mode", c.Query("hub.mode")))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, resp)
}

// Receive ingests webhook POST callbacks from Meta. Callbacks for other objects
// and status-only callbacks are acknowledged without dispatching. A decoded
// callback is always acknowledged; processing errors are only logged.
func (h *WebhookHandler) Receive(c *gin.Context) {
	if ct := c.ContentType(); ct != gin.MIMEJSON {
		h.logger.Warn("rejecting webhook callback", zap.String("reason", "content type is not JSON"), zap.String("content_type", ct))
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "expected application/json"})
		return
	}

	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if payload.Object != whatsappObject {
		h.logger.Info("ignoring webhook callback", zap.String("object", payload.Object))
		c.Status(http.StatusOK)
		return
	}

	messages := countMessages(payload)
	if messages == 0 {
		h.logger.Debug("webhook callback without messages")
		c.Status(http.StatusOK)
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("failed processing webhook", zap.Error(err), zap.Int("messages", messages))
	}

	c.Status(http.StatusOK)
}

func countMessages(payload models.WebhookPayload) int {
	n := 0
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			n += len(change.Value.Messages)
		}
	}
	return n
}

// SendMessage lets operators push a message to a worker's phone.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	to, err := normalizePhone(req.To)
	if err != nil {
		respondError(c, h.logger, "send message", err)
		return
	}
	req.To = to

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		if errors.Is(err, models.ErrNotConfigured) {
			respondError(c, h.logger, "send message", err)
			return
		}
		h.logger.Error("failed sending outbound", zap.Error(err), zap.String("to", req.To))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}

	c.Status(http.StatusAccepted)
}

// normalizePhone strips separators and a leading "+" from an international
// number; WhatsApp Cloud expects digits only.
func normalizePhone(raw string) (string, error) {
	digits := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	digits = strings.TrimPrefix(digits, "+")
	if len(digits) < 8 || len(digits) > 15 {
		return "", fmt.Errorf("%w: recipient %q is not an international phone number", models.ErrInvalidArguments, raw)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: recipient %q is not an international phone number", models.ErrInvalidArguments, raw)
		}
	}
	return digits, nil
}
