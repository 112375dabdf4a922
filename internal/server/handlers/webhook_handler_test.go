package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quimo/inventario/internal/domain/models"
)

type fakeMessaging struct {
	handled int
	sent    []models.OutboundMessageRequest
	sendErr error
	hookErr error
}

func (f *fakeMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if token != "tok" {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

func (f *fakeMessaging) HandleWebhook(context.Context, models.WebhookPayload) error {
	f.handled++
	return f.hookErr
}

func (f *fakeMessaging) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return f.sendErr
}

func newWebhookEngine(svc *fakeMessaging) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(svc, nil)
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	r.POST("/send-message", h.SendMessage)
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	return serveAs(r, method, target, "application/json", body)
}

func serveAs(r http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const productionMessage = `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages",
	"value":{"messaging_product":"whatsapp","messages":[{"from":"5215512345678","id":"wamid.1","type":"text","text":{"body":"/produccion 3 12"}}]}}]}]}`

func TestWebhookVerify(t *testing.T) {
	r := newWebhookEngine(&fakeMessaging{})

	w := serve(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=tok&hub.challenge=99", "")
	if w.Code != http.StatusOK || w.Body.String() != "99" {
		t.Errorf("expected challenge echo, got %d %q", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=bad&hub.challenge=99", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestWebhookReceiveAcknowledgesFailures(t *testing.T) {
	svc := &fakeMessaging{hookErr: errors.New("boom")}
	r := newWebhookEngine(svc)

	w := serve(r, http.MethodPost, "/webhook", productionMessage)
	if w.Code != http.StatusOK || svc.handled != 1 {
		t.Errorf("expected 200 after handling, got %d (handled %d)", w.Code, svc.handled)
	}

	w = serve(r, http.MethodPost, "/webhook", `not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid payload, got %d", w.Code)
	}
}

func TestWebhookReceiveRejectsNonJSON(t *testing.T) {
	svc := &fakeMessaging{}
	r := newWebhookEngine(svc)

	w := serveAs(r, http.MethodPost, "/webhook", "application/x-www-form-urlencoded", "object=whatsapp_business_account")
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
	if svc.handled != 0 {
		t.Errorf("expected no dispatch, got %d", svc.handled)
	}
}

func TestWebhookReceiveSkipsCallbacksWithoutMessages(t *testing.T) {
	svc := &fakeMessaging{}
	r := newWebhookEngine(svc)

	bodies := []string{
		`{"object":"page","entry":[]}`,
		`{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{"messaging_product":"whatsapp"}}]}]}`,
	}
	for _, body := range bodies {
		if w := serve(r, http.MethodPost, "/webhook", body); w.Code != http.StatusOK {
			t.Errorf("expected 200 for %s, got %d", body, w.Code)
		}
	}
	if svc.handled != 0 {
		t.Errorf("expected nothing dispatched, got %d", svc.handled)
	}
}

func TestSendMessage(t *testing.T) {
	svc := &fakeMessaging{}
	r := newWebhookEngine(svc)
	if w := serve(r, http.MethodPost, "/send-message", `{"to":"+52 1 55-1234-5678","message":"hola"}`); w.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", w.Code)
	}
	if len(svc.sent) != 1 || svc.sent[0].To != "5215512345678" {
		t.Errorf("expected normalized recipient, got %+v", svc.sent)
	}
	if w := serve(r, http.MethodPost, "/send-message", `{"to":"5215512345678"}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing message, got %d", w.Code)
	}
	if w := serve(r, http.MethodPost, "/send-message", `{"to":"almacen","message":"hola"}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid recipient, got %d", w.Code)
	}
	if len(svc.sent) != 1 {
		t.Errorf("expected rejected requests not to be sent, got %d", len(svc.sent))
	}

	r = newWebhookEngine(&fakeMessaging{sendErr: errors.New("meta down")})
	if w := serve(r, http.MethodPost, "/send-message", `{"to":"5215512345678","message":"hola"}`); w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}

	r = newWebhookEngine(&fakeMessaging{sendErr: models.ErrNotConfigured})
	if w := serve(r, http.MethodPost, "/send-message", `{"to":"5215512345678","message":"hola"}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[error]int{
		models.ErrInvalidArguments: http.StatusBadRequest,
		models.ErrNotFound:         http.StatusNotFound,
		models.ErrUnknownKind:      http.StatusNotFound,
		models.ErrNotConfigured:    http.StatusServiceUnavailable,
		errors.New("disk full"):    http.StatusInternalServerError,
	}
	for err, want := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, zap.NewNop(), "action", err)
		if w.Code != want {
			t.Errorf("%v: expected %d, got %d", err, want, w.Code)
		}
	}
}
