package whatsapp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quimo/inventario/internal/config"
	"github.com/quimo/inventario/internal/domain/models"
	"github.com/quimo/inventario/internal/service/commands"
	client "github.com/quimo/inventario/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []client.SendTextMessageRequest
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	f.sent = append(f.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

type fakeDispatcher struct {
	reply string
	err   error
	got   []models.Command
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	f.got = append(f.got, cmd)
	return f.reply, f.err
}

func payloadWith(messages ...models.InboundMessage) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{Value: models.WebhookValue{Messages: messages}}}}}}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "tok"}, &fakeClient{}, &fakeDispatcher{}, nil)

	if got, err := svc.VerifyWebhookToken("subscribe", "tok", "42"); err != nil || got != "42" {
		t.Errorf("expected challenge, got %q, %v", got, err)
	}
	if _, err := svc.VerifyWebhookToken("subscribe", "nope", "42"); err == nil {
		t.Error("expected error for wrong token")
	}
	if _, err := svc.VerifyWebhookToken("unsubscribe", "tok", "42"); err == nil {
		t.Error("expected error for wrong mode")
	}
}

func TestHandleWebhookRepliesWithDispatcherResult(t *testing.T) {
	wa := &fakeClient{}
	disp := &fakeDispatcher{reply: "Producción registrada"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, disp, nil)

	msg := models.InboundMessage{From: "521", ID: "m1", Type: "text", Text: &models.TextContent{Body: "/produccion 1 5"}}
	if err := svc.HandleWebhook(context.Background(), payloadWith(msg)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(disp.got) != 1 || disp.got[0].Type != models.CommandProduction {
		t.Fatalf("unexpected dispatched commands %+v", disp.got)
	}
	if len(wa.sent) != 1 || wa.sent[0].To != "521" || wa.sent[0].Body != "Producción registrada" {
		t.Errorf("unexpected reply %+v", wa.sent)
	}
}

func TestHandleWebhookExplainsUserErrors(t *testing.T) {
	wa := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, &fakeDispatcher{err: commands.ErrUnsupportedCommand}, nil)

	msg := models.InboundMessage{From: "521", Interactive: &models.InteractiveContent{ButtonReply: &models.ReplyTitle{ID: "hola"}}}
	if err := svc.HandleWebhook(context.Background(), payloadWith(msg)); err != nil {
		t.Fatalf("user errors should not fail the webhook: %v", err)
	}
	if len(wa.sent) != 1 || !strings.Contains(wa.sent[0].Body, "/produccion") {
		t.Errorf("expected usage reply, got %+v", wa.sent)
	}
}

func TestHandleWebhookReturnsInternalFailures(t *testing.T) {
	wa := &fakeClient{}
	boom := errors.New("database is locked")
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, &fakeDispatcher{err: boom}, nil)

	msg := models.InboundMessage{From: "521", Text: &models.TextContent{Body: "/semana"}}
	if err := svc.HandleWebhook(context.Background(), payloadWith(msg)); !errors.Is(err, boom) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(wa.sent) != 1 {
		t.Errorf("expected a generic reply to be sent")
	}
}

func TestNotifyReportRequiresRecipient(t *testing.T) {
	wa := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, &fakeDispatcher{}, nil)
	if err := svc.NotifyReport(context.Background(), "x"); !errors.Is(err, models.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}

	svc = NewMetaWhatsAppService(config.WhatsAppConfig{ReportRecipient: "5210"}, wa, &fakeDispatcher{}, nil)
	if err := svc.NotifyReport(context.Background(), "reporte"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(wa.sent) != 1 || wa.sent[0].To != "5210" {
		t.Errorf("unexpected sent %+v", wa.sent)
	}
}
