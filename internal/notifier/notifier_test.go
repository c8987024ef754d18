package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nartaq/forms-service/internal/config"
)

var testMail = config.MailConfig{
	FromEmail:        "noreply@nartaq.com",
	FromName:         "NartaQ",
	ReplyToGeneral:   "hello@nartaq.com",
	ReplyToInvestors: "investors@nartaq.com",
	ReplyToFounders:  "founders@nartaq.com",
}

// fakeSender records messages and fails for recipients in failFor.
type fakeSender struct {
	sent    []Message
	failFor map[string]error
}

func (f *fakeSender) Name() string { return "fake" }

func (f *fakeSender) Send(_ context.Context, msg Message) (*SendResult, error) {
	if err, ok := f.failFor[msg.To]; ok {
		return nil, err
	}
	f.sent = append(f.sent, msg)
	return &SendResult{MessageID: fmt.Sprintf("msg-%d", len(f.sent))}, nil
}

func TestSendRendersTemplateAndRoutes(t *testing.T) {
	fake := &fakeSender{}
	svc := New(fake, testMail)

	res, err := svc.Send(context.Background(), TemplateInvestorConfirmation, "jane@fund.com", map[string]interface{}{
		"name":    "Jane",
		"company": "Fund Capital",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.MessageID == "" {
		t.Error("expected a message id")
	}
	if len(fake.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fake.sent))
	}

	msg := fake.sent[0]
	if msg.ReplyTo != "investors@nartaq.com" {
		t.Errorf("investor replies must route to the investor mailbox, got %s", msg.ReplyTo)
	}
	if msg.Subject != "We received your investor application" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Jane") || !strings.Contains(msg.HTML, "Fund Capital") {
		t.Errorf("template data not rendered: %s", msg.HTML)
	}
	if strings.Contains(msg.Text, "<") {
		t.Errorf("plain text body contains markup: %s", msg.Text)
	}
}

func TestReplyToRoutingDiffersPerAudience(t *testing.T) {
	fake := &fakeSender{}
	svc := New(fake, testMail)

	svc.Send(context.Background(), TemplateInvestorConfirmation, "a@x.com", map[string]interface{}{"name": "A", "company": "X"})
	svc.Send(context.Background(), TemplateCareerConfirmation, "b@x.com", map[string]interface{}{"name": "B", "position": "Engineer"})

	if fake.sent[0].ReplyTo == fake.sent[1].ReplyTo {
		t.Errorf("investor and career replies must route to different mailboxes, both got %s", fake.sent[0].ReplyTo)
	}
}

func TestSendUnknownTemplate(t *testing.T) {
	svc := New(&fakeSender{}, testMail)
	if _, err := svc.Send(context.Background(), Template("nope"), "a@x.com", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestPlainTextNeverContainsMarkup(t *testing.T) {
	reg := newRegistry()
	data := map[string]interface{}{
		"name": "Jane", "company": "Fund", "position": "Engineer", "mode": "capture",
	}
	for kind := range templateSources {
		html, err := reg.render(kind, data)
		if err != nil {
			t.Fatalf("%s: render: %v", kind, err)
		}
		text := PlainText(html)
		if strings.Contains(text, "<") {
			t.Errorf("%s: plain text contains '<': %q", kind, text)
		}
		if text == "" {
			t.Errorf("%s: plain text is empty", kind)
		}
	}
}

func TestPlainTextStripsEscapedBrackets(t *testing.T) {
	text := PlainText("<p>threshold &lt; 5 and x &gt; 2</p>")
	if strings.Contains(text, "<") {
		t.Errorf("unescaped entity leaked a '<': %q", text)
	}
}

func TestSendBulkPartialFailure(t *testing.T) {
	fake := &fakeSender{failFor: map[string]error{
		"second@x.com": errors.New("mailbox unavailable"),
	}}
	svc := New(fake, testMail)

	result := svc.SendBulk(context.Background(),
		[]string{"first@x.com", "second@x.com", "third@x.com"},
		"Announcement",
		func(recipient string) (string, error) {
			return "<p>Hello " + recipient + "</p>", nil
		})

	if result.Sent != 2 {
		t.Errorf("sent = %d, want 2", result.Sent)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if result.Success {
		t.Error("success must be false when any recipient failed")
	}
	if len(result.Errors) != 1 || result.Errors[0].Email != "second@x.com" {
		t.Errorf("errors = %+v, want exactly one entry for second@x.com", result.Errors)
	}
	if result.Errors[0].Error != "mailbox unavailable" {
		t.Errorf("error text = %q", result.Errors[0].Error)
	}

	// 1st and 3rd must be unaffected by the 2nd's failure.
	if len(fake.sent) != 2 || fake.sent[0].To != "first@x.com" || fake.sent[1].To != "third@x.com" {
		t.Errorf("delivered set wrong: %+v", fake.sent)
	}
}

func TestSendBulkAllSucceed(t *testing.T) {
	fake := &fakeSender{}
	svc := New(fake, testMail)

	result := svc.SendBulk(context.Background(), []string{"a@x.com", "b@x.com"}, "Hi",
		func(string) (string, error) { return "<p>hi</p>", nil })

	if !result.Success || result.Sent != 2 || result.Failed != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %+v", result.Errors)
	}
}

func TestSendGridPropagatesProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"message":"Invalid API key"}]}`))
	}))
	defer srv.Close()

	sender := NewSendGridSender(config.SendGridConfig{
		APIKey: "bad-key", BaseURL: srv.URL, TimeoutSeconds: 5,
	})

	_, err := sender.Send(context.Background(), Message{To: "a@x.com"})
	if err == nil || err.Error() != "Invalid API key" {
		t.Fatalf("expected provider message to surface, got %v", err)
	}
}

func TestSendGridMasksTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	sender := NewSendGridSender(config.SendGridConfig{
		APIKey: "key", BaseURL: srv.URL, TimeoutSeconds: 1,
	})

	_, err := sender.Send(context.Background(), Message{To: "a@x.com"})
	if !errors.Is(err, ErrSendGridTransport) {
		t.Fatalf("expected ErrSendGridTransport, got %v", err)
	}
}

func TestSendGridSuccess(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("X-Message-Id", "sg-123")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewSendGridSender(config.SendGridConfig{
		APIKey: "sg-key", BaseURL: srv.URL, TimeoutSeconds: 5,
	})

	res, err := sender.Send(context.Background(), Message{To: "a@x.com", Subject: "Hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.MessageID != "sg-123" {
		t.Errorf("messageId = %q", res.MessageID)
	}
	if gotAuth != "Bearer sg-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestCaptureSenderPostsEnvelope(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewCaptureSender(config.CaptureConfig{URL: srv.URL, TimeoutSeconds: 5})
	res, err := sender.Send(context.Background(), Message{
		To: "a@x.com", Subject: "Hi", HTML: "<p>hi</p>", Text: "hi",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.HasPrefix(res.MessageID, "capture-") {
		t.Errorf("messageId = %q", res.MessageID)
	}
	if !strings.Contains(gotBody, `"to":"a@x.com"`) || !strings.Contains(gotBody, `"subject":"Hi"`) {
		t.Errorf("capture envelope missing fields: %s", gotBody)
	}
}

func TestSelectSenderModes(t *testing.T) {
	cfg := &config.Config{}
	cfg.Capture.URL = "http://localhost:8025/api/v1/send"
	cfg.Capture.TimeoutSeconds = 5

	s, err := SelectSender(context.Background(), cfg)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.Name() != "capture" {
		t.Errorf("no credentials should select capture mode, got %s", s.Name())
	}

	cfg.SendGrid.APIKey = "SG.key"
	cfg.SendGrid.BaseURL = "https://api.sendgrid.com"
	cfg.SendGrid.TimeoutSeconds = 5
	s, err = SelectSender(context.Background(), cfg)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.Name() != "sendgrid" {
		t.Errorf("API key should select sendgrid mode, got %s", s.Name())
	}
}
