package notify

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type sendCall struct {
	Recipient string
	Subject   string
	Body      string
}

type mockSender struct {
	mu         sync.Mutex
	calls      []sendCall
	shouldFail bool
}

func (m *mockSender) Send(_ context.Context, recipient, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, sendCall{Recipient: recipient, Subject: subject, Body: body})
	if m.shouldFail {
		return errors.New("send failed")
	}
	return nil
}

func (m *mockSender) Calls() []sendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sendCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestRender_ReplacesPlaceholders(t *testing.T) {
	n := New(&mockSender{}, "ops@clinic.test", testLogger())

	subject, body, ok := n.Render("booking-created", map[string]string{
		"booking_id": "b-123",
		"starts_at":  "2026-09-01 16:00",
		"duration":   "45",
		"total":      "6500",
	})
	if !ok {
		t.Fatal("expected template to exist")
	}
	if subject != "New booking b-123" {
		t.Errorf("unexpected subject: %q", subject)
	}
	if body != "Booking b-123 placed for 2026-09-01 16:00 (45 min, total 6500)." {
		t.Errorf("unexpected body: %q", body)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	n := New(&mockSender{}, "ops@clinic.test", testLogger())
	if _, _, ok := n.Render("no-such-template", nil); ok {
		t.Error("expected ok=false for unknown template")
	}
}

func TestRender_MissingKeysLeftAsIs(t *testing.T) {
	n := New(&mockSender{}, "ops@clinic.test", testLogger())
	subject, _, ok := n.Render("booking-cancelled", map[string]string{})
	if !ok {
		t.Fatal("expected template to exist")
	}
	if subject != "Booking {{booking_id}} cancelled" {
		t.Errorf("expected untouched placeholder, got %q", subject)
	}
}

func TestNotify_Delivers(t *testing.T) {
	sender := &mockSender{}
	n := New(sender, "ops@clinic.test", testLogger())

	n.Notify("booking-created", map[string]string{"booking_id": "b-1"})
	n.Wait()

	calls := sender.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Recipient != "ops@clinic.test" {
		t.Errorf("unexpected recipient: %s", calls[0].Recipient)
	}
	if calls[0].Subject != "New booking b-1" {
		t.Errorf("unexpected subject: %s", calls[0].Subject)
	}
}

func TestNotify_SwallowsSendFailure(t *testing.T) {
	sender := &mockSender{shouldFail: true}
	n := New(sender, "ops@clinic.test", testLogger())

	n.Notify("booking-cancelled", map[string]string{"booking_id": "b-2"})
	n.Wait()

	if len(sender.Calls()) != 1 {
		t.Fatal("expected the send to be attempted")
	}
}

func TestNotify_UnknownTemplateDoesNotSend(t *testing.T) {
	sender := &mockSender{}
	n := New(sender, "ops@clinic.test", testLogger())

	n.Notify("missing", nil)
	n.Wait()

	if len(sender.Calls()) != 0 {
		t.Error("expected no send for unknown template")
	}
}

func TestRegisterTemplate_Override(t *testing.T) {
	n := New(&mockSender{}, "ops@clinic.test", testLogger())
	n.RegisterTemplate(Template{ID: "booking-created", Subject: "custom", Body: "custom body"})

	subject, body, ok := n.Render("booking-created", nil)
	if !ok || subject != "custom" || body != "custom body" {
		t.Errorf("expected overridden template, got %q / %q", subject, body)
	}
}

func TestLogSender(t *testing.T) {
	s := &LogSender{Logger: testLogger()}
	if err := s.Send(context.Background(), "ops@clinic.test", "s", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
