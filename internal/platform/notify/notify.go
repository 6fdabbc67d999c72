// Package notify delivers operator notifications for booking events. Delivery
// is fire-and-forget: a failed send is logged and never surfaces to the
// request that triggered it.
package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sender delivers a rendered message to a recipient.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Template is a reusable message with {{key}} placeholders.
type Template struct {
	ID      string
	Subject string
	Body    string
}

var builtIn = []Template{
	{
		ID:      "booking-created",
		Subject: "New booking {{booking_id}}",
		Body:    "Booking {{booking_id}} placed for {{starts_at}} ({{duration}} min, total {{total}}).",
	},
	{
		ID:      "booking-cancelled",
		Subject: "Booking {{booking_id}} cancelled",
		Body:    "Booking {{booking_id}} scheduled for {{starts_at}} was cancelled by the client.",
	},
	{
		ID:      "booking-status-changed",
		Subject: "Booking {{booking_id}} is now {{status}}",
		Body:    "Booking {{booking_id}} moved from {{previous_status}} to {{status}}.",
	},
}

// Notifier renders templates and dispatches them asynchronously.
type Notifier struct {
	sender    Sender
	recipient string
	logger    zerolog.Logger
	timeout   time.Duration

	mu        sync.RWMutex
	templates map[string]Template

	wg sync.WaitGroup
}

// New constructs a Notifier that sends to a single operator recipient.
func New(sender Sender, recipient string, logger zerolog.Logger) *Notifier {
	n := &Notifier{
		sender:    sender,
		recipient: recipient,
		logger:    logger.With().Str("component", "notify").Logger(),
		timeout:   10 * time.Second,
		templates: make(map[string]Template),
	}
	for _, t := range builtIn {
		n.templates[t.ID] = t
	}
	return n
}

// RegisterTemplate adds or replaces a template.
func (n *Notifier) RegisterTemplate(t Template) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.templates[t.ID] = t
}

// Render fills a template's placeholders. Keys absent from data are left
// as-is.
func (n *Notifier) Render(templateID string, data map[string]string) (subject, body string, ok bool) {
	n.mu.RLock()
	t, ok := n.templates[templateID]
	n.mu.RUnlock()
	if !ok {
		return "", "", false
	}
	subject, body = t.Subject, t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, true
}

// Notify renders templateID with data and dispatches it in the background.
// It returns immediately; delivery failures are logged only.
func (n *Notifier) Notify(templateID string, data map[string]string) {
	subject, body, ok := n.Render(templateID, data)
	if !ok {
		n.logger.Warn().Str("template", templateID).Msg("unknown notification template")
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.sender.Send(ctx, n.recipient, subject, body); err != nil {
			n.logger.Error().Err(err).Str("template", templateID).Msg("notification delivery failed")
			return
		}
		n.logger.Debug().Str("template", templateID).Msg("notification delivered")
	}()
}

// Wait blocks until all in-flight notifications finish. Used on shutdown and
// in tests.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// LogSender writes messages to the log instead of delivering them. Used in
// development when no delivery channel is configured.
type LogSender struct {
	Logger zerolog.Logger
}

func (s *LogSender) Send(_ context.Context, recipient, subject, body string) error {
	s.Logger.Info().
		Str("recipient", recipient).
		Str("subject", subject).
		Str("body", body).
		Msg("notification (log only)")
	return nil
}
