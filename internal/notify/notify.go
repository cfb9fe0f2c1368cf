// Package notify publishes manifest events to NATS so downstream site builds
// can react to a changed manifest.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yyt520/ahooks-code-analysis/internal/eventstore"
	"github.com/yyt520/ahooks-code-analysis/internal/logfields"
)

// DefaultSubjectPrefix is prepended to the event type to form the subject,
// e.g. "sitecfg.events.ManifestLoaded".
const DefaultSubjectPrefix = "sitecfg.events"

const flushTimeout = 5 * time.Second

// Notifier delivers events to subscribers.
type Notifier interface {
	Notify(ctx context.Context, e eventstore.Event) error
	Close() error
}

// Publisher is the subset of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSNotifier publishes events as JSON on core NATS subjects.
type NATSNotifier struct {
	conn   *nats.Conn
	pub    Publisher
	prefix string
}

// Connect dials the NATS server at url.
func Connect(url, prefix string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("sitecfg"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	n := NewNATSNotifier(conn, prefix)
	n.conn = conn
	slog.Info("NATS notifier connected", slog.String("url", url), slog.String("subject_prefix", n.prefix))
	return n, nil
}

// NewNATSNotifier wraps an existing publisher. An empty prefix uses DefaultSubjectPrefix.
func NewNATSNotifier(pub Publisher, prefix string) *NATSNotifier {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSNotifier{pub: pub, prefix: prefix}
}

// Subject returns the subject an event type is published on.
func (n *NATSNotifier) Subject(eventType string) string {
	return n.prefix + "." + eventType
}

// Notify publishes e and waits for the server to acknowledge the flush.
func (n *NATSNotifier) Notify(ctx context.Context, e eventstore.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	subject := n.Subject(e.Type)
	if err := n.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := n.pub.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}
	slog.Debug("Published event", slog.String("subject", subject), slog.Int64("event_id", e.ID))
	return nil
}

// Close drains the connection when the notifier owns one.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	if err := n.conn.Drain(); err != nil {
		slog.Warn("NATS drain failed", logfields.Error(err))
		n.conn.Close()
		return err
	}
	return nil
}

// NoopNotifier discards events.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, eventstore.Event) error { return nil }
func (NoopNotifier) Close() error                                   { return nil }
