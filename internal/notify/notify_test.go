package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yyt520/ahooks-code-analysis/internal/eventstore"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

type message struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	published  []message
	flushes    int
	publishErr error
	flushErr   error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, message{subject: subject, data: data})
	return nil
}

func (f *fakePublisher) FlushWithContext(context.Context) error {
	f.flushes++
	return f.flushErr
}

func TestNotify_PublishesEventOnTypedSubject(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNATSNotifier(pub, "")

	e, err := eventstore.NewManifestLoaded("site.yaml", site.Default())
	require.NoError(t, err)
	e.ID = 7
	require.NoError(t, n.Notify(context.Background(), e))

	require.Len(t, pub.published, 1)
	require.Equal(t, "sitecfg.events.ManifestLoaded", pub.published[0].subject)
	require.Equal(t, 1, pub.flushes)

	var got eventstore.Event
	require.NoError(t, json.Unmarshal(pub.published[0].data, &got))
	require.Equal(t, int64(7), got.ID)
	require.Equal(t, eventstore.TypeManifestLoaded, got.Type)
	require.JSONEq(t, string(e.Payload), string(got.Payload))
}

func TestNotify_CustomPrefix(t *testing.T) {
	n := NewNATSNotifier(&fakePublisher{}, "docs.site")
	require.Equal(t, "docs.site.DocsChecked", n.Subject(eventstore.TypeDocsChecked))
}

func TestNotify_Errors(t *testing.T) {
	e := eventstore.Event{Type: "X", Payload: json.RawMessage(`{}`)}

	n := NewNATSNotifier(&fakePublisher{publishErr: errors.New("closed")}, "")
	require.ErrorContains(t, n.Notify(context.Background(), e), "failed to publish")

	n = NewNATSNotifier(&fakePublisher{flushErr: context.DeadlineExceeded}, "")
	err := n.Notify(context.Background(), e)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClose_WithoutConnection(t *testing.T) {
	require.NoError(t, NewNATSNotifier(&fakePublisher{}, "").Close())
	require.NoError(t, NoopNotifier{}.Close())
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:1", "")
	require.Error(t, err)
}

func TestNotifierInterface(t *testing.T) {
	var _ Notifier = (*NATSNotifier)(nil)
	var _ Notifier = NoopNotifier{}
	var _ Publisher = (*fakePublisher)(nil)
}
