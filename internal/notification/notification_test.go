package notification

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Send(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestLoggerNotifierWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	if err := n.Send(context.Background(), Event{Kind: KindDeposit, WalletID: "w-1", Amount: 100}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(buf.String(), `"kind":"wallet.deposit"`) {
		t.Fatalf("expected kind in log output, got %s", buf.String())
	}
}

func TestLoggerNotifierNilSafe(t *testing.T) {
	var n *LoggerNotifier
	if err := n.Send(context.Background(), Event{}); err != nil {
		t.Fatalf("nil notifier should be a no-op, got %v", err)
	}
}

func TestMultiDeliversToAll(t *testing.T) {
	failing := &recorder{err: errors.New("broker down")}
	ok := &recorder{}

	err := Multi{failing, nil, ok}.Send(context.Background(), Event{Kind: KindWithdrawal})
	if err == nil || err.Error() != "broker down" {
		t.Fatalf("expected first error to surface, got %v", err)
	}
	if len(ok.events) != 1 {
		t.Fatalf("expected healthy notifier to receive the event")
	}
}
