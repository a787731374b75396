package kafka

import (
	"context"
	"errors"
	"fmt"
	"padelhub/pkg/logger"
	"strings"
	"testing"
	"time"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "read tcp: timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{name: "nil", err: nil, want: ErrorTypeUnknown},
		{name: "explicit transient", err: NewTransientError("smtp busy", errors.New("421")), want: ErrorTypeTransient},
		{name: "explicit permanent", err: NewPermanentError("bad payload", errors.New("eof")), want: ErrorTypePermanent},
		{name: "wrapped handler error", err: fmt.Errorf("handle: %w", NewTransientError("retry", nil)), want: ErrorTypeTransient},
		{name: "deadline", err: fmt.Errorf("write: %w", context.DeadlineExceeded), want: ErrorTypeTransient},
		{name: "net timeout", err: timeoutError{}, want: ErrorTypeTransient},
		{name: "connection refused", err: errors.New("dial tcp 10.0.0.1:9092: Connection Refused"), want: ErrorTypeTransient},
		{name: "leader election", err: errors.New("Leader Not Available"), want: ErrorTypeTransient},
		{name: "anything else", err: errors.New("json: cannot unmarshal"), want: ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("busy", nil)

	if !ShouldRetry(transient, 0, 3) {
		t.Error("expected transient error to be retried")
	}
	if ShouldRetry(transient, 3, 3) {
		t.Error("expected retries to stop at the limit")
	}
	if ShouldRetry(NewPermanentError("bad", nil), 0, 3) {
		t.Error("expected permanent error not to be retried")
	}
	if ShouldRetry(nil, 0, 3) {
		t.Error("expected nil error not to be retried")
	}
}

func TestMessageBuilder(t *testing.T) {
	ts := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	msg, err := NewMessage().
		WithKey("court-1").
		WithValue(map[string]int{"slots": 2}).
		WithEventID("ev-1").
		WithEventType("booking.created").
		WithSource("padelhub").
		WithSchemaVersion("1").
		WithTimestamp(ts).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Key != "court-1" {
		t.Errorf("expected key court-1, got %q", msg.Key)
	}
	if string(msg.Value) != `{"slots":2}` {
		t.Errorf("unexpected value %s", msg.Value)
	}
	if msg.GetEventID() != "ev-1" || msg.GetEventType() != "booking.created" {
		t.Errorf("unexpected headers %v", msg.Headers)
	}
	if msg.Headers[HeaderTimestamp] != ts.Format(time.RFC3339) {
		t.Errorf("expected timestamp header %s, got %s", ts.Format(time.RFC3339), msg.Headers[HeaderTimestamp])
	}

	var decoded map[string]int
	if err := msg.DecodeValue(&decoded); err != nil || decoded["slots"] != 2 {
		t.Errorf("failed to decode value: %v %v", decoded, err)
	}
}

func TestMessageBuilder_GeneratesEventID(t *testing.T) {
	msg, err := NewMessage().WithKey("k").WithValue("v").Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.GetEventID() == "" {
		t.Error("expected a generated event id")
	}
}

func TestMessageBuilder_UnencodableValue(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if err == nil {
		t.Fatal("expected an encoding error")
	}
}

func TestRetryCount(t *testing.T) {
	var msg Message
	if msg.GetRetryCount() != 0 {
		t.Fatalf("expected 0 retries, got %d", msg.GetRetryCount())
	}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if msg.GetRetryCount() != 12 {
		t.Errorf("expected 12 retries, got %d", msg.GetRetryCount())
	}
}

func TestDLQMessage_KeepsOriginalHeaders(t *testing.T) {
	original := Message{
		Key:     "court-1",
		Value:   []byte(`{}`),
		Headers: map[string]string{HeaderEventID: "ev-1"},
	}

	out := dlqMessage(original, "bookings.events", errors.New("boom"))

	if out.Headers[HeaderEventID] != "ev-1" {
		t.Errorf("expected event id to be kept, got %v", out.Headers)
	}
	if out.Headers[HeaderOriginalTopic] != "bookings.events" || out.Headers[HeaderDLQError] != "boom" {
		t.Errorf("expected failure headers, got %v", out.Headers)
	}
	if _, ok := original.Headers[HeaderDLQError]; ok {
		t.Error("original headers were modified")
	}
}

func TestDLQMessage_NilHeaders(t *testing.T) {
	out := dlqMessage(Message{Key: "k"}, "t", errors.New("boom"))
	if out.Headers[HeaderDLQError] != "boom" {
		t.Errorf("expected failure header, got %v", out.Headers)
	}
}

func newTestConsumer(handler MessageHandler, maxRetries int) *Consumer {
	return &Consumer{
		topic:      "bookings.events",
		groupID:    "test",
		maxRetries: maxRetries,
		backoff:    time.Millisecond,
		handler:    handler,
		log: logger.New(logger.Config{
			Level:     "info",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
	}
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		failWith  func() error
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "succeeds first time",
			wantCalls: 1,
		},
		{
			name:      "transient failure then success",
			failures:  2,
			failWith:  func() error { return NewTransientError("smtp busy", nil) },
			wantCalls: 3,
		},
		{
			name:      "transient failures exhaust retries",
			failures:  10,
			failWith:  func() error { return NewTransientError("smtp busy", nil) },
			wantCalls: 4,
			wantErr:   true,
		},
		{
			name:      "permanent failure is not retried",
			failures:  10,
			failWith:  func() error { return NewPermanentError("bad payload", nil) },
			wantCalls: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			c := newTestConsumer(func(ctx context.Context, msg Message) error {
				calls++
				if calls <= tt.failures {
					return tt.failWith()
				}
				return nil
			}, 3)

			err := c.Process(context.Background(), Message{Headers: map[string]string{}})

			if (err != nil) != tt.wantErr {
				t.Errorf("Process() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("expected %d handler calls, got %d", tt.wantCalls, calls)
			}
		})
	}
}

func TestProcess_MiddlewareOrder(t *testing.T) {
	var trace []string
	c := newTestConsumer(func(ctx context.Context, msg Message) error {
		trace = append(trace, "handler")
		return nil
	}, 0)

	for _, name := range []string{"outer", "inner"} {
		name := name
		c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			trace = append(trace, name)
			return next(ctx, msg)
		})
	}

	if err := c.Process(context.Background(), Message{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(trace, ","); got != "outer,inner,handler" {
		t.Errorf("unexpected order %s", got)
	}
}

func TestProcess_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := newTestConsumer(func(ctx context.Context, msg Message) error {
		cancel()
		return NewTransientError("busy", nil)
	}, 5)
	c.backoff = time.Hour

	err := c.Process(ctx, Message{Headers: map[string]string{}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
