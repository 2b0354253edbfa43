package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		if d <= 0 || d > max {
			t.Fatalf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
	if d := backoffWithJitter(min, max, 1); d < min/2 {
		t.Fatalf("first backoff too small: %v", d)
	}
}

type stubHandler struct {
	calls int
	fail  int
}

func (s *stubHandler) Topic() string { return "analysis-requests" }

func (s *stubHandler) Handle(context.Context, []byte) error {
	s.calls++
	if s.calls <= s.fail {
		return errors.New("boom")
	}
	return nil
}

func TestProcessRetriesUntilSuccess(t *testing.T) {
	c, err := NewConsumer(nil, WithConsumerBrokers([]string{"localhost:9092"}), WithConsumerRetry(3, time.Millisecond, time.Millisecond))
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	h := &stubHandler{fail: 2}
	c.RegisterHandler(h)

	c.process(context.Background(), kafka.Message{Topic: h.Topic(), Value: []byte(`{}`)})
	if h.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", h.calls)
	}
}

func TestProcessRecoversPanics(t *testing.T) {
	c, _ := NewConsumer(nil, WithConsumerBrokers([]string{"localhost:9092"}))
	err := c.handleSafely(context.Background(), panicHandler{}, kafka.Message{Topic: "t"})
	if err == nil {
		t.Fatalf("expected panic to surface as error")
	}
}

type panicHandler struct{}

func (panicHandler) Topic() string                        { return "t" }
func (panicHandler) Handle(context.Context, []byte) error { panic("bad payload") }

func TestNewConsumerRequiresBrokers(t *testing.T) {
	if _, err := NewConsumer(nil); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
