package mailqueue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newQueue(t *testing.T) *Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb)
}

func TestQueueOrder(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()

	for _, subject := range []string{"first", "second"} {
		if err := q.Enqueue(ctx, &Mail{To: []string{"a@example.com"}, Subject: subject, UserID: 3,
			NotifyPayload: map[string]any{"email": "a@example.com"}}); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}
	if n, _ := q.Len(ctx); n != 2 {
		t.Fatalf("Len() = %d, want 2", n)
	}

	m, err := q.Dequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if m.Subject != "first" || m.UserID != 3 || m.NotifyPayload["email"] != "a@example.com" {
		t.Errorf("Dequeue() = %+v", m)
	}
	m, _ = q.Dequeue(ctx, time.Second)
	if m.Subject != "second" {
		t.Errorf("Dequeue() subject = %q, want second", m.Subject)
	}
}

func TestEnqueueWithoutRecipient(t *testing.T) {
	q := newQueue(t)
	if err := q.Enqueue(context.Background(), &Mail{Subject: "x"}); err == nil {
		t.Error("Enqueue() without recipients should fail")
	}
}
