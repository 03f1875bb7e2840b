package handlers

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"xmpp-homepage/app/server/config"
	"xmpp-homepage/app/server/inits"
	"xmpp-homepage/app/server/mailqueue"
	"xmpp-homepage/app/server/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "worker.db")+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	if err = inits.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func newQueue(t *testing.T) *mailqueue.Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mailqueue.New(rdb)
}

type stubSender struct {
	mu   sync.Mutex
	err  error
	sent []*mailqueue.Mail
}

func (s *stubSender) Send(_ context.Context, m *mailqueue.Mail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m)
	return nil
}

func (s *stubSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func messagesOf(t *testing.T, db *gorm.DB, userID uint) []models.CachedMessage {
	t.Helper()
	var msgs []models.CachedMessage
	if err := db.Where("user_id = ?", userID).Order("id ASC").Find(&msgs).Error; err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	return msgs
}

func TestDeliverStoresNotification(t *testing.T) {
	db := newDB(t)
	sender := &stubSender{}
	s := NewMailSender(zap.NewNop(), db, newQueue(t), sender)

	s.Deliver(context.Background(), &mailqueue.Mail{
		To:            []string{"user@example.com"},
		Subject:       "Confirm",
		UserID:        7,
		NotifyMessage: "messages.email_sent",
		NotifyPayload: map[string]any{"email": "user@example.com"},
	})

	if sender.count() != 1 {
		t.Fatalf("sent %d mails, want 1", sender.count())
	}
	msgs := messagesOf(t, db, 7)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Level != models.MessageLevelSuccess || msgs[0].Message != "messages.email_sent" {
		t.Errorf("message = %+v", msgs[0])
	}
	if msgs[0].Payload["email"] != "user@example.com" {
		t.Errorf("payload = %v", msgs[0].Payload)
	}
}

func TestDeliverWithoutUser(t *testing.T) {
	db := newDB(t)
	s := NewMailSender(zap.NewNop(), db, newQueue(t), &stubSender{})

	s.Deliver(context.Background(), &mailqueue.Mail{To: []string{"admin@example.com"}, Subject: "Contact", NotifyMessage: "x"})

	var n int64
	db.Model(&models.CachedMessage{}).Count(&n)
	if n != 0 {
		t.Errorf("stored %d messages for anonymous mail", n)
	}
}

func TestDeliverFailure(t *testing.T) {
	db := newDB(t)
	s := NewMailSender(zap.NewNop(), db, newQueue(t), &stubSender{err: errors.New("connection refused")})

	s.Deliver(context.Background(), &mailqueue.Mail{
		To:            []string{"user@example.com"},
		Subject:       "Reset password",
		UserID:        3,
		NotifyMessage: "messages.email_sent",
	})

	msgs := messagesOf(t, db, 3)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Level != models.MessageLevelError || msgs[0].Message != MessageMailFailed {
		t.Errorf("message = %+v", msgs[0])
	}
	if msgs[0].Payload["Subject"] != "Reset password" {
		t.Errorf("payload = %v", msgs[0].Payload)
	}
}

func TestMailSenderServe(t *testing.T) {
	db := newDB(t)
	queue := newQueue(t)
	sender := &stubSender{}
	s := NewMailSender(zap.NewNop(), db, queue, sender)
	s.pollTimeout = time.Second

	if err := queue.Enqueue(context.Background(), &mailqueue.Mail{To: []string{"a@example.com"}, Subject: "one"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for sender.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if sender.count() != 1 {
		t.Fatalf("sent %d mails, want 1", sender.count())
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestSMTPSenderMessage(t *testing.T) {
	s := NewSMTPSender(&config.MailConfig{From: "webmaster@example.com"})

	msg, err := s.message(&mailqueue.Mail{
		To:      []string{"user@example.com"},
		ReplyTo: "visitor@example.org",
		Subject: "Hello",
		Body:    "Body",
	})
	if err != nil {
		t.Fatalf("message() error = %v", err)
	}
	if got := msg.GetToString(); len(got) != 1 || !strings.Contains(got[0], "user@example.com") {
		t.Errorf("To = %v", got)
	}

	if _, err = s.message(&mailqueue.Mail{To: []string{"not an address"}}); err == nil {
		t.Error("message() accepted an invalid recipient")
	}

	bad := NewSMTPSender(&config.MailConfig{From: "nobody"})
	if _, err = bad.message(&mailqueue.Mail{To: []string{"user@example.com"}}); err == nil {
		t.Error("message() accepted an invalid sender")
	}
}
