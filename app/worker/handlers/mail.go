package handlers

import (
	"context"
	"fmt"
	"time"
	"xmpp-homepage/app/server/config"
	"xmpp-homepage/app/server/mailqueue"
	"xmpp-homepage/app/server/metrics"
	"xmpp-homepage/app/server/models"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageMailFailed 是邮件发送失败时留给用户的消息
const MessageMailFailed = "mail.failed"

// Sender 把一封邮件交给外部服务
type Sender interface {
	Send(ctx context.Context, m *mailqueue.Mail) error
}

type SMTPSender struct {
	cfg *config.MailConfig
}

func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) message(m *mailqueue.Mail) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.cfg.From, err)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	if m.ReplyTo != "" {
		if err := msg.ReplyTo(m.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to %q: %w", m.ReplyTo, err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	return msg, nil
}

func (s *SMTPSender) Send(ctx context.Context, m *mailqueue.Mail) error {
	msg, err := s.message(m)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.SMTPPort),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.SMTPUsername),
			mail.WithPassword(s.cfg.SMTPPassword),
		)
	}
	client, err := mail.NewClient(s.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err = client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// MailSender 从队列中取出邮件并发送
type MailSender struct {
	l      *zap.Logger
	db     *gorm.DB
	queue  *mailqueue.Queue
	sender Sender

	pollTimeout time.Duration
}

func NewMailSender(l *zap.Logger, db *gorm.DB, queue *mailqueue.Queue, sender Sender) *MailSender {
	return &MailSender{
		l:           l.Named("mail"),
		db:          db,
		queue:       queue,
		sender:      sender,
		pollTimeout: 5 * time.Second,
	}
}

func (s *MailSender) String() string {
	return "mail-sender"
}

func (s *MailSender) Serve(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m, err := s.queue.Dequeue(ctx, s.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// 交给 supervisor 退避后重启
			return err
		}
		if m == nil {
			continue
		}

		s.Deliver(ctx, m)
	}
}

// Deliver 发送一封邮件，并把结果记录为用户消息
func (s *MailSender) Deliver(ctx context.Context, m *mailqueue.Mail) {
	if err := s.sender.Send(ctx, m); err != nil {
		s.l.Error("failed to send mail",
			zap.Strings("to", m.To),
			zap.String("subject", m.Subject),
			zap.Error(err),
		)
		metrics.RecordMail("failed")
		s.notify(ctx, m.UserID, models.MessageLevelError, MessageMailFailed, map[string]any{"Subject": m.Subject})
		return
	}

	s.l.Debug("mail sent", zap.Strings("to", m.To), zap.String("subject", m.Subject))
	metrics.RecordMail("sent")
	if m.NotifyMessage != "" {
		s.notify(ctx, m.UserID, models.MessageLevelSuccess, m.NotifyMessage, m.NotifyPayload)
	}
}

func (s *MailSender) notify(ctx context.Context, userID uint, level int, message string, payload map[string]any) {
	if userID == 0 {
		return
	}
	if err := s.db.WithContext(ctx).Create(&models.CachedMessage{
		UserID:  userID,
		Level:   level,
		Message: message,
		Payload: payload,
	}).Error; err != nil {
		s.l.Error("failed to store message", zap.Uint("user", userID), zap.String("message", message), zap.Error(err))
	}
}
