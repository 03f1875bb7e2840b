// Package mailqueue 是网站与 worker 之间共享的待发送邮件队列。
package mailqueue

import (
	"context"
	"errors"
	"fmt"
	"time"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/metrics"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

type Mail struct {
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`

	// 发送完成后给用户留下的消息
	UserID        uint           `json:"user_id,omitempty"`
	NotifyMessage string         `json:"notify_message,omitempty"`
	NotifyPayload map[string]any `json:"notify_payload,omitempty"`
}

type Queue struct {
	rdb *redis.Client
	key string
}

func New(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb, key: constants.CacheKeyMailQueue}
}

func (q *Queue) Enqueue(ctx context.Context, mail *Mail) error {
	if len(mail.To) == 0 {
		return errors.New("mail has no recipients")
	}

	data, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("failed to encode mail: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue mail: %w", err)
	}

	metrics.RecordMail("queued")
	return nil
}

// Dequeue 阻塞等待下一封邮件，超时返回 nil, nil
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Mail, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue mail: %w", err)
	}

	// res[0] 为键名
	var mail Mail
	if err := json.Unmarshal([]byte(res[1]), &mail); err != nil {
		return nil, fmt.Errorf("failed to decode mail: %w", err)
	}
	return &mail, nil
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
