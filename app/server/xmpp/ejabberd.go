package xmpp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"xmpp-homepage/app/server/metrics"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Ejabberd 通过 mod_http_api 管理账户
type Ejabberd struct {
	l      *zap.Logger
	url    string
	token  string
	client *http.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
}

var _ Backend = (*Ejabberd)(nil)

// apiError 是 ejabberd 返回的非 2xx 响应
type apiError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("ejabberd responded %d (code %d): %s", e.Status, e.Code, e.Message)
}

func NewEjabberd(l *zap.Logger, url, token string, timeout time.Duration) *Ejabberd {
	e := &Ejabberd{
		l:      l,
		url:    strings.TrimSuffix(url, "/"),
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
	e.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "ejabberd-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// 客户端错误（例如用户已存在）说明服务器工作正常
		IsSuccessful: func(err error) bool {
			var ae *apiError
			if errors.As(err, &ae) {
				return ae.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return e
}

func (e *Ejabberd) call(ctx context.Context, command string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	return e.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url+"/"+command, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if e.token != "" {
			req.Header.Set("Authorization", "Bearer "+e.token)
		}

		res, err := e.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		data, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, err
		}
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			ae := &apiError{Status: res.StatusCode}
			_ = json.Unmarshal(data, ae)
			return nil, ae
		}
		return data, nil
	})
}

// rescode 解析返回的整数结果， 0 表示成功
func rescode(data []byte) (int, error) {
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func (e *Ejabberd) UserExists(ctx context.Context, node, domain string) (bool, error) {
	data, err := e.call(ctx, "check_account", map[string]string{"user": node, "host": domain})
	metrics.RecordBackendRequest("user_exists", err)
	if err != nil {
		return false, &BackendError{Op: "user_exists", Err: err}
	}
	code, err := rescode(data)
	if err != nil {
		return false, &BackendError{Op: "user_exists", Err: err}
	}
	return code == 0, nil
}

func (e *Ejabberd) CreateUser(ctx context.Context, node, domain, password, _ string) error {
	_, err := e.call(ctx, "register", map[string]string{"user": node, "host": domain, "password": password})
	metrics.RecordBackendRequest("create_user", err)
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Status == http.StatusConflict {
			return ErrUserExists
		}
		return &BackendError{Op: "create_user", Err: err}
	}
	return nil
}

func (e *Ejabberd) CheckPassword(ctx context.Context, node, domain, password string) (bool, error) {
	data, err := e.call(ctx, "check_password", map[string]string{"user": node, "host": domain, "password": password})
	metrics.RecordBackendRequest("check_password", err)
	if err != nil {
		// 令牌无效时服务器会返回 401 或 403 ，不能当作密码错误
		var ae *apiError
		if errors.As(err, &ae) && ae.Status < http.StatusInternalServerError &&
			ae.Status != http.StatusUnauthorized && ae.Status != http.StatusForbidden {
			return false, nil
		}
		return false, &BackendError{Op: "check_password", Err: err}
	}
	code, err := rescode(data)
	if err != nil {
		return false, &BackendError{Op: "check_password", Err: err}
	}
	return code == 0, nil
}

func (e *Ejabberd) SetPassword(ctx context.Context, node, domain, password string) error {
	_, err := e.call(ctx, "change_password", map[string]string{"user": node, "host": domain, "newpass": password})
	metrics.RecordBackendRequest("set_password", err)
	if err != nil {
		return &BackendError{Op: "set_password", Err: err}
	}
	return nil
}

func (e *Ejabberd) RemoveUser(ctx context.Context, node, domain string) error {
	_, err := e.call(ctx, "unregister", map[string]string{"user": node, "host": domain})
	metrics.RecordBackendRequest("remove_user", err)
	if err != nil {
		return &BackendError{Op: "remove_user", Err: err}
	}
	return nil
}
