package middlewares

import (
	"encoding/base64"
	"net/http"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/models"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

const messagesCookieName = "hp_messages"

type Message struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Tag 返回对应的 bootstrap alert 类
func (m Message) Tag() string {
	switch {
	case m.Level >= models.MessageLevelError:
		return "danger"
	case m.Level >= models.MessageLevelWarning:
		return "warning"
	case m.Level >= models.MessageLevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// Messages 读取上一个请求（通常是重定向之前）留下的消息
func Messages() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var msgs []Message
			if cookie, err := c.Cookie(messagesCookieName); err == nil && cookie.Value != "" {
				if data, err := base64.RawURLEncoding.DecodeString(cookie.Value); err == nil {
					_ = json.Unmarshal(data, &msgs)
				}
				c.SetCookie(&http.Cookie{Name: messagesCookieName, Path: "/", MaxAge: -1})
			}
			c.Set(constants.ContextKeyMessages, &msgs)
			return next(c)
		}
	}
}

func AddMessage(c echo.Context, level int, text string) {
	msgs, ok := c.Get(constants.ContextKeyMessages).(*[]Message)
	if !ok {
		msgs = &[]Message{}
		c.Set(constants.ContextKeyMessages, msgs)
	}
	*msgs = append(*msgs, Message{Level: level, Text: text})
}

// GetMessages 返回并清空待显示的消息
func GetMessages(c echo.Context) []Message {
	msgs, ok := c.Get(constants.ContextKeyMessages).(*[]Message)
	if !ok || msgs == nil {
		return nil
	}
	res := *msgs
	*msgs = nil
	return res
}

// Redirect 把未显示的消息保存到 Cookie ，然后重定向
func Redirect(c echo.Context, url string) error {
	if msgs := GetMessages(c); len(msgs) > 0 {
		if data, err := json.Marshal(msgs); err == nil {
			c.SetCookie(&http.Cookie{
				Name:     messagesCookieName,
				Value:    base64.RawURLEncoding.EncodeToString(data),
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
	}
	return c.Redirect(http.StatusFound, url)
}
