package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"xmpp-homepage/app/server/xmpp"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	TemplateNotFound     = "core/errors/404.html"
	TemplateXMPPBackend  = "core/errors/xmpp_backend.html"
	TemplateGenericError = "core/errors/error.html"
)

// ResponseError 中断处理并渲染指定的页面
type ResponseError struct {
	Status   int
	Template string
	Data     map[string]any
	Err      error
}

func (e *ResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Template, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Template)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// HTTPErrorHandler 把 XMPP 后端错误与 ResponseError 渲染为页面，其他错误交给 echo 处理
func (a *App) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, template, data := http.StatusInternalServerError, "", map[string]any{}

	var (
		backendErr  *xmpp.BackendError
		responseErr *ResponseError
		httpErr     *echo.HTTPError
	)
	switch {
	case errors.As(err, &backendErr):
		a.l.Error("xmpp backend error", zap.String("op", backendErr.Op), zap.Error(backendErr.Err))
		status, template = http.StatusServiceUnavailable, TemplateXMPPBackend
	case errors.As(err, &responseErr):
		status, template = responseErr.Status, responseErr.Template
		if responseErr.Data != nil {
			data = responseErr.Data
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if isAPIRequest(c) {
			_ = a.er(c, status)
			return
		}
		if status == http.StatusNotFound {
			template = TemplateNotFound
		} else if status >= http.StatusInternalServerError || status < http.StatusBadRequest {
			c.Echo().DefaultHTTPErrorHandler(err, c)
			return
		} else {
			template = TemplateGenericError
			data["Status"] = status
			data["StatusText"] = http.StatusText(status)
		}
	default:
		a.l.Error("unhandled error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		if isAPIRequest(c) {
			_ = a.er(c, status)
			return
		}
		c.Echo().DefaultHTTPErrorHandler(err, c)
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	if err := c.Render(status, template, data); err != nil {
		a.l.Error("failed to render error page", zap.String("template", template), zap.Error(err))
		_ = c.String(status, http.StatusText(status))
	}
}

func notFound() error {
	return &ResponseError{Status: http.StatusNotFound, Template: TemplateNotFound}
}
