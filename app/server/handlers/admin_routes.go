package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// withID 解析路径中的 id 参数
func (a *App) withID(h func(echo.Context, uint) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		var id uint
		if err := echo.PathParamsBinder(c).MustUint("id", &id).BindError(); err != nil || id == 0 {
			return a.er(c, http.StatusBadRequest)
		}
		return h(c, id)
	}
}

// RegisterAdmin 注册管理接口，与 apidocs/openapi.yaml 保持一致
func (a *App) RegisterAdmin(e *echo.Echo) {
	g := e.Group("/api/admin", a.AdminJWT())

	g.POST("/auth/login", a.AuthLogin)

	g.GET("/users", a.UserList)
	g.GET("/users/:id", a.withID(a.UserInfoGet))
	g.PATCH("/users/:id", a.withID(a.UserInfoUpdate))

	g.POST("/pages", a.PageCreate)
	g.GET("/pages", a.PageList)
	g.GET("/pages/:id", a.withID(a.PageGet))
	g.PATCH("/pages/:id", a.withID(a.PageUpdate))
	g.DELETE("/pages/:id", a.withID(a.PageDelete))

	g.POST("/blog", a.BlogPostCreate)
	g.GET("/blog", a.BlogPostList)
	g.GET("/blog/:id", a.withID(a.BlogPostGet))
	g.PATCH("/blog/:id", a.withID(a.BlogPostUpdate))
	g.DELETE("/blog/:id", a.withID(a.BlogPostDelete))

	g.POST("/menu", a.MenuItemCreate)
	g.GET("/menu", a.MenuItemList)
	g.PATCH("/menu/:id", a.withID(a.MenuItemUpdate))
	g.DELETE("/menu/:id", a.withID(a.MenuItemDelete))

	g.POST("/certs", a.CertCreate)
	g.GET("/certs", a.CertList)
	g.GET("/certs/:id", a.withID(a.CertInfoGet))
	g.PATCH("/certs/:id", a.withID(a.CertInfoUpdate))
	g.DELETE("/certs/:id", a.withID(a.CertDelete))
}
