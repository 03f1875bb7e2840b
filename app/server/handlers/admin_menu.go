package handlers

import (
	"errors"
	"net/http"
	"strings"
	"xmpp-homepage/app/server/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func menuItemInfo(item *models.MenuItem) *MenuItemWithID {
	titles := item.Titles
	if titles == nil {
		titles = map[string]string{}
	}
	return &MenuItemWithID{
		Id:     &item.ID,
		Order:  &item.Order,
		Target: &item.Target,
		Titles: &titles,
	}
}

// menuMapFields 检查并写入菜单项字段，指向页面的目标必须存在
func (a *App) menuMapFields(c echo.Context, req *MenuItemInput, item *models.MenuItem) (error, int) {
	if req.Order != nil {
		item.Order = *req.Order
	}
	if req.Titles != nil {
		titles := map[string]string{}
		for lang, title := range *req.Titles {
			if !a.i18n.Supported(lang) {
				return errors.New("unsupported language " + lang), http.StatusBadRequest
			}
			titles[lang] = strings.TrimSpace(title)
		}
		item.Titles = titles
	}
	if req.Target != nil {
		item.Target = strings.TrimSpace(*req.Target)
		if item.Target == "" {
			return errors.New("empty target"), http.StatusBadRequest
		}
		if pageID, ok := item.PageID(); ok {
			if err, status := validateIDs[models.Page](a.db.WithContext(c.Request().Context()), []uint{pageID}); err != nil {
				return err, status
			}
		} else if strings.HasPrefix(item.Target, "page:") {
			return errors.New("invalid page target"), http.StatusBadRequest
		}
	}
	return nil, http.StatusOK
}

func (a *App) MenuItemCreate(c echo.Context) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req MenuItemInput
	if err = c.Bind(&req); err != nil || req.Target == nil {
		return a.er(c, http.StatusBadRequest)
	}

	var item models.MenuItem
	if err, statusCode := a.menuMapFields(c, &req, &item); err != nil {
		a.l.Info("invalid menu item", zap.Error(err))
		return a.er(c, statusCode)
	}

	if err := a.db.WithContext(rctx).Create(&item).Error; err != nil {
		a.l.Error("failed to create menu item", zap.Any("item", item), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	a.invalidateMenu(rctx)

	return c.JSON(http.StatusCreated, menuItemInfo(&item))
}

func (a *App) MenuItemList(c echo.Context) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	// 菜单项不多，不分页
	var items []models.MenuItem
	if err := a.db.WithContext(c.Request().Context()).Order("order_index ASC").Order("id ASC").Find(&items).Error; err != nil {
		a.l.Error("failed to get menu items", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resItems := []MenuItemWithID{}
	for i := range items {
		resItems = append(resItems, *menuItemInfo(&items[i]))
	}

	return c.JSON(http.StatusOK, resItems)
}

func (a *App) MenuItemUpdate(c echo.Context, id uint) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req MenuItemInput
	if err = c.Bind(&req); err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	var item models.MenuItem
	if err := a.db.WithContext(rctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to get menu item", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if err, statusCode := a.menuMapFields(c, &req, &item); err != nil {
		a.l.Info("invalid menu item", zap.Error(err))
		return a.er(c, statusCode)
	}

	// Save 会写入零值，例如 order = 0
	if err := a.db.WithContext(rctx).Save(&item).Error; err != nil {
		a.l.Error("failed to update menu item", zap.Any("item", item), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	a.invalidateMenu(rctx)

	return c.JSON(http.StatusOK, menuItemInfo(&item))
}

func (a *App) MenuItemDelete(c echo.Context, id uint) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	if err := a.db.WithContext(rctx).Delete(&models.MenuItem{}, id).Error; err != nil {
		a.l.Error("failed to delete menu item", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	a.invalidateMenu(rctx)

	return c.NoContent(http.StatusOK)
}
