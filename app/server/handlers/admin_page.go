package handlers

import (
	"errors"
	"net/http"
	"xmpp-homepage/app/server/models"
	"xmpp-homepage/app/server/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func pageInfo(page *models.Page) *ContentInfoWithID {
	return &ContentInfoWithID{
		Id:           &page.ID,
		Published:    &page.Published,
		AuthorId:     page.AuthorID,
		Translations: translationInfos(page.Translations),
		Created:      utils.P(page.CreatedAt.Unix()),
		Updated:      utils.P(page.UpdatedAt.Unix()),
	}
}

func (a *App) PageCreate(c echo.Context) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req ContentInfoInput
	if err = c.Bind(&req); err != nil || req.Translations == nil {
		return a.er(c, http.StatusBadRequest)
	}
	ts, err := a.translationsFromInput(*req.Translations)
	if err != nil {
		a.l.Info("invalid translations", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	jwtUser, _ := a.getJwtUser(c)
	page := models.Page{AuthorID: &jwtUser.ID}
	if req.Published != nil {
		page.Published = *req.Published
	}

	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Translations").Create(&page).Error; err != nil {
			return err
		}
		return replaceTranslations(tx, models.OwnerTypePage, page.ID, ts)
	}); err != nil {
		return a.er(c, a.contentWriteStatus(err))
	}
	page.Translations = ts
	a.invalidateMenu(rctx)

	return c.JSON(http.StatusCreated, pageInfo(&page))
}

func (a *App) PageList(c echo.Context) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	var params PaginationParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &params); err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	var (
		pages      []models.Page
		pagesCount int64
	)

	showAll, page, limit := a.parsePagination(params)
	queryBase := a.db.WithContext(rctx).Model(&models.Page{}).Preload("Translations").Order("id ASC")
	if !showAll {
		queryBase = queryBase.Limit(limit).Offset(page * limit)
	}

	if err := queryBase.Find(&pages).Error; err != nil {
		a.l.Error("failed to get page list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.Page{}).Count(&pagesCount).Error; err != nil {
		a.l.Error("failed to count page", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resPages := []ContentInfoWithID{}
	for i := range pages {
		resPages = append(resPages, *pageInfo(&pages[i]))
	}

	return c.JSON(http.StatusOK, &ContentListResponse{
		Limit:   &limit,
		PageMax: utils.P(a.calcMaxPage(pagesCount, showAll, limit)),
		List:    &resPages,
	})
}

func (a *App) PageGet(c echo.Context, id uint) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	var page models.Page
	if err := a.db.WithContext(c.Request().Context()).Preload("Translations").First(&page, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to get page", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, pageInfo(&page))
}

func (a *App) PageUpdate(c echo.Context, id uint) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req ContentInfoInput
	if err = c.Bind(&req); err != nil {
		return a.er(c, http.StatusBadRequest)
	}
	var ts models.Translations
	if req.Translations != nil {
		if ts, err = a.translationsFromInput(*req.Translations); err != nil {
			a.l.Info("invalid translations", zap.Error(err))
			return a.er(c, http.StatusBadRequest)
		}
	}

	var page models.Page
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&page, "id = ?", id).Error; err != nil {
			return err
		}
		if req.Published != nil {
			if err := tx.Model(&page).Update("published", *req.Published).Error; err != nil {
				return err
			}
		}
		if ts != nil {
			return replaceTranslations(tx, models.OwnerTypePage, page.ID, ts)
		}
		return nil
	}); err != nil {
		return a.er(c, a.contentWriteStatus(err))
	}
	a.invalidateMenu(rctx)

	return a.PageGet(c, id)
}

func (a *App) PageDelete(c echo.Context, id uint) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("owner_type = ? AND owner_id = ?", models.OwnerTypePage, id).Delete(&models.Translation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Page{}, id).Error
	}); err != nil {
		a.l.Error("failed to delete page", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	a.invalidateMenu(rctx)

	return c.NoContent(http.StatusOK)
}
