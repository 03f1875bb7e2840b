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

func blogPostInfo(post *models.BlogPost) *ContentInfoWithID {
	return &ContentInfoWithID{
		Id:           &post.ID,
		Published:    &post.Published,
		Sticky:       &post.Sticky,
		AuthorId:     post.AuthorID,
		Translations: translationInfos(post.Translations),
		Created:      utils.P(post.CreatedAt.Unix()),
		Updated:      utils.P(post.UpdatedAt.Unix()),
	}
}

func (a *App) BlogPostCreate(c echo.Context) error {
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
	post := models.BlogPost{AuthorID: &jwtUser.ID}
	if req.Published != nil {
		post.Published = *req.Published
	}
	if req.Sticky != nil {
		post.Sticky = *req.Sticky
	}

	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Translations").Create(&post).Error; err != nil {
			return err
		}
		return replaceTranslations(tx, models.OwnerTypeBlogPost, post.ID, ts)
	}); err != nil {
		return a.er(c, a.contentWriteStatus(err))
	}
	post.Translations = ts

	return c.JSON(http.StatusCreated, blogPostInfo(&post))
}

func (a *App) BlogPostList(c echo.Context) error {
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
		posts      []models.BlogPost
		postsCount int64
	)

	showAll, page, limit := a.parsePagination(params)
	queryBase := a.db.WithContext(rctx).Model(&models.BlogPost{}).Preload("Translations").Scopes(models.BlogOrder)
	if !showAll {
		queryBase = queryBase.Limit(limit).Offset(page * limit)
	}

	if err := queryBase.Find(&posts).Error; err != nil {
		a.l.Error("failed to get blog post list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.BlogPost{}).Count(&postsCount).Error; err != nil {
		a.l.Error("failed to count blog post", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resPosts := []ContentInfoWithID{}
	for i := range posts {
		resPosts = append(resPosts, *blogPostInfo(&posts[i]))
	}

	return c.JSON(http.StatusOK, &ContentListResponse{
		Limit:   &limit,
		PageMax: utils.P(a.calcMaxPage(postsCount, showAll, limit)),
		List:    &resPosts,
	})
}

func (a *App) BlogPostGet(c echo.Context, id uint) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	var post models.BlogPost
	if err := a.db.WithContext(c.Request().Context()).Preload("Translations").First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to get blog post", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, blogPostInfo(&post))
}

func (a *App) BlogPostUpdate(c echo.Context, id uint) error {
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

	updates := map[string]any{}
	if req.Published != nil {
		updates["published"] = *req.Published
	}
	if req.Sticky != nil {
		updates["sticky"] = *req.Sticky
	}

	var post models.BlogPost
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&post).Updates(updates).Error; err != nil {
				return err
			}
		}
		if ts != nil {
			return replaceTranslations(tx, models.OwnerTypeBlogPost, post.ID, ts)
		}
		return nil
	}); err != nil {
		return a.er(c, a.contentWriteStatus(err))
	}

	return a.BlogPostGet(c, id)
}

func (a *App) BlogPostDelete(c echo.Context, id uint) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	if err := a.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("owner_type = ? AND owner_id = ?", models.OwnerTypeBlogPost, id).Delete(&models.Translation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.BlogPost{}, id).Error
	}); err != nil {
		a.l.Error("failed to delete blog post", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}
