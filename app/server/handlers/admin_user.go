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

func userInfo(user *models.User) *UserInfoWithID {
	info := &UserInfoWithID{
		Id:                &user.ID,
		Username:          &user.Username,
		Email:             &user.Email,
		Blocked:           &user.Blocked,
		IsAdmin:           &user.IsAdmin,
		DefaultLanguage:   &user.DefaultLanguage,
		ConfirmationCount: &user.ConfirmationCount,
		Created:           utils.P(user.CreatedAt.Unix()),
	}
	if user.Confirmed != nil {
		info.Confirmed = utils.P(user.Confirmed.Unix())
	}
	if user.LastActivity != nil {
		info.LastActivity = utils.P(user.LastActivity.Unix())
	}
	return info
}

func (a *App) UserList(c echo.Context) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to get user", zap.Error(err))
		return a.er(c, statusCode)
	}

	var params UserListParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &params); err != nil {
		a.l.Error("failed to bind query", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	var (
		users      []models.User
		usersCount int64
	)

	filters := func(db *gorm.DB) *gorm.DB {
		if params.Blocked != nil {
			if *params.Blocked {
				db = db.Scopes(models.Blocked)
			} else {
				db = db.Scopes(models.NotBlocked)
			}
		}
		if params.Host != nil && *params.Host != "" {
			db = db.Scopes(models.OnHost(*params.Host))
		}
		if params.Confirmations != nil {
			if *params.Confirmations {
				db = db.Scopes(models.HasConfirmations)
			} else {
				db = db.Scopes(models.HasNoConfirmations)
			}
		}
		return db
	}

	showAll, page, limit := a.parsePagination(params.PaginationParams)
	queryBase := a.db.WithContext(rctx).Model(&models.User{}).Scopes(models.WithConfirmationCount, filters).Order("id ASC")
	if !showAll {
		queryBase = queryBase.Limit(limit).Offset(page * limit)
	}

	if err := queryBase.Find(&users).Error; err != nil {
		a.l.Error("failed to get user list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.User{}).Scopes(filters).Count(&usersCount).Error; err != nil {
		a.l.Error("failed to count user", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resUsers := []UserInfoWithID{}
	for i := range users {
		resUsers = append(resUsers, *userInfo(&users[i]))
	}

	return c.JSON(http.StatusOK, &UserListResponse{
		Limit:   &limit,
		PageMax: utils.P(a.calcMaxPage(usersCount, showAll, limit)),
		List:    &resUsers,
	})
}

func (a *App) getUserWithCount(c echo.Context, id uint) (*models.User, error) {
	var user models.User
	if err := a.db.WithContext(c.Request().Context()).
		Model(&models.User{}).
		Scopes(models.WithConfirmationCount).
		First(&user, "users.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *App) UserInfoGet(c echo.Context, id uint) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to get user", zap.Error(err))
		return a.er(c, statusCode)
	}

	// 从数据库中获得指定的用户
	user, err := a.getUserWithCount(c, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get user", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	return c.JSON(http.StatusOK, userInfo(user))
}

func (a *App) UserInfoUpdate(c echo.Context, id uint) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to get user", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req UserInfoUpdate
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	updates := map[string]any{}
	if req.Blocked != nil {
		updates["blocked"] = *req.Blocked
	}
	if req.IsAdmin != nil {
		updates["is_admin"] = *req.IsAdmin
	}
	if len(updates) == 0 {
		return a.er(c, http.StatusBadRequest)
	}

	// 更新用户信息
	res := a.db.WithContext(rctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		a.l.Error("failed to update user", zap.Uint("id", id), zap.Error(res.Error))
		return a.er(c, http.StatusInternalServerError)
	} else if res.RowsAffected == 0 {
		return a.er(c, http.StatusNotFound)
	}

	user, err := a.getUserWithCount(c, id)
	if err != nil {
		a.l.Error("failed to get user", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, userInfo(user))
}
