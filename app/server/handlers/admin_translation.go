package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errSlugConflict = errors.New("slug already used")

// translationsFromInput 检查语言与 slug ，每个语言只能出现一次
func (a *App) translationsFromInput(in []TranslationInfo) (models.Translations, error) {
	seen := map[string]struct{}{}
	ts := make(models.Translations, 0, len(in))
	for _, t := range in {
		lang := strings.TrimSpace(t.Language)
		slug := strings.TrimSpace(t.Slug)
		if !a.i18n.Supported(lang) {
			return nil, fmt.Errorf("unsupported language %q", lang)
		}
		if slug == "" || strings.ContainsAny(slug, "/?# ") {
			return nil, fmt.Errorf("invalid slug %q", slug)
		}
		if _, ok := seen[lang]; ok {
			return nil, fmt.Errorf("duplicate language %q", lang)
		}
		seen[lang] = struct{}{}
		ts = append(ts, models.Translation{
			Language: lang,
			Title:    t.Title,
			Slug:     slug,
			Text:     t.Text,
		})
	}
	if len(ts) == 0 {
		return nil, errors.New("no translations")
	}
	return ts, nil
}

func translationInfos(ts models.Translations) *[]TranslationInfo {
	infos := make([]TranslationInfo, 0, len(ts))
	for _, t := range ts {
		infos = append(infos, TranslationInfo{
			Language: t.Language,
			Title:    t.Title,
			Slug:     t.Slug,
			Text:     t.Text,
		})
	}
	return &infos
}

// checkSlugs 确认 slug 没有被同类的其他内容使用
func checkSlugs(tx *gorm.DB, ownerType string, ownerID uint, ts models.Translations) error {
	for _, t := range ts {
		var count int64
		if err := tx.Model(&models.Translation{}).
			Where("owner_type = ? AND slug = ? AND owner_id <> ?", ownerType, t.Slug, ownerID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count slugs: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", errSlugConflict, t.Slug)
		}
	}
	return nil
}

// replaceTranslations 删除旧的翻译并写入新的
func replaceTranslations(tx *gorm.DB, ownerType string, ownerID uint, ts models.Translations) error {
	if err := checkSlugs(tx, ownerType, ownerID, ts); err != nil {
		return err
	}
	if err := tx.Unscoped().Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).Delete(&models.Translation{}).Error; err != nil {
		return fmt.Errorf("failed to delete translations: %w", err)
	}
	for i := range ts {
		ts[i].ID = 0
		ts[i].OwnerType = ownerType
		ts[i].OwnerID = ownerID
	}
	if err := tx.Create(&ts).Error; err != nil {
		return fmt.Errorf("failed to create translations: %w", err)
	}
	return nil
}

// contentWriteStatus 把写入错误映射为状态码
func (a *App) contentWriteStatus(err error) int {
	if errors.Is(err, errSlugConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound
	}
	a.l.Error("failed to write content", zap.Error(err))
	return http.StatusInternalServerError
}

// invalidateMenu 页面与菜单的变化会影响缓存的菜单
func (a *App) invalidateMenu(ctx context.Context) {
	if err := middlewares.InvalidateRequestContext(ctx, a.rdb); err != nil {
		a.l.Error("failed to invalidate request context", zap.Error(err))
	}
}
