package inits

import (
	"fmt"
	"xmpp-homepage/app/server/config"
	"xmpp-homepage/app/server/i18n"
	"xmpp-homepage/app/server/templates"
)

// I18n 加载翻译与页面模板，模板依赖翻译提供的语言列表
func I18n(cfg *config.Config) (*i18n.I18n, *templates.Renderer, error) {
	t, err := i18n.New(cfg.Languages)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load translations: %w", err)
	}

	r, err := templates.New(cfg, t)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return t, r, nil
}
