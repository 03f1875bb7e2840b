// Package i18n 加载内嵌的翻译文件，并根据请求选择语言。
package i18n

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

type I18n struct {
	bundle    *i18n.Bundle
	matcher   language.Matcher
	languages []string
}

// New 加载翻译，languages 的第一个为默认语言
func New(languages []string) (*I18n, error) {
	if len(languages) == 0 {
		return nil, fmt.Errorf("no languages configured")
	}

	tags := make([]language.Tag, 0, len(languages))
	for _, lang := range languages {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", lang, err)
		}
		tags = append(tags, tag)
	}

	bundle := i18n.NewBundle(tags[0])
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", f.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, f.Name()); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", f.Name(), err)
		}
	}

	return &I18n{
		bundle:    bundle,
		matcher:   language.NewMatcher(tags),
		languages: languages,
	}, nil
}

func (t *I18n) Languages() []string {
	return t.languages
}

func (t *I18n) Default() string {
	return t.languages[0]
}

func (t *I18n) Supported(lang string) bool {
	for _, l := range t.languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Match 按 Accept-Language 选择语言，无法匹配时返回默认语言
func (t *I18n) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.Default()
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.Default()
	}
	return t.languages[idx]
}

func (t *I18n) Localizer(lang string) *i18n.Localizer {
	return i18n.NewLocalizer(t.bundle, lang, t.Default())
}

// T 翻译消息，找不到时返回消息 ID
func T(loc *i18n.Localizer, messageID string, data map[string]any) string {
	if loc == nil {
		return messageID
	}
	msg, err := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
