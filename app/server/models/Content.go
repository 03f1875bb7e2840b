package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Translation 保存页面与博客文章的多语言内容
type Translation struct {
	gorm.Model

	OwnerID   uint   `gorm:"column:owner_id;index:idx_translation_owner"`
	OwnerType string `gorm:"column:owner_type;index:idx_translation_owner"` // 表名： pages 或 blog_posts
	Language  string `gorm:"column:language"`
	Title     string `gorm:"column:title"`
	Slug      string `gorm:"column:slug;index"`
	Text      string `gorm:"column:text"`
}

type Translations []Translation

// Get 返回指定语言的翻译，没有时依次使用 fallback 语言和第一个翻译
func (ts Translations) Get(lang, fallback string) *Translation {
	for i := range ts {
		if ts[i].Language == lang {
			return &ts[i]
		}
	}
	for i := range ts {
		if ts[i].Language == fallback {
			return &ts[i]
		}
	}
	if len(ts) > 0 {
		return &ts[0]
	}
	return nil
}

type Page struct {
	gorm.Model

	Published    bool         `gorm:"column:published;index"`
	AuthorID     *uint        `gorm:"column:author_id"`
	Translations Translations `gorm:"polymorphic:Owner"`
}

type BlogPost struct {
	gorm.Model

	Published    bool         `gorm:"column:published;index"`
	Sticky       bool         `gorm:"column:sticky;index"` // 置顶
	AuthorID     *uint        `gorm:"column:author_id"`
	Translations Translations `gorm:"polymorphic:Owner"`
}

const (
	OwnerTypePage     = "pages"
	OwnerTypeBlogPost = "blog_posts"
)

func Published(db *gorm.DB) *gorm.DB {
	return db.Where("published = ?", true)
}

// BlogOrder 置顶的文章在前，之后按创建时间倒序
func BlogOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sticky DESC").Order("created_at DESC")
}

// Slug 返回当前语言的 slug
func (p *Page) Slug(lang, fallback string) string {
	if t := p.Translations.Get(lang, fallback); t != nil {
		return t.Slug
	}
	return ""
}

func (p *Page) AbsoluteURL(lang, fallback string) string {
	return fmt.Sprintf("/p/%s/", p.Slug(lang, fallback))
}

func (p *BlogPost) Slug(lang, fallback string) string {
	if t := p.Translations.Get(lang, fallback); t != nil {
		return t.Slug
	}
	return ""
}

func (p *BlogPost) AbsoluteURL(lang, fallback string) string {
	return fmt.Sprintf("/b/%s/", p.Slug(lang, fallback))
}

// BySlug 匹配任意语言的 slug
func BySlug(ownerType, slug string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		sub := db.Session(&gorm.Session{NewDB: true}).
			Model(&Translation{}).
			Select("owner_id").
			Where("owner_type = ? AND slug = ?", ownerType, slug)
		return db.Where("id IN (?)", sub)
	}
}
