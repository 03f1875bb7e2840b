package models

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const menuTargetPagePrefix = "page:"

type MenuItem struct {
	gorm.Model

	Order  int               `gorm:"column:order_index;index"`      // 排序，越小越靠前
	Target string            `gorm:"column:target"`                 // 链接地址，或 page:<id> 指向页面
	Titles map[string]string `gorm:"column:titles;serializer:json"` // 各语言的标题
}

// MenuLink 是菜单项在某个语言下的标题与链接
type MenuLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// MenuEntry 是可以序列化进缓存的菜单项
type MenuEntry struct {
	ID    uint                `json:"id"`
	Links map[string]MenuLink `json:"links"`
}

// Link 返回指定语言的链接，没有时使用 fallback 语言
func (e *MenuEntry) Link(lang, fallback string) MenuLink {
	if l, ok := e.Links[lang]; ok {
		return l
	}
	return e.Links[fallback]
}

func (m *MenuItem) PageID() (uint, bool) {
	if !strings.HasPrefix(m.Target, menuTargetPagePrefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(m.Target, menuTargetPagePrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// CachedData 计算所有语言下的标题与链接，指向页面的菜单项需要查询页面的 slug
func (m *MenuItem) CachedData(ctx context.Context, db *gorm.DB, languages []string) (*MenuEntry, error) {
	entry := &MenuEntry{ID: m.ID, Links: make(map[string]MenuLink, len(languages))}
	fallback := ""
	if len(languages) > 0 {
		fallback = languages[0]
	}

	var page *Page
	if pageID, ok := m.PageID(); ok {
		page = &Page{}
		if err := db.WithContext(ctx).Preload("Translations").First(page, "id = ?", pageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				page = nil
			} else {
				return nil, fmt.Errorf("failed to get page %d: %w", pageID, err)
			}
		}
	}

	for _, lang := range languages {
		title, ok := m.Titles[lang]
		if !ok {
			title = m.Titles[fallback]
		}
		link := MenuLink{Title: title, URL: m.Target}
		if page != nil {
			link.URL = page.AbsoluteURL(lang, fallback)
			if title == "" {
				if t := page.Translations.Get(lang, fallback); t != nil {
					link.Title = t.Title
				}
			}
		} else if _, ok := m.PageID(); ok {
			link.URL = "/"
		}
		entry.Links[lang] = link
	}

	return entry, nil
}

// LoadMenu 读取所有菜单项并计算缓存数据
func LoadMenu(ctx context.Context, db *gorm.DB, languages []string) ([]MenuEntry, error) {
	var items []MenuItem
	if err := db.WithContext(ctx).Order("order_index ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get menu items: %w", err)
	}

	entries := make([]MenuEntry, 0, len(items))
	for i := range items {
		entry, err := items[i].CachedData(ctx, db, languages)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}
