package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentView 是页面或博客文章在当前语言下的内容
type ContentView struct {
	ID      uint
	Title   string
	Slug    string
	Text    template.HTML // 由管理员编写的 HTML
	URL     string
	Sticky  bool
	Created string
}

func newContentView(t *models.Translation, id uint, url string) ContentView {
	return ContentView{
		ID:    id,
		Title: t.Title,
		Slug:  t.Slug,
		Text:  template.HTML(t.Text),
		URL:   url,
	}
}

func (a *App) fallbackLanguage() string {
	return a.i18n.Default()
}

// PageView 按任意语言的 slug 查找页面， slug 不是当前语言的时候重定向
func (a *App) PageView(c echo.Context) error {
	rctx := c.Request().Context()
	slug := c.Param("slug")
	lang := middlewares.GetLanguage(c)

	var page models.Page
	if err := a.db.WithContext(rctx).
		Scopes(models.Published, models.BySlug(models.OwnerTypePage, slug)).
		Preload("Translations").
		First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound()
		}
		a.l.Error("failed to get page", zap.String("slug", slug), zap.Error(err))
		return err
	}

	t := page.Translations.Get(lang, a.fallbackLanguage())
	if t == nil {
		return notFound()
	}
	if t.Slug != slug {
		return middlewares.Redirect(c, page.AbsoluteURL(lang, a.fallbackLanguage()))
	}

	return c.Render(http.StatusOK, "core/page.html", map[string]any{
		"Page": newContentView(t, page.ID, page.AbsoluteURL(lang, a.fallbackLanguage())),
	})
}

func (a *App) BlogPostView(c echo.Context) error {
	rctx := c.Request().Context()
	slug := c.Param("slug")
	lang := middlewares.GetLanguage(c)

	var post models.BlogPost
	if err := a.db.WithContext(rctx).
		Scopes(models.Published, models.BySlug(models.OwnerTypeBlogPost, slug)).
		Preload("Translations").
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound()
		}
		a.l.Error("failed to get blog post", zap.String("slug", slug), zap.Error(err))
		return err
	}

	t := post.Translations.Get(lang, a.fallbackLanguage())
	if t == nil {
		return notFound()
	}
	if t.Slug != slug {
		return middlewares.Redirect(c, post.AbsoluteURL(lang, a.fallbackLanguage()))
	}

	view := newContentView(t, post.ID, post.AbsoluteURL(lang, a.fallbackLanguage()))
	view.Sticky = post.Sticky
	view.Created = post.CreatedAt.Format("2006-01-02")
	return c.Render(http.StatusOK, "core/blog_post.html", map[string]any{
		"Post": view,
	})
}

// BlogPostListView 置顶文章在前，每页 constants.BlogPostsPerPage 篇
func (a *App) BlogPostListView(c echo.Context) error {
	rctx := c.Request().Context()
	lang := middlewares.GetLanguage(c)

	page, err := parsePage(c)
	if err != nil {
		return err
	}

	var count int64
	if err := a.db.WithContext(rctx).Model(&models.BlogPost{}).Scopes(models.Published).Count(&count).Error; err != nil {
		a.l.Error("failed to count blog posts", zap.Error(err))
		return err
	}
	pageMax := maxPage(count, constants.BlogPostsPerPage)
	if page > pageMax {
		return notFound()
	}

	var posts []models.BlogPost
	if err := a.db.WithContext(rctx).
		Scopes(models.Published, models.BlogOrder).
		Preload("Translations").
		Limit(constants.BlogPostsPerPage).
		Offset((page - 1) * constants.BlogPostsPerPage).
		Find(&posts).Error; err != nil {
		a.l.Error("failed to get blog posts", zap.Error(err))
		return err
	}

	views := make([]ContentView, 0, len(posts))
	for i := range posts {
		t := posts[i].Translations.Get(lang, a.fallbackLanguage())
		if t == nil {
			continue
		}
		view := newContentView(t, posts[i].ID, posts[i].AbsoluteURL(lang, a.fallbackLanguage()))
		view.Sticky = posts[i].Sticky
		view.Created = posts[i].CreatedAt.Format("2006-01-02")
		views = append(views, view)
	}

	return c.Render(http.StatusOK, "core/blog_list.html", map[string]any{
		"Posts":    views,
		"Page":     page,
		"PageMax":  pageMax,
		"HasPrev":  page > 1,
		"HasNext":  page < pageMax,
		"ListPath": middlewares.URL(c, constants.RouteBlogList),
	})
}
