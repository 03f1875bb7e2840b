package forms

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"xmpp-homepage/app/server/bootstrap"
	hpi18n "xmpp-homepage/app/server/i18n"
)

// NodeWidget 渲染用户名中 @ 之前的部分
type NodeWidget struct {
	bootstrap.Input
	Register bool // 注册时由前端检查用户名是否已存在
}

func NewNodeWidget(minLength, maxLength int, register bool) *NodeWidget {
	w := &NodeWidget{Input: *bootstrap.TextInput(), Register: register}
	w.Attrs = bootstrap.Attrs{"pattern": fmt.Sprintf("[^@ ]{%d,%d}", minLength, maxLength)}
	return w
}

func (w *NodeWidget) Render(ctx *bootstrap.WidgetContext) template.HTML {
	attrs := ctx.Attrs.Copy()
	if w.Register {
		attrs["data-check-existance"] = "true"
	}
	html := w.Input.Render(&bootstrap.WidgetContext{
		Name:      ctx.Name,
		Value:     ctx.Value,
		Attrs:     attrs,
		Status:    ctx.Status,
		Localizer: ctx.Localizer,
	})
	return `<div class="col-sm-8">` + html + `</div>`
}

// DomainWidget 渲染用户名中的域名部分
type DomainWidget struct {
	bootstrap.Select
}

func NewDomainWidget(domains []string) *DomainWidget {
	w := &DomainWidget{}
	for _, d := range domains {
		w.Choices = append(w.Choices, bootstrap.Choice{Value: d, Label: d})
	}
	return w
}

func (w *DomainWidget) Render(ctx *bootstrap.WidgetContext) template.HTML {
	attrs := ctx.Attrs.Copy()
	attrs.AddClass("custom-select")
	return w.Select.Render(&bootstrap.WidgetContext{
		Name:      ctx.Name,
		Value:     ctx.Value,
		Attrs:     attrs,
		Status:    ctx.Status,
		Localizer: ctx.Localizer,
	})
}

// FingerprintWidget 用于输入 GPG 密钥的指纹
type FingerprintWidget struct {
	bootstrap.Input
}

func NewFingerprintWidget() *FingerprintWidget {
	w := &FingerprintWidget{Input: *bootstrap.TextInput()}
	w.InputClass = "gpg-fingerprint"
	w.Glyphicon = true
	w.Attrs = bootstrap.Attrs{"pattern": "[0-9A-Fa-f ]{40,50}"}
	return w
}

func (w *FingerprintWidget) Render(ctx *bootstrap.WidgetContext) template.HTML {
	attrs := ctx.Attrs.Copy()
	attrs["title"] = hpi18n.T(ctx.Localizer, "forms.fingerprint.title", nil)
	return w.Input.Render(&bootstrap.WidgetContext{
		Name:      ctx.Name,
		Value:     ctx.Value,
		Attrs:     attrs,
		Status:    ctx.Status,
		Localizer: ctx.Localizer,
	})
}

// UsernameWidget 由用户名与域名两个控件组成，提交为 <name>_0 与 <name>_1
type UsernameWidget struct {
	Node          *NodeWidget
	Domain        *DomainWidget
	DefaultDomain string
}

// Decompress 把完整的 JID 拆分成用户名与域名，空值使用默认域名
func (w *UsernameWidget) Decompress(value string) (string, string) {
	if value == "" {
		return "", w.DefaultDomain
	}
	node, domain, found := strings.Cut(strings.ToLower(value), "@")
	if !found {
		return node, w.DefaultDomain
	}
	return node, domain
}

// ValueFromData 合并两个控件的值，任一为空时返回空字符串
func (w *UsernameWidget) ValueFromData(data url.Values, name string) string {
	node := strings.TrimSpace(data.Get(name + "_0"))
	domain := strings.TrimSpace(data.Get(name + "_1"))
	if node == "" || domain == "" {
		return ""
	}
	return strings.ToLower(node + "@" + domain)
}

func (w *UsernameWidget) Render(ctx *bootstrap.WidgetContext) template.HTML {
	node, domain := w.Decompress(ctx.Value)

	nodeAttrs := ctx.Attrs.Copy()
	nodeAttrs["id"] = ctx.Attrs["id"] + "_0"
	domainAttrs := bootstrap.Attrs{"id": ctx.Attrs["id"] + "_1"}

	nodeHTML := w.Node.Render(&bootstrap.WidgetContext{
		Name:      ctx.Name + "_0",
		Value:     node,
		Attrs:     nodeAttrs,
		Status:    ctx.Status,
		Localizer: ctx.Localizer,
	})
	domainHTML := w.Domain.Render(&bootstrap.WidgetContext{
		Name:      ctx.Name + "_1",
		Value:     domain,
		Attrs:     domainAttrs,
		Localizer: ctx.Localizer,
	})
	return `<div class="row username-widget">` + nodeHTML + `<div class="col-sm-4">@` + domainHTML + `</div></div>`
}
