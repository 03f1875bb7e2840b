package bootstrap

import (
	"fmt"
	"html/template"
	"strings"
	hpi18n "xmpp-homepage/app/server/i18n"

	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// WidgetContext 是渲染控件时的上下文
type WidgetContext struct {
	Name      string
	Value     string
	Attrs     Attrs  // 由绑定字段计算出的属性
	Status    string // 反馈图标状态：ok 、 remove 或空
	Localizer *i18n.Localizer
}

type Widget interface {
	Render(ctx *WidgetContext) template.HTML
}

// Base 给控件加上 form-control 与自身的 CSS 类，并可选地追加反馈图标
type Base struct {
	Attrs      Attrs
	InputClass string
	Glyphicon  bool
}

func (w *Base) BuildAttrs(extra Attrs) Attrs {
	attrs := Attrs{}
	attrs.AddClass("form-control")
	attrs.AddClass(w.InputClass)
	attrs.Update(w.Attrs)
	attrs.Update(extra)
	return attrs
}

func (w *Base) icon(status string) template.HTML {
	if !w.Glyphicon {
		return ""
	}
	classes := "glyphicon form-control-feedback"
	if status != "" {
		classes += " glyphicon-" + status
	}
	return template.HTML(fmt.Sprintf(`<span class="%s" aria-hidden="true"></span>`, template.HTMLEscapeString(classes)))
}

type Input struct {
	Base
	Type        string
	RenderValue bool
}

func (w *Input) Render(ctx *WidgetContext) template.HTML {
	attrs := w.BuildAttrs(ctx.Attrs)
	attrs["type"] = w.Type
	attrs["name"] = ctx.Name
	if w.RenderValue && ctx.Value != "" {
		attrs["value"] = ctx.Value
	}
	return template.HTML("<input"+attrs.String()+">") + w.icon(ctx.Status)
}

func TextInput() *Input {
	return &Input{Type: "text", RenderValue: true}
}

func EmailInput() *Input {
	return &Input{
		Base:        Base{InputClass: "valid-email", Glyphicon: true},
		Type:        "email",
		RenderValue: true,
	}
}

// PasswordInput 从不回显已输入的密码
func PasswordInput() *Input {
	return &Input{Type: "password"}
}

type Textarea struct {
	Base
}

func (w *Textarea) Render(ctx *WidgetContext) template.HTML {
	attrs := w.BuildAttrs(ctx.Attrs)
	attrs["name"] = ctx.Name
	if _, ok := attrs["rows"]; !ok {
		attrs["rows"] = "10"
	}
	if _, ok := attrs["cols"]; !ok {
		attrs["cols"] = "40"
	}
	html := "<textarea" + attrs.String() + ">\n" + template.HTMLEscapeString(ctx.Value) + "</textarea>"
	return template.HTML(html) + w.icon(ctx.Status)
}

type Choice struct {
	Value string
	Label string
}

type Select struct {
	Base
	Choices []Choice
}

func (w *Select) Render(ctx *WidgetContext) template.HTML {
	attrs := w.BuildAttrs(ctx.Attrs)
	attrs["name"] = ctx.Name

	var b strings.Builder
	b.WriteString("<select" + attrs.String() + ">")
	for _, choice := range w.Choices {
		b.WriteString(`<option value="` + template.HTMLEscapeString(choice.Value) + `"`)
		if choice.Value == ctx.Value {
			b.WriteString(" selected")
		}
		b.WriteString(">" + template.HTMLEscapeString(choice.Label) + "</option>")
	}
	b.WriteString("</select>")
	return template.HTML(b.String()) + w.icon(ctx.Status)
}

// FileInput 把文件控件包装成 input-group ：浏览按钮加一个只读的文件名输入框
type FileInput struct {
	Input
}

func NewFileInput() *FileInput {
	return &FileInput{Input: Input{Base: Base{InputClass: "upload-button"}, Type: "file"}}
}

func (w *FileInput) Render(ctx *WidgetContext) template.HTML {
	widget := w.Input.Render(ctx)
	browse := hpi18n.T(ctx.Localizer, "bootstrap.browse", nil)

	button := fmt.Sprintf(`<span class="btn btn-primary" type="span">%s%s</span>`, template.HTMLEscapeString(browse), widget)
	button = fmt.Sprintf(`<label for="%s" class="input-group-btn">%s</label>`, template.HTMLEscapeString(ctx.Attrs["id"]), button)
	textInput := `<input type="text" class="form-control" readonly>`
	return template.HTML(`<div class="input-group">` + button + textInput + `</div>`)
}
