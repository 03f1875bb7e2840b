package bootstrap

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	hpi18n "xmpp-homepage/app/server/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// BoundField 是表单中的字段，负责渲染 form-group
type BoundField struct {
	*Field
	form *Form
}

func (bf *BoundField) HTMLName() string {
	return bf.Name
}

func (bf *BoundField) ID() string {
	return "id_" + bf.Name
}

func (bf *BoundField) HelpID() string {
	return "hb_" + bf.Name
}

func (bf *BoundField) Value() string {
	return bf.form.value(bf.Field)
}

func (bf *BoundField) Errors() []*ValidationError {
	return bf.form.Errors(bf.Name)
}

func (bf *BoundField) t(id string) string {
	return hpi18n.T(bf.form.localizer, id, nil)
}

func (bf *BoundField) LabelText() string {
	if bf.Label == "" {
		return bf.Name
	}
	return bf.t(bf.Label)
}

func (bf *BoundField) Help() string {
	if bf.HelpText == "" {
		return ""
	}
	return bf.t(bf.HelpText)
}

// FormgroupAttrs 返回外层 form-group div 的属性
func (bf *BoundField) FormgroupAttrs() template.HTMLAttr {
	attrs := Attrs{}
	if bf.Field.FormgroupAttrs != nil {
		attrs = bf.Field.FormgroupAttrs.Copy()
	}
	if _, ok := attrs["id"]; !ok {
		attrs["id"] = "fg_" + bf.Name
	}
	attrs.AddClass("form-group")
	attrs.AddClass(bf.FormgroupClass)

	// 已绑定的表单使用浏览器的校验样式
	if bf.form.IsBound() {
		attrs.AddClass("was-validated")
	}
	if bf.Horizontal {
		attrs.AddClass("row")
	}
	for _, err := range bf.Errors() {
		if err.Code != "" {
			attrs.AddClass("invalid-" + err.Code)
		} else {
			attrs.AddClass("invalid-default")
		}
	}
	return attrs.Flat()
}

func (bf *BoundField) labelAttrs() Attrs {
	attrs := Attrs{"for": bf.ID()}
	if bf.HideLabel {
		attrs.AddClass("sr-only")
	}
	if bf.Horizontal {
		attrs.AddClass(fmt.Sprintf("col-%s-%d", bf.ColClass, bf.LabelCols))
		attrs.AddClass("col-form-label")
	}
	return attrs
}

func (bf *BoundField) LabelTag() template.HTML {
	return template.HTML("<label" + bf.labelAttrs().String() + ">" + template.HTMLEscapeString(bf.LabelText()) + ":</label>")
}

func (bf *BoundField) HorizontalWrapperAttrs() template.HTMLAttr {
	return Attrs{"class": fmt.Sprintf("col-%s-%d", bf.ColClass, bf.InputCols)}.Flat()
}

// WidgetAttrs 返回传给控件的属性
func (bf *BoundField) WidgetAttrs() Attrs {
	attrs := bf.Field.WidgetAttrs()
	attrs["id"] = bf.ID()
	if bf.MinValidationLength > 0 {
		attrs["data-min-validation-length"] = fmt.Sprint(bf.MinValidationLength)
	}
	if bf.HelpText != "" || len(bf.Errors()) > 0 {
		attrs["aria-describedby"] = bf.HelpID()
	}
	return attrs
}

func (bf *BoundField) status() string {
	if !bf.form.IsBound() {
		return ""
	}
	if len(bf.Errors()) > 0 {
		return "remove"
	}
	if bf.AddSuccess {
		return "ok"
	}
	return ""
}

// Widget 渲染控件与反馈信息
func (bf *BoundField) Widget() template.HTML {
	html := bf.Field.Widget.Render(&WidgetContext{
		Name:      bf.Name,
		Value:     bf.Value(),
		Attrs:     bf.WidgetAttrs(),
		Status:    bf.status(),
		Localizer: bf.form.localizer,
	})
	return html + bf.Feedback()
}

// message 翻译并格式化错误信息
func (bf *BoundField) message(msg string, params map[string]any) string {
	context := map[string]any{
		"field_label": bf.LabelText(),
		"value":       bf.Value(),
		"length":      len([]rune(bf.Value())),
	}
	if bf.MaxLength > 0 {
		context["max"] = bf.MaxLength
	}
	if bf.MinLength > 0 {
		context["min"] = bf.MinLength
	}
	for k, v := range params {
		context[k] = v
	}
	return Interpolate(bf.t(msg), context)
}

type feedbackMessage struct {
	Code    string
	Message string
}

// Feedback 渲染所有可能的错误信息，由 CSS 与 JS 根据 invalid-<code> 决定显示哪一条
func (bf *BoundField) Feedback() template.HTML {
	invalid := map[string]string{}
	for _, code := range bf.knownErrorCodes() {
		if bf.hasHTMLError(code) {
			if msg := bf.errorMessage(code); msg != "" {
				invalid[code] = bf.message(msg, nil)
			}
		}
	}
	// 服务端产生的错误总是输出，带上实际的参数
	for _, err := range bf.Errors() {
		code := err.Code
		if code == "" {
			code = "default"
		}
		invalid[code] = bf.message(err.Message, err.Params)
	}

	codes := make([]string, 0, len(invalid))
	for code := range invalid {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	messages := make([]feedbackMessage, 0, len(codes))
	for _, code := range codes {
		messages = append(messages, feedbackMessage{Code: code, Message: invalid[code]})
	}

	valid := ""
	if bf.ValidFeedback != "" {
		valid = bf.t(bf.ValidFeedback)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "feedback.html", map[string]any{
		"Valid":   valid,
		"Invalid": messages,
	}); err != nil {
		return template.HTML(template.HTMLEscapeString(err.Error()))
	}
	return template.HTML(buf.String())
}

// Formgroup 渲染完整的 form-group
func (bf *BoundField) Formgroup() template.HTML {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "formgroup.html", bf); err != nil {
		return template.HTML(template.HTMLEscapeString(err.Error()))
	}
	return template.HTML(buf.String())
}
