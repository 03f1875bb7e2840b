package bootstrap

import (
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// 错误代码
const (
	CodeRequired      = "required"
	CodeInvalid       = "invalid"
	CodeUnique        = "unique"
	CodeMinLength     = "min_length"
	CodeMaxLength     = "max_length"
	CodeInvalidChoice = "invalid_choice"
	CodeMimeType      = "mime-type"
)

var defaultHTMLErrors = []string{CodeInvalid, CodeUnique, CodeRequired}

// 默认错误信息的翻译 ID
var defaultErrorMessages = map[string]string{
	CodeRequired:      "bootstrap.error.required",
	CodeInvalid:       "bootstrap.error.invalid",
	CodeMinLength:     "bootstrap.error.min_length",
	CodeMaxLength:     "bootstrap.error.max_length",
	CodeInvalidChoice: "bootstrap.error.invalid_choice",
	CodeMimeType:      "bootstrap.error.mime_type",
}

type ValidationError struct {
	Code    string
	Message string // 翻译 ID 或已经翻译的文本
	Params  map[string]any
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

// Validator 在字段自身的检查通过后运行，value 为清理后的值
type Validator func(value string) *ValidationError

type kind int

const (
	kindChar kind = iota
	kindEmail
	kindPassword
	kindChoice
	kindFile
)

type Field struct {
	Name     string
	Label    string // 翻译 ID
	HelpText string // 翻译 ID
	Required bool
	Initial  string

	MinLength int
	MaxLength int

	Horizontal     bool
	LabelCols      int
	InputCols      int
	ColClass       string
	HideLabel      bool
	FormgroupAttrs Attrs
	FormgroupClass string

	HTMLErrors          []string
	ErrorMessages       map[string]string
	ValidFeedback       string
	MinValidationLength int // 大于 0 时前端在达到该长度后才开始校验
	AddSuccess          bool
	Validators          []Validator

	Widget    Widget
	Choices   []Choice
	MimeTypes []string

	// ValueFrom 从提交的数据中取值，用于由多个控件组成的字段
	ValueFrom func(data url.Values, name string) string

	kind kind
}

// FieldOption 修改字段的默认选项
type FieldOption func(*Field)

func newField(name string, k kind, w Widget, opts ...FieldOption) *Field {
	f := &Field{
		Name:       name,
		Required:   true,
		Horizontal: true,
		LabelCols:  2,
		InputCols:  10,
		ColClass:   "sm",
		HTMLErrors: append([]string{}, defaultHTMLErrors...),
		AddSuccess: true,
		Widget:     w,
		kind:       k,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func CharField(name string, opts ...FieldOption) *Field {
	return newField(name, kindChar, TextInput(), opts...)
}

func TextField(name string, opts ...FieldOption) *Field {
	return newField(name, kindChar, &Textarea{}, opts...)
}

// EmailField 的值在清理时转为小写
func EmailField(name string, opts ...FieldOption) *Field {
	return newField(name, kindEmail, EmailInput(), opts...)
}

func PasswordField(name string, opts ...FieldOption) *Field {
	return newField(name, kindPassword, PasswordInput(), append([]FieldOption{WithAddSuccess(false)}, opts...)...)
}

func ChoiceField(name string, choices []Choice, opts ...FieldOption) *Field {
	f := newField(name, kindChoice, &Select{Choices: choices}, opts...)
	f.Choices = choices
	return f
}

func FileField(name string, mimeTypes []string, opts ...FieldOption) *Field {
	f := newField(name, kindFile, NewFileInput(), opts...)
	f.MimeTypes = mimeTypes
	return f
}

func WithLabel(label string) FieldOption {
	return func(f *Field) { f.Label = label }
}

func WithHelpText(help string) FieldOption {
	return func(f *Field) { f.HelpText = help }
}

func WithRequired(required bool) FieldOption {
	return func(f *Field) { f.Required = required }
}

func WithInitial(initial string) FieldOption {
	return func(f *Field) { f.Initial = initial }
}

func WithMinLength(n int) FieldOption {
	return func(f *Field) { f.MinLength = n }
}

func WithMaxLength(n int) FieldOption {
	return func(f *Field) { f.MaxLength = n }
}

func WithHorizontal(horizontal bool) FieldOption {
	return func(f *Field) { f.Horizontal = horizontal }
}

func WithColumns(colClass string, labelCols, inputCols int) FieldOption {
	return func(f *Field) {
		f.ColClass = colClass
		f.LabelCols = labelCols
		f.InputCols = inputCols
	}
}

func WithHideLabel() FieldOption {
	return func(f *Field) { f.HideLabel = true }
}

func WithFormgroupAttrs(attrs Attrs) FieldOption {
	return func(f *Field) { f.FormgroupAttrs = attrs }
}

func WithFormgroupClass(cls string) FieldOption {
	return func(f *Field) { f.FormgroupClass = cls }
}

// WithHTMLErrors 追加需要在页面中预先渲染的错误代码
func WithHTMLErrors(codes ...string) FieldOption {
	return func(f *Field) {
		for _, code := range codes {
			if !f.hasHTMLError(code) {
				f.HTMLErrors = append(f.HTMLErrors, code)
			}
		}
	}
}

func WithErrorMessage(code, message string) FieldOption {
	return func(f *Field) {
		if f.ErrorMessages == nil {
			f.ErrorMessages = map[string]string{}
		}
		f.ErrorMessages[code] = message
	}
}

func WithValidFeedback(message string) FieldOption {
	return func(f *Field) { f.ValidFeedback = message }
}

func WithMinValidationLength(n int) FieldOption {
	return func(f *Field) { f.MinValidationLength = n }
}

func WithAddSuccess(add bool) FieldOption {
	return func(f *Field) { f.AddSuccess = add }
}

func WithValidators(validators ...Validator) FieldOption {
	return func(f *Field) { f.Validators = append(f.Validators, validators...) }
}

func WithWidget(w Widget) FieldOption {
	return func(f *Field) { f.Widget = w }
}

func WithValueFrom(fn func(data url.Values, name string) string) FieldOption {
	return func(f *Field) { f.ValueFrom = fn }
}

func (f *Field) valueFrom(data url.Values) string {
	if f.ValueFrom != nil {
		return f.ValueFrom(data, f.Name)
	}
	return data.Get(f.Name)
}

func (f *Field) hasHTMLError(code string) bool {
	for _, c := range f.HTMLErrors {
		if c == code {
			return true
		}
	}
	return false
}

// errorMessage 返回错误代码对应的信息，字段自定义的优先
func (f *Field) errorMessage(code string) string {
	if msg, ok := f.ErrorMessages[code]; ok {
		return msg
	}
	return defaultErrorMessages[code]
}

func (f *Field) newError(code string, params map[string]any) *ValidationError {
	return &ValidationError{Code: code, Message: f.errorMessage(code), Params: params}
}

// knownErrorCodes 返回此字段可能产生的错误代码
func (f *Field) knownErrorCodes() []string {
	codes := []string{CodeRequired}
	switch f.kind {
	case kindEmail:
		codes = append(codes, CodeInvalid)
	case kindChoice:
		codes = append(codes, CodeInvalidChoice)
	case kindFile:
		codes = append(codes, CodeMimeType)
	}
	if f.MinLength > 0 {
		codes = append(codes, CodeMinLength)
	}
	if f.MaxLength > 0 {
		codes = append(codes, CodeMaxLength)
	}
	for code := range f.ErrorMessages {
		found := false
		for _, c := range codes {
			if c == code {
				found = true
				break
			}
		}
		if !found {
			codes = append(codes, code)
		}
	}
	return codes
}

// WidgetAttrs 是字段本身决定的控件属性
func (f *Field) WidgetAttrs() Attrs {
	attrs := Attrs{}
	if f.Required && f.kind != kindFile {
		attrs["required"] = ""
	}
	if f.MaxLength > 0 {
		attrs["maxlength"] = strconv.Itoa(f.MaxLength)
	}
	if f.MinLength > 0 {
		attrs["minlength"] = strconv.Itoa(f.MinLength)
	}
	if f.kind == kindFile && len(f.MimeTypes) > 0 {
		attrs["accept"] = strings.Join(f.MimeTypes, ",")
	}
	return attrs
}

// Clean 校验并返回清理后的值
func (f *Field) Clean(value string) (string, *ValidationError) {
	if f.kind != kindPassword {
		value = strings.TrimSpace(value)
	}

	if value == "" {
		if f.Required {
			return "", f.newError(CodeRequired, nil)
		}
		return "", nil
	}

	length := len([]rune(value))
	if f.MaxLength > 0 && validate.Var(value, fmt.Sprintf("max=%d", f.MaxLength)) != nil {
		return "", f.newError(CodeMaxLength, map[string]any{"max": f.MaxLength, "length": length})
	}
	if f.MinLength > 0 && validate.Var(value, fmt.Sprintf("min=%d", f.MinLength)) != nil {
		return "", f.newError(CodeMinLength, map[string]any{"min": f.MinLength, "length": length})
	}

	switch f.kind {
	case kindEmail:
		if validate.Var(value, "email") != nil {
			return "", f.newError(CodeInvalid, nil)
		}
		value = strings.ToLower(value)
	case kindChoice:
		valid := false
		for _, choice := range f.Choices {
			if choice.Value == value {
				valid = true
				break
			}
		}
		if !valid {
			return "", f.newError(CodeInvalidChoice, nil)
		}
	}

	for _, v := range f.Validators {
		if err := v(value); err != nil {
			if err.Message == "" {
				err.Message = f.errorMessage(err.Code)
			}
			return "", err
		}
	}
	return value, nil
}

// CleanFile 校验上传的文件
func (f *Field) CleanFile(file *multipart.FileHeader) (*multipart.FileHeader, *ValidationError) {
	if file == nil || file.Size == 0 {
		if f.Required {
			return nil, f.newError(CodeRequired, nil)
		}
		return nil, nil
	}
	if len(f.MimeTypes) > 0 {
		contentType := file.Header.Get("Content-Type")
		for _, mt := range f.MimeTypes {
			if mt == contentType {
				return file, nil
			}
		}
		return nil, f.newError(CodeMimeType, map[string]any{"value": contentType})
	}
	return file, nil
}
