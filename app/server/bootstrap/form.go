package bootstrap

import (
	"mime/multipart"
	"net/url"
	hpi18n "xmpp-homepage/app/server/i18n"

	"github.com/nicksnyder/go-i18n/v2/i18n"
)

type Form struct {
	fields    []*Field
	localizer *i18n.Localizer

	bound   bool
	checked bool
	data    url.Values
	files   map[string][]*multipart.FileHeader
	initial map[string]string

	errors         map[string][]*ValidationError
	nonFieldErrors []*ValidationError
	cleaned        map[string]string
	cleanedFiles   map[string]*multipart.FileHeader

	// Clean 在所有字段通过校验后运行，用于跨字段的检查
	Clean func(f *Form)
}

func NewForm(localizer *i18n.Localizer, fields ...*Field) *Form {
	return &Form{
		fields:       fields,
		localizer:    localizer,
		initial:      map[string]string{},
		errors:       map[string][]*ValidationError{},
		cleaned:      map[string]string{},
		cleanedFiles: map[string]*multipart.FileHeader{},
	}
}

// Bind 绑定提交的数据，files 可以为 nil
func (f *Form) Bind(values url.Values, files map[string][]*multipart.FileHeader) {
	f.bound = true
	f.checked = false
	f.data = values
	f.files = files
	f.errors = map[string][]*ValidationError{}
	f.nonFieldErrors = nil
	f.cleaned = map[string]string{}
	f.cleanedFiles = map[string]*multipart.FileHeader{}
}

func (f *Form) IsBound() bool {
	return f.bound
}

func (f *Form) Localizer() *i18n.Localizer {
	return f.localizer
}

func (f *Form) SetInitial(name, value string) {
	f.initial[name] = value
}

func (f *Form) Field(name string) *BoundField {
	for _, field := range f.fields {
		if field.Name == name {
			return &BoundField{form: f, Field: field}
		}
	}
	return nil
}

func (f *Form) Fields() []*BoundField {
	bfs := make([]*BoundField, 0, len(f.fields))
	for _, field := range f.fields {
		bfs = append(bfs, &BoundField{form: f, Field: field})
	}
	return bfs
}

// fullClean 逐个校验字段，然后运行 Clean
func (f *Form) fullClean() {
	if f.checked {
		return
	}
	f.checked = true
	if !f.bound {
		return
	}

	for _, field := range f.fields {
		if field.kind == kindFile {
			var header *multipart.FileHeader
			if hs := f.files[field.Name]; len(hs) > 0 {
				header = hs[0]
			}
			file, err := field.CleanFile(header)
			if err != nil {
				f.errors[field.Name] = append(f.errors[field.Name], err)
				continue
			}
			if file != nil {
				f.cleanedFiles[field.Name] = file
			}
			continue
		}

		value, err := field.Clean(field.valueFrom(f.data))
		if err != nil {
			f.errors[field.Name] = append(f.errors[field.Name], err)
			continue
		}
		f.cleaned[field.Name] = value
	}

	if f.Clean != nil && !f.HasErrors() {
		f.Clean(f)
	}
}

func (f *Form) HasErrors() bool {
	for _, errs := range f.errors {
		if len(errs) > 0 {
			return true
		}
	}
	return len(f.nonFieldErrors) > 0
}

func (f *Form) IsValid() bool {
	if !f.bound {
		return false
	}
	f.fullClean()
	return !f.HasErrors()
}

func (f *Form) Cleaned(name string) string {
	f.fullClean()
	return f.cleaned[name]
}

func (f *Form) CleanedFile(name string) *multipart.FileHeader {
	f.fullClean()
	return f.cleanedFiles[name]
}

// SetCleaned 给 Clean 钩子修改清理后的值
func (f *Form) SetCleaned(name, value string) {
	f.cleaned[name] = value
}

// AddError 添加错误，name 为空表示不属于任何字段
func (f *Form) AddError(name, code, message string, params map[string]any) {
	f.fullClean()
	err := &ValidationError{Code: code, Message: message, Params: params}
	if name == "" {
		f.nonFieldErrors = append(f.nonFieldErrors, err)
		return
	}
	if err.Message == "" {
		if field := f.Field(name); field != nil {
			err.Message = field.errorMessage(code)
		}
	}
	delete(f.cleaned, name)
	f.errors[name] = append(f.errors[name], err)
}

func (f *Form) Errors(name string) []*ValidationError {
	f.fullClean()
	return f.errors[name]
}

// NonFieldErrors 返回已翻译的非字段错误
func (f *Form) NonFieldErrors() []string {
	f.fullClean()
	msgs := make([]string, 0, len(f.nonFieldErrors))
	for _, err := range f.nonFieldErrors {
		msgs = append(msgs, Interpolate(hpi18n.T(f.localizer, err.Message, nil), err.Params))
	}
	return msgs
}

// value 返回字段当前应显示的值：已绑定时为提交的值，否则为初始值
func (f *Form) value(field *Field) string {
	if f.bound {
		return field.valueFrom(f.data)
	}
	if v, ok := f.initial[field.Name]; ok {
		return v
	}
	return field.Initial
}
