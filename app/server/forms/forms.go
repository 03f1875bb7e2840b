// Package forms 定义网站使用的表单。
package forms

import (
	"strings"
	"unicode/utf8"
	"xmpp-homepage/app/server/bootstrap"
	"xmpp-homepage/app/server/config"

	"github.com/nicksnyder/go-i18n/v2/i18n"
)

const MinPasswordLength = 8

const (
	CodePasswordMismatch = "password_mismatch"
	CodeGpgRequired      = "gpg_required"
)

// Options 是账户表单需要的站点配置
type Options struct {
	UsernameMinLength int
	UsernameMaxLength int
	Domains           []string
	DefaultDomain     string
}

// OptionsFor 返回当前站点的表单配置，注册时只提供开放注册的域名
func OptionsFor(cfg *config.Config, site *config.HostConfig, registration bool) Options {
	opts := Options{
		UsernameMinLength: cfg.UsernameMinLength,
		UsernameMaxLength: cfg.UsernameMaxLength,
		DefaultDomain:     site.Domain,
	}
	for _, host := range cfg.Hosts {
		if registration && !host.Registration {
			continue
		}
		opts.Domains = append(opts.Domains, host.Domain)
	}
	return opts
}

func validateUsername(opts Options) bootstrap.Validator {
	return func(value string) *bootstrap.ValidationError {
		node, domain, _ := strings.Cut(value, "@")
		length := utf8.RuneCountInString(node)
		if length < opts.UsernameMinLength || length > opts.UsernameMaxLength || strings.ContainsAny(node, "@ ") {
			return &bootstrap.ValidationError{Code: bootstrap.CodeInvalid}
		}
		for _, d := range opts.Domains {
			if d == domain {
				return nil
			}
		}
		return &bootstrap.ValidationError{Code: "invalid_domain", Message: "forms.username.invalid_domain"}
	}
}

func UsernameField(name string, opts Options, register bool) *bootstrap.Field {
	w := &UsernameWidget{
		Node:          NewNodeWidget(opts.UsernameMinLength, opts.UsernameMaxLength, register),
		Domain:        NewDomainWidget(opts.Domains),
		DefaultDomain: opts.DefaultDomain,
	}
	return bootstrap.CharField(name,
		bootstrap.WithLabel("forms.username.label"),
		bootstrap.WithWidget(w),
		bootstrap.WithValueFrom(w.ValueFromData),
		bootstrap.WithMinValidationLength(opts.UsernameMinLength),
		bootstrap.WithValidators(validateUsername(opts)),
		bootstrap.WithErrorMessage(bootstrap.CodeInvalid, "forms.username.invalid"),
		bootstrap.WithErrorMessage(bootstrap.CodeUnique, "forms.username.unique"),
	)
}

func emailField() *bootstrap.Field {
	return bootstrap.EmailField("email",
		bootstrap.WithLabel("forms.email.label"),
		bootstrap.WithMaxLength(254),
		bootstrap.WithErrorMessage(bootstrap.CodeInvalid, "forms.email.invalid"),
	)
}

func passwordField(name, label string, minLength bool) *bootstrap.Field {
	opts := []bootstrap.FieldOption{bootstrap.WithLabel(label)}
	if minLength {
		opts = append(opts, bootstrap.WithMinLength(MinPasswordLength))
	}
	return bootstrap.PasswordField(name, opts...)
}

func contactFields() []*bootstrap.Field {
	return []*bootstrap.Field{
		bootstrap.CharField("subject",
			bootstrap.WithLabel("forms.contact.subject"),
			bootstrap.WithMaxLength(255),
		),
		bootstrap.TextField("text",
			bootstrap.WithLabel("forms.contact.text"),
			bootstrap.WithHelpText("forms.contact.text_help"),
		),
	}
}

// Contact 用于已登录的用户，回复地址为用户的邮箱
func Contact(loc *i18n.Localizer) *bootstrap.Form {
	return bootstrap.NewForm(loc, contactFields()...)
}

func AnonymousContact(loc *i18n.Localizer) *bootstrap.Form {
	fields := append([]*bootstrap.Field{emailField()}, contactFields()...)
	return bootstrap.NewForm(loc, fields...)
}

func Registration(loc *i18n.Localizer, opts Options) *bootstrap.Form {
	return bootstrap.NewForm(loc,
		UsernameField("username", opts, true),
		emailField(),
	)
}

func Login(loc *i18n.Localizer, opts Options) *bootstrap.Form {
	return bootstrap.NewForm(loc,
		UsernameField("username", opts, false),
		passwordField("password", "forms.password.label", false),
	)
}

// SetPassword 要求两次输入的密码一致
func SetPassword(loc *i18n.Localizer) *bootstrap.Form {
	form := bootstrap.NewForm(loc,
		passwordField("password", "forms.password.label", true),
		passwordField("password2", "forms.password.confirm", false),
	)
	form.Clean = func(f *bootstrap.Form) {
		if f.Cleaned("password") != f.Cleaned("password2") {
			f.AddError("password2", CodePasswordMismatch, "forms.password.mismatch", nil)
		}
	}
	return form
}

func ResetPassword(loc *i18n.Localizer, opts Options) *bootstrap.Form {
	return bootstrap.NewForm(loc, UsernameField("username", opts, false))
}

func SetEmail(loc *i18n.Localizer) *bootstrap.Form {
	return bootstrap.NewForm(loc, emailField())
}

// AddGpgKey 需要指纹或上传的密钥之一
func AddGpgKey(loc *i18n.Localizer) *bootstrap.Form {
	form := bootstrap.NewForm(loc,
		bootstrap.CharField("fingerprint",
			bootstrap.WithLabel("forms.gpg.fingerprint"),
			bootstrap.WithRequired(false),
			bootstrap.WithWidget(NewFingerprintWidget()),
			bootstrap.WithValidators(validateFingerprint),
			bootstrap.WithErrorMessage(bootstrap.CodeInvalid, "forms.gpg.fingerprint_invalid"),
		),
		bootstrap.FileField("key", GpgMimeTypes,
			bootstrap.WithLabel("forms.gpg.key"),
			bootstrap.WithHelpText("forms.gpg.key_help"),
			bootstrap.WithRequired(false),
		),
	)
	form.Clean = func(f *bootstrap.Form) {
		if f.Cleaned("fingerprint") == "" && f.CleanedFile("key") == nil {
			f.AddError("", CodeGpgRequired, "forms.gpg.required", nil)
		}
	}
	return form
}

func DeleteAccount(loc *i18n.Localizer) *bootstrap.Form {
	return bootstrap.NewForm(loc, passwordField("password", "forms.password.current", false))
}
