package bootstrap

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
)

func TestAttrs(t *testing.T) {
	a := Attrs{"id": "x", "required": "", "title": `a "b" <c>`}
	a.AddClass("form-control")
	a.AddClass("valid-email")

	want := ` class="form-control valid-email" id="x" required title="a &#34;b&#34; &lt;c&gt;"`
	if got := a.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	b := a.Copy()
	b.Update(Attrs{"class": "extra", "id": "y"})
	if b["class"] != "form-control valid-email extra" || b["id"] != "y" {
		t.Errorf("Update() = %v", b)
	}
	if a["id"] != "x" {
		t.Error("Copy() shares the underlying map")
	}
}

func TestInterpolate(t *testing.T) {
	got := Interpolate("Ensure %(field_label)s has at most %(max)d characters (it has %(length)s), %(unknown)s.",
		map[string]any{"field_label": "Subject", "max": 5, "length": 7})
	want := "Ensure Subject has at most 5 characters (it has 7), %(unknown)s."
	if got != want {
		t.Errorf("Interpolate() = %q, want %q", got, want)
	}
}

func TestFormgroupAttrs(t *testing.T) {
	form := NewForm(nil, CharField("subject"), EmailField("email", WithHorizontal(false), WithFormgroupClass("extra")))

	if got := form.Field("subject").FormgroupAttrs(); string(got) != ` class="form-group row" id="fg_subject"` {
		t.Errorf("unbound FormgroupAttrs() = %q", got)
	}
	if got := form.Field("email").FormgroupAttrs(); string(got) != ` class="form-group extra" id="fg_email"` {
		t.Errorf("non-horizontal FormgroupAttrs() = %q", got)
	}

	form.Bind(url.Values{"email": {"foo"}}, nil)
	if form.IsValid() {
		t.Fatal("IsValid() = true for empty subject and invalid email")
	}
	if got := form.Field("subject").FormgroupAttrs(); string(got) != ` class="form-group was-validated row invalid-required" id="fg_subject"` {
		t.Errorf("bound FormgroupAttrs() = %q", got)
	}
	if got := form.Field("email").FormgroupAttrs(); string(got) != ` class="form-group extra was-validated invalid-invalid" id="fg_email"` {
		t.Errorf("bound FormgroupAttrs() = %q", got)
	}
}

func TestLabelTag(t *testing.T) {
	form := NewForm(nil,
		CharField("subject", WithLabel("Subject")),
		CharField("hidden", WithHideLabel()),
		CharField("plain", WithHorizontal(false)),
	)

	tests := map[string]string{
		"subject": `<label class="col-sm-2 col-form-label" for="id_subject">Subject:</label>`,
		"hidden":  `<label class="sr-only col-sm-2 col-form-label" for="id_hidden">hidden:</label>`,
		"plain":   `<label for="id_plain">plain:</label>`,
	}
	for name, want := range tests {
		if got := string(form.Field(name).LabelTag()); got != want {
			t.Errorf("LabelTag(%s) = %q, want %q", name, got, want)
		}
	}
}

func TestWidgetAttrs(t *testing.T) {
	form := NewForm(nil,
		CharField("username", WithMaxLength(10), WithMinValidationLength(3), WithHelpText("help")),
		CharField("plain", WithRequired(false)),
	)
	attrs := form.Field("username").WidgetAttrs()
	if attrs["data-min-validation-length"] != "3" || attrs["aria-describedby"] != "hb_username" ||
		attrs["maxlength"] != "10" || attrs["id"] != "id_username" {
		t.Errorf("WidgetAttrs() = %v", attrs)
	}
	if _, ok := attrs["required"]; !ok {
		t.Error("required attribute missing")
	}

	plain := form.Field("plain").WidgetAttrs()
	if _, ok := plain["aria-describedby"]; ok {
		t.Error("aria-describedby set without help or errors")
	}
	if _, ok := plain["required"]; ok {
		t.Error("optional field has required attribute")
	}
}

func TestWidgetRender(t *testing.T) {
	form := NewForm(nil, EmailField("email"), PasswordField("password"), TextField("text"))
	form.Bind(url.Values{"email": {"Foo@Example.com"}, "password": {"secret"}, "text": {"<b>hi</b>"}}, nil)
	if !form.IsValid() {
		t.Fatalf("IsValid() = false: %v", form.errors)
	}
	if got := form.Cleaned("email"); got != "foo@example.com" {
		t.Errorf("Cleaned(email) = %q", got)
	}

	email := string(form.Field("email").Widget())
	if !strings.Contains(email, `<input class="form-control valid-email" id="id_email" name="email" required type="email" value="Foo@Example.com">`) {
		t.Errorf("email widget = %s", email)
	}
	if !strings.Contains(email, `<span class="glyphicon form-control-feedback glyphicon-ok" aria-hidden="true"></span>`) {
		t.Errorf("email widget without success icon = %s", email)
	}

	password := string(form.Field("password").Widget())
	if strings.Contains(password, "secret") {
		t.Error("password widget renders the value")
	}

	text := string(form.Field("text").Widget())
	if !strings.Contains(text, "&lt;b&gt;hi&lt;/b&gt;</textarea>") {
		t.Errorf("textarea not escaped: %s", text)
	}
}

func TestSelect(t *testing.T) {
	choices := []Choice{{Value: "a.example", Label: "a.example"}, {Value: "b.example", Label: "b.example"}}
	form := NewForm(nil, ChoiceField("domain", choices, WithInitial("b.example")))

	html := string(form.Field("domain").Widget())
	if !strings.Contains(html, `<option value="b.example" selected>`) {
		t.Errorf("select = %s", html)
	}

	form.Bind(url.Values{"domain": {"c.example"}}, nil)
	if form.IsValid() {
		t.Error("IsValid() accepted an unknown choice")
	}
	if errs := form.Errors("domain"); len(errs) != 1 || errs[0].Code != CodeInvalidChoice {
		t.Errorf("Errors(domain) = %v", errs)
	}
}

func TestLengthErrors(t *testing.T) {
	form := NewForm(nil, CharField("subject", WithMaxLength(5), WithErrorMessage(CodeMaxLength, "At most %(max)d, got %(length)d.")))
	form.Bind(url.Values{"subject": {"abcdefg"}}, nil)
	if form.IsValid() {
		t.Fatal("IsValid() accepted a too long value")
	}

	feedback := string(form.Field("subject").Feedback())
	if !strings.Contains(feedback, `<div class="invalid-feedback invalid-max_length">At most 5, got 7.</div>`) {
		t.Errorf("Feedback() = %s", feedback)
	}
	if !strings.Contains(feedback, `invalid-required`) {
		t.Errorf("Feedback() misses the required message: %s", feedback)
	}
}

func TestCleanHookAndAddError(t *testing.T) {
	form := NewForm(nil, PasswordField("password"), PasswordField("password2"))
	form.Clean = func(f *Form) {
		if f.Cleaned("password") != f.Cleaned("password2") {
			f.AddError("password2", "mismatch", "The two passwords do not match.", nil)
		}
	}

	form.Bind(url.Values{"password": {"a"}, "password2": {"b"}}, nil)
	if form.IsValid() {
		t.Fatal("IsValid() accepted mismatching passwords")
	}
	if form.Cleaned("password2") != "" {
		t.Error("field with error keeps its cleaned value")
	}

	form.AddError("", "backend", "Something went wrong.", nil)
	if got := form.NonFieldErrors(); len(got) != 1 || got[0] != "Something went wrong." {
		t.Errorf("NonFieldErrors() = %v", got)
	}
}

func fileHeader(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="key"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(data)
	_ = w.Close()

	r := multipart.NewReader(&body, w.Boundary())
	form, err := r.ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	return form.File["key"][0]
}

func TestFileField(t *testing.T) {
	field := FileField("key", []string{"application/pgp-keys"}, WithRequired(false))
	form := NewForm(nil, field)

	html := string(form.Field("key").Widget())
	if !strings.Contains(html, `accept="application/pgp-keys"`) || !strings.Contains(html, `<div class="input-group">`) ||
		!strings.Contains(html, `bootstrap.browse`) {
		t.Errorf("file widget = %s", html)
	}

	form.Bind(url.Values{}, map[string][]*multipart.FileHeader{
		"key": {fileHeader(t, "key.png", "image/png", []byte("data"))},
	})
	if form.IsValid() {
		t.Fatal("IsValid() accepted wrong mime type")
	}
	if errs := form.Errors("key"); len(errs) != 1 || errs[0].Code != CodeMimeType {
		t.Errorf("Errors(key) = %v", errs)
	}

	form.Bind(url.Values{}, map[string][]*multipart.FileHeader{
		"key": {fileHeader(t, "key.asc", "application/pgp-keys", []byte("data"))},
	})
	if !form.IsValid() || form.CleanedFile("key") == nil {
		t.Error("valid upload rejected")
	}
}

func TestFormgroup(t *testing.T) {
	form := NewForm(nil, CharField("subject", WithHelpText("Short subject")))
	html := string(form.Field("subject").Formgroup())
	for _, want := range []string{
		`<div  class="form-group row" id="fg_subject">`,
		`<div  class="col-sm-10">`,
		`<small id="hb_subject" class="form-text text-muted">Short subject</small>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Formgroup() misses %q: %s", want, html)
		}
	}
}
