package bootstrap

import (
	"html/template"
	"sort"
	"strings"
)

// Attrs 是 HTML 属性，空值的属性只输出属性名（例如 required ）
type Attrs map[string]string

func (a Attrs) Copy() Attrs {
	c := make(Attrs, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// AddClass 追加 CSS 类，不会覆盖已有的类
func (a Attrs) AddClass(cls string) {
	if cls == "" {
		return
	}
	if a["class"] != "" {
		a["class"] += " " + cls
	} else {
		a["class"] = cls
	}
}

// Update 合并属性，class 追加而不是覆盖
func (a Attrs) Update(other Attrs) {
	for k, v := range other {
		if k == "class" {
			a.AddClass(v)
			continue
		}
		a[k] = v
	}
}

func (a Attrs) String() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(template.HTMLEscapeString(k))
		if v := a[k]; v != "" {
			b.WriteString(`="`)
			b.WriteString(template.HTMLEscapeString(v))
			b.WriteByte('"')
		}
	}
	return b.String()
}

// Flat 返回可以直接写入模板的属性串，以空格开头
func (a Attrs) Flat() template.HTMLAttr {
	return template.HTMLAttr(a.String())
}
