package i18n

import (
	"sort"
	"strings"
)

// Routes 保存具名路由在各个语言下的路径
type Routes map[string]map[string]string

// Path 返回路由在指定语言下的路径，参数按顺序替换 :name 段
func (r Routes) Path(name, lang, fallback string, args ...string) string {
	paths, ok := r[name]
	if !ok {
		return "/"
	}
	path, ok := paths[lang]
	if !ok {
		if path, ok = paths[fallback]; !ok {
			return "/"
		}
	}
	if len(args) == 0 {
		return path
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") && len(args) > 0 {
			segments[i] = args[0]
			args = args[1:]
		}
	}
	return strings.Join(segments, "/")
}

// Patterns 返回路由的所有不同路径，用于注册
func (r Routes) Patterns(name string) []string {
	seen := map[string]struct{}{}
	var patterns []string
	for _, path := range r[name] {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		patterns = append(patterns, path)
	}
	sort.Strings(patterns)
	return patterns
}
