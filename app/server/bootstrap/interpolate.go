package bootstrap

import (
	"fmt"
	"regexp"
)

var placeholderRe = regexp.MustCompile(`%\(([a-z_]+)\)[sd]`)

// Interpolate 用 context 替换 %(key)s 或 %(key)d 占位符，未知的键保持原样
func Interpolate(msg string, context map[string]any) string {
	if len(context) == 0 {
		return msg
	}
	return placeholderRe.ReplaceAllStringFunc(msg, func(m string) string {
		key := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := context[key]; ok {
			return fmt.Sprint(v)
		}
		return m
	})
}
