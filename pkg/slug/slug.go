// Package slug 生成URL安全的标识符
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make 将标题或名称转换为slug：去掉重音符号，转小写，非字母数字的连续字符替换为"-"，并去掉首尾的"-"
func Make(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(folded), "-"), "-")
}
