package service

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/importcjj/sensitive"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday"
)

// 摘要长度（字符数）
const excerptLength = 150

var (
	stripPolicy = bluemonday.StrictPolicy()
	spaceRegexp = regexp.MustCompile(`\s+`)
)

// PlainText 将Markdown渲染为HTML后去掉全部标签，得到纯文本
func PlainText(markdown string) string {
	rendered := blackfriday.MarkdownCommon([]byte(markdown))
	text := html.UnescapeString(stripPolicy.Sanitize(string(rendered)))
	return strings.TrimSpace(spaceRegexp.ReplaceAllString(text, " "))
}

// MakeExcerpt 取纯文本前150个字符作为摘要，截断时追加省略号
func MakeExcerpt(markdown string) string {
	runes := []rune(PlainText(markdown))
	if len(runes) <= excerptLength {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:excerptLength])) + "..."
}

// Moderator 评论内容审核：清理HTML并屏蔽敏感词
type Moderator struct {
	policy *bluemonday.Policy
	filter *sensitive.Filter
}

// NewModerator 创建审核器，words 与 wordsFile 中的词都会被屏蔽
func NewModerator(words []string, wordsFile string) (*Moderator, error) {
	m := &Moderator{policy: bluemonday.UGCPolicy()}

	if len(words) == 0 && wordsFile == "" {
		return m, nil
	}

	m.filter = sensitive.New()
	if len(words) > 0 {
		m.filter.AddWord(words...)
	}
	if wordsFile != "" {
		if err := m.filter.LoadWordDict(wordsFile); err != nil {
			return nil, fmt.Errorf("加载敏感词文件失败: %w", err)
		}
	}
	return m, nil
}

// 清理HTML的最大轮数
const maxSanitizePasses = 5

// Clean 返回可安全展示的评论内容
//
// 结果以原始文本保存（不做HTML转义），由展示端负责转义。
// 反转义后可能出现新的标签，需要再清理直到结果不再变化，多层转义无法收敛时保留转义结果
func (m *Moderator) Clean(content string) string {
	content = m.sanitize(content)
	if m.filter != nil {
		content = m.filter.Replace(content, '*')
	}
	return strings.TrimSpace(content)
}

func (m *Moderator) sanitize(content string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(m.policy.Sanitize(content))
		if next == content {
			return content
		}
		content = next
	}
	return m.policy.Sanitize(content)
}
