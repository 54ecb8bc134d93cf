package monitor

import "strings"

// 剪贴板内容类型
const (
	// ContentTypeURL 以 http:// 或 https:// 开头的内容
	ContentTypeURL = "url"
	// ContentTypeMultiline 包含换行或制表符的内容
	ContentTypeMultiline = "multiline"
	// ContentTypeLargeText 超过 500 个字符的长文本
	ContentTypeLargeText = "large_text"
	// ContentTypeText 普通文本
	ContentTypeText = "text"
)

// largeTextThreshold 长文本判定阈值（字符数）
const largeTextThreshold = 500

// DetectContentType 检测剪贴板内容的类型
//
// 按优先级判断：URL > 多行文本 > 长文本 > 普通文本。
//
// Parameters: content - 剪贴板内容
//
// Returns: string - 内容类型常量
func DetectContentType(content string) string {
	switch {
	case strings.HasPrefix(content, "http://"), strings.HasPrefix(content, "https://"):
		return ContentTypeURL
	case strings.ContainsAny(content, "\t\n"):
		return ContentTypeMultiline
	case len([]rune(content)) > largeTextThreshold:
		return ContentTypeLargeText
	default:
		return ContentTypeText
	}
}
