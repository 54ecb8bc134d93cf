package platform

// Clipboard 剪贴板访问接口
//
// 封装系统剪贴板的读写。Read 返回的 ok 为 false 表示剪贴板为空
// 或不包含文本内容，此时 content 为空字符串。
type Clipboard interface {
	// Read 读取剪贴板文本内容
	//
	// Returns:
	//   - string: 剪贴板文本内容
	//   - bool: 剪贴板是否包含非空文本
	//   - error: 读取失败时返回错误
	Read() (content string, ok bool, err error)

	// Write 写入文本到剪贴板
	//
	// Parameters: content - 要写入的文本
	// Returns: error - 写入失败时返回错误
	Write(content string) error
}
