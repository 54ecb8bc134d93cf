/**
 * Package platform 平台抽象层
 *
 * 封装与操作系统交互的能力：键盘输入注入和系统剪贴板访问。
 * 业务层只依赖这里定义的接口，具体实现可以替换为内存版本用于测试。
 */
package platform

// Key 特殊按键标识
//
// 用于注入无法作为普通文本输入的控制按键。
type Key string

const (
	// KeyEnter 回车键
	KeyEnter Key = "enter"
	// KeyTab 制表符键
	KeyTab Key = "tab"
)

// TextInjector 文本注入器接口
//
// 向当前获得焦点的应用程序注入键盘输入。
// 实现必须支持:
// - InjectText: 注入一段普通文本
// - PressKey: 敲击一个特殊按键（回车、制表符等）
type TextInjector interface {
	// InjectText 注入一段普通文本
	//
	// Parameters: text - 要注入的文本（不包含换行和制表符）
	// Returns: error - 注入失败时返回错误
	InjectText(text string) error

	// PressKey 敲击一个特殊按键
	//
	// Parameters: key - 按键标识
	// Returns: error - 注入失败时返回错误
	PressKey(key Key) error
}
