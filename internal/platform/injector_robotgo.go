package platform

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// RobotgoInjector 基于 robotgo 的文本注入器
//
// 通过 robotgo 向当前焦点应用发送键盘事件。
// robotgo 底层依赖各平台的输入事件 API（macOS 上是 CGEventPost），
// 调用方应保证所有注入调用发生在同一个 OS 线程上。
type RobotgoInjector struct{}

// NewRobotgoInjector 创建 robotgo 文本注入器
//
// Returns: *RobotgoInjector - 新创建的注入器实例
func NewRobotgoInjector() *RobotgoInjector {
	return &RobotgoInjector{}
}

// InjectText 注入一段普通文本
//
// 使用 robotgo.TypeStr 模拟键盘输入，支持 Unicode 文本。
//
// Parameters: text - 要注入的文本
// Returns: error - 注入失败时返回错误
func (r *RobotgoInjector) InjectText(text string) error {
	if text == "" {
		return nil
	}
	robotgo.TypeStr(text)
	return nil
}

// PressKey 敲击一个特殊按键
//
// Parameters: key - 按键标识（enter、tab）
// Returns: error - 按键无效或注入失败时返回错误
func (r *RobotgoInjector) PressKey(key Key) error {
	switch key {
	case KeyEnter, KeyTab:
		if err := robotgo.KeyTap(string(key)); err != nil {
			return fmt.Errorf("key tap %q failed: %w", key, err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported key: %q", key)
	}
}
