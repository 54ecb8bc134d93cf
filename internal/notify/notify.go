/**
 * Package notify 提供桌面通知功能
 *
 * 打字开始、紧急停止等关键事件通过系统通知提示用户。
 * 通知失败不影响主流程。
 */

package notify

import (
	"fmt"
	"sync/atomic"

	"github.com/gen2brain/beeep"
)

// appName 通知标题中显示的应用名称
const appName = "TypeFlow"

/**
 * Notifier 桌面通知发送器
 *
 * 并发安全，可在运行时启用或禁用。
 */
type Notifier struct {
	enabled atomic.Bool
}

/**
 * New 创建通知发送器
 *
 * Parameters:
 *   - enabled: 是否启用通知
 *
 * Returns: *Notifier - 通知发送器实例
 */
func New(enabled bool) *Notifier {
	n := &Notifier{}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled 启用或禁用通知
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// Enabled 返回通知是否启用
func (n *Notifier) Enabled() bool {
	return n.enabled.Load()
}

// TypingStarted 提示开始打字
func (n *Notifier) TypingStarted(length int) {
	n.notify("开始打字", fmt.Sprintf("正在输出 %d 个字符", length))
}

// TypingCancelled 提示打字已取消
func (n *Notifier) TypingCancelled() {
	n.notify("打字已取消", "剩余内容不再输出")
}

// EmergencyStopped 提示紧急停止已触发
func (n *Notifier) EmergencyStopped() {
	n.notify("紧急停止", "检测到双击 Esc，已中断打字")
}

// ClipboardEmpty 提示剪贴板为空
func (n *Notifier) ClipboardEmpty() {
	n.notify("剪贴板为空", "没有可输出的文本内容")
}

// Error 提示错误信息
func (n *Notifier) Error(msg string) {
	if len(msg) > 100 {
		msg = msg[:100] + "..."
	}
	n.notify("出错了", msg)
}

// notify 发送通知，失败时静默忽略
func (n *Notifier) notify(title, message string) {
	if !n.enabled.Load() {
		return
	}
	_ = beeep.Notify(appName+": "+title, message, "")
}
