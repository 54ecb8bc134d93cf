/**
 * Package tray 提供系统托盘菜单
 *
 * 应用的唯一交互界面：手动粘贴、取消打字、速度档位、
 * 监控开关和退出都通过托盘菜单操作。
 */

package tray

import (
	"github.com/getlantern/systray"

	"github.com/chenyang-zz/typeflow/internal/typing"
)

/**
 * Callbacks 托盘菜单的事件回调
 *
 * 各回调为 nil 时对应菜单项点击被忽略。
 */
type Callbacks struct {
	// OnPaste 点击"粘贴剪贴板"
	OnPaste func()

	// OnCancel 点击"取消打字"
	OnCancel func()

	// OnSpeedChange 选择速度档位
	OnSpeedChange func(speed typing.Speed)

	// OnMonitorToggle 切换监控开关，返回切换后的状态
	OnMonitorToggle func() bool

	// OnNotificationsToggle 切换通知开关，返回切换后的状态
	OnNotificationsToggle func() bool

	// OnQuit 点击"退出"
	OnQuit func()
}

/**
 * Options 托盘菜单的初始状态
 */
type Options struct {
	// Speed 当前速度档位
	Speed typing.Speed

	// MonitorEnabled 监控是否启用
	MonitorEnabled bool

	// NotificationsEnabled 通知是否启用
	NotificationsEnabled bool
}

/**
 * Tray 系统托盘菜单
 */
type Tray struct {
	callbacks Callbacks
	options   Options

	pasteBtn   *systray.MenuItem
	cancelBtn  *systray.MenuItem
	speedSlow  *systray.MenuItem
	speedNorm  *systray.MenuItem
	speedFast  *systray.MenuItem
	monitorBtn *systray.MenuItem
	notifyBtn  *systray.MenuItem
	quitBtn    *systray.MenuItem
}

/**
 * New 创建托盘菜单
 *
 * Parameters:
 *   - callbacks: 菜单事件回调
 *   - options: 初始状态
 *
 * Returns: *Tray - 托盘实例
 */
func New(callbacks Callbacks, options Options) *Tray {
	return &Tray{
		callbacks: callbacks,
		options:   options,
	}
}

/**
 * Run 运行托盘菜单
 *
 * 阻塞调用，直到 Quit 被触发。
 *
 * Parameters:
 *   - onReady: 菜单就绪后的回调
 *   - onExit: 托盘退出后的回调
 */
func (t *Tray) Run(onReady func(), onExit func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("TypeFlow")
	systray.SetTooltip("剪贴板打字助手")

	t.pasteBtn = systray.AddMenuItem("粘贴剪贴板", "立即输出当前剪贴板内容")
	t.cancelBtn = systray.AddMenuItem("取消打字", "中断正在进行的输出")

	systray.AddSeparator()

	speedMenu := systray.AddMenuItem("打字速度", "")
	t.speedSlow = speedMenu.AddSubMenuItemCheckbox("慢速", "每个字符 50 毫秒", false)
	t.speedNorm = speedMenu.AddSubMenuItemCheckbox("正常", "每个字符 25 毫秒", false)
	t.speedFast = speedMenu.AddSubMenuItemCheckbox("快速", "每个字符 10 毫秒", false)
	t.checkSpeed(t.options.Speed)

	t.monitorBtn = systray.AddMenuItemCheckbox("监控剪贴板",
		"剪贴板变化时自动打字", t.options.MonitorEnabled)
	t.notifyBtn = systray.AddMenuItemCheckbox("桌面通知",
		"打字状态变化时发送系统通知", t.options.NotificationsEnabled)

	systray.AddSeparator()

	t.quitBtn = systray.AddMenuItem("退出", "退出 TypeFlow")

	go t.handleMenuEvents()
}

func (t *Tray) handleMenuEvents() {
	for {
		select {
		case <-t.pasteBtn.ClickedCh:
			if t.callbacks.OnPaste != nil {
				t.callbacks.OnPaste()
			}

		case <-t.cancelBtn.ClickedCh:
			if t.callbacks.OnCancel != nil {
				t.callbacks.OnCancel()
			}

		case <-t.speedSlow.ClickedCh:
			t.selectSpeed(typing.SpeedSlow)

		case <-t.speedNorm.ClickedCh:
			t.selectSpeed(typing.SpeedNormal)

		case <-t.speedFast.ClickedCh:
			t.selectSpeed(typing.SpeedFast)

		case <-t.monitorBtn.ClickedCh:
			if t.callbacks.OnMonitorToggle != nil {
				if t.callbacks.OnMonitorToggle() {
					t.monitorBtn.Check()
				} else {
					t.monitorBtn.Uncheck()
				}
			}

		case <-t.notifyBtn.ClickedCh:
			if t.callbacks.OnNotificationsToggle != nil {
				if t.callbacks.OnNotificationsToggle() {
					t.notifyBtn.Check()
				} else {
					t.notifyBtn.Uncheck()
				}
			}

		case <-t.quitBtn.ClickedCh:
			if t.callbacks.OnQuit != nil {
				t.callbacks.OnQuit()
			}
			systray.Quit()
			return
		}
	}
}

// selectSpeed 更新速度档位勾选状态并触发回调
func (t *Tray) selectSpeed(speed typing.Speed) {
	t.checkSpeed(speed)
	if t.callbacks.OnSpeedChange != nil {
		t.callbacks.OnSpeedChange(speed)
	}
}

// checkSpeed 勾选指定档位并取消其余档位
func (t *Tray) checkSpeed(speed typing.Speed) {
	t.speedSlow.Uncheck()
	t.speedNorm.Uncheck()
	t.speedFast.Uncheck()

	switch speed {
	case typing.SpeedSlow:
		t.speedSlow.Check()
	case typing.SpeedFast:
		t.speedFast.Check()
	default:
		t.speedNorm.Check()
	}
}

// Quit 关闭托盘菜单
func (t *Tray) Quit() {
	systray.Quit()
}
