/**
 * Package hotkey 提供全局紧急停止快捷键
 *
 * 在判定窗口内连按两次 Esc 触发紧急停止回调，
 * 用于在打字过程中立即中断输出。
 */

package hotkey

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.design/x/hotkey"

	"github.com/chenyang-zz/typeflow/pkg/logger"
)

// DefaultDoublePressWindow 默认双击判定窗口
const DefaultDoublePressWindow = 500 * time.Millisecond

/**
 * EmergencyStop 紧急停止快捷键监听器
 *
 * 注册全局 Esc 键监听，双击时调用 onTrigger 回调。
 * 所有方法并发安全。
 */
type EmergencyStop struct {
	mu        sync.Mutex
	hk        *hotkey.Hotkey
	stopChan  chan struct{}
	onTrigger func()
	window    time.Duration
	lastPress time.Time
	logger    *zap.Logger
}

/**
 * NewEmergencyStop 创建紧急停止监听器
 *
 * Parameters:
 *   - window: 双击判定窗口，<=0 时使用默认值
 *   - onTrigger: 触发时的回调函数
 *
 * Returns: *EmergencyStop - 监听器实例
 */
func NewEmergencyStop(window time.Duration, onTrigger func()) *EmergencyStop {
	if window <= 0 {
		window = DefaultDoublePressWindow
	}

	return &EmergencyStop{
		onTrigger: onTrigger,
		window:    window,
		logger:    logger.GetLogger().With(zap.String("component", "emergency_stop")),
	}
}

/**
 * Start 注册快捷键并开始监听
 *
 * Returns: error - 注册失败时的错误信息
 */
func (e *EmergencyStop) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hk != nil {
		e.logger.Warn("紧急停止快捷键已在监听中")
		return nil
	}

	hk := hotkey.New(nil, hotkey.KeyEscape)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("注册紧急停止快捷键失败: %w", err)
	}

	e.hk = hk
	e.stopChan = make(chan struct{})
	go e.listen(hk, e.stopChan)

	e.logger.Info("紧急停止快捷键已注册",
		zap.Duration("double_press_window", e.window))
	return nil
}

/**
 * Stop 注销快捷键并停止监听
 */
func (e *EmergencyStop) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hk == nil {
		return
	}

	close(e.stopChan)
	e.stopChan = nil

	if err := e.hk.Unregister(); err != nil {
		e.logger.Warn("注销紧急停止快捷键失败", zap.Error(err))
	}
	e.hk = nil

	e.logger.Info("紧急停止快捷键已注销")
}

// listen 监听按键事件，双击时触发回调
func (e *EmergencyStop) listen(hk *hotkey.Hotkey, stopChan chan struct{}) {
	for {
		select {
		case <-stopChan:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			if e.registerPress(time.Now()) {
				e.logger.Info("检测到双击 Esc，触发紧急停止")
				if e.onTrigger != nil {
					e.onTrigger()
				}
			}
		}
	}
}

/**
 * registerPress 记录一次按键并判断是否构成双击
 *
 * 双击触发后清除记录，第三次按键重新开始计时。
 *
 * Parameters:
 *   - now: 按键时刻
 *
 * Returns: bool - 是否构成双击
 */
func (e *EmergencyStop) registerPress(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.lastPress.IsZero() && now.Sub(e.lastPress) <= e.window {
		e.lastPress = time.Time{}
		return true
	}

	e.lastPress = now
	return false
}
