/**
 * Package monitor 剪贴板变化检测
 *
 * 通过轮询检测系统剪贴板的内容变化，用内容哈希去重后
 * 把变化事件发布到事件总线。
 */
package monitor

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chenyang-zz/typeflow/internal/platform"
	"github.com/chenyang-zz/typeflow/pkg/events"
	"github.com/chenyang-zz/typeflow/pkg/logger"
)

// DefaultPollInterval 剪贴板轮询的默认间隔
const DefaultPollInterval = 500 * time.Millisecond

/**
 * ClipboardMonitor 剪贴板监控器
 *
 * 周期性读取剪贴板内容，计算 FNV-1a 64 位哈希与上次比较，
 * 只有内容变化时才发布剪贴板事件。空剪贴板和读取失败的
 * 轮询会被跳过，不产生事件。
 *
 * 监控器支持临时禁用：禁用期间不读取剪贴板，重新启用时
 * 先同步一次当前内容的哈希，避免把禁用期间复制的内容
 * 当作新变化处理。
 */
type ClipboardMonitor struct {
	// clipboard 剪贴板访问接口
	clipboard platform.Clipboard

	// eventBus 事件总线
	eventBus *events.EventBus

	// interval 轮询间隔
	interval time.Duration

	// enabled 是否处理剪贴板变化
	enabled atomic.Bool

	// isRunning 监控器运行状态
	isRunning bool

	// mu 读写锁，保护运行状态
	mu sync.RWMutex

	// stopChan 停止信号通道
	stopChan chan struct{}

	// wg 等待轮询 goroutine 退出
	wg sync.WaitGroup

	// lastHash 上次内容的哈希值
	lastHash uint64

	// hasLast 是否已经有上次哈希（区分首次轮询和哈希恰好为 0）
	hasLast bool

	// pendingResync 同步哈希时读取失败，需要在下次轮询补做
	pendingResync bool

	// hashMu 互斥锁，保护哈希状态
	hashMu sync.Mutex
}

// MonitorOption 监控器配置选项
type MonitorOption func(*ClipboardMonitor)

// WithPollInterval 设置轮询间隔
func WithPollInterval(interval time.Duration) MonitorOption {
	return func(m *ClipboardMonitor) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

// NewClipboardMonitor 创建剪贴板监控器
//
// 新监控器处于未运行、已启用状态，需要调用 Start 开始轮询。
//
// Parameters:
//   - clipboard: 剪贴板访问接口
//   - eventBus: 事件总线
//   - opts: 配置选项
//
// Returns: *ClipboardMonitor - 新创建的监控器实例
func NewClipboardMonitor(clipboard platform.Clipboard, eventBus *events.EventBus, opts ...MonitorOption) *ClipboardMonitor {
	m := &ClipboardMonitor{
		clipboard: clipboard,
		eventBus:  eventBus,
		interval:  DefaultPollInterval,
	}
	m.enabled.Store(true)

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start 启动剪贴板监控
//
// 启动前先同步一次当前剪贴板内容的哈希，程序启动时
// 剪贴板里已有的内容不会被当作新变化。
// 幂等操作，重复调用返回 nil。
//
// Returns: error - 启动失败时返回错误
func (m *ClipboardMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		logger.Warn("剪贴板监控器已在运行", zap.String("component", "clipboard_monitor"))
		return nil
	}

	// 同步当前内容的哈希，已有内容不触发事件
	m.resync()

	m.stopChan = make(chan struct{})
	m.isRunning = true

	m.wg.Add(1)
	go m.pollLoop()

	logger.Info("剪贴板监控器已启动",
		zap.String("component", "clipboard_monitor"),
		zap.Duration("interval", m.interval),
	)
	return nil
}

// Stop 停止剪贴板监控
//
// 等待轮询 goroutine 退出后返回。
// 幂等操作，重复调用返回 nil。
//
// Returns: error - 停止失败时返回错误
func (m *ClipboardMonitor) Stop() error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		logger.Warn("剪贴板监控器未在运行", zap.String("component", "clipboard_monitor"))
		return nil
	}

	close(m.stopChan)
	m.isRunning = false
	m.mu.Unlock()

	m.wg.Wait()

	logger.Info("剪贴板监控器已停止", zap.String("component", "clipboard_monitor"))
	return nil
}

// IsRunning 检查监控器是否正在运行
//
// Returns: bool - 是否正在运行
func (m *ClipboardMonitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isRunning
}

// IsEnabled 检查剪贴板变化处理是否启用
//
// Returns: bool - 是否启用
func (m *ClipboardMonitor) IsEnabled() bool {
	return m.enabled.Load()
}

// SetEnabled 启用或禁用剪贴板变化处理
//
// 从禁用切换到启用时，先同步当前剪贴板内容的哈希，
// 禁用期间复制的内容不会触发事件。
//
// Parameters: enabled - 是否启用
func (m *ClipboardMonitor) SetEnabled(enabled bool) {
	wasEnabled := m.enabled.Swap(enabled)

	if enabled && !wasEnabled {
		m.resync()
	}

	if enabled != wasEnabled {
		logger.Info("剪贴板监控状态已切换",
			zap.String("component", "clipboard_monitor"),
			zap.Bool("enabled", enabled),
		)
	}
}

// resync 同步当前剪贴板内容的哈希
//
// 读取失败不清除已有的哈希状态，改为标记待同步，
// 由下一次成功的轮询先补做同步再恢复事件发布。
// 剪贴板为空时清除哈希状态。
func (m *ClipboardMonitor) resync() {
	m.hashMu.Lock()
	defer m.hashMu.Unlock()

	content, ok, err := m.clipboard.Read()
	if err != nil {
		logger.Warn("同步剪贴板哈希失败，推迟到下次轮询",
			zap.String("component", "clipboard_monitor"),
			zap.Error(err),
		)
		m.pendingResync = true
		return
	}

	m.pendingResync = false
	m.recordBaseline(content, ok)
}

// recordBaseline 记录当前内容为去重基准，调用方需持有 hashMu
func (m *ClipboardMonitor) recordBaseline(content string, ok bool) {
	if !ok {
		m.hasLast = false
		m.lastHash = 0
		return
	}
	m.lastHash = hashContent(content)
	m.hasLast = true
}

// pollLoop 轮询 goroutine 主循环
func (m *ClipboardMonitor) pollLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

// poll 执行单次轮询
//
// 按顺序应用跳过规则：
//  1. 禁用状态不读取剪贴板
//  2. 读取失败记录日志后跳过本次轮询，哈希状态不变
//  3. 有待补做的同步时只记录基准，不发布事件
//  4. 空剪贴板不产生事件
//  5. 哈希与上次相同不产生事件
func (m *ClipboardMonitor) poll() {
	if !m.enabled.Load() {
		return
	}

	content, ok, err := m.clipboard.Read()
	if err != nil {
		logger.Warn("读取剪贴板失败",
			zap.String("component", "clipboard_monitor"),
			zap.Error(err),
		)
		return
	}

	m.hashMu.Lock()
	if m.pendingResync {
		m.pendingResync = false
		m.recordBaseline(content, ok)
		m.hashMu.Unlock()
		return
	}
	if !ok {
		m.hashMu.Unlock()
		return
	}

	hash := hashContent(content)
	if m.hasLast && hash == m.lastHash {
		m.hashMu.Unlock()
		return
	}
	m.lastHash = hash
	m.hasLast = true
	m.hashMu.Unlock()

	m.publishChange(content, hash)
}

// publishChange 发布剪贴板变化事件
func (m *ClipboardMonitor) publishChange(content string, hash uint64) {
	contentType := DetectContentType(content)

	// 截取内容避免日志过长
	preview := content
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}

	logger.Info("检测到剪贴板内容变化",
		zap.String("component", "clipboard_monitor"),
		zap.String("type", contentType),
		zap.Int("length", len([]rune(content))),
		zap.String("preview", preview),
	)

	event := events.NewEvent(events.EventTypeClipboard, map[string]interface{}{
		"content":      content,
		"content_type": contentType,
		"hash":         hash,
		"length":       len([]rune(content)),
	})

	if err := m.eventBus.Publish(string(events.EventTypeClipboard), *event); err != nil {
		logger.Error("发布剪贴板事件失败",
			zap.String("component", "clipboard_monitor"),
			zap.Error(err),
		)
	}
}

// hashContent 计算内容的 FNV-1a 64 位哈希
//
// Parameters: content - 剪贴板内容
//
// Returns: uint64 - 哈希值
func hashContent(content string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(content))
	return h.Sum64()
}
