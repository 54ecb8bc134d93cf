/**
 * 剪贴板历史记录器
 *
 * 订阅剪贴板事件并持久化到存储，维护历史条目的
 * 数量上限和保留期限
 */

package monitor

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chenyang-zz/typeflow/internal/infrastructure/storage"
	"github.com/chenyang-zz/typeflow/pkg/events"
	"github.com/chenyang-zz/typeflow/pkg/logger"
)

/**
 * HistoryRecorderConfig 历史记录器配置
 */
type HistoryRecorderConfig struct {
	// MaxEntries 历史条目数上限
	MaxEntries int

	// RetentionDays 条目保留天数（0 表示不按时间清理）
	RetentionDays int

	// RetryOnError 写入失败时重试
	RetryOnError bool

	// MaxRetries 最大重试次数
	MaxRetries int

	// MaintenanceInterval 清理任务的执行间隔
	MaintenanceInterval time.Duration
}

/**
 * DefaultHistoryRecorderConfig 默认历史记录器配置
 */
func DefaultHistoryRecorderConfig() HistoryRecorderConfig {
	return HistoryRecorderConfig{
		MaxEntries:          100,
		RetentionDays:       30,
		RetryOnError:        true,
		MaxRetries:          3,
		MaintenanceInterval: time.Minute,
	}
}

/**
 * HistoryRecorder 剪贴板历史记录器
 *
 * 订阅事件总线上的剪贴板事件，通过批量写入器持久化为
 * 历史条目。后台清理任务周期性裁剪超出上限的条目并
 * 删除过期数据。
 */
type HistoryRecorder struct {
	repo        storage.HistoryRepository
	batchWriter *storage.BatchWriter
	eventBus    *events.EventBus
	config      HistoryRecorderConfig

	// subscriberID 事件总线订阅 ID
	subscriberID string

	// isRunning 运行状态
	isRunning bool

	// mu 读写锁，保护运行状态
	mu sync.RWMutex

	// stopChan 停止信号通道
	stopChan chan struct{}

	// wg 等待清理 goroutine 退出
	wg sync.WaitGroup
}

/**
 * NewHistoryRecorder 创建剪贴板历史记录器
 *
 * Parameters:
 *   - repo: 历史仓储
 *   - eventBus: 事件总线
 *   - config: 记录器配置
 *
 * Returns: *HistoryRecorder - 新创建的记录器实例
 */
func NewHistoryRecorder(
	repo storage.HistoryRepository,
	eventBus *events.EventBus,
	config HistoryRecorderConfig,
) *HistoryRecorder {
	return &HistoryRecorder{
		repo:        repo,
		batchWriter: storage.NewBatchWriter(repo, storage.DefaultBatchWriterConfig()),
		eventBus:    eventBus,
		config:      config,
	}
}

/**
 * Start 启动历史记录器
 *
 * 启动批量写入器、订阅剪贴板事件并开启后台清理任务。
 * 幂等操作，重复调用返回 nil。
 *
 * Returns: error - 启动失败时返回错误
 */
func (hr *HistoryRecorder) Start() error {
	hr.mu.Lock()
	defer hr.mu.Unlock()

	if hr.isRunning {
		logger.Warn("历史记录器已在运行", zap.String("component", "history"))
		return nil
	}

	hr.batchWriter.Start()

	hr.subscriberID = hr.eventBus.Subscribe(
		string(events.EventTypeClipboard),
		hr.handleClipboardEvent,
	)

	hr.stopChan = make(chan struct{})
	hr.isRunning = true

	hr.wg.Add(1)
	go hr.maintenanceLoop()

	logger.Info("历史记录器已启动",
		zap.String("component", "history"),
		zap.Int("max_entries", hr.config.MaxEntries),
		zap.Int("retention_days", hr.config.RetentionDays),
	)
	return nil
}

/**
 * Stop 停止历史记录器
 *
 * 取消订阅、停止清理任务并刷新批量写入器的缓冲区。
 * 幂等操作，重复调用返回 nil。
 *
 * Returns: error - 停止失败时返回错误
 */
func (hr *HistoryRecorder) Stop() error {
	hr.mu.Lock()
	if !hr.isRunning {
		hr.mu.Unlock()
		return nil
	}

	hr.eventBus.Unsubscribe(hr.subscriberID)
	close(hr.stopChan)
	hr.isRunning = false
	hr.mu.Unlock()

	hr.wg.Wait()
	hr.batchWriter.Stop()

	// 最后执行一次清理，保证落盘数据在限制之内
	hr.maintain()

	logger.Info("历史记录器已停止", zap.String("component", "history"))
	return nil
}

/**
 * IsRunning 检查记录器是否正在运行
 *
 * Returns: bool - 是否正在运行
 */
func (hr *HistoryRecorder) IsRunning() bool {
	hr.mu.RLock()
	defer hr.mu.RUnlock()
	return hr.isRunning
}

/**
 * Recent 查询最近的历史条目
 *
 * 查询前强制刷新缓冲区，保证刚捕获的条目可见。
 *
 * Parameters:
 *   - limit: 返回数量限制
 *
 * Returns: []storage.HistoryEntry - 条目列表, error - 错误信息
 */
func (hr *HistoryRecorder) Recent(limit int) ([]storage.HistoryEntry, error) {
	hr.batchWriter.ForceFlush()
	return hr.repo.FindRecent(limit)
}

/**
 * Clear 清空全部历史
 *
 * Returns: error - 错误信息
 */
func (hr *HistoryRecorder) Clear() error {
	hr.batchWriter.ForceFlush()
	return hr.repo.Clear()
}

/**
 * handleClipboardEvent 处理剪贴板事件
 *
 * 从事件数据构造历史条目并提交到批量写入器。
 * 数据不完整的事件被忽略。
 *
 * Parameters:
 *   - event: 剪贴板事件
 *
 * Returns: error - 始终为 nil（持久化失败不影响其他订阅者）
 */
func (hr *HistoryRecorder) handleClipboardEvent(event events.Event) error {
	content, ok := event.Data["content"].(string)
	if !ok || content == "" {
		logger.Debug("剪贴板事件缺少内容，跳过持久化",
			zap.String("component", "history"),
			zap.String("event_id", event.ID),
		)
		return nil
	}

	contentType, _ := event.Data["content_type"].(string)
	if contentType == "" {
		contentType = DetectContentType(content)
	}

	hash, ok := event.Data["hash"].(uint64)
	if !ok {
		hash = hashContent(content)
	}

	entry := storage.HistoryEntry{
		ID:          event.ID,
		Hash:        hash,
		Content:     content,
		ContentType: contentType,
		Length:      len([]rune(content)),
		CapturedAt:  event.Timestamp,
	}

	if !hr.batchWriter.Write(entry) && hr.config.RetryOnError {
		logger.Warn("历史条目写入失败，准备重试",
			zap.String("component", "history"),
			zap.String("entry_id", entry.ID),
		)
		go hr.retryWrite(entry)
	}

	return nil
}

/**
 * retryWrite 重试写入历史条目
 *
 * Parameters:
 *   - entry: 历史条目
 */
func (hr *HistoryRecorder) retryWrite(entry storage.HistoryEntry) {
	maxRetries := hr.config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	for i := 0; i < maxRetries; i++ {
		// 指数退避
		backoff := time.Duration(1<<uint(i)) * time.Second
		time.Sleep(backoff)

		if hr.batchWriter.Write(entry) {
			logger.Info("历史条目重试写入成功",
				zap.String("component", "history"),
				zap.String("entry_id", entry.ID),
				zap.Int("attempt", i+1),
			)
			return
		}
	}

	logger.Error("历史条目写入重试失败",
		zap.String("component", "history"),
		zap.String("entry_id", entry.ID),
		zap.Int("max_retries", maxRetries),
	)
}

/**
 * maintenanceLoop 后台清理循环
 */
func (hr *HistoryRecorder) maintenanceLoop() {
	defer hr.wg.Done()

	interval := hr.config.MaintenanceInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-hr.stopChan:
			return
		case <-ticker.C:
			hr.maintain()
		}
	}
}

/**
 * maintain 执行一次历史清理
 *
 * 裁剪超出数量上限的条目并删除过期数据。
 */
func (hr *HistoryRecorder) maintain() {
	if hr.config.MaxEntries > 0 {
		if _, err := hr.repo.TrimToLimit(hr.config.MaxEntries); err != nil {
			logger.Error("历史裁剪失败",
				zap.String("component", "history"),
				zap.Error(err),
			)
		}
	}

	if hr.config.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -hr.config.RetentionDays)
		if _, err := hr.repo.DeleteOlderThan(cutoff); err != nil {
			logger.Error("过期历史清理失败",
				zap.String("component", "history"),
				zap.Error(err),
			)
		}
	}
}
