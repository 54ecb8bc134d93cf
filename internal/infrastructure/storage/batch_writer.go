package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chenyang-zz/typeflow/pkg/logger"
)

/**
 * BatchWriterConfig 批量写入器配置
 */
type BatchWriterConfig struct {
	// BatchSize 批量大小（达到此数量时自动刷新）
	BatchSize int

	// FlushInterval 刷新间隔（定时刷新）
	FlushInterval time.Duration

	// EntryBuffer 缓冲区大小（channel 容量）
	EntryBuffer int
}

/**
 * DefaultBatchWriterConfig 默认配置
 *
 * 剪贴板变化的频率远低于键盘事件，较小的批量和
 * 较短的刷新间隔就足够了。
 */
func DefaultBatchWriterConfig() BatchWriterConfig {
	return BatchWriterConfig{
		BatchSize:     20,
		FlushInterval: 2 * time.Second,
		EntryBuffer:   200,
	}
}

/**
 * BatchWriter 批量写入器
 *
 * 缓冲历史条目并批量写入数据库，避免每次剪贴板变化
 * 都触发一次磁盘写入
 */
type BatchWriter struct {
	repo   HistoryRepository
	config BatchWriterConfig

	// 条目通道
	entryChan chan HistoryEntry

	// 批量缓冲区
	buffer []HistoryEntry

	// 并发控制
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// 状态
	started bool
}

/**
 * NewBatchWriter 创建批量写入器
 *
 * Parameters:
 *   - repo: 历史仓储
 *   - config: 配置（使用 DefaultBatchWriterConfig() 获取默认配置）
 *
 * Returns: *BatchWriter - 批量写入器实例
 */
func NewBatchWriter(repo HistoryRepository, config BatchWriterConfig) *BatchWriter {
	ctx, cancel := context.WithCancel(context.Background())

	return &BatchWriter{
		repo:      repo,
		config:    config,
		entryChan: make(chan HistoryEntry, config.EntryBuffer),
		buffer:    make([]HistoryEntry, 0, config.BatchSize),
		ctx:       ctx,
		cancel:    cancel,
		started:   false,
	}
}

/**
 * Start 启动批量写入器
 *
 * 开始处理条目通道和定时刷新
 */
func (bw *BatchWriter) Start() {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if bw.started {
		logger.Warn("批量写入器已经启动", zap.Any("config", bw.config))
		return
	}

	bw.started = true

	// 启动条目处理循环
	bw.wg.Add(1)
	go bw.processEntries()

	// 启动定时刷新循环
	bw.wg.Add(1)
	go bw.flushLoop()

	logger.Info("批量写入器已启动",
		zap.Int("batch_size", bw.config.BatchSize),
		zap.Duration("flush_interval", bw.config.FlushInterval),
		zap.Int("entry_buffer", bw.config.EntryBuffer),
	)
}

/**
 * Stop 停止批量写入器
 *
 * 停止接收新条目，刷新缓冲区，等待所有写入完成
 */
func (bw *BatchWriter) Stop() {
	bw.mu.Lock()
	if !bw.started {
		bw.mu.Unlock()
		return
	}
	bw.started = false
	bw.mu.Unlock()

	logger.Info("正在停止批量写入器...")

	// 关闭条目通道
	close(bw.entryChan)

	// 取消上下文
	bw.cancel()

	// 刷新剩余条目
	bw.mu.Lock()
	bw.flush()
	bw.mu.Unlock()

	// 等待所有 goroutine 完成
	bw.wg.Wait()

	logger.Info("批量写入器已停止")
}

/**
 * Write 写入单个条目
 *
 * 非阻塞方法，将条目放入通道
 *
 * Parameters:
 *   - entry: 历史条目
 *
 * Returns: bool - 是否成功写入（通道满时返回 false）
 */
func (bw *BatchWriter) Write(entry HistoryEntry) bool {
	select {
	case bw.entryChan <- entry:
		return true
	default:
		// 通道已满
		logger.Warn("批量写入器通道已满，条目丢弃",
			zap.String("entry_id", entry.ID),
			zap.String("content_type", entry.ContentType),
		)
		return false
	}
}

/**
 * ForceFlush 强制刷新缓冲区
 *
 * 立即将缓冲区中的所有条目写入数据库
 */
func (bw *BatchWriter) ForceFlush() {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	bw.flush()
}

/**
 * processEntries 条目处理循环
 *
 * 从通道接收条目并放入缓冲区
 */
func (bw *BatchWriter) processEntries() {
	defer bw.wg.Done()

	for {
		select {
		case <-bw.ctx.Done():
			// 上下文取消，退出循环
			return

		case entry, ok := <-bw.entryChan:
			if !ok {
				// 通道关闭
				return
			}

			bw.mu.Lock()
			bw.buffer = append(bw.buffer, entry)

			// 达到批量大小，立即刷新
			if len(bw.buffer) >= bw.config.BatchSize {
				bw.flush()
			}
			bw.mu.Unlock()
		}
	}
}

/**
 * flushLoop 定时刷新循环
 *
 * 定期刷新缓冲区
 */
func (bw *BatchWriter) flushLoop() {
	defer bw.wg.Done()

	ticker := time.NewTicker(bw.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-bw.ctx.Done():
			return
		case <-ticker.C:
			bw.mu.Lock()
			bw.flush()
			bw.mu.Unlock()
		}
	}
}

/**
 * flush 刷新缓冲区到数据库
 *
 * 必须在持有锁的情况下调用
 */
func (bw *BatchWriter) flush() {
	if len(bw.buffer) == 0 {
		return
	}

	startTime := time.Now()
	entryCount := len(bw.buffer)

	// 批量写入
	err := bw.repo.SaveBatch(bw.buffer)
	if err != nil {
		logger.Error("批量写入失败",
			zap.Int("count", entryCount),
			zap.Error(err),
		)
		return
	}

	// 清空缓冲区
	bw.buffer = bw.buffer[:0]

	duration := time.Since(startTime)

	logger.Debug("批量刷新完成",
		zap.Int("count", entryCount),
		zap.Duration("duration", duration),
	)
}

/**
 * GetBufferSize 获取当前缓冲区大小
 *
 * Returns: int - 缓冲区中的条目数量
 */
func (bw *BatchWriter) GetBufferSize() int {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return len(bw.buffer)
}

/**
 * IsStarted 检查批量写入器是否已启动
 *
 * Returns: bool - 是否已启动
 */
func (bw *BatchWriter) IsStarted() bool {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return bw.started
}
