/**
 * Package app 提供应用的组装和生命周期管理
 *
 * 负责创建并连接事件总线、打字引擎、剪贴板监控、
 * 历史记录和紧急停止快捷键等组件，并对外提供
 * 托盘菜单需要的操作入口。
 */

package app

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chenyang-zz/typeflow/internal/hotkey"
	"github.com/chenyang-zz/typeflow/internal/infrastructure/config"
	"github.com/chenyang-zz/typeflow/internal/infrastructure/storage"
	"github.com/chenyang-zz/typeflow/internal/monitor"
	"github.com/chenyang-zz/typeflow/internal/notify"
	"github.com/chenyang-zz/typeflow/internal/platform"
	"github.com/chenyang-zz/typeflow/internal/typing"
	"github.com/chenyang-zz/typeflow/pkg/events"
	"github.com/chenyang-zz/typeflow/pkg/logger"
)

// busStopTimeout 关闭时等待事件总线排空的最长时间
const busStopTimeout = 5 * time.Second

/**
 * App 应用主结构
 *
 * 持有所有组件的引用并管理它们的启动和关闭顺序。
 */
type App struct {
	configManager *config.Manager
	eventBus      *events.EventBus
	clipboard     platform.Clipboard
	worker        *typing.Worker
	clipMonitor   *monitor.ClipboardMonitor
	recorder      *monitor.HistoryRecorder
	emergencyStop *hotkey.EmergencyStop
	notifier      *notify.Notifier
	db            *sql.DB
	logger        *zap.Logger

	// currentToken 保护当前打字任务的取消令牌
	tokenMu      sync.Mutex
	currentToken *typing.Token

	// shutdownOnce 保证关闭流程只执行一次
	shutdownOnce sync.Once
}

/**
 * New 创建并组装应用
 *
 * 根据配置创建所有组件并完成事件订阅，
 * 组件此时尚未启动，需调用 Startup。
 *
 * Parameters:
 *   - configManager: 配置管理器
 *
 * Returns:
 *   - *App: 应用实例
 *   - error: 组件创建失败时的错误信息
 */
func New(configManager *config.Manager) (*App, error) {
	return newWithPlatform(configManager,
		platform.NewRobotgoInjector(), platform.NewSystemClipboard())
}

// newWithPlatform 使用指定的注入器和剪贴板组装应用
func newWithPlatform(
	configManager *config.Manager,
	injector platform.TextInjector,
	clipboard platform.Clipboard,
) (*App, error) {
	cfg := configManager.Get()
	log := logger.GetLogger().With(zap.String("component", "app"))

	eventBus := events.NewEventBusWithFiltering()
	eventBus.Use(events.RecoveryMiddleware())

	worker := typing.NewWorker(injector,
		typing.WithEventBus(eventBus),
		typing.WithSpeed(cfg.Typing.Speed),
		typing.WithQueueSize(cfg.Typing.QueueSize),
		typing.WithChunkSize(cfg.Typing.ChunkSize),
		typing.WithChunkPause(time.Duration(cfg.Typing.ChunkPauseMs)*time.Millisecond),
	)

	clipMonitor := monitor.NewClipboardMonitor(clipboard, eventBus,
		monitor.WithPollInterval(time.Duration(cfg.Monitor.PollIntervalMs)*time.Millisecond))
	clipMonitor.SetEnabled(cfg.Monitor.Enabled)

	app := &App{
		configManager: configManager,
		eventBus:      eventBus,
		clipboard:     clipboard,
		worker:        worker,
		clipMonitor:   clipMonitor,
		notifier:      notify.New(cfg.Notifications.Enabled),
		logger:        log,
	}

	if cfg.History.Enabled {
		if err := app.setupHistory(cfg); err != nil {
			worker.Close()
			return nil, err
		}
	}

	if cfg.Hotkey.EmergencyStopEnabled {
		window := time.Duration(cfg.Hotkey.DoublePressWindowMs) * time.Millisecond
		app.emergencyStop = hotkey.NewEmergencyStop(window, app.handleEmergencyStop)
	}

	// 剪贴板变化事件驱动自动打字
	eventBus.Subscribe(string(events.EventTypeClipboard), app.handleClipboardEvent)

	return app, nil
}

// setupHistory 初始化历史存储和记录器
func (a *App) setupHistory(cfg config.Config) error {
	dbPath := cfg.Storage.SQLite.Path
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("获取用户主目录失败: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".typeflow", "history.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}

	db, err := storage.NewSQLiteDB(storage.SQLiteConfig{
		Path:            dbPath,
		MaxOpenConns:    cfg.Storage.SQLite.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.SQLite.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Storage.SQLite.ConnMaxLifetimeMin) * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("打开历史数据库失败: %w", err)
	}

	if err := storage.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("执行数据库迁移失败: %w", err)
	}

	recorderConfig := monitor.DefaultHistoryRecorderConfig()
	recorderConfig.MaxEntries = cfg.History.MaxEntries
	recorderConfig.RetentionDays = cfg.History.RetentionDays

	a.db = db
	a.recorder = monitor.NewHistoryRecorder(
		storage.NewSQLiteHistoryRepository(db), a.eventBus, recorderConfig)
	return nil
}

/**
 * Startup 启动所有组件
 *
 * Returns: error - 启动失败时的错误信息
 */
func (a *App) Startup() error {
	a.logger.Info("应用启动中")

	if a.recorder != nil {
		if err := a.recorder.Start(); err != nil {
			return fmt.Errorf("启动历史记录器失败: %w", err)
		}
	}

	if err := a.clipMonitor.Start(); err != nil {
		return fmt.Errorf("启动剪贴板监控失败: %w", err)
	}

	if a.emergencyStop != nil {
		if err := a.emergencyStop.Start(); err != nil {
			// 快捷键注册失败不阻止应用运行
			a.logger.Warn("紧急停止快捷键不可用", zap.Error(err))
			a.emergencyStop = nil
		}
	}

	a.logger.Info("应用启动完成")
	return nil
}

/**
 * Shutdown 关闭所有组件
 *
 * 按启动的逆序关闭，等待打字队列排空后退出。
 * 幂等操作，重复调用是空操作。
 */
func (a *App) Shutdown() {
	a.shutdownOnce.Do(a.shutdown)
}

func (a *App) shutdown() {
	a.logger.Info("应用关闭中")

	if a.emergencyStop != nil {
		a.emergencyStop.Stop()
	}

	if err := a.clipMonitor.Stop(); err != nil {
		a.logger.Warn("停止剪贴板监控失败", zap.Error(err))
	}

	a.CancelTyping()
	a.worker.Close()

	if a.recorder != nil {
		if err := a.recorder.Stop(); err != nil {
			a.logger.Warn("停止历史记录器失败", zap.Error(err))
		}
	}

	if err := a.eventBus.Stop(busStopTimeout); err != nil {
		a.logger.Warn("停止事件总线超时", zap.Error(err))
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("关闭历史数据库失败", zap.Error(err))
		}
	}

	a.logger.Info("应用已关闭")
	_ = logger.Sync()
}

/**
 * PasteClipboard 立即输出当前剪贴板内容
 *
 * 手动触发，不经过变化检测。剪贴板为空时提示用户。
 *
 * Returns: error - 读取或入队失败时的错误信息
 */
func (a *App) PasteClipboard() error {
	content, ok, err := a.clipboard.Read()
	if err != nil {
		a.logger.Error("读取剪贴板失败", zap.Error(err))
		a.notifier.Error("读取剪贴板失败")
		return err
	}
	if !ok {
		a.logger.Info("剪贴板为空，忽略手动粘贴")
		a.notifier.ClipboardEmpty()
		return nil
	}

	return a.enqueueTyping(content)
}

/**
 * CancelTyping 取消当前打字任务
 *
 * 没有进行中的任务时为空操作。
 */
func (a *App) CancelTyping() {
	a.tokenMu.Lock()
	defer a.tokenMu.Unlock()

	if a.currentToken != nil {
		a.currentToken.Cancel()
	}
}

/**
 * SetTypingSpeed 修改打字速度
 *
 * 立即对后续任务生效并持久化到配置文件。
 *
 * Parameters:
 *   - speed: 新的速度档位
 *
 * Returns: error - 错误信息
 */
func (a *App) SetTypingSpeed(speed typing.Speed) error {
	if err := a.worker.EnqueueSetSpeed(speed); err != nil {
		return err
	}
	return a.configManager.SetTypingSpeed(speed)
}

// TypingSpeed 返回当前打字速度
func (a *App) TypingSpeed() typing.Speed {
	return a.worker.Speed()
}

/**
 * SetMonitorEnabled 切换剪贴板监控开关
 *
 * 重新启用时基准内容同步为当前剪贴板，
 * 禁用期间的变化不会补发。修改持久化到配置文件。
 *
 * Parameters:
 *   - enabled: 是否启用监控
 *
 * Returns: error - 错误信息
 */
func (a *App) SetMonitorEnabled(enabled bool) error {
	a.clipMonitor.SetEnabled(enabled)
	return a.configManager.SetMonitorEnabled(enabled)
}

// MonitorEnabled 返回剪贴板监控是否启用
func (a *App) MonitorEnabled() bool {
	return a.clipMonitor.IsEnabled()
}

/**
 * RecentHistory 返回最近的剪贴板历史
 *
 * Parameters:
 *   - limit: 返回条目数上限
 *
 * Returns:
 *   - []storage.HistoryEntry: 按捕获时间倒序的历史条目
 *   - error: 历史未启用或查询失败时的错误信息
 */
func (a *App) RecentHistory(limit int) ([]storage.HistoryEntry, error) {
	if a.recorder == nil {
		return nil, fmt.Errorf("剪贴板历史未启用")
	}
	return a.recorder.Recent(limit)
}

// ClearHistory 清空剪贴板历史
func (a *App) ClearHistory() error {
	if a.recorder == nil {
		return fmt.Errorf("剪贴板历史未启用")
	}
	return a.recorder.Clear()
}

// handleClipboardEvent 剪贴板变化事件的自动打字入口
func (a *App) handleClipboardEvent(event events.Event) error {
	content, ok := event.Data["content"].(string)
	if !ok || content == "" {
		return nil
	}

	if err := a.enqueueTyping(content); err != nil {
		a.logger.Warn("自动打字入队失败",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
	return nil
}

// enqueueTyping 取消上一个任务并提交新的打字任务
func (a *App) enqueueTyping(content string) error {
	a.tokenMu.Lock()
	defer a.tokenMu.Unlock()

	if a.currentToken != nil {
		a.currentToken.Cancel()
	}

	token := typing.NewToken()
	if err := a.worker.TryEnqueueTypeText(content, token); err != nil {
		if err == typing.ErrQueueFull {
			a.notifier.Error("打字队列已满，请稍后重试")
		}
		return err
	}

	a.currentToken = token
	a.notifier.TypingStarted(len([]rune(content)))
	return nil
}

// handleEmergencyStop 双击 Esc 的紧急停止回调
func (a *App) handleEmergencyStop() {
	a.CancelTyping()
	a.notifier.EmergencyStopped()
}

/**
 * SetNotificationsEnabled 切换桌面通知开关
 *
 * 修改持久化到配置文件。
 *
 * Parameters:
 *   - enabled: 是否启用通知
 *
 * Returns: error - 错误信息
 */
func (a *App) SetNotificationsEnabled(enabled bool) error {
	a.notifier.SetEnabled(enabled)
	return a.configManager.SetNotificationsEnabled(enabled)
}

// NotificationsEnabled 返回桌面通知是否启用
func (a *App) NotificationsEnabled() bool {
	return a.notifier.Enabled()
}
