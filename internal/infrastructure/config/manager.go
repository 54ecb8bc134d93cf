package config

import (
	"sync"

	"go.uber.org/zap"

	"github.com/chenyang-zz/typeflow/internal/typing"
	"github.com/chenyang-zz/typeflow/pkg/logger"
)

/**
 * Manager 配置管理器
 *
 * 持有当前配置并在运行时修改后写回配置文件。
 * 所有方法并发安全。
 */
type Manager struct {
	mu     sync.RWMutex
	config *Config
	path   string
	logger *zap.Logger
}

/**
 * NewManager 创建配置管理器
 *
 * 从默认路径加载配置。
 *
 * Returns:
 *   - *Manager: 配置管理器实例
 *   - error: 错误信息
 */
func NewManager() (*Manager, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return NewManagerWithPath(path)
}

/**
 * NewManagerWithPath 使用指定配置文件路径创建配置管理器
 *
 * Parameters:
 *   - path: 配置文件路径
 *
 * Returns:
 *   - *Manager: 配置管理器实例
 *   - error: 错误信息
 */
func NewManagerWithPath(path string) (*Manager, error) {
	config, err := LoadFrom(path)
	if err != nil {
		return nil, err
	}

	return &Manager{
		config: config,
		path:   path,
		logger: logger.GetLogger().With(zap.String("component", "config_manager")),
	}, nil
}

// Get 返回当前配置的副本
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.config
}

// Path 返回配置文件路径
func (m *Manager) Path() string {
	return m.path
}

/**
 * SetTypingSpeed 更新打字速度并写回配置文件
 *
 * Parameters:
 *   - speed: 新的速度档位
 *
 * Returns: error - 错误信息
 */
func (m *Manager) SetTypingSpeed(speed typing.Speed) error {
	if !speed.Valid() {
		speed = typing.DefaultSpeed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.config.Typing.Speed = speed
	return m.persist()
}

/**
 * SetMonitorEnabled 更新剪贴板监控开关并写回配置文件
 *
 * Parameters:
 *   - enabled: 是否启用监控
 *
 * Returns: error - 错误信息
 */
func (m *Manager) SetMonitorEnabled(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config.Monitor.Enabled = enabled
	return m.persist()
}

/**
 * SetNotificationsEnabled 更新桌面通知开关并写回配置文件
 *
 * Parameters:
 *   - enabled: 是否启用通知
 *
 * Returns: error - 错误信息
 */
func (m *Manager) SetNotificationsEnabled(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config.Notifications.Enabled = enabled
	return m.persist()
}

// persist 保存当前配置，调用方需持有写锁
func (m *Manager) persist() error {
	if err := m.config.Save(m.path); err != nil {
		m.logger.Error("保存配置失败",
			zap.String("path", m.path),
			zap.Error(err))
		return err
	}

	m.logger.Debug("配置已保存", zap.String("path", m.path))
	return nil
}
