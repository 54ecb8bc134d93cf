/**
 * Package config 提供配置管理功能
 *
 * 负责加载、保存和管理应用的配置信息。用户在托盘菜单里
 * 修改的设置（打字速度、监控开关）会立即写回配置文件，
 * 下次启动时恢复。
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/chenyang-zz/typeflow/internal/typing"
)

// configDirName 用户主目录下的配置目录名
const configDirName = ".typeflow"

// configFileName 配置文件名
const configFileName = "config.yaml"

/**
 * Config 应用配置结构体
 *
 * 包含应用的所有可配置参数
 */
type Config struct {
	// Application 应用基本配置
	Application ApplicationConfig `yaml:"application"`

	// Typing 打字引擎配置
	Typing TypingConfig `yaml:"typing"`

	// Monitor 剪贴板监控配置
	Monitor MonitorConfig `yaml:"monitor"`

	// History 剪贴板历史配置
	History HistoryConfig `yaml:"history"`

	// Hotkey 快捷键配置
	Hotkey HotkeyConfig `yaml:"hotkey"`

	// Storage 存储配置
	Storage StorageConfig `yaml:"storage"`

	// Notifications 通知配置
	Notifications NotificationsConfig `yaml:"notifications"`

	// Logging 日志配置
	Logging LoggingConfig `yaml:"logging"`
}

/**
 * ApplicationConfig 应用基本配置
 */
type ApplicationConfig struct {
	/** 应用名称 */
	Name string `yaml:"name"`

	/** 应用版本 */
	Version string `yaml:"version"`

	/** 日志级别 */
	LogLevel string `yaml:"log_level"`

	/** 是否启用调试模式 */
	Debug bool `yaml:"debug"`
}

/**
 * TypingConfig 打字引擎配置
 */
type TypingConfig struct {
	/** 打字速度档位（slow/normal/fast） */
	Speed typing.Speed `yaml:"speed"`

	/** 长文本分块大小（字符数） */
	ChunkSize int `yaml:"chunk_size"`

	/** 块间停顿（毫秒） */
	ChunkPauseMs int `yaml:"chunk_pause_ms"`

	/** 命令队列容量 */
	QueueSize int `yaml:"queue_size"`
}

/**
 * MonitorConfig 剪贴板监控配置
 */
type MonitorConfig struct {
	/** 剪贴板变化是否自动打字 */
	Enabled bool `yaml:"enabled"`

	/** 轮询间隔（毫秒） */
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

/**
 * HistoryConfig 剪贴板历史配置
 */
type HistoryConfig struct {
	/** 是否记录剪贴板历史 */
	Enabled bool `yaml:"enabled"`

	/** 历史条目数上限 */
	MaxEntries int `yaml:"max_entries"`

	/** 条目保留天数（0 表示不按时间清理） */
	RetentionDays int `yaml:"retention_days"`
}

/**
 * HotkeyConfig 快捷键配置
 */
type HotkeyConfig struct {
	/** 是否启用紧急停止快捷键 */
	EmergencyStopEnabled bool `yaml:"emergency_stop_enabled"`

	/** 双击判定窗口（毫秒） */
	DoublePressWindowMs int `yaml:"double_press_window_ms"`
}

/**
 * StorageConfig 存储配置
 */
type StorageConfig struct {
	/** SQLite 配置 */
	SQLite SQLiteConfig `yaml:"sqlite"`
}

/**
 * SQLiteConfig SQLite 配置
 */
type SQLiteConfig struct {
	/** 数据库文件路径 */
	Path string `yaml:"path"`

	/** 最大打开连接数 */
	MaxOpenConns int `yaml:"max_open_conns"`

	/** 最大空闲连接数 */
	MaxIdleConns int `yaml:"max_idle_conns"`

	/** 连接最大生命周期（分钟） */
	ConnMaxLifetimeMin int `yaml:"conn_max_lifetime_min"`
}

/**
 * NotificationsConfig 通知配置
 */
type NotificationsConfig struct {
	/** 是否启用桌面通知 */
	Enabled bool `yaml:"enabled"`
}

/**
 * LoggingConfig 日志配置
 */
type LoggingConfig struct {
	/** 日志级别 */
	Level string `yaml:"level"`

	/** 日志文件路径（空表示输出到标准输出） */
	File string `yaml:"file"`
}

/**
 * Default 返回默认配置
 *
 * Returns: *Config - 所有字段为默认值的配置
 */
func Default() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:     "TypeFlow",
			Version:  "1.0.0",
			LogLevel: "info",
		},
		Typing: TypingConfig{
			Speed:        typing.DefaultSpeed,
			ChunkSize:    200,
			ChunkPauseMs: 100,
			QueueSize:    10,
		},
		Monitor: MonitorConfig{
			Enabled:        true,
			PollIntervalMs: 500,
		},
		History: HistoryConfig{
			Enabled:       true,
			MaxEntries:    100,
			RetentionDays: 30,
		},
		Hotkey: HotkeyConfig{
			EmergencyStopEnabled: true,
			DoublePressWindowMs:  500,
		},
		Storage: StorageConfig{
			SQLite: SQLiteConfig{
				Path:               "", // 空表示 ~/.typeflow/history.db
				MaxOpenConns:       4,
				MaxIdleConns:       2,
				ConnMaxLifetimeMin: 30,
			},
		},
		Notifications: NotificationsConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

/**
 * DefaultPath 返回默认配置文件路径
 *
 * Returns: string - ~/.typeflow/config.yaml, error - 错误信息
 */
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("获取用户主目录失败: %w", err)
	}
	return filepath.Join(homeDir, configDirName, configFileName), nil
}

/**
 * Load 加载配置文件
 *
 * 从默认路径加载配置文件。文件不存在时返回默认配置。
 *
 * Returns:
 *   - *Config: 加载的配置
 *   - error: 错误信息
 */
func Load() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

/**
 * LoadFrom 从指定路径加载配置文件
 *
 * 文件不存在时返回默认配置。文件里缺失的字段用默认值补齐。
 *
 * Parameters:
 *   - path: 配置文件路径
 *
 * Returns:
 *   - *Config: 加载的配置
 *   - error: 错误信息
 */
func LoadFrom(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	config.normalize()
	return config, nil
}

/**
 * Save 保存配置到指定路径
 *
 * 自动创建配置目录。
 *
 * Parameters:
 *   - path: 配置文件路径
 *
 * Returns: error - 错误信息
 */
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

/**
 * normalize 修正非法的配置值
 *
 * 用户手工编辑配置文件可能写入越界的值，
 * 这里回退到默认值而不是报错。
 */
func (c *Config) normalize() {
	defaults := Default()

	if !c.Typing.Speed.Valid() {
		c.Typing.Speed = defaults.Typing.Speed
	}
	if c.Typing.ChunkSize <= 0 {
		c.Typing.ChunkSize = defaults.Typing.ChunkSize
	}
	if c.Typing.ChunkPauseMs < 0 {
		c.Typing.ChunkPauseMs = defaults.Typing.ChunkPauseMs
	}
	if c.Typing.QueueSize <= 0 {
		c.Typing.QueueSize = defaults.Typing.QueueSize
	}
	if c.Monitor.PollIntervalMs <= 0 {
		c.Monitor.PollIntervalMs = defaults.Monitor.PollIntervalMs
	}
	if c.History.MaxEntries <= 0 {
		c.History.MaxEntries = defaults.History.MaxEntries
	}
	if c.History.RetentionDays < 0 {
		c.History.RetentionDays = defaults.History.RetentionDays
	}
	if c.Hotkey.DoublePressWindowMs <= 0 {
		c.Hotkey.DoublePressWindowMs = defaults.Hotkey.DoublePressWindowMs
	}
}
