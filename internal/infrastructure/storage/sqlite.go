/**
 * Package storage 提供数据持久化功能
 *
 * 负责将剪贴板历史持久化到 SQLite 数据库
 */

package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite 驱动
	"go.uber.org/zap"

	"github.com/chenyang-zz/typeflow/pkg/logger"
)

// 连接池默认值，配置缺省时使用
const (
	defaultMaxOpenConns    = 4
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 30 * time.Minute
)

/**
 * SQLiteConfig SQLite 配置
 */
type SQLiteConfig struct {
	// Path 数据库文件路径
	Path string

	// MaxOpenConns 最大打开连接数
	MaxOpenConns int

	// MaxIdleConns 最大空闲连接数
	MaxIdleConns int

	// ConnMaxLifetime 连接最大生命周期
	ConnMaxLifetime time.Duration
}

/**
 * NewSQLiteDB 创建 SQLite 数据库连接
 *
 * 历史库的写入来自批量写入器，读取来自托盘的历史查询，
 * 两者可能并发。启用 WAL 允许读写并行，busy_timeout
 * 让偶发的锁冲突等待而不是直接报错。
 *
 * Parameters:
 *   - config: SQLite 配置
 *
 * Returns: *sql.DB - 数据库连接实例, error - 错误信息
 */
func NewSQLiteDB(config SQLiteConfig) (*sql.DB, error) {
	logger.Info("打开剪贴板历史数据库",
		zap.String("path", config.Path),
	)

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	db.SetMaxOpenConns(poolValue(config.MaxOpenConns, defaultMaxOpenConns))
	db.SetMaxIdleConns(poolValue(config.MaxIdleConns, defaultMaxIdleConns))
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(defaultConnMaxLifetime)
	}

	// WAL 让批量写入不阻塞历史查询；NORMAL 同步在掉电时最多
	// 丢最后一批剪贴板记录，对这类数据可以接受
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=3000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("执行 %s 失败: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接验证失败: %w", err)
	}

	logger.Info("剪贴板历史数据库就绪")
	return db, nil
}

// poolValue 返回配置值，非正时使用默认值
func poolValue(configured, fallback int) int {
	if configured > 0 {
		return configured
	}
	return fallback
}
