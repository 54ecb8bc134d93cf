package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chenyang-zz/typeflow/pkg/logger"
)

/**
 * HistoryEntry 剪贴板历史条目
 */
type HistoryEntry struct {
	// ID 条目唯一标识（UUID）
	ID string

	// Hash 内容的 FNV-1a 64 位哈希，用于去重
	Hash uint64

	// Content 剪贴板内容
	Content string

	// ContentType 内容类型（url/multiline/large_text/text）
	ContentType string

	// Length 内容字符数
	Length int

	// CapturedAt 捕获时间
	CapturedAt time.Time
}

/**
 * NewHistoryEntry 创建剪贴板历史条目
 *
 * Parameters:
 *   - content: 剪贴板内容
 *   - contentType: 内容类型
 *   - hash: 内容哈希
 *
 * Returns: HistoryEntry - 新条目，捕获时间为当前时间
 */
func NewHistoryEntry(content, contentType string, hash uint64) HistoryEntry {
	return HistoryEntry{
		ID:          uuid.New().String(),
		Hash:        hash,
		Content:     content,
		ContentType: contentType,
		Length:      len([]rune(content)),
		CapturedAt:  time.Now(),
	}
}

/**
 * HistoryRepository 剪贴板历史存储接口
 *
 * 定义历史条目持久化的所有操作。按哈希去重：保存已存在
 * 哈希的条目时只刷新其捕获时间，不产生重复记录。
 */
type HistoryRepository interface {
	// Save 保存单个条目（按哈希去重）
	Save(entry HistoryEntry) error

	// SaveBatch 批量保存条目（性能优化）
	SaveBatch(entries []HistoryEntry) error

	// FindRecent 查询最近的条目（从新到旧）
	FindRecent(limit int) ([]HistoryEntry, error)

	// FindByType 按内容类型查询
	FindByType(contentType string, limit int) ([]HistoryEntry, error)

	// CountAll 统计条目总数
	CountAll() (int64, error)

	// DeleteOlderThan 删除旧数据
	DeleteOlderThan(cutoff time.Time) (int64, error)

	// TrimToLimit 裁剪到条目数上限（保留最新的）
	TrimToLimit(limit int) (int64, error)

	// Clear 清空全部历史
	Clear() error
}

/**
 * SQLiteHistoryRepository SQLite 历史仓储实现
 */
type SQLiteHistoryRepository struct {
	db *sql.DB
}

/**
 * NewSQLiteHistoryRepository 创建 SQLite 历史仓储
 *
 * Parameters:
 *   - db: 数据库连接
 *
 * Returns: *SQLiteHistoryRepository - 历史仓储实例
 */
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

// upsertSQL 按哈希去重的插入语句
//
// 哈希冲突时刷新捕获时间，让老内容重新排到最前面。
// 哈希以 int64 存储（SQLite INTEGER 为有符号 64 位）。
const upsertSQL = `
	INSERT INTO history (uuid, hash, content, content_type, length, captured_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(hash) DO UPDATE SET captured_at = excluded.captured_at
`

/**
 * Save 保存单个条目
 *
 * Parameters:
 *   - entry: 历史条目
 *
 * Returns: error - 错误信息
 */
func (r *SQLiteHistoryRepository) Save(entry HistoryEntry) error {
	_, err := r.db.Exec(
		upsertSQL,
		entry.ID,
		int64(entry.Hash),
		entry.Content,
		entry.ContentType,
		entry.Length,
		entry.CapturedAt,
	)

	if err != nil {
		logger.Error("保存历史条目失败",
			zap.String("entry_id", entry.ID),
			zap.Error(err),
		)
		return fmt.Errorf("保存历史条目失败: %w", err)
	}

	return nil
}

/**
 * SaveBatch 批量保存条目
 *
 * 使用事务和预处理语句优化批量写入性能
 *
 * Parameters:
 *   - entries: 条目数组
 *
 * Returns: error - 错误信息
 */
func (r *SQLiteHistoryRepository) SaveBatch(entries []HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	// 开启事务
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	// 准备语句
	stmt, err := tx.Prepare(upsertSQL)
	if err != nil {
		return fmt.Errorf("准备语句失败: %w", err)
	}
	defer stmt.Close()

	// 批量插入
	for _, entry := range entries {
		_, err = stmt.Exec(
			entry.ID,
			int64(entry.Hash),
			entry.Content,
			entry.ContentType,
			entry.Length,
			entry.CapturedAt,
		)

		if err != nil {
			logger.Error("插入历史条目失败",
				zap.String("entry_id", entry.ID),
				zap.Error(err),
			)
			return fmt.Errorf("插入历史条目失败: %w", err)
		}
	}

	// 提交事务
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}

	logger.Debug("批量保存历史条目成功",
		zap.Int("count", len(entries)),
	)

	return nil
}

/**
 * FindRecent 查询最近的条目
 *
 * Parameters:
 *   - limit: 返回数量限制
 *
 * Returns: []HistoryEntry - 条目列表（从新到旧）, error - 错误信息
 */
func (r *SQLiteHistoryRepository) FindRecent(limit int) ([]HistoryEntry, error) {
	query := `
		SELECT uuid, hash, content, content_type, length, captured_at
		FROM history
		ORDER BY captured_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("查询最近历史失败: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

/**
 * FindByType 按内容类型查询条目
 *
 * Parameters:
 *   - contentType: 内容类型
 *   - limit: 返回数量限制
 *
 * Returns: []HistoryEntry - 条目列表, error - 错误信息
 */
func (r *SQLiteHistoryRepository) FindByType(contentType string, limit int) ([]HistoryEntry, error) {
	query := `
		SELECT uuid, hash, content, content_type, length, captured_at
		FROM history
		WHERE content_type = ?
		ORDER BY captured_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, contentType, limit)
	if err != nil {
		return nil, fmt.Errorf("按类型查询历史失败: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

/**
 * CountAll 统计条目总数
 *
 * Returns: int64 - 条目总数, error - 错误信息
 */
func (r *SQLiteHistoryRepository) CountAll() (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&count); err != nil {
		return 0, fmt.Errorf("统计历史条目失败: %w", err)
	}
	return count, nil
}

/**
 * DeleteOlderThan 删除旧于指定时间的条目
 *
 * Parameters:
 *   - cutoff: 截止时间
 *
 * Returns: int64 - 删除的记录数, error - 错误信息
 */
func (r *SQLiteHistoryRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM history WHERE captured_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("删除旧历史失败: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("获取删除行数失败: %w", err)
	}

	if count > 0 {
		logger.Info("删除旧历史条目",
			zap.Int64("count", count),
			zap.Time("cutoff", cutoff),
		)
	}

	return count, nil
}

/**
 * TrimToLimit 裁剪到条目数上限
 *
 * 保留捕获时间最新的 limit 条，删除其余条目。
 *
 * Parameters:
 *   - limit: 保留的条目数
 *
 * Returns: int64 - 删除的记录数, error - 错误信息
 */
func (r *SQLiteHistoryRepository) TrimToLimit(limit int) (int64, error) {
	if limit <= 0 {
		return 0, fmt.Errorf("无效的历史上限: %d", limit)
	}

	result, err := r.db.Exec(`
		DELETE FROM history
		WHERE id NOT IN (
			SELECT id FROM history
			ORDER BY captured_at DESC, id DESC
			LIMIT ?
		)
	`, limit)
	if err != nil {
		return 0, fmt.Errorf("裁剪历史失败: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("获取删除行数失败: %w", err)
	}

	if count > 0 {
		logger.Debug("历史条目已裁剪",
			zap.Int64("removed", count),
			zap.Int("limit", limit),
		)
	}

	return count, nil
}

/**
 * Clear 清空全部历史
 *
 * Returns: error - 错误信息
 */
func (r *SQLiteHistoryRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM history"); err != nil {
		return fmt.Errorf("清空历史失败: %w", err)
	}

	logger.Info("剪贴板历史已清空")
	return nil
}

/**
 * scanEntries 扫描历史行并转换为条目对象
 *
 * Parameters:
 *   - rows: 查询结果集
 *
 * Returns: []HistoryEntry - 条目列表, error - 错误信息
 */
func (r *SQLiteHistoryRepository) scanEntries(rows *sql.Rows) ([]HistoryEntry, error) {
	var entries []HistoryEntry

	for rows.Next() {
		var entry HistoryEntry
		var hash int64

		err := rows.Scan(
			&entry.ID,
			&hash,
			&entry.Content,
			&entry.ContentType,
			&entry.Length,
			&entry.CapturedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("扫描历史行失败: %w", err)
		}

		entry.Hash = uint64(hash)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历历史行失败: %w", err)
	}

	return entries, nil
}
