package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewSQLiteDB 测试数据库连接的创建
//
// 测试场景：
// 1. 连接池参数缺省时使用默认值，连接可用
// 2. WAL 模式生效
func TestNewSQLiteDB(t *testing.T) {
	db, err := NewSQLiteDB(SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "history.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Ping())

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)
}

// TestNewSQLiteDB_InvalidPath 测试无法创建数据库文件时返回错误
func TestNewSQLiteDB_InvalidPath(t *testing.T) {
	_, err := NewSQLiteDB(SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "missing-dir", "history.db"),
	})
	assert.Error(t, err)
}
