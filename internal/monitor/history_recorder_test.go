package monitor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenyang-zz/typeflow/internal/infrastructure/storage"
	"github.com/chenyang-zz/typeflow/pkg/events"
)

// newTestHistoryRepo 创建基于临时文件数据库的历史仓储
func newTestHistoryRepo(t *testing.T) storage.HistoryRepository {
	t.Helper()

	db, err := storage.NewSQLiteDB(storage.SQLiteConfig{
		Path:            filepath.Join(t.TempDir(), "history_test.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	require.NoError(t, err, "创建数据库不应失败")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.RunMigrations(db), "执行迁移不应失败")

	return storage.NewSQLiteHistoryRepository(db)
}

// publishClipboard 构造并发布一个剪贴板事件
func publishClipboard(t *testing.T, bus *events.EventBus, content string) {
	t.Helper()

	event := events.NewEvent(events.EventTypeClipboard, map[string]interface{}{
		"content":      content,
		"content_type": DetectContentType(content),
		"hash":         hashContent(content),
		"length":       len([]rune(content)),
	})
	require.NoError(t, bus.Publish(string(events.EventTypeClipboard), *event))
}

// TestHistoryRecorder_PersistsClipboardEvents 测试剪贴板事件持久化
//
// 测试场景：
// 1. 发布剪贴板事件
// 2. Recent 查询返回持久化的条目
func TestHistoryRecorder_PersistsClipboardEvents(t *testing.T) {
	repo := newTestHistoryRepo(t)

	bus := events.NewEventBus()
	defer bus.Stop(5 * time.Second)

	recorder := NewHistoryRecorder(repo, bus, DefaultHistoryRecorderConfig())
	require.NoError(t, recorder.Start())
	defer recorder.Stop()

	publishClipboard(t, bus, "https://example.com")
	publishClipboard(t, bus, "plain text")

	// 等待异步投递和批量写入
	require.Eventually(t, func() bool {
		entries, err := recorder.Recent(10)
		return err == nil && len(entries) == 2
	}, 3*time.Second, 50*time.Millisecond, "事件应被持久化为历史条目")

	entries, err := recorder.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// 最新的在最前
	assert.Equal(t, "plain text", entries[0].Content)
	assert.Equal(t, ContentTypeText, entries[0].ContentType)
	assert.Equal(t, "https://example.com", entries[1].Content)
	assert.Equal(t, ContentTypeURL, entries[1].ContentType)
	assert.Equal(t, hashContent("https://example.com"), entries[1].Hash)
}

// TestHistoryRecorder_DedupAcrossEvents 测试跨事件去重
//
// 验证相同内容的事件不产生重复历史条目。
func TestHistoryRecorder_DedupAcrossEvents(t *testing.T) {
	repo := newTestHistoryRepo(t)

	bus := events.NewEventBus()
	defer bus.Stop(5 * time.Second)

	recorder := NewHistoryRecorder(repo, bus, DefaultHistoryRecorderConfig())
	require.NoError(t, recorder.Start())
	defer recorder.Stop()

	publishClipboard(t, bus, "repeated")
	publishClipboard(t, bus, "other")
	publishClipboard(t, bus, "repeated")

	require.Eventually(t, func() bool {
		count, err := repo.CountAll()
		return err == nil && count > 0
	}, 3*time.Second, 50*time.Millisecond)

	// 强制刷新后检查
	entries, err := recorder.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "相同内容不应产生重复条目")
}

// TestHistoryRecorder_IgnoresMalformedEvents 测试数据不完整的事件
//
// 验证缺少内容字段的事件被忽略且不报错。
func TestHistoryRecorder_IgnoresMalformedEvents(t *testing.T) {
	repo := newTestHistoryRepo(t)

	bus := events.NewEventBus()
	defer bus.Stop(5 * time.Second)

	recorder := NewHistoryRecorder(repo, bus, DefaultHistoryRecorderConfig())
	require.NoError(t, recorder.Start())
	defer recorder.Stop()

	// 缺少 content 字段
	event := events.NewEvent(events.EventTypeClipboard, map[string]interface{}{
		"length": 5,
	})
	require.NoError(t, bus.Publish(string(events.EventTypeClipboard), *event))

	time.Sleep(200 * time.Millisecond)

	entries, err := recorder.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries, "数据不完整的事件不应被持久化")
}

// TestHistoryRecorder_StopTrimsHistory 测试停止时的历史清理
//
// 验证 Stop 执行最后一次清理，落盘数据不超过条目上限。
func TestHistoryRecorder_StopTrimsHistory(t *testing.T) {
	repo := newTestHistoryRepo(t)

	bus := events.NewEventBus()
	defer bus.Stop(5 * time.Second)

	config := DefaultHistoryRecorderConfig()
	config.MaxEntries = 2
	config.MaintenanceInterval = time.Hour // 只依赖 Stop 时的清理

	recorder := NewHistoryRecorder(repo, bus, config)
	require.NoError(t, recorder.Start())

	for _, content := range []string{"one", "two", "three", "four"} {
		publishClipboard(t, bus, content)
	}

	require.Eventually(t, func() bool {
		entries, err := recorder.Recent(10)
		return err == nil && len(entries) == 4
	}, 3*time.Second, 50*time.Millisecond)

	require.NoError(t, recorder.Stop())

	count, err := repo.CountAll()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "Stop 后历史应被裁剪到上限")
}

// TestHistoryRecorder_Clear 测试清空历史
func TestHistoryRecorder_Clear(t *testing.T) {
	repo := newTestHistoryRepo(t)

	bus := events.NewEventBus()
	defer bus.Stop(5 * time.Second)

	recorder := NewHistoryRecorder(repo, bus, DefaultHistoryRecorderConfig())
	require.NoError(t, recorder.Start())
	defer recorder.Stop()

	publishClipboard(t, bus, "to be cleared")

	require.Eventually(t, func() bool {
		entries, err := recorder.Recent(10)
		return err == nil && len(entries) == 1
	}, 3*time.Second, 50*time.Millisecond)

	require.NoError(t, recorder.Clear())

	entries, err := recorder.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
