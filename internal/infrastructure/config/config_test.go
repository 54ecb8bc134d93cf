package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenyang-zz/typeflow/internal/typing"
)

// TestDefault 测试默认配置
func TestDefault(t *testing.T) {
	config := Default()

	assert.Equal(t, "TypeFlow", config.Application.Name)
	assert.Equal(t, typing.SpeedNormal, config.Typing.Speed)
	assert.Equal(t, 200, config.Typing.ChunkSize)
	assert.Equal(t, 100, config.Typing.ChunkPauseMs)
	assert.Equal(t, 10, config.Typing.QueueSize)
	assert.True(t, config.Monitor.Enabled)
	assert.Equal(t, 500, config.Monitor.PollIntervalMs)
	assert.True(t, config.History.Enabled)
	assert.Equal(t, 100, config.History.MaxEntries)
	assert.Equal(t, 30, config.History.RetentionDays)
	assert.True(t, config.Hotkey.EmergencyStopEnabled)
	assert.Equal(t, 500, config.Hotkey.DoublePressWindowMs)
	assert.True(t, config.Notifications.Enabled)
}

// TestLoadFrom 测试从文件加载配置
func TestLoadFrom(t *testing.T) {
	// 测试场景1: 文件不存在时返回默认配置
	config, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, typing.SpeedNormal, config.Typing.Speed)

	// 测试场景2: 文件里的字段覆盖默认值，缺失字段保留默认值
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `typing:
  speed: fast
monitor:
  enabled: false
  poll_interval_ms: 250
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err = LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, typing.SpeedFast, config.Typing.Speed)
	assert.False(t, config.Monitor.Enabled)
	assert.Equal(t, 250, config.Monitor.PollIntervalMs)
	assert.Equal(t, 200, config.Typing.ChunkSize)
	assert.Equal(t, 100, config.History.MaxEntries)

	// 测试场景3: 非法 YAML 返回错误
	badPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("typing: [unclosed"), 0o644))
	_, err = LoadFrom(badPath)
	assert.Error(t, err)
}

// TestLoadFromNormalizesInvalidValues 测试非法配置值回退到默认值
func TestLoadFromNormalizesInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `typing:
  speed: turbo
  chunk_size: -5
  queue_size: 0
monitor:
  poll_interval_ms: 0
hotkey:
  double_press_window_ms: -1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, typing.SpeedNormal, config.Typing.Speed)
	assert.Equal(t, 200, config.Typing.ChunkSize)
	assert.Equal(t, 10, config.Typing.QueueSize)
	assert.Equal(t, 500, config.Monitor.PollIntervalMs)
	assert.Equal(t, 500, config.Hotkey.DoublePressWindowMs)
}

// TestSaveAndReload 测试配置保存后可以重新加载
func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := Default()
	config.Typing.Speed = typing.SpeedSlow
	config.Monitor.Enabled = false
	require.NoError(t, config.Save(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, typing.SpeedSlow, loaded.Typing.Speed)
	assert.False(t, loaded.Monitor.Enabled)
}

// TestManagerPersistsChanges 测试管理器的运行时修改写回配置文件
func TestManagerPersistsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	manager, err := NewManagerWithPath(path)
	require.NoError(t, err)

	// 测试场景1: 修改打字速度
	require.NoError(t, manager.SetTypingSpeed(typing.SpeedFast))
	assert.Equal(t, typing.SpeedFast, manager.Get().Typing.Speed)

	// 测试场景2: 修改监控开关
	require.NoError(t, manager.SetMonitorEnabled(false))
	assert.False(t, manager.Get().Monitor.Enabled)

	// 测试场景3: 重新加载后修改仍然生效
	reloaded, err := NewManagerWithPath(path)
	require.NoError(t, err)
	assert.Equal(t, typing.SpeedFast, reloaded.Get().Typing.Speed)
	assert.False(t, reloaded.Get().Monitor.Enabled)

	// 测试场景4: 非法速度回退到默认值
	require.NoError(t, manager.SetTypingSpeed(typing.Speed("turbo")))
	assert.Equal(t, typing.SpeedNormal, manager.Get().Typing.Speed)
}
