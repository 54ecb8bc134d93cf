package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenyang-zz/typeflow/internal/platform"
	"github.com/chenyang-zz/typeflow/pkg/events"
)

// collector 收集剪贴板事件的测试辅助
type collector struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *collector) handler(event events.Event) error {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
	return nil
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) last() (events.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		return events.Event{}, false
	}
	return c.events[len(c.events)-1], true
}

// newTestMonitor 创建用于测试的快速轮询监控器
func newTestMonitor(t *testing.T) (*ClipboardMonitor, *platform.MemoryClipboard, *collector) {
	t.Helper()

	bus := events.NewEventBus()
	t.Cleanup(func() { bus.Stop(5 * time.Second) })

	c := &collector{}
	bus.Subscribe(string(events.EventTypeClipboard), c.handler)

	cb := platform.NewMemoryClipboard()
	m := NewClipboardMonitor(cb, bus, WithPollInterval(10*time.Millisecond))
	t.Cleanup(func() { _ = m.Stop() })

	return m, cb, c
}

// waitPolls 等待若干个轮询周期加事件总线的异步投递
func waitPolls() {
	time.Sleep(100 * time.Millisecond)
}

// TestClipboardMonitor_DetectsChange 测试剪贴板变化检测
//
// 测试场景：
// 1. 启动后复制新内容
// 2. 发布一个携带内容、类型、哈希和长度的事件
// 3. 内容不变时后续轮询不再发布
func TestClipboardMonitor_DetectsChange(t *testing.T) {
	m, cb, c := newTestMonitor(t)
	require.NoError(t, m.Start())

	cb.Set("https://example.com")
	waitPolls()

	assert.Equal(t, 1, c.count(), "同一内容只应发布一次事件")

	event, ok := c.last()
	require.True(t, ok)
	assert.Equal(t, events.EventTypeClipboard, event.Type)
	assert.Equal(t, "https://example.com", event.Data["content"])
	assert.Equal(t, ContentTypeURL, event.Data["content_type"])
	assert.Equal(t, hashContent("https://example.com"), event.Data["hash"])
	assert.Equal(t, len("https://example.com"), event.Data["length"])
}

// TestClipboardMonitor_StartupContentNotEmitted 测试启动时已有内容的处理
//
// 验证启动前剪贴板里的内容不会被当作新变化。
func TestClipboardMonitor_StartupContentNotEmitted(t *testing.T) {
	m, cb, c := newTestMonitor(t)

	cb.Set("pre-existing content")
	require.NoError(t, m.Start())
	waitPolls()

	assert.Equal(t, 0, c.count(), "启动时已有的内容不应触发事件")

	// 新内容正常触发
	cb.Set("new content")
	waitPolls()
	assert.Equal(t, 1, c.count())
}

// TestClipboardMonitor_EmptyClipboardNeverEmits 测试空剪贴板
//
// 验证空剪贴板的轮询不产生事件，包括内容被清空的场景。
func TestClipboardMonitor_EmptyClipboardNeverEmits(t *testing.T) {
	m, cb, c := newTestMonitor(t)
	require.NoError(t, m.Start())

	waitPolls()
	assert.Equal(t, 0, c.count())

	cb.Set("something")
	waitPolls()
	assert.Equal(t, 1, c.count())

	// 清空剪贴板不产生事件
	cb.Set("")
	waitPolls()
	assert.Equal(t, 1, c.count(), "清空剪贴板不应触发事件")
}

// TestClipboardMonitor_ReadFailureSkipsTick 测试读取失败的容错
//
// 测试场景：
// 1. 剪贴板读取失败时跳过本次轮询
// 2. 恢复后正常检测变化
func TestClipboardMonitor_ReadFailureSkipsTick(t *testing.T) {
	m, cb, c := newTestMonitor(t)
	require.NoError(t, m.Start())

	cb.SetFailing(true)
	cb.Set("hidden during failure")
	waitPolls()
	assert.Equal(t, 0, c.count(), "读取失败不应产生事件")

	cb.SetFailing(false)
	waitPolls()
	assert.Equal(t, 1, c.count(), "恢复后应检测到内容变化")
}

// TestClipboardMonitor_DisableEnableResync 测试禁用与重新启用
//
// 测试场景：
// 1. 禁用期间复制的内容不触发事件
// 2. 重新启用时同步哈希，禁用期间的内容被忽略
// 3. 启用后的新内容正常触发
func TestClipboardMonitor_DisableEnableResync(t *testing.T) {
	m, cb, c := newTestMonitor(t)
	require.NoError(t, m.Start())
	assert.True(t, m.IsEnabled())

	m.SetEnabled(false)
	assert.False(t, m.IsEnabled())

	cb.Set("copied while disabled")
	waitPolls()
	assert.Equal(t, 0, c.count(), "禁用期间不应产生事件")

	m.SetEnabled(true)
	waitPolls()
	assert.Equal(t, 0, c.count(), "重新启用时禁用期间的内容不应触发事件")

	cb.Set("copied after re-enable")
	waitPolls()
	assert.Equal(t, 1, c.count())
}

// TestClipboardMonitor_EnableWithFailingReadSuppressesStaleContent 测试重新启用时读取失败的处理
//
// 测试场景：
// 1. 禁用期间内容发生变化
// 2. 重新启用时剪贴板读取失败，同步推迟
// 3. 读取恢复后第一次轮询只记录基准，禁用期间的内容不触发事件
// 4. 之后的新内容正常触发
func TestClipboardMonitor_EnableWithFailingReadSuppressesStaleContent(t *testing.T) {
	m, cb, c := newTestMonitor(t)

	cb.Set("before disable")
	require.NoError(t, m.Start())
	waitPolls()

	m.SetEnabled(false)
	cb.Set("changed while disabled")

	cb.SetFailing(true)
	m.SetEnabled(true)
	cb.SetFailing(false)
	waitPolls()

	assert.Equal(t, 0, c.count(), "禁用期间变化的内容不应在恢复后触发事件")

	cb.Set("fresh content")
	waitPolls()
	assert.Equal(t, 1, c.count())

	event, ok := c.last()
	require.True(t, ok)
	assert.Equal(t, "fresh content", event.Data["content"])
}

// TestClipboardMonitor_ReadFailureKeepsHash 测试读取失败不清除哈希
//
// 验证轮询中途的读取失败恢复后，未变化的内容不会被重复发布。
func TestClipboardMonitor_ReadFailureKeepsHash(t *testing.T) {
	m, cb, c := newTestMonitor(t)
	require.NoError(t, m.Start())

	cb.Set("stable content")
	waitPolls()
	assert.Equal(t, 1, c.count())

	cb.SetFailing(true)
	waitPolls()
	cb.SetFailing(false)
	waitPolls()

	assert.Equal(t, 1, c.count(), "读取失败恢复后相同内容不应重复触发事件")
}

// TestClipboardMonitor_DuplicateContentDeduped 测试内容去重
//
// 验证相同内容重复出现不触发事件，内容变化后再变回也会触发。
func TestClipboardMonitor_DuplicateContentDeduped(t *testing.T) {
	m, cb, c := newTestMonitor(t)
	require.NoError(t, m.Start())

	cb.Set("alpha")
	waitPolls()
	cb.Set("beta")
	waitPolls()
	// 变回之前的内容也是一次变化
	cb.Set("alpha")
	waitPolls()

	assert.Equal(t, 3, c.count())
}

// TestClipboardMonitor_StartStopIdempotent 测试启动停止的幂等性
func TestClipboardMonitor_StartStopIdempotent(t *testing.T) {
	m, _, _ := newTestMonitor(t)

	assert.False(t, m.IsRunning())

	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning())

	// 重复启动
	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning())

	require.NoError(t, m.Stop())
	assert.False(t, m.IsRunning())

	// 重复停止
	require.NoError(t, m.Stop())
	assert.False(t, m.IsRunning())

	// 停止后可以重新启动
	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning())
}
