package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryInjector_RecordsActions 测试内存注入器的动作记录
//
// 测试场景：
// 1. 注入文本和按键
// 2. 验证动作顺序和还原出的文本
func TestMemoryInjector_RecordsActions(t *testing.T) {
	inj := NewMemoryInjector()

	require.NoError(t, inj.InjectText("hello"))
	require.NoError(t, inj.PressKey(KeyEnter))
	require.NoError(t, inj.InjectText("world"))
	require.NoError(t, inj.PressKey(KeyTab))

	actions := inj.Actions()
	require.Len(t, actions, 4)
	assert.Equal(t, "text", actions[0].Kind)
	assert.Equal(t, "key", actions[1].Kind)
	assert.Equal(t, KeyEnter, actions[1].Key)

	assert.Equal(t, "hello\nworld\t", inj.TypedText())
}

// TestMemoryInjector_FailOnText 测试注入失败模拟
//
// 验证被标记的文本注入时返回错误且不被记录。
func TestMemoryInjector_FailOnText(t *testing.T) {
	inj := NewMemoryInjector()
	inj.FailOnText("x")

	err := inj.InjectText("x")
	assert.Error(t, err)

	require.NoError(t, inj.InjectText("y"))
	assert.Equal(t, "y", inj.TypedText())
}

// TestMemoryClipboard 测试内存剪贴板
//
// 测试场景：
// 1. 空剪贴板返回 ok=false
// 2. 写入后读取返回内容
// 3. 失败模式返回错误
func TestMemoryClipboard(t *testing.T) {
	cb := NewMemoryClipboard()

	// 空剪贴板
	content, ok, err := cb.Read()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, content)

	// 写入后读取
	require.NoError(t, cb.Write("copied text"))
	content, ok, err = cb.Read()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "copied text", content)

	// 失败模式
	cb.SetFailing(true)
	_, _, err = cb.Read()
	assert.ErrorIs(t, err, ErrClipboardUnavailable)
	assert.ErrorIs(t, cb.Write("x"), ErrClipboardUnavailable)
}
