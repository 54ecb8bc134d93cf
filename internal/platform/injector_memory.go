package platform

import (
	"fmt"
	"sync"
)

// InjectedAction 一次注入动作的记录
//
// Kind 为 "text" 时 Text 字段有效，为 "key" 时 Key 字段有效。
type InjectedAction struct {
	Kind string
	Text string
	Key  Key
}

// MemoryInjector 内存文本注入器
//
// TextInjector 接口的内存实现，记录所有注入动作而不触碰真实键盘。
// 用于单元测试和无图形环境下的验证。
type MemoryInjector struct {
	// actions 按顺序记录的注入动作
	actions []InjectedAction
	// failTexts 注入这些文本时返回错误（模拟注入失败）
	failTexts map[string]bool
	// mu 互斥锁，保护并发访问
	mu sync.Mutex
}

// NewMemoryInjector 创建内存文本注入器
//
// Returns: *MemoryInjector - 新创建的注入器实例
func NewMemoryInjector() *MemoryInjector {
	return &MemoryInjector{
		failTexts: make(map[string]bool),
	}
}

// InjectText 记录一次文本注入
//
// 如果文本被 FailOnText 标记过，返回模拟错误且不记录。
//
// Parameters: text - 要注入的文本
// Returns: error - 模拟的注入错误
func (m *MemoryInjector) InjectText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failTexts[text] {
		return fmt.Errorf("simulated inject failure: %q", text)
	}

	m.actions = append(m.actions, InjectedAction{Kind: "text", Text: text})
	return nil
}

// PressKey 记录一次按键注入
//
// Parameters: key - 按键标识
// Returns: error - 始终为 nil
func (m *MemoryInjector) PressKey(key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actions = append(m.actions, InjectedAction{Kind: "key", Key: key})
	return nil
}

// FailOnText 标记一个文本，后续注入该文本时返回错误
//
// Parameters: text - 要标记的文本
func (m *MemoryInjector) FailOnText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failTexts[text] = true
}

// Actions 返回按顺序记录的所有注入动作
//
// Returns: []InjectedAction - 动作记录的副本
func (m *MemoryInjector) Actions() []InjectedAction {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]InjectedAction, len(m.actions))
	copy(out, m.actions)
	return out
}

// TypedText 返回所有注入动作还原出的完整文本
//
// 文本动作原样拼接，回车还原为 \n，制表符还原为 \t。
//
// Returns: string - 还原出的文本
func (m *MemoryInjector) TypedText() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []byte
	for _, a := range m.actions {
		switch a.Kind {
		case "text":
			out = append(out, a.Text...)
		case "key":
			switch a.Key {
			case KeyEnter:
				out = append(out, '\n')
			case KeyTab:
				out = append(out, '\t')
			}
		}
	}
	return string(out)
}

// Reset 清空所有记录
func (m *MemoryInjector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actions = nil
	m.failTexts = make(map[string]bool)
}
