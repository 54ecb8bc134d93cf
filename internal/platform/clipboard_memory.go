package platform

import (
	"errors"
	"sync"
)

// ErrClipboardUnavailable 模拟剪贴板不可用时返回的错误
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// MemoryClipboard 内存剪贴板
//
// Clipboard 接口的内存实现，用于单元测试。
// 支持模拟读取失败场景。
type MemoryClipboard struct {
	// content 当前剪贴板内容
	content string
	// failing 为 true 时 Read 返回错误
	failing bool
	// mu 互斥锁，保护并发访问
	mu sync.Mutex
}

// NewMemoryClipboard 创建内存剪贴板
//
// Returns: *MemoryClipboard - 新创建的剪贴板实例
func NewMemoryClipboard() *MemoryClipboard {
	return &MemoryClipboard{}
}

// Read 读取内存剪贴板内容
//
// Returns:
//   - string: 剪贴板文本内容
//   - bool: 剪贴板是否包含非空文本
//   - error: failing 模式下返回 ErrClipboardUnavailable
func (c *MemoryClipboard) Read() (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failing {
		return "", false, ErrClipboardUnavailable
	}
	if c.content == "" {
		return "", false, nil
	}
	return c.content, true, nil
}

// Write 写入文本到内存剪贴板
//
// Parameters: content - 要写入的文本
// Returns: error - failing 模式下返回 ErrClipboardUnavailable
func (c *MemoryClipboard) Write(content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failing {
		return ErrClipboardUnavailable
	}
	c.content = content
	return nil
}

// Set 直接设置剪贴板内容（测试辅助）
//
// Parameters: content - 新的剪贴板内容
func (c *MemoryClipboard) Set(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.content = content
}

// SetFailing 设置读取失败模式
//
// Parameters: failing - 是否模拟剪贴板不可用
func (c *MemoryClipboard) SetFailing(failing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failing = failing
}
