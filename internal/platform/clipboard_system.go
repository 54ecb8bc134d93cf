package platform

import (
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// SystemClipboard 系统剪贴板
//
// Clipboard 接口的系统实现，基于 atotto/clipboard 跨平台访问
// 系统剪贴板。剪贴板会被轮询协程和手动粘贴同时访问，
// 内部用互斥锁串行化所有读写。
type SystemClipboard struct {
	// mu 互斥锁，串行化剪贴板访问
	mu sync.Mutex
}

// NewSystemClipboard 创建系统剪贴板
//
// Returns: *SystemClipboard - 新创建的剪贴板实例
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{}
}

// Read 读取系统剪贴板文本内容
//
// 空剪贴板不是错误，通过 ok 返回 false 表示。
//
// Returns:
//   - string: 剪贴板文本内容
//   - bool: 剪贴板是否包含非空文本
//   - error: 读取失败时返回错误
func (c *SystemClipboard) Read() (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	content, err := clipboard.ReadAll()
	if err != nil {
		return "", false, fmt.Errorf("read clipboard: %w", err)
	}
	if content == "" {
		return "", false, nil
	}
	return content, true, nil
}

// Write 写入文本到系统剪贴板
//
// Parameters: content - 要写入的文本
// Returns: error - 写入失败时返回错误
func (c *SystemClipboard) Write(content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := clipboard.WriteAll(content); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}
