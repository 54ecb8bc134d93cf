/**
 * Package events 提供事件系统的核心类型定义
 *
 * 事件系统是 TypeFlow 的核心通信机制，用于：
 * - 剪贴板检测器发布内容变化事件
 * - 打字工作线程发布状态事件
 * - 应用层订阅事件并触发打字/持久化
 */

package events

import (
	"time"

	"github.com/google/uuid"
)

/**
 * EventType 事件类型枚举
 */
type EventType string

/**
 * 所有事件类型常量
 */
const (
	// EventTypeClipboard 剪贴板内容变化事件
	EventTypeClipboard EventType = "clipboard"
	// EventTypeTyping 打字操作状态事件（开始/完成/取消）
	EventTypeTyping EventType = "typing"
	// EventTypeStatus 组件状态变更事件
	EventTypeStatus EventType = "status"
	// EventTypeError 错误事件
	EventTypeError EventType = "error"
)

/**
 * 打字状态常量（EventTypeTyping 事件的 status 字段取值）
 */
const (
	TypingStatusStarted   = "started"
	TypingStatusFinished  = "finished"
	TypingStatusCancelled = "cancelled"
)

/**
 * Event 统一事件结构
 *
 * 所有检测器和系统事件都使用此结构
 */
type Event struct {
	// ID 事件唯一标识符
	ID string `json:"id"`

	// Type 事件类型
	Type EventType `json:"type"`

	// Timestamp 事件发生时间
	Timestamp time.Time `json:"timestamp"`

	// Data 事件数据（类型特定的数据）
	Data map[string]interface{} `json:"data"`

	// Metadata 事件元数据（可选的额外信息）
	Metadata map[string]string `json:"metadata,omitempty"`
}

/**
 * NewEvent 创建新事件
 *
 * Parameters:
 *   - eventType: 事件类型
 *   - data: 事件数据
 *
 * Returns:
 *   - *Event: 新创建的事件
 */
func NewEvent(eventType EventType, data map[string]interface{}) *Event {
	return &Event{
		ID:        generateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Metadata:  make(map[string]string),
	}
}

/**
 * WithMetadata 添加元数据
 *
 * Parameters:
 *   - key: 元数据键
 *   - value: 元数据值
 *
 * Returns:
 *   - *Event: 返回自身，支持链式调用
 */
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

/**
 * generateEventID 生成事件唯一 ID
 *
 * 使用 UUID v4 确保全局唯一性
 *
 * Returns:
 *   - string: UUID 字符串
 */
func generateEventID() string {
	return uuid.New().String()
}

/**
 * ClipboardEventData 剪贴板内容变化事件数据
 */
type ClipboardEventData struct {
	Content     string `json:"content"`      // 剪贴板内容
	ContentType string `json:"content_type"` // 内容类型（text/url/multiline/large_text）
	Hash        uint64 `json:"hash"`         // 内容哈希（FNV-1a 64 位）
	Length      int    `json:"length"`       // 内容字符数
}

/**
 * TypingEventData 打字操作状态事件数据
 */
type TypingEventData struct {
	Status string `json:"status"` // 状态（started/finished/cancelled）
	Length int    `json:"length"` // 文本字符数
	Speed  string `json:"speed"`  // 使用的打字速度
}
