package typing

import "sync/atomic"

// Token 可取消令牌
//
// 在请求方和打字工作器之间共享的取消标志。
// 请求方调用 Cancel，工作器在打字循环中周期性检查 Cancelled。
// 所有方法并发安全。
type Token struct {
	cancelled atomic.Bool
}

// NewToken 创建新的取消令牌
//
// Returns: *Token - 未取消状态的令牌
func NewToken() *Token {
	return &Token{}
}

// Cancel 请求取消
//
// 幂等操作，重复调用无副作用。
func (t *Token) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled 检查是否已请求取消
//
// Returns: bool - 是否已取消
func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}

// Reset 重置为未取消状态
//
// 在令牌被复用于新的打字请求前调用。
func (t *Token) Reset() {
	t.cancelled.Store(false)
}
