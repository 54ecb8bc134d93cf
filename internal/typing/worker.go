package typing

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chenyang-zz/typeflow/internal/platform"
	"github.com/chenyang-zz/typeflow/pkg/events"
	"github.com/chenyang-zz/typeflow/pkg/logger"
)

var (
	// ErrWorkerClosed 工作器已关闭
	ErrWorkerClosed = errors.New("typing worker closed")

	// ErrQueueFull 命令队列已满
	ErrQueueFull = errors.New("typing queue full")
)

const (
	// DefaultQueueSize 命令队列的默认容量
	DefaultQueueSize = 10

	// DefaultChunkPause 块与块之间的停顿时间
	DefaultChunkPause = 100 * time.Millisecond

	// cancelCheckStride 块内取消检查的字符间隔
	cancelCheckStride = 10
)

// Command 打字工作器命令
//
// 封闭联合类型，只有本包内的类型可以实现。
type Command interface {
	isCommand()
}

// TypeTextCommand 打字命令
//
// 请求工作器把 Text 逐字符注入到当前焦点应用。
// Token 为 nil 时表示不可取消。
type TypeTextCommand struct {
	Text  string
	Token *Token
}

func (TypeTextCommand) isCommand() {}

// SetSpeedCommand 调整打字速度命令
//
// 命令在队列中按序处理，只影响其后的打字命令。
type SetSpeedCommand struct {
	Speed Speed
}

func (SetSpeedCommand) isCommand() {}

/**
 * Worker 打字工作器
 *
 * 在一个专用 goroutine 上顺序执行打字命令。goroutine 通过
 * runtime.LockOSThread 绑定到固定的 OS 线程，保证所有键盘
 * 注入调用发生在同一个线程上。
 *
 * 命令通过有界通道排队，保持 FIFO 顺序。长文本按固定大小
 * 分块注入，块之间有短暂停顿，块内周期性检查取消令牌。
 */
type Worker struct {
	// injector 键盘注入器
	injector platform.TextInjector

	// eventBus 事件总线（可选，为 nil 时不发布打字状态事件）
	eventBus *events.EventBus

	// commands 命令队列
	commands chan Command

	// done 关闭信号，关闭后拒绝新命令
	done chan struct{}

	// closeOnce 确保只关闭一次
	closeOnce sync.Once

	// wg 等待工作 goroutine 退出
	wg sync.WaitGroup

	// speed 当前打字速度
	speed atomic.Value

	// chunkSize 分块大小（字符数）
	chunkSize int

	// chunkPause 块间停顿
	chunkPause time.Duration
}

// WorkerOption 工作器配置选项
type WorkerOption func(*Worker)

// WithQueueSize 设置命令队列容量
func WithQueueSize(size int) WorkerOption {
	return func(w *Worker) {
		if size > 0 {
			w.commands = make(chan Command, size)
		}
	}
}

// WithChunkSize 设置分块大小
func WithChunkSize(size int) WorkerOption {
	return func(w *Worker) {
		if size > 0 {
			w.chunkSize = size
		}
	}
}

// WithChunkPause 设置块间停顿时间
func WithChunkPause(pause time.Duration) WorkerOption {
	return func(w *Worker) {
		if pause >= 0 {
			w.chunkPause = pause
		}
	}
}

// WithEventBus 设置事件总线，工作器会发布打字状态事件
func WithEventBus(bus *events.EventBus) WorkerOption {
	return func(w *Worker) {
		w.eventBus = bus
	}
}

// WithSpeed 设置初始打字速度
func WithSpeed(speed Speed) WorkerOption {
	return func(w *Worker) {
		if speed.Valid() {
			w.speed.Store(speed)
		}
	}
}

// NewWorker 创建并启动打字工作器
//
// 工作 goroutine 立即启动，开始消费命令队列。
// 使用完毕后必须调用 Close 释放。
//
// Parameters:
//   - injector: 键盘注入器
//   - opts: 配置选项
//
// Returns: *Worker - 已启动的工作器
func NewWorker(injector platform.TextInjector, opts ...WorkerOption) *Worker {
	w := &Worker{
		injector:   injector,
		commands:   make(chan Command, DefaultQueueSize),
		done:       make(chan struct{}),
		chunkSize:  DefaultChunkSize,
		chunkPause: DefaultChunkPause,
	}
	w.speed.Store(DefaultSpeed)

	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.run()

	logger.Info("打字工作器已启动",
		zap.String("component", "typing"),
		zap.Int("queue_size", cap(w.commands)),
		zap.Int("chunk_size", w.chunkSize),
		zap.String("speed", w.Speed().String()),
	)

	return w
}

// EnqueueTypeText 提交打字命令（阻塞）
//
// 队列满时阻塞等待，直到有空位或工作器关闭。
//
// Parameters:
//   - text: 要打字的文本
//   - token: 取消令牌（可为 nil）
//
// Returns: error - 工作器已关闭时返回 ErrWorkerClosed
func (w *Worker) EnqueueTypeText(text string, token *Token) error {
	select {
	case <-w.done:
		return ErrWorkerClosed
	default:
	}

	select {
	case w.commands <- TypeTextCommand{Text: text, Token: token}:
		return nil
	case <-w.done:
		return ErrWorkerClosed
	}
}

// TryEnqueueTypeText 提交打字命令（非阻塞）
//
// 队列满时立即返回 ErrQueueFull 而不是阻塞。
//
// Parameters:
//   - text: 要打字的文本
//   - token: 取消令牌（可为 nil）
//
// Returns: error - 队列满返回 ErrQueueFull，工作器关闭返回 ErrWorkerClosed
func (w *Worker) TryEnqueueTypeText(text string, token *Token) error {
	select {
	case <-w.done:
		return ErrWorkerClosed
	default:
	}

	select {
	case w.commands <- TypeTextCommand{Text: text, Token: token}:
		return nil
	case <-w.done:
		return ErrWorkerClosed
	default:
		return ErrQueueFull
	}
}

// EnqueueSetSpeed 提交速度调整命令
//
// Parameters: speed - 新的打字速度
// Returns: error - 工作器已关闭时返回 ErrWorkerClosed
func (w *Worker) EnqueueSetSpeed(speed Speed) error {
	if !speed.Valid() {
		speed = DefaultSpeed
	}

	select {
	case <-w.done:
		return ErrWorkerClosed
	default:
	}

	select {
	case w.commands <- SetSpeedCommand{Speed: speed}:
		return nil
	case <-w.done:
		return ErrWorkerClosed
	}
}

// Speed 返回当前打字速度
//
// Returns: Speed - 当前速度档位
func (w *Worker) Speed() Speed {
	return w.speed.Load().(Speed)
}

// Close 关闭工作器
//
// 拒绝新命令，排空已入队的命令后等待工作 goroutine 退出。
// 幂等操作，可安全重复调用。
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
	})
	w.wg.Wait()
}

// run 工作 goroutine 主循环
//
// 绑定到固定的 OS 线程后顺序消费命令。收到关闭信号时
// 先排空队列中剩余的命令再退出。
func (w *Worker) run() {
	defer w.wg.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-w.done:
			// 排空剩余命令
			for {
				select {
				case cmd := <-w.commands:
					w.handle(cmd)
				default:
					logger.Info("打字工作器已退出", zap.String("component", "typing"))
					return
				}
			}
		case cmd := <-w.commands:
			w.handle(cmd)
		}
	}
}

// handle 执行单个命令
func (w *Worker) handle(cmd Command) {
	switch c := cmd.(type) {
	case TypeTextCommand:
		w.typeText(c)
	case SetSpeedCommand:
		w.speed.Store(c.Speed)
		logger.Info("打字速度已调整",
			zap.String("component", "typing"),
			zap.String("speed", c.Speed.String()),
		)
	}
}

// typeText 执行打字命令
//
// 把文本切块后逐字符注入。换行和制表符作为特殊按键注入，
// 其余字符作为文本注入。单个字符的注入失败只记录日志，
// 不中断整个任务。
//
// 取消检查发生在三个位置：任务开始前、每块开始前、
// 块内每 cancelCheckStride 个字符。
func (w *Worker) typeText(cmd TypeTextCommand) {
	token := cmd.Token
	if token == nil {
		token = NewToken()
	}

	length := len([]rune(cmd.Text))

	if token.Cancelled() {
		logger.Info("打字任务在开始前被取消",
			zap.String("component", "typing"),
			zap.Int("length", length),
		)
		w.publishStatus(events.TypingStatusCancelled, length)
		return
	}

	logger.Info("开始打字任务",
		zap.String("component", "typing"),
		zap.Int("length", length),
		zap.String("speed", w.Speed().String()),
	)
	w.publishStatus(events.TypingStatusStarted, length)

	chunks := SplitChunks(cmd.Text, w.chunkSize)

	cancelled := false
loop:
	for chunkIdx, chunk := range chunks {
		if token.Cancelled() {
			cancelled = true
			break
		}

		// 块间停顿，给目标应用留出处理时间
		if chunkIdx > 0 {
			time.Sleep(w.chunkPause)
		}

		for i, r := range chunk {
			if i%cancelCheckStride == 0 && token.Cancelled() {
				cancelled = true
				break loop
			}

			w.typeRune(r)
			time.Sleep(w.Speed().Delay())
		}
	}

	if cancelled {
		logger.Info("打字任务已取消",
			zap.String("component", "typing"),
			zap.Int("length", length),
		)
		w.publishStatus(events.TypingStatusCancelled, length)
		return
	}

	logger.Info("打字任务完成",
		zap.String("component", "typing"),
		zap.Int("length", length),
	)
	w.publishStatus(events.TypingStatusFinished, length)
}

// typeRune 注入单个字符
//
// 注入失败不向上传播，记录日志后继续。
func (w *Worker) typeRune(r rune) {
	var err error
	switch r {
	case '\n':
		err = w.injector.PressKey(platform.KeyEnter)
	case '\t':
		err = w.injector.PressKey(platform.KeyTab)
	default:
		err = w.injector.InjectText(string(r))
	}

	if err != nil {
		logger.Warn("字符注入失败",
			zap.String("component", "typing"),
			zap.Error(err),
		)
	}
}

// publishStatus 发布打字状态事件
func (w *Worker) publishStatus(status string, length int) {
	if w.eventBus == nil {
		return
	}

	event := events.NewEvent(events.EventTypeTyping, map[string]interface{}{
		"status": status,
		"length": length,
		"speed":  w.Speed().String(),
	})

	if err := w.eventBus.Publish(string(events.EventTypeTyping), *event); err != nil {
		logger.Error("发布打字状态事件失败",
			zap.String("component", "typing"),
			zap.Error(err),
		)
	}
}
