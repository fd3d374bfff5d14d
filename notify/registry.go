// Package notify 提供 reopenx 使用的通知子系统。
//
// 一个通知源只负责一件事：在事件发生时把已登记的共享标志置为 true。
// 真正的文件操作永远不会在通知上下文中执行，而是推迟到调用方下一次写入时。
//
// 包内提供两种通知源：
//   - Registry: 基于进程信号（默认 SIGHUP），每个信号在进程内只有一个实例
//   - Watcher: 基于 fsnotify 的文件事件，日志文件被重命名或删除时触发
package notify

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
)

// Token 是登记时返回的不透明句柄，注销时原样交回。
type Token uint64

var (
	// ErrNilFlag 表示登记时传入了空的标志指针。
	ErrNilFlag = errors.New("notify: flag must not be nil")

	// ErrInvalidSignal 表示 Registry 没有绑定有效的信号。
	ErrInvalidSignal = errors.New("notify: invalid signal")
)

// Registry 把一个进程信号分发给所有已登记的标志。
//
// 首次登记时安装 signal.Notify 并启动唯一的分发 goroutine。
// 安装后处理器在进程生命周期内保持生效：最后一个登记被注销后，
// 迟到的信号只会被丢弃，而不会回落到默认动作（对 SIGHUP 而言是终止进程）。
type Registry struct {
	sig os.Signal

	mu    sync.Mutex
	next  Token
	flags map[Token]*atomic.Bool

	installOnce sync.Once
	ch          chan os.Signal
}

var (
	registriesMu sync.Mutex
	registries   = make(map[os.Signal]*Registry)
)

// For 返回绑定到 sig 的进程级 Registry，同一信号总是得到同一个实例。
func For(sig os.Signal) *Registry {
	registriesMu.Lock()
	defer registriesMu.Unlock()

	if r, ok := registries[sig]; ok {
		return r
	}
	r := newRegistry(sig)
	if sig != nil {
		registries[sig] = r
	}
	return r
}

func newRegistry(sig os.Signal) *Registry {
	return &Registry{
		sig:   sig,
		flags: make(map[Token]*atomic.Bool),
	}
}

// Signal 返回该 Registry 监听的信号。
func (r *Registry) Signal() os.Signal {
	return r.sig
}

// Register 登记一个共享标志，信号到达时该标志会被置为 true。
//
// 参数:
//   - flag: 与调用方共享的原子布尔值
//
// 返回值:
//   - Token: 注销时使用的句柄
//   - error: 标志为空或信号无效时返回错误
func (r *Registry) Register(flag *atomic.Bool) (Token, error) {
	if flag == nil {
		return 0, ErrNilFlag
	}
	if r.sig == nil {
		return 0, ErrInvalidSignal
	}

	r.installOnce.Do(r.install)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	tok := r.next
	r.flags[tok] = flag
	return tok, nil
}

// Unregister 注销句柄。未知或重复的句柄被忽略。
func (r *Registry) Unregister(tok Token) {
	r.mu.Lock()
	delete(r.flags, tok)
	r.mu.Unlock()
}

// Notify 在进程内模拟一次信号投递。
func (r *Registry) Notify() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, flag := range r.flags {
		flag.Store(true)
	}
}

// Len 返回当前仍然有效的登记数量。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flags)
}

// install 安装信号处理器并启动分发 goroutine，只执行一次。
func (r *Registry) install() {
	// 缓冲为 1：连续到达的信号在分发前合并为一次
	r.ch = make(chan os.Signal, 1)
	signal.Notify(r.ch, r.sig)

	go func() {
		for range r.ch {
			r.Notify()
		}
	}()
}
