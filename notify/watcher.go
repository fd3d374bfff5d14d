package notify

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed 表示在已关闭的 Watcher 上登记。
var ErrWatcherClosed = errors.New("notify: watcher closed")

// Watcher 监视单个文件路径，文件被删除或重命名时置位所有已登记的标志。
//
// fsnotify 监视的是父目录而不是文件本身：文件被移走后 inode 级别的监视会失效，
// 而目录监视能继续看到同名新文件的出现。
type Watcher struct {
	path string
	fsw  *fsnotify.Watcher

	mu     sync.Mutex
	next   Token
	flags  map[Token]*atomic.Bool
	closed bool

	done chan struct{}
	// errs 收集 fsnotify 报告的错误，满了就丢弃
	errs chan error
}

// NewWatcher 创建监视 path 的 Watcher。path 的父目录必须存在。
//
// 参数:
//   - path: 要监视的文件路径，文件本身可以尚不存在
//
// 返回值:
//   - *Watcher: 已经开始监视的实例
//   - error: 无法解析路径或无法监视父目录时返回错误
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("notify: resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("notify: create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("notify: watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:  abs,
		fsw:   fsw,
		flags: make(map[Token]*atomic.Bool),
		done:  make(chan struct{}),
		errs:  make(chan error, 1),
	}
	go w.run()
	return w, nil
}

// Path 返回被监视的绝对路径。
func (w *Watcher) Path() string {
	return w.path
}

// Register 登记一个共享标志。
func (w *Watcher) Register(flag *atomic.Bool) (Token, error) {
	if flag == nil {
		return 0, ErrNilFlag
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, ErrWatcherClosed
	}
	w.next++
	tok := w.next
	w.flags[tok] = flag
	return tok, nil
}

// Unregister 注销句柄。未知或重复的句柄被忽略。
func (w *Watcher) Unregister(tok Token) {
	w.mu.Lock()
	delete(w.flags, tok)
	w.mu.Unlock()
}

// Notify 置位所有已登记的标志。
func (w *Watcher) Notify() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, flag := range w.flags {
		flag.Store(true)
	}
}

// Len 返回当前仍然有效的登记数量。
func (w *Watcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.flags)
}

// Errors 返回 fsnotify 报告的错误通道。
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close 停止监视。重复调用返回 nil。
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.flags = make(map[Token]*atomic.Bool)
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	// 不响应 Create：重开本身就会在原路径创建文件
	const trigger = fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&trigger == 0 || filepath.Clean(ev.Name) != w.path {
				continue
			}
			w.Notify()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}
