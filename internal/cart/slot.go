package cart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/quickprintz/storefront/internal/logger"
)

// ErrSlotClosed 持久化槽已关闭
var ErrSlotClosed = errors.New("cart slot closed")

// Slot 购物车快照的持久化槽
// Read 返回 nil 表示没有快照
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// StampedSlot 可按变更时间写入的槽
// AsyncSlot 延迟落盘时用它带上快照产生的时间
type StampedSlot interface {
	WriteAt(ctx context.Context, data []byte, at time.Time) error
}

// SlotFactory 按存储 key 创建持久化槽
type SlotFactory func(key string) Slot

// MemorySlot 进程内快照
type MemorySlot struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemorySlot 创建内存槽，可带初始内容
func NewMemorySlot(initial []byte) *MemorySlot {
	return &MemorySlot{data: cloneBytes(initial)}
}

func (s *MemorySlot) Read(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBytes(s.data), nil
}

func (s *MemorySlot) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = cloneBytes(data)
	return nil
}

// MemorySlots 共享的内存槽集合
type MemorySlots struct {
	mu    sync.Mutex
	slots map[string]*MemorySlot
}

// NewMemorySlots 创建内存槽集合
func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: make(map[string]*MemorySlot)}
}

// Slot 获取或创建指定 key 的槽
func (m *MemorySlots) Slot(key string) Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[key]
	if !ok {
		slot = NewMemorySlot(nil)
		m.slots[key] = slot
	}
	return slot
}

// FileSlot 每个 key 一个 JSON 文件
type FileSlot struct {
	path string
}

// NewFileSlot 创建文件槽
func NewFileSlot(dir, key string) *FileSlot {
	return &FileSlot{path: filepath.Join(dir, fileName(key))}
}

// Path 返回快照文件路径
func (s *FileSlot) Path() string {
	return s.path
}

func (s *FileSlot) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (s *FileSlot) Write(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// FileSlotFactory 返回目录下的文件槽工厂
func FileSlotFactory(dir string) SlotFactory {
	return func(key string) Slot {
		return NewFileSlot(dir, key)
	}
}

func fileName(key string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	name := replacer.Replace(strings.TrimSpace(key))
	if name == "" {
		name = "cart"
	}
	return name + ".json"
}

const asyncWriteTimeout = 10 * time.Second

// AsyncSlot 异步写入装饰器
// Write 立即返回，后台协程只落盘最新的一份快照
type AsyncSlot struct {
	inner Slot

	mu         sync.Mutex
	pending    []byte
	pendingAt  time.Time
	hasPending bool
	inflight   []byte
	writing    bool
	closed     bool

	wake    chan struct{}
	done    chan struct{}
	nowFunc func() time.Time
}

// NewAsyncSlot 包装一个同步槽
func NewAsyncSlot(inner Slot) *AsyncSlot {
	s := &AsyncSlot{
		inner:   inner,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		nowFunc: time.Now,
	}
	go s.run()
	return s
}

// Read 优先返回尚未落盘的快照
func (s *AsyncSlot) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	if s.hasPending {
		data := cloneBytes(s.pending)
		s.mu.Unlock()
		return data, nil
	}
	if s.writing {
		data := cloneBytes(s.inflight)
		s.mu.Unlock()
		return data, nil
	}
	s.mu.Unlock()
	return s.inner.Read(ctx)
}

func (s *AsyncSlot) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSlotClosed
	}
	s.pending = cloneBytes(data)
	s.pendingAt = s.nowFunc()
	s.hasPending = true
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close 停止后台协程并写完剩余快照
func (s *AsyncSlot) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	close(s.wake)
	s.mu.Unlock()
	<-s.done
	return nil
}

func (s *AsyncSlot) run() {
	defer close(s.done)
	for range s.wake {
		s.flush()
	}
	s.flush()
}

func (s *AsyncSlot) flush() {
	s.mu.Lock()
	if !s.hasPending {
		s.mu.Unlock()
		return
	}
	data, at := s.pending, s.pendingAt
	s.pending = nil
	s.hasPending = false
	s.inflight = data
	s.writing = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), asyncWriteTimeout)
	defer cancel()
	var err error
	if stamped, ok := s.inner.(StampedSlot); ok {
		err = stamped.WriteAt(ctx, data, at)
	} else {
		err = s.inner.Write(ctx, data)
	}
	if err != nil {
		logger.Warnw("cart_slot_write_failed", "mode", "async", "error", err)
	}

	s.mu.Lock()
	s.inflight = nil
	s.writing = false
	s.mu.Unlock()
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
