package cart

import (
	"sync"
)

// Listener 快照变更订阅回调
type Listener func(Snapshot)

// Store 当前会话购物车的唯一状态源
// 所有变更都生成新的快照并广播给订阅者
type Store struct {
	mu        sync.Mutex
	current   Snapshot
	listeners map[uint64]Listener
	nextID    uint64
}

// NewStore 创建空购物车
func NewStore() *Store {
	return &Store{listeners: make(map[uint64]Listener)}
}

// Snapshot 同步读取当前快照
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Replace 整体替换快照
func (s *Store) Replace(snapshot Snapshot) {
	s.mu.Lock()
	s.current = NewSnapshot(snapshot.lines...)
	s.publishLocked()
	s.mu.Unlock()
}

// UpsertLine 新增行（追加到末尾）或按商品替换已有行（保持原位置）
func (s *Store) UpsertLine(line Line) {
	s.mu.Lock()
	s.current = s.current.upsert(line)
	s.publishLocked()
	s.mu.Unlock()
}

// RemoveLine 删除商品对应行，不存在时不做任何事
func (s *Store) RemoveLine(productID string) {
	s.mu.Lock()
	next, removed := s.current.remove(productID)
	if removed {
		s.current = next
		s.publishLocked()
	}
	s.mu.Unlock()
}

// Reset 清空为空快照
func (s *Store) Reset() {
	s.Replace(Snapshot{})
}

// Subscribe 订阅快照变更，立即收到一次当前快照；返回取消函数
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	fn(s.current)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// publishLocked 在持锁状态下广播，保证订阅者按提交顺序看到完整快照
// 回调中不得再调用 Store 的方法
func (s *Store) publishLocked() {
	for _, fn := range s.listeners {
		fn(s.current)
	}
}
