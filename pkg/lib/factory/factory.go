package factory

import (
	"fmt"
	"sort"
	"sync"
)

// Creator 根据原始配置创建实例
type Creator[T any] func(config map[string]any) (T, error)

func New[T any]() *Manager[T] {
	return &Manager[T]{
		factories: make(map[string]Creator[T]),
	}
}

// Manager 按名字注册的工厂表
type Manager[T any] struct {
	mu        sync.RWMutex
	factories map[string]Creator[T] // key:工厂名  value：构造函数
}

// Register 注册一个工厂函数，重名返回错误
func (f *Manager[T]) Register(name string, creator Creator[T]) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.factories[name]; ok {
		return fmt.Errorf("factory %q already exists", name)
	}
	f.factories[name] = creator
	return nil
}

func (f *Manager[T]) Unregister(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.factories, name)
}

func (f *Manager[T]) Get(name string) (Creator[T], bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	creator, ok := f.factories[name]
	return creator, ok
}

// List 已注册的工厂名，按字典序
func (f *Manager[T]) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.factories))
	for name := range f.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
