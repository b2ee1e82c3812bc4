// Package mpsc 无锁多生产者单消费者队列
package mpsc

import (
	"sync/atomic"
)

type node[T any] struct {
	next atomic.Pointer[node[T]]
	val  T
}

// Queue 无界 FIFO 队列，Push 可并发调用，Pop 只允许单个消费者调用
type Queue[T any] struct {
	head atomic.Pointer[node[T]]
	tail *node[T]
	size atomic.Int64
}

func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	stub := &node[T]{}
	q.head.Store(stub)
	q.tail = stub
	return q
}

func (q *Queue[T]) Push(x T) {
	n := &node[T]{val: x}
	prev := q.head.Swap(n)
	prev.next.Store(n)
	q.size.Add(1)
}

// Pop 取出队首元素，队列为空时 ok 为 false
func (q *Queue[T]) Pop() (v T, ok bool) {
	next := q.tail.next.Load()
	if next == nil {
		return v, false
	}
	q.tail = next
	v = next.val
	var zero T
	next.val = zero
	q.size.Add(-1)
	return v, true
}

func (q *Queue[T]) Empty() bool {
	return q.tail.next.Load() == nil
}

// Len 近似长度，并发 Push 时只作观测用
func (q *Queue[T]) Len() int {
	return int(q.size.Load())
}
