// Package set is an insertion ordered set.
package set

import (
	"iter"
)

type Set[T comparable] struct {
	index map[T]int
	items []T
}

func New[T comparable](items ...T) *Set[T] {
	s := &Set[T]{}
	s.Add(items...)
	return s
}

// Add appends the items not already in the set.
func (s *Set[T]) Add(items ...T) {
	if s.index == nil {
		s.index = make(map[T]int, len(items))
	}
	for _, item := range items {
		if _, ok := s.index[item]; ok {
			continue
		}
		s.index[item] = len(s.items)
		s.items = append(s.items, item)
	}
}

// Remove removes an item, keeping the order of the others.
func (s *Set[T]) Remove(item T) {
	i, ok := s.index[item]
	if !ok {
		return
	}
	delete(s.index, item)
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
}

func (s *Set[T]) Contains(item T) bool {
	_, ok := s.index[item]
	return ok
}

func (s *Set[T]) ContainsAll(items ...T) bool {
	for _, item := range items {
		if !s.Contains(item) {
			return false
		}
	}
	return true
}

func (s *Set[T]) Size() int {
	return len(s.items)
}

func (s *Set[T]) Clear() {
	clear(s.index)
	s.items = s.items[:0]
}

// Items yields the items in insertion order.
func (s *Set[T]) Items() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range s.items {
			if !yield(item) {
				return
			}
		}
	}
}

// Slice returns a copy of the items in insertion order.
func (s *Set[T]) Slice() []T {
	return append([]T(nil), s.items...)
}
