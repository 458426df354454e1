package app

import (
	"sync"
	"sync/atomic"
)

// lazy builds a component on first use and memoizes the value together with the build error.
// A build that fails is never retried.
type lazy[T any] struct {
	once  sync.Once
	ready atomic.Bool
	v     T
	err   error
}

func (l *lazy[T]) get(build func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.v, l.err = build()
		l.ready.Store(l.err == nil)
	})
	return l.v, l.err
}

// ensure is get for builders that cannot fail.
func (l *lazy[T]) ensure(build func() T) T {
	v, _ := l.get(func() (T, error) { return build(), nil })
	return v
}

// set installs v unless the component was already built.
func (l *lazy[T]) set(v T) {
	l.ensure(func() T { return v })
}

// peek reports the built value without triggering a build.
func (l *lazy[T]) peek() (T, bool) {
	if !l.ready.Load() {
		var zero T
		return zero, false
	}
	return l.v, true
}
