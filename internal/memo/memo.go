// Package memo provides a single-slot memoized value cache.
//
// A Value wraps a zero-argument constructor and invokes it at most once;
// every call to Get after the first returns the stored result, including
// zero values. There is no invalidation. The cache assumes the
// single-threaded configuration-resolution phase of a run and is not safe
// for concurrent first-call races.
package memo

// Value memoizes the result of a constructor function.
type Value[T any] struct {
	fn       func() T
	cached   T
	resolved bool
}

// New wraps a constructor. The constructor is not invoked until the first
// call to Get.
func New[T any](fn func() T) *Value[T] {
	if fn == nil {
		panic("memo: nil constructor")
	}
	return &Value[T]{fn: fn}
}

// Get returns the memoized value, computing it on first use.
func (v *Value[T]) Get() T {
	if !v.resolved {
		v.cached = v.fn()
		v.resolved = true
		v.fn = nil
	}
	return v.cached
}

// Resolved reports whether the constructor has already run.
func (v *Value[T]) Resolved() bool {
	return v.resolved
}
