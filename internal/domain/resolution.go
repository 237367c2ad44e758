package domain

// Resolution is the outcome of a lookup that may legitimately find nothing.
// An unresolved value is a normal, cacheable result and not an error.
type Resolution[T any] struct {
	value T
	ok    bool
}

func Resolved[T any](v T) Resolution[T] {
	return Resolution[T]{value: v, ok: true}
}

func Unresolved[T any]() Resolution[T] {
	return Resolution[T]{}
}

// Get returns the resolved value and true, or the zero value and false.
func (r Resolution[T]) Get() (T, bool) { return r.value, r.ok }

func (r Resolution[T]) OK() bool { return r.ok }
