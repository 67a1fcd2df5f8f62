package gizmo

// Value is either a fixed T or one computed from the live interaction context.
// Handle positions, labels, visibility and handle lists all use it.
type Value[T any] struct {
	static   T
	set      bool
	computed func(*Context) T
}

// Static wraps a literal
func Static[T any](v T) Value[T] {
	return Value[T]{static: v, set: true}
}

// Computed wraps a function of the context
func Computed[T any](fn func(*Context) T) Value[T] {
	return Value[T]{computed: fn, set: fn != nil}
}

// IsSet reports whether the value was given at all
func (v Value[T]) IsSet() bool {
	return v.set
}

// IsComputed reports whether the value depends on the context
func (v Value[T]) IsComputed() bool {
	return v.computed != nil
}

// Resolve evaluates the value. A computed value with a nil context yields
// the zero T.
func (v Value[T]) Resolve(ctx *Context) T {
	if v.computed == nil {
		return v.static
	}
	if ctx == nil {
		var zero T
		return zero
	}
	return v.computed(ctx)
}

// ResolveOr is Resolve with a default for values that were never set
func (v Value[T]) ResolveOr(ctx *Context, def T) T {
	if !v.set {
		return def
	}
	return v.Resolve(ctx)
}
