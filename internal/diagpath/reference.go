package diagpath

import "fmt"

// Reference is a late-bound pointer to a named item (a type, a module
// definition, or a function), filled in exactly once by ResolveTo (only
// types.TypeRef wraps one); accessing it before that, or
// resolving it twice, is a programming error surfaced as an error value
// rather than a panic, so callers can report it through the normal
// diagnostics batch.
type Reference[T any] struct {
	name     string
	resolved bool
	target   T
}

// NewReference creates an unresolved reference by name.
func NewReference[T any](name string) *Reference[T] {
	return &Reference[T]{name: name}
}

// Name returns the referent's name, regardless of resolution state.
func (r *Reference[T]) Name() string { return r.name }

// IsResolved reports whether ResolveTo has already succeeded.
func (r *Reference[T]) IsResolved() bool { return r.resolved }

// ResolveTo binds the reference to its target. Succeeds exactly once.
func (r *Reference[T]) ResolveTo(target T) error {
	if r.resolved {
		return fmt.Errorf("diagpath: reference %q already resolved", r.name)
	}
	r.target = target
	r.resolved = true
	return nil
}

// Target returns the resolved referent. Fails if ResolveTo has not run yet.
func (r *Reference[T]) Target() (T, error) {
	var zero T
	if !r.resolved {
		return zero, fmt.Errorf("diagpath: unresolved reference %q", r.name)
	}
	return r.target, nil
}

// MustTarget panics if the reference is unresolved. Only safe to call after
// elaboration has verified resolution succeeded for the whole package.
func (r *Reference[T]) MustTarget() T {
	t, err := r.Target()
	if err != nil {
		panic(err)
	}
	return t
}
