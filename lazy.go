package di

// LazyRef is a deferred-lookup handle bound to a (container, token) pair at
// construction time. It never triggers resolution itself: breaking a cycle
// A -> B -> A requires that constructing A does not force construction of B,
// so the handle supplies B's eventual identity and defers the actual lookup
// until calling code dereferences it, typically after both sides have been
// resolved by the bulk resolver's two-pass scheme.
type LazyRef struct {
	container *Container
	token     Token
}

func newLazyRef(c *Container, token Token) *LazyRef {
	return &LazyRef{container: c, token: token}
}

// Token returns the token this handle is bound to.
func (r *LazyRef) Token() Token {
	return r.token
}

// Get returns the cached instance for the bound token, or an
// ErrInstanceNotResolved error if the token has not been resolved yet.
func (r *LazyRef) Get() (any, error) {
	v, ok := r.container.GetInstance(r.token)
	if !ok {
		return nil, newDependencyError(ErrInstanceNotResolved, "instance not resolved for lazy reference", r.token)
	}
	return v, nil
}

// MustGet returns the cached instance for the bound token, panicking if it
// has not been resolved yet.
func (r *LazyRef) MustGet() any {
	v, err := r.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// TryGet returns the cached instance and a presence flag. It never fails.
func (r *LazyRef) TryGet() (any, bool) {
	return r.container.GetInstance(r.token)
}

// IsResolved reports whether the bound token has a cached instance.
func (r *LazyRef) IsResolved() bool {
	_, ok := r.container.GetInstance(r.token)
	return ok
}

// Reset removes the bound token's entry from the container's instance cache.
// This mutates shared container state and is intended for test teardown, not
// production use.
func (r *LazyRef) Reset() {
	c := r.container
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.instances[r.token]; !ok {
		return
	}
	delete(c.instances, r.token)
	for i, tok := range c.order {
		if tok == r.token {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
