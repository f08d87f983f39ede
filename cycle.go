package di

// unlocker releases a token's position on the resolution stack.
type unlocker func()

// enterResolution pushes a token onto the active resolution stack. If the
// token is already mid-resolution on the current chain, the request is a
// genuine circular dependency; the returned error carries the full chain in
// stack order followed by the offending token.
func (c *Container) enterResolution(token Token) (unlocker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight[token] {
		chain := make([]Token, len(c.stack), len(c.stack)+1)
		copy(chain, c.stack)
		chain = append(chain, token)
		return nil, &DependencyError{
			Message: "circular dependency detected resolving",
			Token:   token,
			Chain:   chain,
			Status:  c.statusLocked(),
			kind:    ErrCircularDependency,
		}
	}

	c.stack = append(c.stack, token)
	c.inFlight[token] = true

	return func() {
		c.mu.Lock()
		for i := len(c.stack) - 1; i >= 0; i-- {
			if c.stack[i] == token {
				c.stack = append(c.stack[:i], c.stack[i+1:]...)
				break
			}
		}
		delete(c.inFlight, token)
		c.mu.Unlock()
	}, nil
}
