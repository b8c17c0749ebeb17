package crosscat

// Close drains the kernel's empty-kind buffer so the model holds only
// occupied kinds, then marks the engine closed. The model, assignments and
// dataset stay readable; further Step, Run and Checkpoint calls return
// ErrClosed. Closing twice is a no-op.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.kern.Close()
}
