// Package fastcb implements the fast-path callback table registers marked
// `@fast` are dispatched through: a runtime vtable keyed on path string,
// bound at startup rather than at link time.
package fastcb

import (
	"sync"

	"github.com/openbuttnakedgang/ellocopo2/wire"
)

// ReadFunc produces the current value of a fast register.
type ReadFunc func() (wire.Value, wire.AnswerCode)

// WriteFunc applies a new value to a fast register.
type WriteFunc func(wire.Value) wire.AnswerCode

// Table is a concurrency-safe path -> callback vtable. The zero value is
// not ready to use; construct one with NewTable.
type Table struct {
	mu      sync.RWMutex
	readers map[string]ReadFunc
	writers map[string]WriteFunc
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{
		readers: make(map[string]ReadFunc),
		writers: make(map[string]WriteFunc),
	}
}

// BindRead registers fn as the read callback for path, replacing any
// previous binding.
func (t *Table) BindRead(path string, fn ReadFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readers[path] = fn
}

// BindWrite registers fn as the write callback for path, replacing any
// previous binding.
func (t *Table) BindWrite(path string, fn WriteFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writers[path] = fn
}

// Read invokes path's bound read callback. An unbound fast register answers
// ERR_USER: the schema declared it fast but nothing has claimed it, which
// the protocol treats the same as a callback that rejects the request.
func (t *Table) Read(path string) (wire.Value, wire.AnswerCode) {
	t.mu.RLock()
	fn, ok := t.readers[path]
	t.mu.RUnlock()
	if !ok {
		return wire.Value{}, wire.ErrUser
	}
	return fn()
}

// Write invokes path's bound write callback. See Read for the unbound case.
func (t *Table) Write(path string, v wire.Value) wire.AnswerCode {
	t.mu.RLock()
	fn, ok := t.writers[path]
	t.mu.RUnlock()
	if !ok {
		return wire.ErrUser
	}
	return fn(v)
}

// Unbind removes any read and write callbacks registered for path.
func (t *Table) Unbind(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.readers, path)
	delete(t.writers, path)
}
