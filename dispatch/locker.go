// Package dispatch provides the runtime pieces that sit around a generated
// Dispatch function: a lock that can reject in-flight requests with
// ERR_LOCK, and a small generic helper for guarding a call to it.
package dispatch

import (
	"strings"
	"sync"

	"github.com/openbuttnakedgang/ellocopo2/wire"
)

// Locker behaves like a sync.Mutex that never blocks: instead of making a
// caller wait, a locked Locker makes dispatch answer ERR_LOCK. A list of
// paths can be exempted (DoNotProtect), the way a status or visibility
// endpoint needs to stay reachable even while the device is locked.
type Locker struct {
	mu           sync.RWMutex
	locked       bool
	doNotProtect []string
}

// NewLocker returns an unlocked Locker. doNotProtect lists path substrings
// (matched with strings.Contains) that remain reachable even while locked.
func NewLocker(doNotProtect ...string) *Locker {
	return &Locker{doNotProtect: doNotProtect}
}

// Lock makes every protected path answer ERR_LOCK until Unlock is called.
func (l *Locker) Lock() {
	l.mu.Lock()
	l.locked = true
	l.mu.Unlock()
}

// Unlock reverses Lock.
func (l *Locker) Unlock() {
	l.mu.Lock()
	l.locked = false
	l.mu.Unlock()
}

// Locked reports whether the Locker currently rejects protected paths.
func (l *Locker) Locked() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.locked
}

// Check reports whether a request against path may proceed: either the
// Locker is unlocked, or path matches one of the exempted substrings.
func (l *Locker) Check(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.locked {
		return true
	}
	for _, p := range l.doNotProtect {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Guarded calls fn only if l.Check(path) permits it; otherwise it answers
// ERR_LOCK without invoking fn. M is the caller's generated Msg type, so
// this adapts to any generated registry package's Dispatch signature.
func Guarded[M any](l *Locker, path string, fn func() (M, wire.AnswerCode)) (M, wire.AnswerCode) {
	if !l.Check(path) {
		var zero M
		return zero, wire.ErrLock
	}
	return fn()
}
