package superopt

import (
	"context"
	"sync"
	"sync/atomic"

	"nickandperla.net/superopt/machine"
)

// Token is a cooperative cancellation flag. Workers poll Cancelled between
// candidates; nothing is ever preempted.
type Token struct {
	cancelled atomic.Bool
	once      sync.Once
	done      chan struct{}
}

func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel is idempotent and safe from any goroutine.
func (t *Token) Cancel() {
	t.once.Do(func() {
		t.cancelled.Store(true)
		close(t.done)
	})
}

func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}

// Done is closed on Cancel, for tasks that sleep between polls.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// Bind cancels the token when ctx ends. The returned stop function releases
// the watcher without cancelling.
func (t *Token) Bind(ctx context.Context) (stop func()) {
	release := make(chan struct{})
	var once sync.Once
	go func() {
		select {
		case <-ctx.Done():
			t.Cancel()
		case <-t.done:
		case <-release:
		}
	}()
	return func() { once.Do(func() { close(release) }) }
}

// BestProgram is the shortest known equivalent program. Readers see either
// the old or the new program, never a partial write.
type BestProgram struct {
	mu      sync.RWMutex
	program machine.Program
}

func NewBestProgram(initial machine.Program) *BestProgram {
	return &BestProgram{program: initial.Clone()}
}

func (b *BestProgram) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.program)
}

// Program returns a copy the caller may keep.
func (b *BestProgram) Program() machine.Program {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.program.Clone()
}

// TryReplaceIfShorter installs a copy of p when it is strictly shorter than
// the current best.
func (b *BestProgram) TryReplaceIfShorter(p machine.Program) bool {
	if len(p) >= b.Len() {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(p) >= len(b.program) {
		return false
	}
	b.program = p.Clone()
	return true
}
