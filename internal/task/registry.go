package task

import (
	"sync"

	"github.com/flowcore/flowcore/internal/logger"
)

// Factory constructs a Handle from call arguments. Arguments built with KW
// are treated as keyword arguments; all others are positional.
type Factory func(args ...any) *Handle

// Registry maps task function names to their implementations and records
// every handle constructed through a factory it produced.
type Registry struct {
	mu          sync.Mutex
	funcs       map[string]Func
	invocations map[string]*Handle
	log         logger.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = logger.Default
	}
	return &Registry{
		funcs:       make(map[string]Func),
		invocations: make(map[string]*Handle),
		log:         log,
	}
}

// Task registers fn under name and returns a handle factory bound to this
// registry. Re-registering the same name is permitted and simply replaces
// the stored function; it does not error and does not affect handles
// already recorded under that name.
func (r *Registry) Task(name string, fn Func) Factory {
	r.mu.Lock()
	r.funcs[name] = fn
	r.mu.Unlock()

	return func(args ...any) *Handle {
		positional, kwargs := splitArgs(args)
		fp := fingerprintOf(name, positional, kwargs)

		r.mu.Lock()
		defer r.mu.Unlock()
		if existing, ok := r.invocations[fp]; ok {
			return existing
		}
		h := &Handle{funcName: name, args: positional, kwargs: kwargs, fingerprint: fp}
		r.invocations[fp] = h
		return h
	}
}

// Lookup resolves a registered task function by name, as a worker does
// when re-executing by reference rather than by closure.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Handle resolves a previously constructed handle by fingerprint.
func (r *Registry) Handle(fingerprint string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.invocations[fingerprint]
	return h, ok
}
