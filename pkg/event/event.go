// Package event decouples the shop services from their side effects. A
// service fires a domain event ("purchase.recorded", "cart.checked_out",
// "user.registered") and the listeners wired at boot in internal/server
// react to it off the request path.
package event

import (
	"sync"
)

// Handler receives the payload the event was fired with.
type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
	inflight sync.WaitGroup
)

// Listen registers a handler for the named event.
func Listen(name string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[name] = append(handlers[name], handler)
}

// FireAsync runs every listener on its own goroutine and returns without
// waiting for them.
func FireAsync(name string, payload interface{}) {
	mu.RLock()
	hs := make([]Handler, len(handlers[name]))
	copy(hs, handlers[name])
	mu.RUnlock()

	for _, h := range hs {
		inflight.Add(1)
		go func(h Handler) {
			defer inflight.Done()
			h(payload)
		}(h)
	}
}

// Wait blocks until every handler started so far has returned. Shutdown
// calls it so a confirmation mail fired by the last request is not cut
// off mid-flight.
func Wait() {
	inflight.Wait()
}
