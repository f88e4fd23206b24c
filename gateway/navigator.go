package gateway

import (
	"context"
	"sync"
)

// SessionStore is the part of the session store the gateway depends on.
type SessionStore interface {
	GetToken(ctx context.Context) (string, bool)
	ClearSession(ctx context.Context) error
}

// Navigator forces the active view to a route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(route string)

// Navigate calls f(route).
func (f NavigatorFunc) Navigate(route string) {
	f(route)
}

// History is a [Navigator] that records every forced navigation.
type History struct {
	mu     sync.Mutex
	routes []string
}

// Navigate records route.
func (h *History) Navigate(route string) {
	h.mu.Lock()
	h.routes = append(h.routes, route)
	h.mu.Unlock()
}

// Routes returns the recorded routes, oldest first.
func (h *History) Routes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.routes...)
}

// Last returns the most recent route.
func (h *History) Last() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.routes) == 0 {
		return "", false
	}
	return h.routes[len(h.routes)-1], true
}
