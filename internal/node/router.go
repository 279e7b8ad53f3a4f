package node

import (
	"fmt"

	"github.com/JohnReedLOL/killrweather/internal/domain"
	"github.com/JohnReedLOL/killrweather/internal/metrics"
	"github.com/JohnReedLOL/killrweather/internal/worker"
)

// Router forwards each request to the one worker that serves its kind. The
// mapping is fixed at construction and total over the closed request set.
// The router preserves the request's reply channel untouched, so the
// worker's answer reaches the original caller directly.
type Router struct {
	routes map[domain.Kind]*worker.Handle
}

// NewRouter creates a router over the given kind-to-worker mapping.
func NewRouter(routes map[domain.Kind]*worker.Handle) *Router {
	return &Router{routes: routes}
}

// Route forwards the request to its worker. A kind outside the routing set
// is a contract violation and fails fast.
func (r *Router) Route(req domain.Request) error {
	kind := req.RequestKind()
	h, ok := r.routes[kind]
	if !ok {
		metrics.RequestsRejected.Inc()
		return fmt.Errorf("%w: %q", domain.ErrUnknownRequest, kind)
	}
	if !h.Send(req) {
		return fmt.Errorf("forward %s to %s: %w", kind, h.Name(), domain.ErrStopped)
	}
	metrics.RequestsRouted.WithLabelValues(string(kind)).Inc()
	return nil
}
