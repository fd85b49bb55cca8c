package public

import "github.com/eskept/pricing-engine/internal/provider"

// Handler serves the public read API. Reads come from the precomputed
// cache; misses fall through to a synchronous compute.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
