// Package handlers implements the HTTP surface over internal/service.
// Every handler binds a request, calls exactly one Service method and
// translates its result to JSON — authorization, validation and event
// persistence stay in the Service layer.
package handlers

import (
	"context"

	"kv-shepherd.io/shepherd/internal/service"
)

// Server holds every handler's dependency. Manual DI, mirroring the
// teacher's ServerDeps/NewServer pair.
type Server struct {
	svc  *service.Service
	ping func(ctx context.Context) error
}

// Deps bundles Server's dependencies. Ping backs the readiness probe
// with the storage backend's own connectivity check (pgxpool.Pool.Ping,
// redis.Client.Ping); nil for the memory backend, which has nothing to
// dial.
type Deps struct {
	Service *service.Service
	Ping    func(ctx context.Context) error
}

// NewServer constructs a Server from deps.
func NewServer(deps Deps) *Server {
	return &Server{svc: deps.Service, ping: deps.Ping}
}
