// Package probe exposes the standard gRPC health service so orchestrators
// can check the storefront without going through HTTP.
package probe

import (
	"context"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported alongside the overall ("") status.
const Service = "storefront"

// Checker reports whether a dependency is usable.
type Checker func(ctx context.Context) error

type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

func New() *Server {
	s := &Server{grpc: grpc.NewServer(), health: health.NewServer()}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus(Service, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Update runs check and publishes the result for both names.
func (s *Server) Update(ctx context.Context, check Checker) {
	st := healthpb.HealthCheckResponse_SERVING
	if err := check(ctx); err != nil {
		log.Printf("[probe] not serving: %v", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(Service, st)
}

// Watch calls Update right away and then every interval until ctx is done.
// Each check gets at most one interval to answer.
func (s *Server) Watch(ctx context.Context, every time.Duration, check Checker) {
	if every <= 0 {
		every = 10 * time.Second
	}
	run := func() {
		cctx, cancel := context.WithTimeout(ctx, every)
		defer cancel()
		s.Update(cctx, check)
	}
	run()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}

func (s *Server) Serve(l net.Listener) error {
	log.Printf("[probe] grpc health on %s", l.Addr())
	return s.grpc.Serve(l)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
