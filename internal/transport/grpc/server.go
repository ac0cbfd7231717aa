package grpc

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/tedrenliv/habit-tracker/internal/logger"
)

// ServiceName is the health-check name of the progress service
const ServiceName = "habittracker.progress.v1.ProgressService"

// Server represents a gRPC server exposing health and reflection
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	port       int
}

// NewServer creates a new gRPC server
func NewServer(port int, opts ...grpc.ServerOption) *Server {
	grpcServer := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		port:       port,
	}
}

// Start starts the gRPC server
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}

	return s.Serve(listener)
}

// Serve accepts connections on listener until Stop is called
func (s *Server) Serve(listener net.Listener) error {
	logger.Info("gRPC server listening", "addr", listener.Addr().String())

	if err := s.grpcServer.Serve(listener); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

// Stop marks the service NOT_SERVING and gracefully stops the gRPC server
func (s *Server) Stop() {
	logger.Info("Gracefully stopping gRPC server")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")
}
