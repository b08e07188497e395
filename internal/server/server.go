// Package server wires a node.Node behind a gRPC listener.
package server

import (
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"chordring/internal/logger"
	"chordring/internal/node"
	"chordring/internal/trace"
)

type Option func(*Server)

func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.lgr = l }
}

// Server owns the gRPC listener for one node.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	lgr        logger.Logger
}

// New builds a Server registering n's DHT service.
func New(lis net.Listener, n *node.Node, grpcOpts []grpc.ServerOption, opts ...Option) *Server {
	s := &Server{listener: lis, lgr: &logger.NopLogger{}}
	for _, o := range opts {
		o(s)
	}
	grpcOpts = append(grpcOpts, grpc.ChainUnaryInterceptor(trace.ServerInterceptor()))
	grpcOpts = append(grpcOpts, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	s.grpcServer = grpc.NewServer(grpcOpts...)
	RegisterDHTService(s.grpcServer, n)
	return s
}

// Start blocks serving RPCs until Stop/GracefulStop is called.
func (s *Server) Start() error {
	s.lgr.Info("serving", logger.F("addr", s.listener.Addr().String()))
	return s.grpcServer.Serve(s.listener)
}

// Stop terminates all in-flight RPCs immediately.
func (s *Server) Stop() { s.grpcServer.Stop() }

// GracefulStop waits for in-flight RPCs to finish.
func (s *Server) GracefulStop() { s.grpcServer.GracefulStop() }
