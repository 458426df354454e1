package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/allisson/signatrust/internal/metrics"
)

// ServerConfig configures the signing gRPC server.
type ServerConfig struct {
	Host           string
	Port           int
	MaxRecvMsgSize int
	// MeterProvider enables stream metrics when set.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
}

// Server wraps grpc.Server with listen and shutdown handling.
type Server struct {
	grpcSrv *grpc.Server
	addr    string
	logger  *slog.Logger
}

// NewServer creates a gRPC server serving handler.
func NewServer(cfg ServerConfig, handler SignatrustServer, logger *slog.Logger) *Server {
	s := &Server{
		addr:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		logger: logger,
	}

	interceptors := []grpc.StreamServerInterceptor{s.recoveryStreamInterceptor}
	if cfg.MeterProvider != nil {
		interceptors = append(interceptors,
			metrics.GRPCStreamServerInterceptor(cfg.MeterProvider, cfg.MetricsNamespace),
		)
	}
	interceptors = append(interceptors, s.loggingStreamInterceptor)

	opts := []grpc.ServerOption{grpc.ChainStreamInterceptor(interceptors...)}
	if cfg.MaxRecvMsgSize > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize))
	}

	s.grpcSrv = grpc.NewServer(opts...)
	s.grpcSrv.RegisterService(&ServiceDesc, handler)
	return s
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("starting grpc server", slog.String("addr", listener.Addr().String()))

	if err := s.grpcSrv.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve grpc: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight streams until ctx is done, then closes them.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down grpc server")

	stopped := make(chan struct{})
	go func() {
		s.grpcSrv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.logger.Warn("forcing grpc server stop after timeout")
		s.grpcSrv.Stop()
		<-stopped
		return ctx.Err()
	}
}

func (s *Server) loggingStreamInterceptor(
	srv any,
	ss grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	start := time.Now()

	err := handler(srv, ss)

	s.logger.Info("grpc stream",
		slog.String("method", info.FullMethod),
		slog.String("code", status.Code(err).String()),
		slog.Duration("duration", time.Since(start)),
	)
	return err
}

func (s *Server) recoveryStreamInterceptor(
	srv any,
	ss grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("recovered from panic",
				slog.String("method", info.FullMethod),
				slog.Any("panic", r),
			)
			err = status.Error(codes.Internal, "internal server error")
		}
	}()

	return handler(srv, ss)
}
