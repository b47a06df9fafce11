package pub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"google.golang.org/grpc"
)

// shutdownGrace bounds how long in-flight HTTP requests get on shutdown.
const shutdownGrace = 5 * time.Second

// Server runs the HTTP API and, when GRPCAddr is set, the gRPC service.
type Server struct {
	HTTPAddr string
	GRPCAddr string
	Service  *Service
	Logger   *slog.Logger
}

// Run serves until ctx is cancelled or a listener fails.
func (s *Server) Run(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpLis, err := net.Listen("tcp", s.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", s.HTTPAddr, err)
	}
	var grpcLis net.Listener
	if s.GRPCAddr != "" {
		grpcLis, err = net.Listen("tcp", s.GRPCAddr)
		if err != nil {
			httpLis.Close()
			return fmt.Errorf("listen grpc %s: %w", s.GRPCAddr, err)
		}
	}
	return s.serve(ctx, logger, httpLis, grpcLis)
}

func (s *Server) serve(ctx context.Context, logger *slog.Logger, httpLis, grpcLis net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 2)
	wg := new(sync.WaitGroup)

	httpServer := &http.Server{
		Handler:           NewHandler(s.Service, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("pub http listening", "addr", httpLis.Addr().String())
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("serve http: %w", err)
			cancel()
		}
	}()

	var grpcServer *grpc.Server
	if grpcLis != nil {
		grpcServer = grpc.NewServer()
		RegisterGRPC(grpcServer, s.Service)
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("pub grpc listening", "addr", grpcLis.Addr().String())
			if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errs <- fmt.Errorf("serve grpc: %w", err)
				cancel()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("pub shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownGrace)
	defer done()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		_ = httpServer.Close()
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	wg.Wait()

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}
