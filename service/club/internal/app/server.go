package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"Futbotchi/service/club/internal/club"
	"Futbotchi/service/club/internal/config"
	"Futbotchi/service/club/internal/httpapi"
)

// Server tiene insieme il server gRPC e, opzionalmente, l'API HTTP.
type Server struct {
	logger   *slog.Logger
	grpcAddr string
	grpc     *grpc.Server
	health   *health.Server
	http     *http.Server
}

// NewServer registra ClubService, health e reflection; con HTTPAddr vuoto non espone HTTP.
func NewServer(cfg config.Config, svc *club.Service, logger *slog.Logger) *Server {
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	club.RegisterClubServiceServer(grpcServer, club.NewGRPCServer(svc, logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(club.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	s := &Server{
		logger:   logger,
		grpcAddr: cfg.GRPCAddr,
		grpc:     grpcServer,
		health:   healthServer,
	}
	if cfg.HTTPAddr != "" {
		limiter := rate.NewLimiter(rate.Limit(cfg.HTTPRate), cfg.HTTPBurst)
		s.http = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewRouter(svc, limiter, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return s
}

// Run serve fino alla cancellazione del context, poi chiude in modo ordinato.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.grpcAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		s.logger.Info("club grpc listening", "addr", s.grpcAddr)
		errCh <- s.grpc.Serve(listener)
	}()
	if s.http != nil {
		go func() {
			s.logger.Info("club http listening", "addr", s.http.Addr)
			if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http serve: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	s.logger.Info("shutdown in corso")
	s.health.Shutdown()
	if s.http != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http shutdown", "error", err)
		}
	}
	s.grpc.GracefulStop()

	if serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
		return serveErr
	}
	return nil
}
