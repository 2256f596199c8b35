package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/airroutes/api"
	"github.com/Domenick1991/airroutes/config"
	"github.com/Domenick1991/airroutes/internal/routing"
	"github.com/Domenick1991/airroutes/internal/service/routes"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the gRPC health service name reporting index readiness.
const ServiceName = "airroutes.RouteIndex"

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
}

// NewHealth returns a health server whose route index status starts as
// NOT_SERVING until the first successful load.
func NewHealth() *health.Server {
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return hs
}

// ReloadHook keeps the health status in line with the index: serving once
// any dataset is loaded, even if a later reload fails.
func ReloadHook(hs *health.Server) func(routing.Stats, error) {
	return func(stats routing.Stats, err error) {
		if stats.Generation > 0 {
			hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
			return
		}
		if err != nil {
			hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
		}
	}
}

// Run starts the gRPC (health, reflection) and HTTP servers and blocks until
// the context is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, routeSvc routes.RouteUseCase, hs *health.Server) error {
	s := newServers(cfg, routeSvc, hs)

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Printf("serving http on %s, grpc on %s", cfg.HTTP.Address, cfg.GRPC.Address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, routeSvc routes.RouteUseCase, hs *health.Server) *Servers {
	grpcSrv := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, hs)
	reflection.Register(grpcSrv)

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           NewRouter(routeSvc),
			ReadHeaderTimeout: 5 * time.Second,
		},
		health: hs,
	}
}

func NewRouter(routeSvc routes.RouteUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	handler := api.NewRouteHandler(routeSvc)
	router.GET("/healthz", handler.Health)
	handler.Register(router.Group("/api/v1"))
	return router
}
