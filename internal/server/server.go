package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	kratoshttp "github.com/go-kratos/kratos/v2/transport/http"
	swaggerUI "github.com/tx7do/kratos-swagger-ui"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/go-tangra/go-tangra-sysinfo/internal/aggregator"
	"github.com/go-tangra/go-tangra-sysinfo/internal/collector"
	"github.com/go-tangra/go-tangra-sysinfo/internal/config"
	"github.com/go-tangra/go-tangra-sysinfo/internal/store"
)

// NewGRPCServer returns a gRPC server exposing h as sysinfo.v1.Telemetry
// with reflection enabled.
func NewGRPCServer(h *Handler, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(SerializeInterceptor(&h.mu)))
	srv := grpc.NewServer(opts...)
	RegisterTelemetryServer(srv, h)
	reflection.Register(srv)
	return srv
}

// NewHTTPServer returns a kratos HTTP server with the REST routes and,
// when openApiData is non-empty, Swagger UI at /docs/.
func NewHTTPServer(cfg *config.Config, h *Handler, logger log.Logger, openApiData []byte) *kratoshttp.Server {
	srv := kratoshttp.NewServer(
		kratoshttp.Address(cfg.HTTPListen),
		kratoshttp.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
			Serialize(&h.mu),
		),
	)
	RegisterHTTP(srv, h)

	if cfg.EnableSwagger && len(openApiData) > 0 {
		swaggerUI.RegisterSwaggerUIServerWithOption(
			srv,
			swaggerUI.WithTitle("sysinfo"),
			swaggerUI.WithMemoryData(openApiData, "yaml"),
		)
	}
	return srv
}

// Run starts the gRPC and HTTP servers and blocks until the context is
// cancelled. Background goroutines have exited by the time it returns.
func Run(ctx context.Context, cfg *config.Config, logger log.Logger, openApiData []byte) error {
	helper := log.NewHelper(log.With(logger, "module", "server"))

	var archive *store.Store
	if cfg.DatabasePath != "" {
		db, err := store.New(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		archive = db
	}

	hostname, _ := os.Hostname()
	agg := aggregator.New(logger, collector.Defaults(collector.Options{
		CPUSampleInterval: cfg.CPUSampleInterval,
	})...)
	handler := NewHandler(logger, agg, archive, hostname)

	grpcSrv := NewGRPCServer(handler)
	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen gRPC on %s: %w", cfg.Listen, err)
	}

	// The archive is closed only after every goroutine below has returned.
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		helper.Info("shutting down")
		grpcSrv.GracefulStop()
	}()

	if archive != nil && cfg.RetentionDays > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runPurgeLoop(ctx, helper, archive, cfg.RetentionDays, cfg.PurgeInterval)
		}()
		helper.Infof("retention: %d days, purge interval: %s", cfg.RetentionDays, cfg.PurgeInterval)
	}

	httpSrv := NewHTTPServer(cfg, handler, logger, openApiData)
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := httpSrv.Start(ctx); err != nil {
			helper.Errorf("HTTP server error: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		<-ctx.Done()
		_ = httpSrv.Stop(context.Background())
	}()

	if cfg.EnableSwagger && len(openApiData) > 0 {
		helper.Infof("Swagger UI available at http://%s/docs/", cfg.HTTPListen)
	}
	helper.Infof("sysinfo gRPC listening on %s, HTTP on %s (db: %s)", cfg.Listen, cfg.HTTPListen, cfg.DatabasePath)

	if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func runPurgeLoop(ctx context.Context, helper *log.Helper, archive *store.Store, retentionDays int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	olderThan := time.Duration(retentionDays) * 24 * time.Hour
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := archive.Purge(ctx, olderThan)
			if err != nil {
				if ctx.Err() == nil {
					helper.Errorf("purge: %v", err)
				}
			} else if n > 0 {
				helper.Infof("purged %d reports older than %d days", n, retentionDays)
			}
		}
	}
}
