package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/okian/reten/internal/adapters/http/api"
	"github.com/okian/reten/internal/adapters/persistence"
	"github.com/okian/reten/internal/adapters/predictor"
	"github.com/okian/reten/internal/adapters/repository"
	service "github.com/okian/reten/internal/app"
	"github.com/okian/reten/internal/config"
	"github.com/okian/reten/internal/domain/session"
	"github.com/okian/reten/pkg/logger"
	"github.com/okian/reten/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func newTestService() *service.Service {
	kv := persistence.NewMemory()
	remote := predictor.New("http://localhost:0", predictor.WithLogger(logger.NewNop()))
	guard := session.NewGuard(remote, kv, session.WithLogger(logger.NewNop()))
	store := repository.New(kv, repository.WithLogger(logger.NewNop()))
	return service.New(guard, remote, nil, store, service.WithLogger(logger.NewNop()))
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("RETEN_ADDR", ":8080")
			_ = os.Setenv("RETEN_QUEUE_SIZE", "512")
			_ = os.Setenv("RETEN_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("RETEN_ADDR")
				_ = os.Unsetenv("RETEN_QUEUE_SIZE")
				_ = os.Unsetenv("RETEN_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 512)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable from its parts", func() {
				svc := newTestService()
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := newTestService()

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager()
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := newTestService()
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startServiceMetricsUpdater(ctx, svc)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When updating system metrics directly", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
