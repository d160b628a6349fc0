package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/fieldops/honorboard/internal/adapters/http/api"
	app "github.com/fieldops/honorboard/internal/app"
	"github.com/fieldops/honorboard/internal/config"
	"github.com/fieldops/honorboard/pkg/logger"
	"github.com/fieldops/honorboard/pkg/metrics"
)

func init() {
	_ = logger.InitWithWriter(io.Discard)
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("HONORBOARD_ADDR", ":8080")
			_ = os.Setenv("HONORBOARD_PERSIST_WORKERS", "4")
			defer func() {
				_ = os.Unsetenv("HONORBOARD_ADDR")
				_ = os.Unsetenv("HONORBOARD_PERSIST_WORKERS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PersistWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithCountWeights(2, 5, 4),
					app.WithImprovementThreshold(3),
					app.WithPersistWorkers(2),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc)
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
		convey.Convey("When testing the service metrics updater", func() {
			svc := app.New()
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then it should stop when the context is done", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})

			convey.Convey("And a single update should not panic", func() {
				convey.So(func() {
					updateServiceMetrics(context.Background(), svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When testing full application setup", func() {
			_ = os.Setenv("HONORBOARD_ADDR", ":8080")
			defer func() { _ = os.Unsetenv("HONORBOARD_ADDR") }()

			convey.Convey("Then all components should work together", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				cfg, err := config.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)

				svc := app.New(
					app.WithCountWeights(cfg.VisitPoints, cfg.ViolationPoints, cfg.WarningPoints),
					app.WithImprovementThreshold(cfg.ImprovementThreshold),
				)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)

				server := api.NewServer(svc)
				convey.So(server, convey.ShouldNotBeNil)

				mux := http.NewServeMux()
				server.Register(ctx, mux)

				svc.Stop()
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("HONORBOARD_ADDR", "")
			defer func() { _ = os.Unsetenv("HONORBOARD_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing service creation with out-of-range options", func() {
			convey.Convey("Then the defaults should be kept", func() {
				svc := app.New(
					app.WithImprovementThreshold(-1),
					app.WithPersistQueueSize(0),
					app.WithPersistWorkers(0),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})
	})
}
