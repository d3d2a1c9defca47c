package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/okian/urchin/internal/adapters/http/api"
	app "github.com/okian/urchin/internal/app"
	"github.com/okian/urchin/internal/config"
	"github.com/okian/urchin/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			// Test with environment variables
			_ = os.Setenv("URCHIN_ADDR", ":8080")
			_ = os.Setenv("URCHIN_QUEUE_SIZE", "1000")
			_ = os.Setenv("URCHIN_MODE", "agent-rings")
			defer func() {
				_ = os.Unsetenv("URCHIN_ADDR")
				_ = os.Unsetenv("URCHIN_QUEUE_SIZE")
				_ = os.Unsetenv("URCHIN_MODE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.Mode, convey.ShouldEqual, "agent-rings")
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithQueueSize(2000),
					app.WithHistoryCapacity(10),
					app.WithSurfaceSize(800, 800),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

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
			convey.Convey("Then it should be creatable", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When testing full application setup", func() {
			_ = os.Setenv("URCHIN_ADDR", ":8080")
			_ = os.Setenv("URCHIN_QUEUE_SIZE", "1000")
			defer func() {
				_ = os.Unsetenv("URCHIN_ADDR")
				_ = os.Unsetenv("URCHIN_QUEUE_SIZE")
			}()

			convey.Convey("Then all components should work together", func() {
				ctx := context.Background()

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)

				svc := app.New(
					app.WithQueueSize(cfg.QueueSize),
					app.WithHistoryCapacity(cfg.HistoryCapacity),
				)
				convey.So(svc, convey.ShouldNotBeNil)

				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})
	})
}
