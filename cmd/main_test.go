package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/impact/internal/adapters/http/api"
	app "github.com/okian/impact/internal/app"
	"github.com/okian/impact/internal/config"
	"github.com/okian/impact/pkg/logger"
	"github.com/okian/impact/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("IMPACT_ADDR", ":8080")
			_ = os.Setenv("IMPACT_QUEUE_SIZE", "1000")
			_ = os.Setenv("IMPACT_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("IMPACT_ADDR")
				_ = os.Unsetenv("IMPACT_QUEUE_SIZE")
				_ = os.Unsetenv("IMPACT_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				convey.So(app.New(), convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithHistorySize(10),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()

			convey.Convey("Then HTTP server should be creatable", func() {
				convey.So(api.NewServer(svc, svc, 100), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestServiceOptions(t *testing.T) {
	convey.Convey("Given a loaded configuration", t, func() {
		dir := t.TempDir()
		_ = os.Setenv("IMPACT_WORKER_COUNT", "0")
		_ = os.Setenv("IMPACT_WEIGHTS_PATH", filepath.Join(dir, "weights.json"))
		_ = os.Setenv("IMPACT_PERFORMANCE_LOG_PATH", filepath.Join(dir, "performance_log.csv"))
		defer func() {
			_ = os.Unsetenv("IMPACT_WORKER_COUNT")
			_ = os.Unsetenv("IMPACT_WEIGHTS_PATH")
			_ = os.Unsetenv("IMPACT_PERFORMANCE_LOG_PATH")
		}()

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the service is built from it", func() {
			svc := app.New(serviceOptions(cfg, logger.Get())...)
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then the stats reflect the configuration", func() {
				stats := svc.GetStats()
				convey.So(stats["started"], convey.ShouldEqual, true)
				convey.So(stats["workerCount"], convey.ShouldEqual, 0)
				convey.So(stats["performanceLog"], convey.ShouldEqual, cfg.PerformanceLogBackend)
				convey.So(stats["weightFloor"], convey.ShouldEqual, cfg.WeightFloor)
				convey.So(stats["weightCeiling"], convey.ShouldEqual, cfg.WeightCeiling)
			})

			convey.Convey("Then the mux serves the API and its documentation", func() {
				mux := newMux(context.Background(), svc, cfg.MaxLeaderboardLimit)

				for _, path := range []string{"/weights", "/stats", "/openapi.yaml", "/api-docs"} {
					rec := httptest.NewRecorder()
					mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
					convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New()

			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update on an idle service", func() {
			svc := app.New()

			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateServiceMetrics(svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update on a started service", func() {
			svc := app.New(app.WithWorkerCount(1))
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateServiceMetrics(svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("IMPACT_ADDR", "")
			defer func() { _ = os.Unsetenv("IMPACT_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing service creation with extreme options", func() {
			convey.Convey("Then service should ignore them", func() {
				svc := app.New(
					app.WithWorkerCount(-1),
					app.WithQueueSize(0),
					app.WithHistorySize(0),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationConcurrency(t *testing.T) {
	convey.Convey("Given main application concurrency", t, func() {
		convey.Convey("When testing concurrent component creation", func() {
			numGoroutines := 10
			done := make(chan bool, numGoroutines)

			for i := 0; i < numGoroutines; i++ {
				go func(id int) {
					defer func() {
						if r := recover(); r != nil {
							t.Logf("Goroutine %d panicked: %v", id, r)
						}
						done <- true
					}()

					svc := app.New()
					if svc == nil {
						t.Errorf("Goroutine %d: service creation failed", id)
						return
					}

					if api.NewServer(svc, svc, 100) == nil {
						t.Errorf("Goroutine %d: HTTP server creation failed", id)
						return
					}

					registry := prometheus.NewRegistry()
					if metrics.NewManager(metrics.WithPrometheusRegistry(registry)) == nil {
						t.Errorf("Goroutine %d: metrics manager creation failed", id)
						return
					}
				}(i)
			}

			for i := 0; i < numGoroutines; i++ {
				<-done
			}

			convey.Convey("Then all components should be created successfully", func() {
				convey.So(true, convey.ShouldBeTrue)
			})
		})
	})
}
