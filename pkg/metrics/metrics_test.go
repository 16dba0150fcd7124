package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors are registered on that registry", func() {
				So(manager, ShouldNotBeNil)
				manager.scoringPasses.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metric names carry the namespace and subsystem", func() {
				manager.scoringPasses.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, mf := range families {
					if mf.GetName() == "test_unit_scoring_passes_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestPipelineMetrics(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When a pass merges duplicate observations", func() {
			before := testutil.ToFloat64(globalManager.duplicatesMerged)
			passesBefore := testutil.ToFloat64(globalManager.scoringPasses)
			RecordPass(5, 3, 3, 1.5)

			Convey("Then merged duplicates and passes are counted", func() {
				So(testutil.ToFloat64(globalManager.duplicatesMerged)-before, ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.scoringPasses)-passesBefore, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.lastPassResults), ShouldEqual, 3)
			})
		})

		Convey("When a fallback classification is recorded", func() {
			before := testutil.ToFloat64(globalManager.classificationMisses)
			RecordCategory("generic", true)
			RecordCategory("merger", false)

			Convey("Then only the fallback increments the miss counter", func() {
				So(testutil.ToFloat64(globalManager.classificationMisses)-before, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.itemsByCategory.WithLabelValues("merger")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When the weight table is published", func() {
			UpdateCategoryWeights(map[string]float64{"contract": 8.5, "generic": 4})

			Convey("Then each category has a gauge", func() {
				So(testutil.ToFloat64(globalManager.categoryWeight.WithLabelValues("contract")), ShouldEqual, 8.5)
				So(testutil.ToFloat64(globalManager.categoryWeight.WithLabelValues("generic")), ShouldEqual, 4)
			})
		})

		Convey("When learner runs are recorded", func() {
			before := testutil.ToFloat64(globalManager.learnerRuns.WithLabelValues("skipped"))
			RecordLearnerRun("skipped", 7)

			Convey("Then the run and resolved count are visible", func() {
				So(testutil.ToFloat64(globalManager.learnerRuns.WithLabelValues("skipped"))-before, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.learnerResolved), ShouldEqual, 7)
			})
		})

		Convey("When the remaining helpers are called", func() {
			So(func() {
				RecordDegenerateNormalization()
				RecordItemScoringLatency(0.2)
				RecordInlineScoringFallback()
				UpdateHistoryPasses(3)
				RecordWeightPersistError()
				RecordWeightLoadFallback()
				RecordPerformanceAppended(4)
				RecordPerformanceResolved(2)
				RecordPerformanceError("append")
				RecordCollectorItems("wire", 3)
				RecordCollectorError("wire")
				UpdateQueueSize(10)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				RecordWorkerProcessingLatency(1)
				RecordWorkerError()
				RecordHTTPRequest("analyze", "POST", "200")
				RecordHTTPRequestDuration("analyze", "POST", "200", 3)
				RecordErrorByComponent("weights", "persist")
				RecordErrorByType("persist", "high")
				RecordErrorByEndpoint("analyze", "POST", "client_error")
				RecordErrorLatency("http", "client_error", 2)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})
	})
}

func TestRegistryExposition(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordPass(1, 1, 1, 0.1)
		req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
		w := httptest.NewRecorder()
		promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, req)

		Convey("Then it exposes service metrics without Go runtime collectors", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			body := w.Body.String()
			So(body, ShouldContainSubstring, "impact_engine_scoring_passes_total")
			So(strings.Contains(body, "go_goroutines"), ShouldBeFalse)
		})
	})
}
