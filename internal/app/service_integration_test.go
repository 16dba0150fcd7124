package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/impact/internal/adapters/feed"
	"github.com/okian/impact/internal/adapters/repository"
	service "github.com/okian/impact/internal/app"
	"github.com/okian/impact/internal/domain/learner"
	"github.com/okian/impact/internal/domain/model"
	"github.com/okian/impact/internal/domain/perflog"
	. "github.com/smartystreets/goconvey/convey"
)

var passDay = time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC)

func clock() time.Time { return passDay }

func sessionBatch() []model.Observation {
	return []model.Observation{
		{Stock: "INFY", Headline: "Infosys bags order from European bank", Source: "Moneycontrol"},
		{Stock: "TCS", Headline: "TCS net profit rises 9%", Source: "Economic Times"},
		{Stock: "INFY", Headline: "Infosys bags order from European bank", Source: "Economic Times"},
		{Stock: "HDFCBANK", Headline: "HDFC Bank holds board meeting", Source: "NSE"},
	}
}

func resolvedProfit(n int, predicted, actual float64) []model.PerformanceRecord {
	out := make([]model.PerformanceRecord, n)
	for i := range out {
		out[i] = model.PerformanceRecord{
			Stock: "TCS", Category: "profit", Predicted: predicted, Actual: model.Float(actual), Date: "2025-05-20",
		}
	}
	return out
}

func TestServiceIntegration(t *testing.T) {
	ctx := context.Background()

	for _, workers := range []int{0, 2} {
		Convey("Given a started service with "+map[int]string{0: "inline scoring", 2: "two workers"}[workers], t, func() {
			dir := t.TempDir()
			svc := service.New(
				service.WithWorkerCount(workers),
				service.WithWeightsPath(filepath.Join(dir, "weights.json")),
				service.WithPerformanceLog(service.BackendCSV, filepath.Join(dir, "performance_log.csv")),
				service.WithLearnOnAnalyze(false),
				service.WithClock(clock),
			)
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("When a session batch is analyzed", func() {
				pass, err := svc.Analyze(ctx, sessionBatch())
				So(err, ShouldBeNil)

				Convey("Then duplicates are merged and results are ranked", func() {
					So(pass.ID, ShouldNotBeEmpty)
					So(pass.Results, ShouldHaveLength, 3)
					So(pass.Results[0].Stock, ShouldEqual, "INFY")
					So(pass.Results[0].Category, ShouldEqual, "contract")
					So(pass.Results[0].NormalizedScore, ShouldEqual, 10)
					So(pass.Results[0].Sources, ShouldHaveLength, 2)
				})

				Convey("And the leaderboard reflects the pass", func() {
					top, err := svc.TopN(ctx, 2)
					So(err, ShouldBeNil)
					So(top, ShouldHaveLength, 2)
					So(top[0].Rank, ShouldEqual, 1)
					So(top[0].Stock, ShouldEqual, "INFY")

					entry, err := svc.Rank(ctx, "hdfcbank")
					So(err, ShouldBeNil)
					So(entry.Category, ShouldEqual, "generic")

					_, err = svc.Rank(ctx, "WIPRO")
					So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				})

				Convey("And the pass can be fetched by id", func() {
					latest, err := svc.Pass(ctx, "")
					So(err, ShouldBeNil)
					So(latest.ID, ShouldEqual, pass.ID)

					byID, err := svc.Pass(ctx, pass.ID)
					So(err, ShouldBeNil)
					So(byID.Results, ShouldResemble, pass.Results)
				})

				Convey("And every result is recorded as a pending prediction", func() {
					recs, err := perflog.NewCSVLog(filepath.Join(dir, "performance_log.csv")).Records(ctx)
					So(err, ShouldBeNil)
					So(recs, ShouldHaveLength, 3)
					for _, r := range recs {
						So(r.Resolved(), ShouldBeFalse)
						So(r.Date, ShouldEqual, "2025-06-02")
					}
				})

				Convey("And resolving a prediction fills its actual outcome", func() {
					n, err := svc.Resolve(ctx, "tcs", "2025-06-02", 7.5)
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 1)

					again, err := svc.Resolve(ctx, "TCS", "2025-06-02", 8)
					So(err, ShouldBeNil)
					So(again, ShouldEqual, 0)
				})

				Convey("And learning is a no-op below the sample threshold", func() {
					out, err := svc.Learn(ctx)
					So(err, ShouldBeNil)
					So(out.Applied, ShouldBeFalse)
					So(out.Reason, ShouldEqual, learner.ReasonTooFewSamples)
					So(svc.Weights()["contract"], ShouldEqual, 8.5)
				})
			})
		})
	}
}

func TestServiceLearning(t *testing.T) {
	ctx := context.Background()

	Convey("Given a performance log with resolved profit predictions", t, func() {
		dir := t.TempDir()
		weightsPath := filepath.Join(dir, "weights.json")

		perf, err := perflog.OpenSQLite(filepath.Join(dir, "perf.db"))
		So(err, ShouldBeNil)
		So(perf.Append(ctx, resolvedProfit(2, 5, 6.2)...), ShouldBeNil)

		svc := service.New(
			service.WithWorkerCount(0),
			service.WithWeightsPath(weightsPath),
			service.WithPerformanceLogStore(perf),
			service.WithMinSamples(2),
			service.WithClock(clock),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a pass is analyzed with learning on analyze", func() {
			pass, err := svc.Analyze(ctx, []model.Observation{
				{Stock: "TCS", Headline: "TCS net profit rises 9%", Source: "Economic Times"},
			})
			So(err, ShouldBeNil)

			Convey("Then the pass already uses the learned weight", func() {
				So(pass.Results, ShouldHaveLength, 1)
				So(pass.Results[0].CategoryWeight, ShouldAlmostEqual, 7.7, 1e-9)
			})

			Convey("And the next pass does not learn from the same records again", func() {
				next, err := svc.Analyze(ctx, []model.Observation{
					{Stock: "TCS", Headline: "TCS net profit rises 9%", Source: "Economic Times"},
				})
				So(err, ShouldBeNil)
				So(next.Results[0].CategoryWeight, ShouldAlmostEqual, 7.7, 1e-9)
				So(svc.Weights()["profit"], ShouldAlmostEqual, 7.7, 1e-9)
			})

			Convey("And the learned weights are persisted", func() {
				_, statErr := os.Stat(weightsPath)
				So(statErr, ShouldBeNil)
			})

			Convey("And a restarted service loads them", func() {
				svc.Stop()
				again := service.New(service.WithWorkerCount(0), service.WithWeightsPath(weightsPath))
				So(again.Start(ctx), ShouldBeNil)
				defer again.Stop()
				So(again.Weights()["profit"], ShouldAlmostEqual, 7.7, 1e-9)
				So(again.Weights()["contract"], ShouldEqual, 8.5)
			})
		})

		Convey("When learning runs directly", func() {
			out, err := svc.Learn(ctx)

			Convey("Then the mean error moves the category weight", func() {
				So(err, ShouldBeNil)
				So(out.Applied, ShouldBeTrue)
				So(out.Deltas["profit"], ShouldAlmostEqual, 1.2, 1e-9)
				So(svc.Weights()["profit"], ShouldAlmostEqual, 7.7, 1e-9)
			})
		})
	})
}

const marketsRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Markets</title>
  <link>https://example.com</link>
  <description>market news</description>
  <item>
    <title>INFY bags order from European bank</title>
    <link>https://example.com/infy</link>
  </item>
  <item>
    <title>Monsoon arrives early</title>
  </item>
</channel>
</rss>`

func TestServiceCollect(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service polling one healthy and one broken feed", t, func() {
		healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(marketsRSS))
		}))
		defer healthy.Close()
		broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer broken.Close()

		svc := service.New(
			service.WithWorkerCount(1),
			service.WithFeeds([]feed.Feed{{Name: "Markets", URL: healthy.URL}, {Name: "Broken", URL: broken.URL}}),
			service.WithTickers([]string{"INFY", "TCS"}),
			service.WithFeedLimits(6000, 5*time.Second),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When collecting", func() {
			pass, feedErrs, err := svc.Collect(ctx)

			Convey("Then headlines of the healthy feed are scored", func() {
				So(err, ShouldBeNil)
				So(pass.Results, ShouldHaveLength, 1)
				So(pass.Results[0].Stock, ShouldEqual, "INFY")
				So(pass.Results[0].Sources, ShouldResemble, []string{"Markets"})
			})

			Convey("And the broken feed is reported", func() {
				So(feedErrs, ShouldHaveLength, 1)
				So(svc.GetStats()["feeds"], ShouldEqual, 2)
			})
		})
	})
}
