package model_test

import (
	"testing"

	model "github.com/okian/impact/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConsolidatedItem(t *testing.T) {
	convey.Convey("Given a consolidated item", t, func() {
		convey.Convey("When it has two sources", func() {
			item := model.ConsolidatedItem{Stock: "TCS", Headline: "h", Sources: []string{"a", "b"}}

			convey.Convey("Then the source count is two", func() {
				convey.So(item.SourceCount(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When it has no sources", func() {
			item := model.ConsolidatedItem{Stock: "TCS", Headline: "h"}

			convey.Convey("Then the source count is still one", func() {
				convey.So(item.SourceCount(), convey.ShouldEqual, 1)
				convey.So(model.ScoredResult{}.SourceCount(), convey.ShouldEqual, 1)
			})
		})
	})
}

func TestPerformanceRecord(t *testing.T) {
	convey.Convey("Given a performance record", t, func() {
		rec := model.PerformanceRecord{Stock: "INFY", Category: "contract", Predicted: 7.2, Date: "2025-06-01"}

		convey.Convey("Then it is pending until actual is set", func() {
			convey.So(rec.Resolved(), convey.ShouldBeFalse)
			rec.Actual = model.Float(8.1)
			convey.So(rec.Resolved(), convey.ShouldBeTrue)
			convey.So(*rec.Actual, convey.ShouldEqual, 8.1)
		})
	})
}

func TestWeightTable(t *testing.T) {
	convey.Convey("Given a weight table", t, func() {
		table := model.WeightTable{"merger": 8, "generic": 4}

		convey.Convey("When looking up categories", func() {
			w, ok := table.Weight("merger")
			_, missing := table.Weight("unknown")

			convey.Convey("Then known categories are found", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(w, convey.ShouldEqual, 8)
				convey.So(missing, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When cloning", func() {
			clone := table.Clone()
			clone["merger"] = 9

			convey.Convey("Then the original is untouched", func() {
				convey.So(table["merger"], convey.ShouldEqual, 8)
				convey.So(clone["generic"], convey.ShouldEqual, 4)
			})
		})
	})
}
