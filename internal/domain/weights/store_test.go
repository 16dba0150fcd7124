package weights_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/okian/impact/internal/domain/model"
	"github.com/okian/impact/internal/domain/weights"
	"github.com/okian/impact/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func defaults() map[string]float64 {
	return map[string]float64{"government": 9, "contract": 8.5, "generic": 4}
}

func TestRange(t *testing.T) {
	Convey("Given the default range", t, func() {
		r := weights.DefaultRange()

		Convey("Then it is valid and clamps into [4, 10]", func() {
			So(r.Validate(), ShouldBeNil)
			So(r.Clamp(2), ShouldEqual, 4)
			So(r.Clamp(11), ShouldEqual, 10)
			So(r.Clamp(7.5), ShouldEqual, 7.5)
		})
	})

	Convey("Given inverted or negative ranges", t, func() {
		Convey("Then validation fails", func() {
			So(errors.Is(weights.Range{Floor: 5, Ceiling: 5}.Validate(), weights.ErrInvalidRange), ShouldBeTrue)
			So(errors.Is(weights.Range{Floor: -1, Ceiling: 5}.Validate(), weights.ErrInvalidRange), ShouldBeTrue)
		})
	})
}

func TestNewStore(t *testing.T) {
	Convey("Given an invalid range", t, func() {
		_, err := weights.NewStore(defaults(), weights.WithRange(weights.Range{Floor: 10, Ceiling: 4}))

		Convey("Then construction fails", func() {
			So(errors.Is(err, weights.ErrInvalidRange), ShouldBeTrue)
		})
	})

	Convey("Given no default categories", t, func() {
		_, err := weights.NewStore(nil)

		Convey("Then construction fails", func() {
			So(errors.Is(err, weights.ErrNoCategories), ShouldBeTrue)
		})
	})

	Convey("Given defaults outside the range", t, func() {
		s, err := weights.NewStore(map[string]float64{"a": 0.9, "b": 12})
		So(err, ShouldBeNil)

		Convey("Then they are clamped", func() {
			a, _ := s.Get("a")
			b, _ := s.Get("b")
			So(a, ShouldEqual, 4)
			So(b, ShouldEqual, 10)
		})
	})
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with a memory persister", t, func() {
		p := weights.NewMemoryPersister()
		s, err := weights.NewStore(defaults(), weights.WithPersister(p))
		So(err, ShouldBeNil)

		Convey("When updating with out-of-range and unknown values", func() {
			err := s.Update(ctx, func(current model.WeightTable) map[string]float64 {
				return map[string]float64{"government": current["government"] + 5, "contract": 1, "unknown": 7}
			})

			Convey("Then values are clamped, unknown ignored and persisted once", func() {
				So(err, ShouldBeNil)
				So(s.Snapshot(), ShouldResemble, model.WeightTable{"government": 10, "contract": 4, "generic": 4})
				So(p.Saves(), ShouldEqual, 1)
			})
		})

		Convey("When the persister fails", func() {
			before := s.Snapshot()
			p.FailWith(errors.New("disk full"))
			err := s.SetAll(ctx, map[string]float64{"contract": 6})

			Convey("Then the previous weights stay in effect", func() {
				So(err, ShouldNotBeNil)
				So(s.Snapshot(), ShouldResemble, before)
			})
		})

		Convey("When a reader holds a snapshot across an update", func() {
			snap := s.Snapshot()
			So(s.SetAll(ctx, map[string]float64{"contract": 6}), ShouldBeNil)

			Convey("Then the old snapshot is unchanged", func() {
				So(snap["contract"], ShouldEqual, 8.5)
				w, _ := s.Get("contract")
				So(w, ShouldEqual, 6)
			})
		})

		Convey("When readers and writers run concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(2)
				go func(i int) {
					defer wg.Done()
					_ = s.SetAll(ctx, map[string]float64{"contract": 4 + float64(i)/2})
				}(i)
				go func() {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						snap := s.Snapshot()
						if len(snap) != 3 {
							panic("torn snapshot")
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then every write was persisted", func() {
				So(p.Saves(), ShouldEqual, 8)
				w, _ := s.Get("contract")
				So(w, ShouldBeBetweenOrEqual, 4, 10)
			})
		})
	})
}

func TestStoreLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given a weights file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "weights.json")
		p := weights.NewFilePersister(path)

		Convey("When the file does not exist", func() {
			s, _ := weights.NewStore(defaults(), weights.WithPersister(p))
			loaded := s.Load(ctx)

			Convey("Then defaults are used", func() {
				So(loaded, ShouldBeFalse)
				So(s.Snapshot(), ShouldResemble, model.WeightTable(defaults()))
			})
		})

		Convey("When the file is corrupt", func() {
			So(os.WriteFile(path, []byte("{not json"), 0o600), ShouldBeNil)
			s, _ := weights.NewStore(defaults(), weights.WithPersister(p))
			loaded := s.Load(ctx)

			Convey("Then defaults are used", func() {
				So(loaded, ShouldBeFalse)
				So(s.Snapshot(), ShouldResemble, model.WeightTable(defaults()))
			})
		})

		Convey("When the file has unknown, missing and out-of-range values", func() {
			So(os.WriteFile(path, []byte(`{"government": 42, "crypto": 7}`), 0o600), ShouldBeNil)
			s, _ := weights.NewStore(defaults(), weights.WithPersister(p))
			loaded := s.Load(ctx)

			Convey("Then the table is repaired", func() {
				So(loaded, ShouldBeTrue)
				So(s.Snapshot(), ShouldResemble, model.WeightTable{"government": 10, "contract": 8.5, "generic": 4})
			})
		})

		Convey("When weights are persisted and reloaded", func() {
			s, _ := weights.NewStore(defaults(), weights.WithPersister(p))
			So(s.SetAll(ctx, map[string]float64{"contract": 7.25, "government": 9.1}), ShouldBeNil)

			fresh, _ := weights.NewStore(defaults(), weights.WithPersister(weights.NewFilePersister(path)))
			So(fresh.Load(ctx), ShouldBeTrue)

			Convey("Then the mapping round-trips", func() {
				So(fresh.Snapshot(), ShouldResemble, s.Snapshot())
			})

			Convey("And no temporary files are left behind", func() {
				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
			})
		})

		Convey("When persisting into a missing directory", func() {
			nested := weights.NewFilePersister(filepath.Join(dir, "state", "weights.json"))
			s, _ := weights.NewStore(defaults(), weights.WithPersister(nested))

			Convey("Then the directory is created", func() {
				So(s.Persist(ctx), ShouldBeNil)
				_, err := os.Stat(nested.Path())
				So(err, ShouldBeNil)
			})
		})
	})
}
