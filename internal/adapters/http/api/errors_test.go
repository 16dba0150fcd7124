package api

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOpErrors(t *testing.T) {
	Convey("Given an upstream error", t, func() {
		cause := errors.New("boom")

		Convey("When wrapped with a kind", func() {
			err := WrapKind("api.analyze", ErrInternal, cause)

			Convey("Then both the kind and the cause match", func() {
				So(errors.Is(err, ErrInternal), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "api.analyze: internal error: boom")
			})
		})

		Convey("When wrapped without a kind", func() {
			err := Wrap("api.learn", cause)

			Convey("Then the op prefixes the cause", func() {
				So(errors.Is(err, cause), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "api.learn: boom")
			})
		})

		Convey("When wrapping nil", func() {
			Convey("Then Wrap returns nil and WrapKind falls back to the kind", func() {
				So(Wrap("op", nil), ShouldBeNil)
				err := WrapKind("op", ErrBadRequest, nil)
				So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "op: bad request")
			})
		})
	})
}

func TestResolveRequest_Validate(t *testing.T) {
	Convey("Given a resolve request", t, func() {
		actual := 6.4

		Convey("When every field is valid", func() {
			req := resolveRequest{Stock: "INFY", Date: "2025-06-02", Actual: &actual}

			Convey("Then validation passes", func() {
				So(req.validate(), ShouldBeNil)
			})
		})

		Convey("When the stock is blank", func() {
			req := resolveRequest{Stock: "  ", Date: "2025-06-02", Actual: &actual}

			Convey("Then validation fails", func() {
				So(req.validate().Error(), ShouldContainSubstring, "missing stock")
			})
		})

		Convey("When the date is not a calendar date", func() {
			req := resolveRequest{Stock: "INFY", Date: "2025-13-40", Actual: &actual}

			Convey("Then validation fails", func() {
				So(req.validate().Error(), ShouldContainSubstring, "invalid date")
			})
		})
	})
}
