package model

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestValidationError(t *testing.T) {
	Convey("Given validation errors", t, func() {
		cv := ConstraintViolation("goles", "must not be negative, got %d", -1)
		tm := TypeMismatch("fecha", "expected a date")

		Convey("Then they render field, kind and message", func() {
			So(cv.Error(), ShouldEqual, "goles: constraint violation: must not be negative, got -1")
			So((&ValidationError{Kind: ErrTypeMismatch, Message: "x"}).Error(), ShouldEqual, "type mismatch: x")
		})

		Convey("Then they unwrap to their kind even when wrapped", func() {
			wrapped := fmt.Errorf("app.player: %w", cv)
			So(errors.Is(wrapped, ErrConstraintViolation), ShouldBeTrue)
			So(KindOf(wrapped), ShouldEqual, ErrConstraintViolation)
			So(KindLabel(tm), ShouldEqual, "type_mismatch")
			So(KindLabel(errors.New("boom")), ShouldEqual, "other")
			So(KindOf(nil), ShouldBeNil)
		})
	})
}
