package stage_test

import (
	"testing"
	"time"

	"github.com/stadio-ml/stadio/internal/domain/stage"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseClock(t *testing.T) {
	Convey("Given textual competition instants", t, func() {
		Convey("When they are well-formed and ordered", func() {
			c, err := stage.ParseClock(
				"2026/01/01 00:00:00",
				"2026/02/01 00:00:00",
				"2026/03/01 00:00:00",
			)

			Convey("Then the clock parses in UTC", func() {
				So(err, ShouldBeNil)
				So(c.OpenTime(), ShouldEqual, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
				So(c.CloseTime(), ShouldEqual, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
				So(c.TerminateTime(), ShouldEqual, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
			})
		})

		Convey("When the order is wrong", func() {
			_, err := stage.ParseClock(
				"2026/02/01 00:00:00",
				"2026/01/01 00:00:00",
				"2026/03/01 00:00:00",
			)
			So(err, ShouldWrap, stage.ErrClockOrder)
		})

		Convey("When close is after terminate", func() {
			_, err := stage.ParseClock(
				"2026/01/01 00:00:00",
				"2026/04/01 00:00:00",
				"2026/03/01 00:00:00",
			)
			So(err, ShouldWrap, stage.ErrClockOrder)
		})

		Convey("When a timestamp is malformed", func() {
			_, err := stage.ParseClock("2026-01-01", "2026/02/01 00:00:00", "2026/03/01 00:00:00")
			So(err, ShouldWrap, stage.ErrClockParse)
		})
	})
}

func TestClock_StageAt(t *testing.T) {
	open := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	closeT := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	terminate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given a valid clock", t, func() {
		c, err := stage.NewClock(open, closeT, terminate)
		So(err, ShouldBeNil)

		Convey("Then each interval maps to exactly one stage", func() {
			So(c.StageAt(open.Add(-time.Second)), ShouldEqual, stage.Ready)
			So(c.StageAt(open), ShouldEqual, stage.Open)
			So(c.StageAt(closeT.Add(-time.Second)), ShouldEqual, stage.Open)
			So(c.StageAt(closeT), ShouldEqual, stage.Closed)
			So(c.StageAt(terminate.Add(-time.Second)), ShouldEqual, stage.Closed)
			So(c.StageAt(terminate), ShouldEqual, stage.Terminated)
			So(c.StageAt(terminate.Add(24*time.Hour)), ShouldEqual, stage.Terminated)
		})

		Convey("Then the four intervals are contiguous and non-overlapping", func() {
			// Walk a dense sample of instants; every one maps to exactly one
			// stage and stages never regress as time advances.
			prev := stage.Ready
			for ts := open.Add(-time.Hour); ts.Before(terminate.Add(time.Hour)); ts = ts.Add(13 * time.Minute) {
				s := c.StageAt(ts)
				So(s, ShouldBeGreaterThanOrEqualTo, prev)
				So(s, ShouldBeLessThanOrEqualTo, stage.Terminated)
				prev = s
			}
		})

		Convey("Then submissions are accepted in OPEN and CLOSED only", func() {
			So(c.CanSubmitAt(open.Add(-time.Second)), ShouldBeFalse)
			So(c.CanSubmitAt(open), ShouldBeTrue)
			So(c.CanSubmitAt(closeT), ShouldBeTrue)
			So(c.CanSubmitAt(terminate), ShouldBeFalse)
		})
	})

	Convey("Given a degenerate clock with equal instants", t, func() {
		c, err := stage.NewClock(open, open, open)
		So(err, ShouldBeNil)

		Convey("Then the competition is terminated from the boundary on", func() {
			So(c.StageAt(open.Add(-time.Second)), ShouldEqual, stage.Ready)
			So(c.StageAt(open), ShouldEqual, stage.Terminated)
		})
	})
}

func TestStage_String(t *testing.T) {
	Convey("Given the four stages", t, func() {
		Convey("Then each has a stable tag", func() {
			So(stage.Ready.String(), ShouldEqual, "ready")
			So(stage.Open.String(), ShouldEqual, "open")
			So(stage.Closed.String(), ShouldEqual, "closed")
			So(stage.Terminated.String(), ShouldEqual, "terminated")
		})
	})
}
