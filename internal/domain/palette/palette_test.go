package palette_test

import (
	"testing"

	"github.com/okian/urchin/internal/domain/palette"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMapLabelToColor(t *testing.T) {
	Convey("Given activity labels", t, func() {
		Convey("When mapping the same label twice", func() {
			Convey("Then the color should be stable", func() {
				So(palette.MapLabelToColor("Deep Work", false), ShouldEqual, palette.MapLabelToColor("Deep Work", false))
				So(palette.MapLabelToColor("Deep Work", true), ShouldEqual, palette.MapLabelToColor("Deep Work", true))
			})
		})

		Convey("When the label is empty", func() {
			Convey("Then it should map to the first palette slot", func() {
				first := palette.MapLabelToColor("", false)
				So(first, ShouldEqual, "#6750A4")
				So(palette.MapLabelToColor("", true), ShouldEqual, "#FFFFFF")
			})
		})

		Convey("When switching contrast modes", func() {
			Convey("Then colors should come from different palettes", func() {
				normal := palette.MapLabelToColor("Sleep", false)
				contrast := palette.MapLabelToColor("Sleep", true)
				So(normal, ShouldStartWith, "#")
				So(contrast, ShouldStartWith, "#")
			})
		})

		Convey("When mapping a set of labels", func() {
			seen := make(map[string]bool)
			for _, label := range []string{"Sleep", "Work", "Gym", "Lunch", "Reading"} {
				seen[palette.MapLabelToColor(label, false)] = true
			}

			Convey("Then at least some labels should get distinct colors", func() {
				So(len(seen), ShouldBeGreaterThan, 1)
			})
		})
	})
}

func TestSurfaces(t *testing.T) {
	Convey("Given theme selection", t, func() {
		Convey("When resolving surfaces", func() {
			So(palette.ResolveSurface(true), ShouldEqual, "#1C1B1F")
			So(palette.ResolveSurface(false), ShouldEqual, "#FDF8FD")
		})
	})
}

func TestResolveStateLayer(t *testing.T) {
	Convey("Given a stroke color", t, func() {
		Convey("When deriving translucent fills", func() {
			So(palette.ResolveStateLayer("#6750A4", 1), ShouldEqual, "#6750A4ff")
			So(palette.ResolveStateLayer("#6750A4", 0), ShouldEqual, "#6750A400")
			So(palette.ResolveStateLayer("#6750A4", 0.5), ShouldEqual, "#6750A480")
		})

		Convey("When opacity is out of range", func() {
			Convey("Then it should clamp", func() {
				So(palette.ResolveStateLayer("#386A20", 3), ShouldEqual, "#386A20ff")
				So(palette.ResolveStateLayer("#386A20", -1), ShouldEqual, "#386A2000")
			})
		})
	})
}

func TestSegmentTextColor(t *testing.T) {
	Convey("Given segment backgrounds", t, func() {
		Convey("When the background is light", func() {
			Convey("Then text should be dark", func() {
				So(palette.SegmentTextColor("#FFFFFF"), ShouldEqual, "#0f172a")
				So(palette.SegmentTextColor("#F4B400"), ShouldEqual, "#0f172a")
			})
		})

		Convey("When the background is dark", func() {
			Convey("Then text should be light", func() {
				So(palette.SegmentTextColor("#1C1B1F"), ShouldEqual, "#f8fafc")
				So(palette.SegmentTextColor("#6750A4"), ShouldEqual, "#f8fafc")
			})
		})

		Convey("When the background uses shorthand hex", func() {
			So(palette.SegmentTextColor("#fff"), ShouldEqual, "#0f172a")
			So(palette.SegmentTextColor("#000"), ShouldEqual, "#f8fafc")
		})

		Convey("When the background is unparseable", func() {
			Convey("Then the dark default should apply", func() {
				So(palette.SegmentTextColor("teal"), ShouldEqual, "#0f172a")
				So(palette.SegmentTextColor(""), ShouldEqual, "#0f172a")
			})
		})
	})
}
