package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/clipshuffle/clipshuffle/constant"
	"github.com/clipshuffle/clipshuffle/duration"
	"github.com/clipshuffle/clipshuffle/filesystem"
	"github.com/clipshuffle/clipshuffle/library"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

type mapProber map[string]float64

func (m mapProber) Discover(_ context.Context, path string) (float64, error) {
	if d, ok := m[filepath.Base(path)]; ok {
		return d, nil
	}
	return 0, errors.New("unreadable")
}

func TestScanReport(t *testing.T) {
	filesystem.SetMemMapFs()

	Convey("Given a library with three clips", t, func() {
		for _, name := range []string{"beach.mp4", "beacon.mkv", "forest.webm"} {
			lo.Must0(filesystem.API().WriteFile(filepath.Join("/scan", name), nil, 0o644))
		}
		Reset(func() { _ = filesystem.API().RemoveAll("/scan") })

		lib, err := library.Scan("/scan", constant.VideoExtensions)
		So(err, ShouldBeNil)

		Convey("Every clip is listed without durations by default", func() {
			report := buildScanReport(context.Background(), lib, "", nil)
			So(report.Count, ShouldEqual, 3)
			So(report.Root, ShouldEqual, "/scan")
			So(report.Clips[0].Name, ShouldEqual, "beach")
			So(report.Clips[0].Duration, ShouldBeNil)
		})

		Convey("Match filters clip names fuzzily", func() {
			report := buildScanReport(context.Background(), lib, "bea", nil)
			So(report.Count, ShouldEqual, 2)
			So(lo.Map(report.Clips, func(e scanEntry, _ int) string { return e.Name }), ShouldResemble, []string{"beach", "beacon"})
		})

		Convey("Durations are probed when a cache is given", func() {
			cache := duration.New(mapProber{"beach.mp4": 42.5}, 0)
			report := buildScanReport(context.Background(), lib, "", cache)

			So(*report.Clips[0].Duration, ShouldEqual, 42.5)
			So(report.Clips[1].Duration, ShouldBeNil)
			So(report.Clips[1].Error, ShouldNotBeEmpty)

			var out bytes.Buffer
			printScanReport(&out, report)
			So(out.String(), ShouldContainSubstring, "0:42")
			So(out.String(), ShouldContainSubstring, "3 clips")
		})
	})
}
