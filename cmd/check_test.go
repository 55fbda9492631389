package cmd

import (
	"testing"

	"github.com/clipshuffle/clipshuffle/key"
	"github.com/clipshuffle/clipshuffle/probe"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestDependencies(t *testing.T) {
	Convey("Given the default player and probe", t, func() {
		viper.Set(key.PlayerBinary, "mpv")
		viper.Set(key.ProbeBackend, probe.BackendFFProbe)
		Reset(func() { viper.Set(key.ProbeBackend, probe.BackendFFProbe) })

		Convey("Only the player is required", func() {
			required := lo.FilterMap(dependencies(), func(d dependency, _ int) (string, bool) {
				return d.name, d.required
			})
			So(required, ShouldResemble, []string{"player"})
		})

		Convey("A missing probe explains the fallback", func() {
			dep, ok := lo.Find(dependencies(), func(d dependency) bool { return d.name == "probe" })
			So(ok, ShouldBeTrue)
			So(dep.binary, ShouldEqual, "ffprobe")
			So(dep.fallback, ShouldContainSubstring, "starts from the beginning")
			So(dep.install["linux"], ShouldContainSubstring, "ffmpeg")
		})

		Convey("The discoverer backend points at gstreamer", func() {
			viper.Set(key.ProbeBackend, probe.BackendDiscoverer)
			dep, _ := lo.Find(dependencies(), func(d dependency) bool { return d.name == "probe" })
			So(dep.binary, ShouldEqual, "gst-discoverer-1.0")
			So(dep.install["linux"], ShouldContainSubstring, "gstreamer")
			So(dep.install["linux"], ShouldNotContainSubstring, "ffmpeg")
		})
	})
}
