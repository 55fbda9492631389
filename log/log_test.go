package log

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/clipshuffle/clipshuffle/constant"
	"github.com/clipshuffle/clipshuffle/filesystem"
	"github.com/clipshuffle/clipshuffle/key"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "debug")
		Reset(func() {
			_ = Close()
			logrus.SetOutput(io.Discard)
		})

		Convey("Setup creates the log file in the library root", func() {
			So(Setup("/library"), ShouldBeNil)
			Infof("playing %s", "a.mp4")

			path := filepath.Join("/library", constant.LogFile)
			So(lo.Must(filesystem.API().Exists(path)), ShouldBeTrue)

			data := lo.Must(filesystem.API().ReadFile(path))
			So(string(data), ShouldContainSubstring, "playing a.mp4")
			So(logrus.GetLevel(), ShouldEqual, logrus.DebugLevel)
		})

		Convey("An empty directory is rejected", func() {
			So(Setup(""), ShouldNotBeNil)
		})
	})

	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		hook := test.NewGlobal()
		Reset(func() {
			viper.Set(key.LogsWrite, true)
			hook.Reset()
		})

		So(Setup("/library"), ShouldBeNil)
		Errorf("dropped")
		So(hook.AllEntries(), ShouldBeEmpty)
	})
}

func TestSetOutput(t *testing.T) {
	Convey("SetOutput enables logging", t, func() {
		hook := test.NewGlobal()
		SetOutput(io.Discard)
		Warnf("probe failed for %s", "b.mkv")

		So(hook.LastEntry(), ShouldNotBeNil)
		So(hook.LastEntry().Level, ShouldEqual, logrus.WarnLevel)
		So(hook.LastEntry().Message, ShouldEqual, "probe failed for b.mkv")
	})
}
