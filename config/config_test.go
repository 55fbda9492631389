package config

import (
	"testing"
	"time"

	"github.com/clipshuffle/clipshuffle/constant"
	"github.com/clipshuffle/clipshuffle/filesystem"
	"github.com/clipshuffle/clipshuffle/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetInt(key.RotationIntervalMs), ShouldEqual, 7000)
			So(viper.GetInt(key.RotationSafetyMargin), ShouldEqual, 15)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("rotation.interval_ms"), ShouldEqual, "rotation_interval_ms")
		})

		Convey("Env names carry the application prefix", func() {
			f := Default[key.ProbeBackend]
			So(f.Env(), ShouldEqual, "CLIPSHUFFLE_PROBE_BACKEND")
		})
	})
}

func TestDerivedValues(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		_ = Setup()
		Reset(func() {
			for name, field := range Default {
				viper.Set(name, field.Value)
			}
		})

		Convey("RotationInterval uses the fixed seven seconds", func() {
			So(RotationInterval(), ShouldEqual, constant.RotationInterval)
		})

		Convey("RotationInterval ignores non-positive overrides", func() {
			viper.Set(key.RotationIntervalMs, 0)
			So(RotationInterval(), ShouldEqual, 7*time.Second)
		})

		Convey("SafetyMargin falls back when negative", func() {
			viper.Set(key.RotationSafetyMargin, -3)
			So(SafetyMargin(), ShouldEqual, constant.SafetyMargin)
		})

		Convey("Extensions are normalized", func() {
			viper.Set(key.LibraryExtensions, []string{"MP4", " .mkv", ""})
			So(Extensions(), ShouldResemble, []string{".mp4", ".mkv"})
		})

		Convey("ProbeTimeout defaults to ten seconds", func() {
			viper.Set(key.ProbeTimeout, -1)
			So(ProbeTimeout(), ShouldEqual, 10*time.Second)
		})
	})
}
