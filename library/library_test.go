package library

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/clipshuffle/clipshuffle/constant"
	"github.com/clipshuffle/clipshuffle/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func touch(path string) {
	lo.Must0(filesystem.API().MkdirAll(filepath.Dir(path), 0o755))
	lo.Must0(filesystem.API().WriteFile(path, []byte("x"), 0o644))
}

func TestScan(t *testing.T) {
	Convey("Given a directory tree with mixed files", t, func() {
		filesystem.SetMemMapFs()
		touch("/videos/a.mp4")
		touch("/videos/B.MKV")
		touch("/videos/nested/deeper/c.webm")
		touch("/videos/nested/d.Mov")
		touch("/videos/e.avi")
		touch("/videos/notes.txt")
		touch("/videos/cover.jpg")
		touch("/videos/mp4")

		Convey("When scanning with the default extensions", func() {
			lib, err := Scan("/videos", constant.VideoExtensions)

			Convey("Then only video files are collected, recursively and case-insensitively", func() {
				So(err, ShouldBeNil)
				So(lib.Len(), ShouldEqual, 5)
				So(lib.Root(), ShouldEqual, "/videos")

				names := lo.Map(lib.Clips(), func(c Clip, _ int) string { return c.String() })
				So(names, ShouldContain, "B.MKV")
				So(names, ShouldContain, "c.webm")
				So(names, ShouldContain, "d.Mov")
				So(names, ShouldNotContain, "notes.txt")
				So(names, ShouldNotContain, "mp4")
			})

			Convey("Then clips are ordered by path", func() {
				clips := lib.Clips()
				for i := 1; i < len(clips); i++ {
					So(clips[i-1].Path < clips[i].Path, ShouldBeTrue)
				}
			})
		})

		Convey("When scanning with a narrowed extension list", func() {
			lib, err := Scan("/videos", []string{".avi"})
			So(err, ShouldBeNil)
			So(lib.Len(), ShouldEqual, 1)
			So(lib.At(0).Path, ShouldEqual, "/videos/e.avi")
		})
	})

	Convey("Given a directory without videos", t, func() {
		filesystem.SetMemMapFs()
		touch("/empty/readme.md")

		_, err := Scan("/empty", constant.VideoExtensions)
		So(errors.Is(err, ErrNoVideosFound), ShouldBeTrue)
	})

	Convey("Given a missing directory", t, func() {
		filesystem.SetMemMapFs()

		_, err := Scan("/nowhere", constant.VideoExtensions)
		So(err, ShouldNotBeNil)
		So(errors.Is(err, ErrNoVideosFound), ShouldBeFalse)
	})
}

func TestNew(t *testing.T) {
	Convey("New", t, func() {
		Convey("Rejects an empty clip set", func() {
			_, err := New("/x", nil)
			So(errors.Is(err, ErrNoVideosFound), ShouldBeTrue)
		})

		Convey("Drops duplicate clips", func() {
			lib, err := New("/x", []Clip{{Path: "/x/b.mp4"}, {Path: "/x/a.mp4"}, {Path: "/x/b.mp4"}})
			So(err, ShouldBeNil)
			So(lib.Len(), ShouldEqual, 2)
			So(lib.At(0).Path, ShouldEqual, "/x/a.mp4")
			So(lib.IndexOf(Clip{Path: "/x/b.mp4"}), ShouldEqual, 1)
			So(lib.IndexOf(Clip{Path: "/x/zzz.mp4"}), ShouldEqual, -1)
		})

		Convey("Clips returns a copy", func() {
			lib, _ := New("/x", []Clip{{Path: "/x/a.mp4"}})
			clips := lib.Clips()
			clips[0] = Clip{Path: "/elsewhere.mp4"}
			So(lib.At(0).Path, ShouldEqual, "/x/a.mp4")
		})
	})
}

func TestClip(t *testing.T) {
	Convey("Clip", t, func() {
		c := Clip{Path: "/media/my clips/intro #1.mp4"}

		Convey("URI escapes the path", func() {
			So(c.URI(), ShouldEqual, "file:///media/my%20clips/intro%20%231.mp4")
		})

		Convey("Name strips directories and extension", func() {
			So(c.Name(), ShouldEqual, "intro #1")
		})

		Convey("NewClip resolves relative paths", func() {
			So(filepath.IsAbs(NewClip("rel/a.mp4").Path), ShouldBeTrue)
		})
	})
}
