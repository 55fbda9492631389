package filesystem

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
			So(IsMem(), ShouldBeFalse)
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
			So(IsMem(), ShouldBeTrue)
		})

		Convey("GacheFs writes through the active backend", func() {
			SetMemMapFs()
			var gfs GacheFs
			So(gfs.MkdirAll("/cache/dir", os.ModePerm), ShouldBeNil)

			f, err := gfs.OpenFile("/cache/dir/store.json", os.O_CREATE|os.O_RDWR, 0o644)
			So(err, ShouldBeNil)
			_, err = f.Write([]byte("{}"))
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)

			exists, err := API().Exists("/cache/dir/store.json")
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})
	})
}
