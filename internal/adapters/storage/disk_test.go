package storage_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stadio-ml/stadio/internal/adapters/storage"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDiskStore(t *testing.T) {
	Convey("Given a disk store in a fresh directory", t, func() {
		store, err := storage.NewDiskStore(filepath.Join(t.TempDir(), "uploads"))
		So(err, ShouldBeNil)

		Convey("When a payload is saved", func() {
			payload := []byte("Id,Predicted\n1,5\n")
			ref, err := store.Save("s123456", payload)
			So(err, ShouldBeNil)

			Convey("Then the reference carries the uploader id", func() {
				So(ref, ShouldStartWith, "s123456_")
				So(ref, ShouldEndWith, ".csv")
				So(strings.ContainsRune(ref, filepath.Separator), ShouldBeFalse)
			})

			Convey("Then the payload reads back verbatim", func() {
				got, err := store.Open(ref)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, payload)
			})

			Convey("Then removing it makes the reference unreadable", func() {
				So(store.Remove(ref), ShouldBeNil)
				_, err := store.Open(ref)
				So(err, ShouldWrap, storage.ErrStorage)
			})

			Convey("Then repeated saves never collide", func() {
				other, err := store.Save("s123456", payload)
				So(err, ShouldBeNil)
				So(other, ShouldNotEqual, ref)
			})
		})

		Convey("When opening an unknown reference", func() {
			_, err := store.Open("nope.csv")
			So(err, ShouldWrap, storage.ErrStorage)
		})

		Convey("When removing an unknown reference", func() {
			So(store.Remove("nope.csv"), ShouldWrap, storage.ErrStorage)
		})
	})

	Convey("Given an unwritable root", t, func() {
		_, err := storage.NewDiskStore("/proc/uploads")
		So(err, ShouldWrap, storage.ErrStorage)
	})
}
