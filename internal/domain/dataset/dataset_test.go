package dataset_test

import (
	"strings"
	"testing"

	"github.com/stadio-ml/stadio/internal/domain/dataset"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a well-formed gold-label CSV", t, func() {
		csvData := "Id,Predicted,Public\n1,5,1\n2,7,0\n3,9,2\n"

		Convey("When loading it", func() {
			g, err := dataset.Load(strings.NewReader(csvData))

			Convey("Then it should load all rows", func() {
				So(err, ShouldBeNil)
				So(g.Len(), ShouldEqual, 3)
				So(g.HasID("1"), ShouldBeTrue)
				So(g.HasID("4"), ShouldBeFalse)
				So(g.IDs(), ShouldResemble, []string{"1", "2", "3"})
			})

			Convey("Then partitions should overlap on visibility 2", func() {
				public := g.PublicRows()
				private := g.PrivateRows()

				So(len(public), ShouldEqual, 2)
				So(public[0].ID, ShouldEqual, "1")
				So(public[1].ID, ShouldEqual, "3")

				So(len(private), ShouldEqual, 2)
				So(private[0].ID, ShouldEqual, "2")
				So(private[1].ID, ShouldEqual, "3")
			})
		})
	})

	Convey("Given gold files with schema problems", t, func() {
		Convey("When a required column is missing", func() {
			_, err := dataset.Load(strings.NewReader("Id,Predicted\n1,5\n"))
			So(err, ShouldWrap, dataset.ErrGoldSchema)
		})

		Convey("When an extra column is present", func() {
			_, err := dataset.Load(strings.NewReader("Id,Predicted,Public,Extra\n1,5,1,x\n"))
			So(err, ShouldWrap, dataset.ErrGoldSchema)
		})

		Convey("When the file is empty", func() {
			_, err := dataset.Load(strings.NewReader(""))
			So(err, ShouldWrap, dataset.ErrGoldSchema)
		})

		Convey("When there are no data rows", func() {
			_, err := dataset.Load(strings.NewReader("Id,Predicted,Public\n"))
			So(err, ShouldWrap, dataset.ErrGoldSchema)
		})

		Convey("When an id appears twice", func() {
			_, err := dataset.Load(strings.NewReader("Id,Predicted,Public\n1,5,1\n1,6,0\n"))
			So(err, ShouldWrap, dataset.ErrGoldDuplicate)
		})

		Convey("When a visibility flag is out of domain", func() {
			_, err := dataset.Load(strings.NewReader("Id,Predicted,Public\n1,5,3\n"))
			So(err, ShouldWrap, dataset.ErrGoldVisibility)
		})

		Convey("When a target value is not numeric", func() {
			_, err := dataset.Load(strings.NewReader("Id,Predicted,Public\n1,abc,1\n"))
			So(err, ShouldWrap, dataset.ErrGoldParse)
		})

		Convey("When the CSV is malformed", func() {
			_, err := dataset.Load(strings.NewReader("Id,Predicted,Public\n1,\"5,1\n"))
			So(err, ShouldWrap, dataset.ErrGoldParse)
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given a missing gold file path", t, func() {
		_, err := dataset.LoadFile("/does/not/exist.csv")

		Convey("Then loading should fail with a parse error", func() {
			So(err, ShouldWrap, dataset.ErrGoldParse)
		})
	})
}
