package submission_test

import (
	"strings"
	"testing"

	"github.com/stadio-ml/stadio/internal/domain/dataset"
	"github.com/stadio-ml/stadio/internal/domain/submission"
	. "github.com/smartystreets/goconvey/convey"
)

func mustGold(csvData string) *dataset.GoldLabelSet {
	g, err := dataset.Load(strings.NewReader(csvData))
	if err != nil {
		panic(err)
	}
	return g
}

func TestCheckExtension(t *testing.T) {
	Convey("Given uploaded filenames", t, func() {
		Convey("Then .csv files are accepted regardless of case", func() {
			So(submission.CheckExtension("preds.csv"), ShouldBeNil)
			So(submission.CheckExtension("PREDS.CSV"), ShouldBeNil)
		})

		Convey("Then other extensions are rejected", func() {
			So(submission.CheckExtension("preds.txt"), ShouldWrap, submission.ErrUnsupportedExtension)
			So(submission.CheckExtension("preds.csv.zip"), ShouldWrap, submission.ErrUnsupportedExtension)
			So(submission.CheckExtension("preds"), ShouldWrap, submission.ErrUnsupportedExtension)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given prediction uploads", t, func() {
		Convey("When the CSV is well-formed", func() {
			f, err := submission.Parse(strings.NewReader("Id,Predicted\n1,5\n2,7\n"))
			So(err, ShouldBeNil)
			So(f.Len(), ShouldEqual, 2)
			So(f.Rows()[0].ID, ShouldEqual, "1")
			So(f.Rows()[0].Value, ShouldEqual, "5")
		})

		Convey("When the CSV is malformed", func() {
			_, err := submission.Parse(strings.NewReader("Id,Predicted\n1,\"5\n"))
			So(err, ShouldWrap, submission.ErrParse)
		})

		Convey("When the stream is empty", func() {
			_, err := submission.Parse(strings.NewReader(""))
			So(err, ShouldWrap, submission.ErrParse)
		})
	})
}

func TestValidate(t *testing.T) {
	gold := mustGold("Id,Predicted,Public\n1,5,1\n2,7,0\n3,9,2\n")

	Convey("Given a gold set with three rows", t, func() {
		Convey("When the upload matches columns and id set", func() {
			f, err := submission.Parse(strings.NewReader("Id,Predicted\n3,1\n1,5\n2,7\n"))
			So(err, ShouldBeNil)

			Convey("Then validation succeeds regardless of row order", func() {
				So(submission.Validate(f, gold), ShouldBeNil)
			})
		})

		Convey("When the target column is missing", func() {
			f, err := submission.Parse(strings.NewReader("Id,Wrong\n1,5\n2,7\n3,9\n"))
			So(err, ShouldBeNil)

			Convey("Then validation fails with missing columns", func() {
				So(submission.Validate(f, gold), ShouldWrap, submission.ErrMissingColumns)
			})
		})

		Convey("When there is an extra column", func() {
			f, err := submission.Parse(strings.NewReader("Id,Predicted,Extra\n1,5,a\n2,7,b\n3,9,c\n"))
			So(err, ShouldBeNil)

			Convey("Then validation fails with unexpected columns", func() {
				So(submission.Validate(f, gold), ShouldWrap, submission.ErrUnexpectedColumns)
			})
		})

		Convey("When the row count differs", func() {
			f, err := submission.Parse(strings.NewReader("Id,Predicted\n1,5\n2,7\n"))
			So(err, ShouldBeNil)

			Convey("Then validation fails with row count mismatch", func() {
				So(submission.Validate(f, gold), ShouldWrap, submission.ErrRowCountMismatch)
			})
		})

		Convey("When the id set differs", func() {
			f, err := submission.Parse(strings.NewReader("Id,Predicted\n1,5\n2,7\n4,9\n"))
			So(err, ShouldBeNil)

			Convey("Then validation fails with id set mismatch", func() {
				So(submission.Validate(f, gold), ShouldWrap, submission.ErrIDSetMismatch)
			})
		})

		Convey("When the upload contains duplicate ids", func() {
			f, err := submission.Parse(strings.NewReader("Id,Predicted\n1,5\n2,7\n2,9\n"))
			So(err, ShouldBeNil)

			Convey("Then duplicates surface as id set mismatch", func() {
				So(submission.Validate(f, gold), ShouldWrap, submission.ErrIDSetMismatch)
			})
		})

		Convey("When a check fails early", func() {
			// Missing columns and wrong row count at once: the first check
			// in the sequence wins.
			f, err := submission.Parse(strings.NewReader("Wrong\nx\n"))
			So(err, ShouldBeNil)

			Convey("Then only the first error in the sequence is reported", func() {
				So(submission.Validate(f, gold), ShouldWrap, submission.ErrMissingColumns)
			})
		})
	})
}
