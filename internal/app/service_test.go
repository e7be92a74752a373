package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stadio-ml/stadio/internal/adapters/repository"
	"github.com/stadio-ml/stadio/internal/adapters/storage"
	"github.com/stadio-ml/stadio/internal/app"
	"github.com/stadio-ml/stadio/internal/domain/dataset"
	"github.com/stadio-ml/stadio/internal/domain/gate"
	"github.com/stadio-ml/stadio/internal/domain/scoring"
	"github.com/stadio-ml/stadio/internal/domain/stage"
	"github.com/stadio-ml/stadio/internal/domain/submission"
	"github.com/stadio-ml/stadio/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const goldCSV = "Id,Predicted,Public\n1,5,1\n2,7,0\n3,9,2\n"

const (
	// perfect is right everywhere; mixed is right on the public
	// partition {1, 3} but misses private-only row 2.
	perfect = "Id,Predicted\n1,5\n2,7\n3,9\n"
	mixed   = "Id,Predicted\n1,5\n2,0\n3,9\n"
)

type fixture struct {
	svc   *app.Service
	store *repository.GormStore

	gold      *dataset.GoldLabelSet
	clock     *stage.Clock
	files     *storage.DiskStore
	guard     *gate.Guard
	uploadDir string
}

// storedUploads counts files sitting in the upload archive.
func (f *fixture) storedUploads(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	return len(entries)
}

// newFixture assembles a service over a real sqlite ledger with the
// competition currently open.
func newFixture(t *testing.T, gateOpts []gate.Option, svcOpts ...app.Option) *fixture {
	t.Helper()

	gold, err := dataset.Load(strings.NewReader(goldCSV))
	if err != nil {
		t.Fatalf("load gold: %v", err)
	}
	store, err := repository.NewGormStore(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	uploadDir := filepath.Join(t.TempDir(), "uploads")
	files, err := storage.NewDiskStore(uploadDir)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}

	now := time.Now().UTC()
	clock, err := stage.NewClock(now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("clock: %v", err)
	}

	opts := append([]gate.Option{gate.WithPrivileged("admin", "baseline")}, gateOpts...)
	guard := gate.New(clock, opts...)
	svc := app.New(gold, scoring.New(gold), store, guard, clock, files, svcOpts...)
	return &fixture{
		svc: svc, store: store, gold: gold, clock: clock,
		files: files, guard: guard, uploadDir: uploadDir,
	}
}

// withNow rebuilds the service over the same ledger with a frozen clock.
func (f *fixture) withNow(at time.Time) *app.Service {
	return app.New(f.gold, scoring.New(f.gold), f.store, f.guard, f.clock, f.files,
		app.WithNow(func() time.Time { return at }))
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	Convey("Given an open competition with no cooldown", t, func() {
		f := newFixture(t, []gate.Option{gate.WithCooldown(0)})

		Convey("When a valid submission arrives", func() {
			rec, err := f.svc.Submit(ctx, "alice", "pred.csv", []byte(mixed))
			So(err, ShouldBeNil)

			Convey("Then the receipt carries the public score only", func() {
				So(rec.SubmissionID, ShouldBeGreaterThan, 0)
				So(rec.PublicScore, ShouldEqual, 1.0)
				So(rec.Metric, ShouldEqual, "Accuracy")
			})

			Convey("Then history shows the evaluated submission", func() {
				hist, err := f.svc.History(ctx, "alice")
				So(err, ShouldBeNil)
				So(hist, ShouldHaveLength, 1)
				So(hist[0].SubmissionID, ShouldEqual, rec.SubmissionID)
				So(hist[0].PublicScore, ShouldEqual, 1.0)
				So(hist[0].PrivateCheck, ShouldBeFalse)
			})
		})

		Convey("When the extension is wrong", func() {
			_, err := f.svc.Submit(ctx, "alice", "pred.xlsx", []byte(mixed))
			So(err, ShouldWrap, submission.ErrUnsupportedExtension)
		})

		Convey("When the payload does not parse", func() {
			_, err := f.svc.Submit(ctx, "alice", "pred.csv", []byte("Id,Predicted\n\"broken"))
			So(err, ShouldWrap, submission.ErrParse)
		})

		Convey("When the id set does not match the dataset", func() {
			_, err := f.svc.Submit(ctx, "alice", "pred.csv", []byte("Id,Predicted\n1,5\n2,7\n9,9\n"))
			So(err, ShouldWrap, submission.ErrIDSetMismatch)

			Convey("Then nothing was written to the ledger", func() {
				n, err := f.store.CountSubmissions(ctx, "alice")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a cooldown between submissions", t, func() {
		f := newFixture(t, []gate.Option{gate.WithCooldown(10 * time.Minute)})

		_, err := f.svc.Submit(ctx, "alice", "pred.csv", []byte(perfect))
		So(err, ShouldBeNil)

		Convey("Then an immediate retry is rejected with the remaining wait", func() {
			_, err := f.svc.Submit(ctx, "alice", "pred.csv", []byte(perfect))
			So(err, ShouldWrap, gate.ErrCooldownActive)

			var cErr *gate.CooldownError
			So(errors.As(err, &cErr), ShouldBeTrue)
			So(cErr.Remaining, ShouldBeGreaterThan, 0)

			Convey("And the rejected upload is not left in the archive", func() {
				So(f.storedUploads(t), ShouldEqual, 1)
			})
		})

		Convey("Then other users are unaffected", func() {
			_, err := f.svc.Submit(ctx, "bob", "pred.csv", []byte(perfect))
			So(err, ShouldBeNil)
		})

		Convey("Then the admin bypasses the cooldown", func() {
			_, err := f.svc.Submit(ctx, "admin", "pred.csv", []byte(perfect))
			So(err, ShouldBeNil)
			_, err = f.svc.Submit(ctx, "admin", "pred.csv", []byte(perfect))
			So(err, ShouldBeNil)
		})
	})

	Convey("Given a lifetime quota of one", t, func() {
		f := newFixture(t, []gate.Option{gate.WithCooldown(0), gate.WithMaxSubmissions(1)})

		_, err := f.svc.Submit(ctx, "alice", "pred.csv", []byte(perfect))
		So(err, ShouldBeNil)

		Convey("Then the second submission exceeds the quota", func() {
			_, err := f.svc.Submit(ctx, "alice", "pred.csv", []byte(perfect))
			So(err, ShouldWrap, gate.ErrQuotaExceeded)
		})
	})

	Convey("Given a user with an upload already in flight", t, func() {
		f := newFixture(t, []gate.Option{gate.WithCooldown(0)},
			app.WithTracker(busyTracker{}))

		Convey("Then the concurrent upload is turned away", func() {
			_, err := f.svc.Submit(ctx, "alice", "pred.csv", []byte(perfect))
			So(err, ShouldWrap, app.ErrBusy)
		})
	})
}

// busyTracker simulates a pipeline already occupied for every user.
type busyTracker struct{}

func (busyTracker) Acquire(context.Context, string) bool { return false }
func (busyTracker) Release(context.Context, string)      {}
func (busyTracker) Size() int64                          { return 0 }

func TestLeaderboards(t *testing.T) {
	ctx := context.Background()

	Convey("Given scored submissions from two users", t, func() {
		f := newFixture(t, []gate.Option{gate.WithCooldown(0)})

		_, err := f.svc.Submit(ctx, "alice", "pred.csv", []byte(perfect))
		So(err, ShouldBeNil)
		rec, err := f.svc.Submit(ctx, "bob", "pred.csv", []byte(mixed))
		So(err, ShouldBeNil)

		Convey("Then the public leaderboard ranks by best public score", func() {
			board, err := f.svc.PublicLeaderboard(ctx)
			So(err, ShouldBeNil)
			So(board, ShouldHaveLength, 2)
			So(board[0].Rank, ShouldEqual, 1)
			// Both scored 1.0 publicly; ties keep first-appearance order.
			So(board[0].UserID, ShouldEqual, "alice")
		})

		Convey("Then the private leaderboard is hidden before termination", func() {
			_, err := f.svc.PrivateLeaderboard(ctx, "alice")
			So(err, ShouldWrap, app.ErrPrivateHidden)
		})

		Convey("Then the admin sees the private leaderboard early", func() {
			board, err := f.svc.PrivateLeaderboard(ctx, "admin")
			So(err, ShouldBeNil)
			So(board, ShouldHaveLength, 2)
			So(board[0].UserID, ShouldEqual, "alice")
			So(board[0].Score, ShouldEqual, 1.0)
			So(board[1].UserID, ShouldEqual, "bob")
			So(board[1].Score, ShouldEqual, 0.5)
		})

		Convey("When the competition has terminated", func() {
			late := f.svc.StageNow().TerminateTime.Add(time.Minute)
			svc := f.withNow(late)

			Convey("Then everyone sees the private leaderboard", func() {
				board, err := svc.PrivateLeaderboard(ctx, "alice")
				So(err, ShouldBeNil)
				So(board, ShouldHaveLength, 2)
			})

			Convey("Then selections are frozen for regular users", func() {
				err := svc.SelectPrivate(ctx, "bob", map[uint]bool{rec.SubmissionID: true})
				So(err, ShouldWrap, app.ErrSelectionClosed)
			})
		})

		Convey("When bob selects his submission for the private board", func() {
			err := f.svc.SelectPrivate(ctx, "bob", map[uint]bool{rec.SubmissionID: true})
			So(err, ShouldBeNil)

			hist, err := f.svc.History(ctx, "bob")
			So(err, ShouldBeNil)
			So(hist[0].PrivateCheck, ShouldBeTrue)
		})

		Convey("Then an empty selection batch is a no-op", func() {
			So(f.svc.SelectPrivate(ctx, "bob", nil), ShouldBeNil)
		})
	})
}

func TestStageAndStats(t *testing.T) {
	ctx := context.Background()

	Convey("Given an open competition", t, func() {
		f := newFixture(t, []gate.Option{gate.WithCooldown(0)})

		Convey("Then the stage view reports an open window", func() {
			info := f.svc.StageNow()
			So(info.Stage, ShouldEqual, "open")
			So(info.CanSubmit, ShouldBeTrue)
			So(info.OpenTime.Before(info.CloseTime), ShouldBeTrue)
		})

		Convey("Then stats count ledger submissions", func() {
			_, err := f.svc.Submit(ctx, "alice", "pred.csv", []byte(perfect))
			So(err, ShouldBeNil)

			stats, err := f.svc.GetStats(ctx)
			So(err, ShouldBeNil)
			So(stats.TotalSubmissions, ShouldEqual, 1)
			So(stats.Stage, ShouldEqual, "open")
			So(stats.InFlight, ShouldEqual, 0)
		})
	})

	Convey("Given a competition that has not opened yet", t, func() {
		gold, err := dataset.Load(strings.NewReader(goldCSV))
		So(err, ShouldBeNil)
		store, err := repository.NewGormStore(ctx, filepath.Join(t.TempDir(), "ledger.db"))
		So(err, ShouldBeNil)
		defer store.Close()
		files, err := storage.NewDiskStore(filepath.Join(t.TempDir(), "uploads"))
		So(err, ShouldBeNil)

		now := time.Now().UTC()
		clock, err := stage.NewClock(now.Add(time.Hour), now.Add(2*time.Hour), now.Add(3*time.Hour))
		So(err, ShouldBeNil)

		svc := app.New(gold, scoring.New(gold), store,
			gate.New(clock, gate.WithPrivileged("admin", "baseline")), clock, files)

		Convey("Then regular submissions are rejected", func() {
			_, err := svc.Submit(ctx, "alice", "pred.csv", []byte(perfect))
			So(err, ShouldWrap, gate.ErrNotOpen)
		})

		Convey("Then the baseline user may still submit", func() {
			_, err := svc.Submit(ctx, "baseline", "pred.csv", []byte(perfect))
			So(err, ShouldBeNil)
		})
	})
}
