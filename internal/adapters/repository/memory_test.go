package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/calcutta/internal/adapters/repository"
	"github.com/okian/calcutta/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func loadFixture(ctx context.Context) *repository.MemoryStore {
	s := repository.NewMemoryStore()
	So(s.LoadFile(ctx, "testdata/pools.yaml"), ShouldBeNil)
	return s
}

func TestMemoryStore_LoadFile(t *testing.T) {
	Convey("Given the pool fixture", t, func() {
		ctx := context.Background()
		s := loadFixture(ctx)

		Convey("When listing pools", func() {
			pools := s.Pools(ctx)

			Convey("Then both pools should be present in id order", func() {
				So(s.Count(ctx), ShouldEqual, 2)
				So(pools[0].ID, ShouldEqual, "empty")
				So(pools[1], ShouldResemble, repository.Summary{ID: "march-2026", Name: "March Madness 2026", Entries: 3, Teams: 3})
			})
		})

		Convey("When reading a pool", func() {
			p, err := s.Pool(ctx, "march-2026")

			Convey("Then every section should be decoded", func() {
				So(err, ShouldBeNil)
				So(p.Rules, ShouldResemble, []model.ScoringRule{
					{WinIndex: 1, PointsAwarded: 1},
					{WinIndex: 2, PointsAwarded: 2},
					{WinIndex: 3, PointsAwarded: 4},
				})
				So(p.Payouts, ShouldResemble, model.PayoutSchedule{1: 100, 2: 99})
				So(p.Entries[0], ShouldResemble, model.Entry{ID: "e1", Name: "Alice", CreatedAt: "2026-03-01T00:00:02Z"})
				So(p.Entries[2].CreatedAt, ShouldEqual, "2026-03-01T00:00:03Z")
				So(p.Teams[2].Eliminated, ShouldBeTrue)
				So(p.Ownerships[1], ShouldResemble, model.Ownership{EntryID: "e2", TeamID: "duke", Share: 0.5})
			})

			Convey("Then recorded totals should be verbatim or derived when absent", func() {
				So(p.RecordedTotals["e1"], ShouldEqual, 10.0)
				So(p.RecordedTotals["e2"], ShouldEqual, 10.0)
				So(p.RecordedTotals, ShouldContainKey, "e3")
				So(p.RecordedTotals["e3"], ShouldEqual, 0.0)
			})

			Convey("Then lookups by id should work", func() {
				e, ok := p.Entry("e2")
				So(ok, ShouldBeTrue)
				So(e.Name, ShouldEqual, "Bob")
				_, ok = p.Team("nope")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a snapshot is modified", func() {
			p, _ := s.Pool(ctx, "march-2026")
			p.Teams[0].Wins = 99
			p.RecordedTotals["e1"] = -1

			Convey("Then the store should be unaffected", func() {
				again, _ := s.Pool(ctx, "march-2026")
				So(again.Teams[0].Wins, ShouldEqual, 3)
				So(again.RecordedTotals["e1"], ShouldEqual, 10.0)
			})
		})

		Convey("When reading an unknown pool", func() {
			_, err := s.Pool(ctx, "nope")

			Convey("Then it should be not found", func() {
				So(errors.Is(err, repository.ErrPoolNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given fixtures that cannot be used", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()

		Convey("When the file does not exist", func() {
			err := s.LoadFile(ctx, "testdata/missing.yaml")

			Convey("Then it should fail to load", func() {
				So(errors.Is(err, repository.ErrLoadPools), ShouldBeTrue)
			})
		})

		Convey("When a valid pool is followed by an invalid one", func() {
			err := s.LoadFile(ctx, "testdata/partial.yaml")

			Convey("Then nothing should be stored", func() {
				So(errors.Is(err, repository.ErrInvalidPool), ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 0)
				_, err := s.Pool(ctx, "good")
				So(errors.Is(err, repository.ErrPoolNotFound), ShouldBeTrue)
			})
		})

		Convey("When the pool is invalid", func() {
			err := s.LoadFile(ctx, "testdata/invalid.yaml")

			Convey("Then every problem should be reported", func() {
				So(errors.Is(err, repository.ErrInvalidPool), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "duplicate entry \"e1\"")
				So(err.Error(), ShouldContainSubstring, "negative progress")
				So(err.Error(), ShouldContainSubstring, "unknown team \"nobody\"")
				So(err.Error(), ShouldContainSubstring, "outside [0,1]")
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})
	})
}

func TestMemoryStore_LoadFileUnquotedTimestamps(t *testing.T) {
	Convey("Given a fixture with unquoted created_at values", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()
		err := s.LoadFile(ctx, "testdata/unquoted.yaml")

		Convey("Then the timestamps should load as RFC 3339 strings", func() {
			So(err, ShouldBeNil)
			p, err := s.Pool(ctx, "bare-dates")
			So(err, ShouldBeNil)
			So(p.Entries[0].CreatedAt, ShouldEqual, "2026-03-01T00:00:02Z")
			So(p.Entries[1].CreatedAt, ShouldEqual, "2026-03-01T00:00:01.5Z")
		})
	})
}

func TestMemoryStore_ApplyProgress(t *testing.T) {
	Convey("Given the pool fixture", t, func() {
		ctx := context.Background()
		s := loadFixture(ctx)

		Convey("When a team advances", func() {
			before, _ := s.Pool(ctx, "march-2026")
			changed, err := s.ApplyProgress(ctx, repository.ProgressUpdate{
				PoolID: "march-2026", TeamID: "gonzaga", Wins: 2, Byes: 1,
			})

			Convey("Then recorded totals should be recomputed from live progress", func() {
				So(err, ShouldBeNil)
				So(changed, ShouldBeTrue)
				p, _ := s.Pool(ctx, "march-2026")
				So(p.Teams[1].Wins, ShouldEqual, 2)
				So(p.RecordedTotals["e1"], ShouldAlmostEqual, 3.5)
				So(p.RecordedTotals["e2"], ShouldAlmostEqual, 10.5)
				So(p.RecordedTotals["e3"], ShouldEqual, 0.0)
			})

			Convey("Then earlier snapshots should not change", func() {
				So(before.Teams[1].Wins, ShouldEqual, 1)
			})
		})

		Convey("When the same progress is applied again", func() {
			u := repository.ProgressUpdate{PoolID: "march-2026", TeamID: "duke", Wins: 3}
			changed, err := s.ApplyProgress(ctx, u)

			Convey("Then nothing should change", func() {
				So(err, ShouldBeNil)
				So(changed, ShouldBeFalse)
				p, _ := s.Pool(ctx, "march-2026")
				So(p.RecordedTotals["e1"], ShouldEqual, 10.0)
			})
		})

		Convey("When an older update arrives after a newer one", func() {
			base := time.Date(2026, time.March, 20, 18, 0, 0, 0, time.UTC)
			newer, errNewer := s.ApplyProgress(ctx, repository.ProgressUpdate{
				PoolID: "march-2026", TeamID: "vermont", Wins: 3, TS: base.Add(2 * time.Hour),
			})
			older, errOlder := s.ApplyProgress(ctx, repository.ProgressUpdate{
				PoolID: "march-2026", TeamID: "vermont", Wins: 1, TS: base.Add(time.Hour),
			})

			Convey("Then the older update should be ignored", func() {
				So(errNewer, ShouldBeNil)
				So(errOlder, ShouldBeNil)
				So(newer, ShouldBeTrue)
				So(older, ShouldBeFalse)
				p, _ := s.Pool(ctx, "march-2026")
				So(p.Teams[2].Wins, ShouldEqual, 3)
				So(p.Teams[2].UpdatedAt, ShouldEqual, base.Add(2*time.Hour))
				So(p.RecordedTotals["e3"], ShouldAlmostEqual, 7.0)
			})

			Convey("Then a later update should still apply", func() {
				changed, err := s.ApplyProgress(ctx, repository.ProgressUpdate{
					PoolID: "march-2026", TeamID: "vermont", Wins: 4, TS: base.Add(3 * time.Hour),
				})
				So(err, ShouldBeNil)
				So(changed, ShouldBeTrue)
				p, _ := s.Pool(ctx, "march-2026")
				So(p.Teams[2].Wins, ShouldEqual, 4)
			})
		})

		Convey("When the same state arrives with a newer timestamp", func() {
			ts := time.Date(2026, time.March, 21, 0, 0, 0, 0, time.UTC)
			changed, err := s.ApplyProgress(ctx, repository.ProgressUpdate{
				PoolID: "march-2026", TeamID: "duke", Wins: 3, TS: ts,
			})

			Convey("Then totals should be unchanged but the timestamp advanced", func() {
				So(err, ShouldBeNil)
				So(changed, ShouldBeFalse)
				p, _ := s.Pool(ctx, "march-2026")
				So(p.Teams[0].UpdatedAt, ShouldEqual, ts)
				stale, _ := s.ApplyProgress(ctx, repository.ProgressUpdate{
					PoolID: "march-2026", TeamID: "duke", Wins: 1, TS: ts.Add(-time.Minute),
				})
				So(stale, ShouldBeFalse)
			})
		})

		Convey("When the update is invalid", func() {
			_, errPool := s.ApplyProgress(ctx, repository.ProgressUpdate{PoolID: "x", TeamID: "duke"})
			_, errTeam := s.ApplyProgress(ctx, repository.ProgressUpdate{PoolID: "march-2026", TeamID: "x"})
			_, errNeg := s.ApplyProgress(ctx, repository.ProgressUpdate{PoolID: "march-2026", TeamID: "duke", Wins: -1})

			Convey("Then each should report its kind", func() {
				So(errors.Is(errPool, repository.ErrPoolNotFound), ShouldBeTrue)
				So(errors.Is(errTeam, repository.ErrTeamNotFound), ShouldBeTrue)
				So(errors.Is(errNeg, repository.ErrInvalidProgress), ShouldBeTrue)
			})
		})

		Convey("When progress is applied concurrently with reads", func() {
			var wg sync.WaitGroup
			for i := 1; i <= 20; i++ {
				wg.Add(2)
				go func(w int) {
					defer wg.Done()
					_, _ = s.ApplyProgress(ctx, repository.ProgressUpdate{PoolID: "march-2026", TeamID: "duke", Wins: w})
				}(i)
				go func() {
					defer wg.Done()
					_, _ = s.Pool(ctx, "march-2026")
				}()
			}
			wg.Wait()

			Convey("Then the store should remain consistent", func() {
				p, err := s.Pool(ctx, "march-2026")
				So(err, ShouldBeNil)
				So(len(p.RecordedTotals), ShouldEqual, 3)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given pools built in code", t, func() {
		Convey("When the pool has no id", func() {
			err := repository.Validate(repository.Pool{})

			Convey("Then it should be invalid", func() {
				So(errors.Is(err, repository.ErrInvalidPool), ShouldBeTrue)
			})
		})

		Convey("When payouts and rules are out of range", func() {
			err := repository.Validate(repository.Pool{
				ID:      "p",
				Rules:   []model.ScoringRule{{WinIndex: -1}},
				Payouts: model.PayoutSchedule{0: 10, 2: -5},
			})

			Convey("Then each problem should be named", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "negative win index")
				So(err.Error(), ShouldContainSubstring, "must be >= 1")
				So(err.Error(), ShouldContainSubstring, "negative amount")
			})
		})

		Convey("When the pool is well formed", func() {
			err := repository.Validate(repository.Pool{
				ID:         "ok",
				Teams:      []model.Team{{ID: "t"}},
				Entries:    []model.Entry{{ID: "e", CreatedAt: "2026-01-01T00:00:00Z"}},
				Ownerships: []model.Ownership{{EntryID: "e", TeamID: "t", Share: 1}},
				Payouts:    model.PayoutSchedule{1: 100},
			})

			Convey("Then it should pass", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}
