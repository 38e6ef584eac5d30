package tally_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/z-labo/voteboard/internal/domain/model"
	"github.com/z-labo/voteboard/internal/domain/tally"

	. "github.com/smartystreets/goconvey/convey"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func record(evaluator, receivedAt string, entries ...model.ResultEntry) model.VoteRecord {
	return model.VoteRecord{
		EvaluatorName:    evaluator,
		ServerReceivedAt: receivedAt,
		Results:          entries,
	}
}

func entry(presenterID string, score float64) model.ResultEntry {
	return model.ResultEntry{
		PresenterID: presenterID,
		Score:       model.Score{Value: score, Valid: true},
	}
}

func TestAggregate(t *testing.T) {
	Convey("Given an aggregator with a fixed clock", t, func() {
		agg := tally.New(tally.WithClock(fixedClock))
		ctx := context.Background()

		Convey("When aggregating an empty record set", func() {
			result := agg.Aggregate(ctx, nil)

			Convey("Then it yields an empty presenter list and a valid timestamp", func() {
				So(result.OK, ShouldBeTrue)
				So(result.AllPresenters, ShouldBeEmpty)
				So(result.TotalEvaluators, ShouldEqual, 0)
				So(result.LastUpdated, ShouldEqual, "2025-06-01T12:00:00Z")
			})
		})

		Convey("When two evaluators rate two presenters", func() {
			records := []model.VoteRecord{
				record("alice", "2025-06-01T10:00:00Z",
					entry("p1", 4),
					entry("p2", 3),
				),
				record("bob", "2025-06-01T10:05:00Z",
					entry("p1", 5),
				),
			}

			result := agg.Aggregate(ctx, records)

			Convey("Then presenters rank by average score", func() {
				So(result.TotalEvaluators, ShouldEqual, 2)
				So(result.AllPresenters, ShouldHaveLength, 2)

				p1 := result.AllPresenters[0]
				So(p1.PresenterID, ShouldEqual, "p1")
				So(p1.AvgScore, ShouldEqual, 4.5)
				So(p1.VoteCount, ShouldEqual, 2)
				So(p1.TotalScore, ShouldEqual, 9)

				p2 := result.AllPresenters[1]
				So(p2.PresenterID, ShouldEqual, "p2")
				So(p2.AvgScore, ShouldEqual, 3.0)
				So(p2.VoteCount, ShouldEqual, 1)
			})

			Convey("And re-aggregating the same set is deterministic", func() {
				again := agg.Aggregate(ctx, records)
				So(again.AllPresenters, ShouldResemble, result.AllPresenters)
				So(again.TotalEvaluators, ShouldEqual, result.TotalEvaluators)
			})
		})

		Convey("When an evaluator resubmitted for the same presenter", func() {
			records := []model.VoteRecord{
				record("alice", "2025-06-01T11:00:00Z", entry("p1", 5)),
				record("alice", "2025-06-01T09:00:00Z", entry("p1", 1)),
			}

			result := agg.Aggregate(ctx, records)

			Convey("Then only the later submission contributes", func() {
				So(result.AllPresenters, ShouldHaveLength, 1)
				So(result.AllPresenters[0].VoteCount, ShouldEqual, 1)
				So(result.AllPresenters[0].AvgScore, ShouldEqual, 5.0)
				So(result.AllPresenters[0].Details, ShouldHaveLength, 1)
				So(result.AllPresenters[0].Details[0].Timestamp, ShouldEqual, "2025-06-01T11:00:00Z")
			})

			Convey("And the same outcome holds regardless of input order", func() {
				reversed := []model.VoteRecord{records[1], records[0]}
				result := agg.Aggregate(ctx, reversed)
				So(result.AllPresenters[0].AvgScore, ShouldEqual, 5.0)
			})
		})

		Convey("When a legacy record only has a client timestamp", func() {
			legacy := model.VoteRecord{
				EvaluatorName: "carol",
				Timestamp:     "2025-06-01T11:30:00Z",
				Results:       []model.ResultEntry{entry("p1", 2)},
			}
			stamped := record("carol", "2025-06-01T10:00:00Z", entry("p1", 4))

			result := agg.Aggregate(ctx, []model.VoteRecord{stamped, legacy})

			Convey("Then the fallback timestamp participates in ordering", func() {
				So(result.AllPresenters[0].AvgScore, ShouldEqual, 2.0)
			})
		})

		Convey("When averages tie", func() {
			records := []model.VoteRecord{
				record("e1", "2025-06-01T10:00:00Z", entry("pa", 4), entry("pb", 4), entry("pc", 4)),
				record("e2", "2025-06-01T10:01:00Z", entry("pb", 4), entry("pc", 4)),
				record("e3", "2025-06-01T10:02:00Z", entry("pd", 3)),
			}

			result := agg.Aggregate(ctx, records)

			Convey("Then vote count breaks the tie, then presenterId ascending", func() {
				So(result.AllPresenters, ShouldHaveLength, 4)
				// pb and pc both avg 4.0 with 2 votes; pa avg 4.0 with 1.
				So(result.AllPresenters[0].PresenterID, ShouldEqual, "pb")
				So(result.AllPresenters[1].PresenterID, ShouldEqual, "pc")
				So(result.AllPresenters[2].PresenterID, ShouldEqual, "pa")
				So(result.AllPresenters[3].PresenterID, ShouldEqual, "pd")
			})
		})

		Convey("When scores need coercion", func() {
			rec := record("dave", "2025-06-01T10:00:00Z")
			rec.Results = []model.ResultEntry{
				{PresenterID: "p1", Score: scoreFromJSON(`"4"`)},
				{PresenterID: "p2", Score: scoreFromJSON(`null`)},
				{PresenterID: "p3", Score: scoreFromJSON(`"n/a"`)},
			}

			result := agg.Aggregate(ctx, []model.VoteRecord{rec})

			Convey("Then numeric strings count and unparsable scores drop the presenter", func() {
				So(result.AllPresenters, ShouldHaveLength, 1)
				So(result.AllPresenters[0].PresenterID, ShouldEqual, "p1")
				So(result.AllPresenters[0].AvgScore, ShouldEqual, 4.0)
				So(result.TotalEvaluators, ShouldEqual, 1)
			})
		})

		Convey("When records are malformed", func() {
			records := []model.VoteRecord{
				record("", "2025-06-01T10:00:00Z", entry("p1", 5)),
				record("erin", "2025-06-01T10:00:00Z",
					model.ResultEntry{PresenterID: "", Score: model.Score{Value: 3, Valid: true}},
					entry("p2", 3),
				),
			}

			result := agg.Aggregate(ctx, records)

			Convey("Then a blank evaluator skips the record and a blank presenter skips the entry", func() {
				So(result.TotalEvaluators, ShouldEqual, 1)
				So(result.AllPresenters, ShouldHaveLength, 1)
				So(result.AllPresenters[0].PresenterID, ShouldEqual, "p2")
			})
		})

		Convey("When display names differ across submissions", func() {
			records := []model.VoteRecord{
				record("f1", "2025-06-01T10:00:00Z",
					model.ResultEntry{PresenterID: "p1", Presenter: "Typo Naem", Score: model.Score{Value: 4, Valid: true}},
				),
				record("f2", "2025-06-01T10:01:00Z",
					model.ResultEntry{PresenterID: "p1", Presenter: "Fixed Name", Score: model.Score{Value: 5, Valid: true}},
				),
				record("f3", "2025-06-01T10:02:00Z",
					model.ResultEntry{PresenterID: "p1", Score: model.Score{Value: 3, Valid: true}},
				),
			}

			result := agg.Aggregate(ctx, records)

			Convey("Then the last non-empty name seen wins", func() {
				So(result.AllPresenters[0].Presenter, ShouldEqual, "Fixed Name")
			})
		})

		Convey("When averages need rounding", func() {
			records := []model.VoteRecord{
				record("g1", "2025-06-01T10:00:00Z", entry("p1", 5)),
				record("g2", "2025-06-01T10:01:00Z", entry("p1", 5)),
				record("g3", "2025-06-01T10:02:00Z", entry("p1", 4)),
			}

			result := agg.Aggregate(ctx, records)

			Convey("Then avgScore is rounded to three decimals", func() {
				// 14/3 = 4.666...
				So(result.AllPresenters[0].AvgScore, ShouldEqual, 4.667)
			})
		})
	})
}

func scoreFromJSON(raw string) model.Score {
	var s model.Score
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		panic(err)
	}
	return s
}
