package votes_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/z-labo/voteboard/internal/adapters/blobstore"
	"github.com/z-labo/voteboard/internal/adapters/votes"
	"github.com/z-labo/voteboard/internal/domain/submission"

	. "github.com/smartystreets/goconvey/convey"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func mustDecode(t *testing.T, payload string) *submission.Submission {
	t.Helper()
	sub, err := submission.Decode([]byte(payload))
	if err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return sub
}

func TestWriter(t *testing.T) {
	Convey("Given a writer on a memory store", t, func() {
		store := blobstore.NewMemoryStore()
		writer := votes.NewWriter(store, votes.WithWriterClock(fixedClock))
		ctx := context.Background()

		Convey("When saving a submission", func() {
			sub := mustDecode(t, `{"evaluatorName":"alice","results":[{"presenterId":"p1","score":4}]}`)

			path, err := writer.Save(ctx, sub)

			Convey("Then the record lands under the evaluator's key, stamped", func() {
				So(err, ShouldBeNil)
				So(path, ShouldEqual, "/vote_results/alice.json")

				data, err := store.Get(ctx, "vote_results/alice.json")
				So(err, ShouldBeNil)

				var stored map[string]any
				So(json.Unmarshal(data, &stored), ShouldBeNil)
				So(stored["serverReceivedAt"], ShouldEqual, "2025-06-01T12:00:00Z")
				So(stored["evaluatorName"], ShouldEqual, "alice")
			})
		})

		Convey("When the same evaluator resubmits", func() {
			first := mustDecode(t, `{"evaluatorName":"alice","results":[{"presenterId":"p1","score":1}]}`)
			second := mustDecode(t, `{"evaluatorName":"alice","results":[{"presenterId":"p1","score":5}]}`)

			_, err := writer.Save(ctx, first)
			So(err, ShouldBeNil)
			_, err = writer.Save(ctx, second)
			So(err, ShouldBeNil)

			Convey("Then the old record is fully replaced", func() {
				loader := votes.NewLoader(store)
				records, err := loader.LoadAll(ctx)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0].Results[0].Score.Value, ShouldEqual, 5)
			})
		})

		Convey("When a base folder is configured", func() {
			writer := votes.NewWriter(store,
				votes.WithWriterBaseFolder("events/demo-day"),
				votes.WithWriterClock(fixedClock),
			)
			sub := mustDecode(t, `{"evaluatorName":"bob","results":[{"presenterId":"p1","score":3}]}`)

			path, err := writer.Save(ctx, sub)

			Convey("Then it prefixes the namespace", func() {
				So(err, ShouldBeNil)
				So(path, ShouldEqual, "/events/demo-day/vote_results/bob.json")

				_, err := store.Get(ctx, "events/demo-day/vote_results/bob.json")
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestLoader(t *testing.T) {
	Convey("Given a loader on a store with mixed content", t, func() {
		// A small page size forces the loader to drain several listing pages.
		store := blobstore.NewMemoryStore(blobstore.WithPageSize(4))
		loader := votes.NewLoader(store)
		ctx := context.Background()

		Convey("When one of ten blobs is corrupt JSON", func() {
			for i := 0; i < 9; i++ {
				name := fmt.Sprintf("e%02d", i)
				blob := fmt.Sprintf(`{"evaluatorName":%q,"serverReceivedAt":"2025-06-01T10:00:00Z","results":[{"presenterId":"p1","score":4}]}`, name)
				So(store.Put(ctx, "vote_results/"+name+".json", []byte(blob)), ShouldBeNil)
			}
			So(store.Put(ctx, "vote_results/corrupt.json", []byte(`{"evaluatorName": truncated`)), ShouldBeNil)

			records, err := loader.LoadAll(ctx)

			Convey("Then exactly the nine valid records load", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 9)
			})
		})

		Convey("When the namespace holds non-record objects", func() {
			So(store.Put(ctx, "vote_results/alice.json", []byte(`{"evaluatorName":"alice","results":[]}`)), ShouldBeNil)
			So(store.Put(ctx, "vote_results/notes.txt", []byte("not a record")), ShouldBeNil)

			records, err := loader.LoadAll(ctx)

			Convey("Then only .json objects are considered", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0].EvaluatorName, ShouldEqual, "alice")
			})
		})

		Convey("When the namespace is empty", func() {
			records, err := loader.LoadAll(ctx)

			Convey("Then the load succeeds with no records", func() {
				So(err, ShouldBeNil)
				So(records, ShouldBeEmpty)
			})
		})

		Convey("When counting objects", func() {
			for i := 0; i < 6; i++ {
				key := fmt.Sprintf("vote_results/e%02d.json", i)
				So(store.Put(ctx, key, []byte("{}")), ShouldBeNil)
			}
			So(store.Put(ctx, "vote_results/readme.md", []byte("x")), ShouldBeNil)

			count, err := loader.CountObjects(ctx)

			Convey("Then only records count, across pages", func() {
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 6)
			})
		})
	})
}
