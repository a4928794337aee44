package persistence_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okian/reten/internal/adapters/persistence"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryKV(t *testing.T) {
	Convey("Given an in-memory KV", t, func() {
		kv := persistence.NewMemory()
		ctx := context.Background()

		Convey("Then a missing key reports absent", func() {
			_, ok, err := kv.Load(ctx, persistence.KeyEmployees)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When a value is stored", func() {
			So(kv.Store(ctx, persistence.KeySession, []byte(`{"token":"abc"}`)), ShouldBeNil)

			Convey("Then it loads back", func() {
				v, ok, err := kv.Load(ctx, persistence.KeySession)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(string(v), ShouldEqual, `{"token":"abc"}`)
			})

			Convey("Then storing again replaces it", func() {
				So(kv.Store(ctx, persistence.KeySession, []byte(`{}`)), ShouldBeNil)
				v, _, _ := kv.Load(ctx, persistence.KeySession)
				So(string(v), ShouldEqual, `{}`)
			})

			Convey("Then mutating the returned slice does not touch the store", func() {
				v, _, _ := kv.Load(ctx, persistence.KeySession)
				v[0] = 'X'
				again, _, _ := kv.Load(ctx, persistence.KeySession)
				So(string(again), ShouldEqual, `{"token":"abc"}`)
			})
		})
	})
}

func TestSQLiteKV(t *testing.T) {
	Convey("Given a SQLite KV on a temp file", t, func() {
		path := filepath.Join(t.TempDir(), "reten.db")
		kv, err := persistence.NewSQLite(path)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When values are stored under both keys", func() {
			So(kv.Store(ctx, persistence.KeyEmployees, []byte(`[{"id":"emp-1"}]`)), ShouldBeNil)
			So(kv.Store(ctx, persistence.KeySession, []byte(`{"token":"t"}`)), ShouldBeNil)

			Convey("Then entries are independent", func() {
				emp, ok, err := kv.Load(ctx, persistence.KeyEmployees)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(string(emp), ShouldContainSubstring, "emp-1")

				sess, ok, err := kv.Load(ctx, persistence.KeySession)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(string(sess), ShouldContainSubstring, "token")
			})

			Convey("Then values survive a reopen", func() {
				So(kv.Close(), ShouldBeNil)

				reopened, err := persistence.NewSQLite(path)
				So(err, ShouldBeNil)
				defer reopened.Close()

				v, ok, err := reopened.Load(ctx, persistence.KeyEmployees)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(string(v), ShouldContainSubstring, "emp-1")
			})
		})
	})
}
