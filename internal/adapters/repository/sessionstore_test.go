package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/soulpath/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSessionStore(t *testing.T) {
	Convey("Given a session store with capacity 2", t, func() {
		var evicted []string
		store, err := NewSessionStore(2, WithOnEvict(func(id string) { evicted = append(evicted, id) }))
		So(err, ShouldBeNil)
		now := time.Now()

		Convey("When a session is stored", func() {
			store.Put(session.New("s1", "u1", "A", now))
			got, err := store.Get("s1")

			Convey("Then it can be read back", func() {
				So(err, ShouldBeNil)
				So(got.UserID, ShouldEqual, "u1")
				So(store.Len(), ShouldEqual, 1)
			})
		})

		Convey("When a missing session is read", func() {
			_, err := store.Get("nope")
			_, uerr := store.Update("nope", func(s session.Session) (session.Session, error) { return s, nil })

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(errors.Is(uerr, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When capacity is exceeded", func() {
			store.Put(session.New("s1", "u1", "", now))
			store.Put(session.New("s2", "u2", "", now))
			_, _ = store.Get("s1")
			store.Put(session.New("s3", "u3", "", now))

			Convey("Then the least recently used session is evicted", func() {
				_, err := store.Get("s2")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(evicted, ShouldResemble, []string{"s2"})
				So(store.Len(), ShouldEqual, 2)
			})
		})

		Convey("When an update fails", func() {
			store.Put(session.New("s1", "u1", "", now))
			boom := errors.New("boom")
			cur, err := store.Update("s1", func(s session.Session) (session.Session, error) {
				s.Index = 7
				return s, boom
			})

			Convey("Then the stored session is unchanged", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				So(cur.Index, ShouldEqual, 0)
				got, _ := store.Get("s1")
				So(got.Index, ShouldEqual, 0)
			})
		})
	})
}

func TestSessionStore_ConcurrentUpdate(t *testing.T) {
	Convey("Given one session updated from many goroutines", t, func() {
		store, err := NewSessionStore(10)
		So(err, ShouldBeNil)
		store.Put(session.New("s1", "u1", "", time.Now()))

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _ = store.Update("s1", func(s session.Session) (session.Session, error) {
					s.Index++
					s.AnswerIDs = append(s.AnswerIDs[:len(s.AnswerIDs):len(s.AnswerIDs)], fmt.Sprint(i))
					return s, nil
				})
			}(i)
		}
		wg.Wait()

		Convey("Then no update is lost", func() {
			got, err := store.Get("s1")
			So(err, ShouldBeNil)
			So(got.Index, ShouldEqual, 100)
			So(len(got.AnswerIDs), ShouldEqual, 100)
		})
	})

	Convey("Given an invalid capacity", t, func() {
		_, err := NewSessionStore(0)

		Convey("Then construction fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
