package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"LiquiMind/internal/model"
)

type fakeLister struct {
	calls   int
	courses []model.Course
	err     error
}

func (f *fakeLister) ListCourses(context.Context) ([]model.Course, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.courses, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(l *fakeLister, store Store, cfg Config) (*ActivityCache, *clock) {
	clk := &clock{t: time.Unix(1700000000, 0)}
	return New(l, store, cfg).WithClock(clk.now), clk
}

func TestGetCourses_WithinTTLNoRefetch(t *testing.T) {
	l := &fakeLister{courses: []model.Course{{ID: "1", Title: "DeFi 101"}}}
	c, clk := newTestCache(l, nil, DefaultConfig())
	ctx := context.Background()

	c.GetCourses(ctx)
	clk.t = clk.t.Add(3599 * time.Second)
	got := c.GetCourses(ctx)

	if l.calls != 1 {
		t.Errorf("lister called %d times, want 1", l.calls)
	}
	if len(got) != 1 || got[0].Title != "DeFi 101" {
		t.Errorf("unexpected courses %+v", got)
	}
}

func TestGetCourses_AfterTTLRefetchesOnceAndReplaces(t *testing.T) {
	l := &fakeLister{courses: []model.Course{{ID: "1"}, {ID: "2"}}}
	c, clk := newTestCache(l, nil, DefaultConfig())
	ctx := context.Background()

	c.GetCourses(ctx)
	l.courses = []model.Course{{ID: "3"}}
	clk.t = clk.t.Add(3600 * time.Second)

	got := c.GetCourses(ctx)
	c.GetCourses(ctx)

	if l.calls != 2 {
		t.Errorf("lister called %d times, want 2", l.calls)
	}
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("cache not replaced wholesale: %+v", got)
	}
	snap, ok := c.Snapshot()
	if !ok || !snap.FetchedAt.Equal(clk.t) {
		t.Errorf("fetched_at not updated: %+v", snap)
	}
}

func TestGetCourses_FailureWithoutCacheReturnsEmpty(t *testing.T) {
	l := &fakeLister{err: model.ErrCollaboratorUnavailable}
	c, _ := newTestCache(l, nil, DefaultConfig())

	got := c.GetCourses(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}
	if _, ok := c.Snapshot(); ok {
		t.Error("failure must not populate the cache")
	}
}

func TestGetCourses_FailureServesStaleWithinGrace(t *testing.T) {
	l := &fakeLister{courses: []model.Course{{ID: "1"}}}
	cfg := DefaultConfig()
	cfg.Grace = 10 * time.Minute
	c, clk := newTestCache(l, nil, cfg)
	ctx := context.Background()

	c.GetCourses(ctx)
	l.err = errors.New("boom")

	clk.t = clk.t.Add(time.Hour + 5*time.Minute)
	if got := c.GetCourses(ctx); len(got) != 1 {
		t.Errorf("expected stale list within grace, got %+v", got)
	}

	clk.t = clk.t.Add(10 * time.Minute)
	if got := c.GetCourses(ctx); len(got) != 0 {
		t.Errorf("expected empty list past grace, got %+v", got)
	}
}

func TestGetCourses_NoGraceMeansNoStale(t *testing.T) {
	l := &fakeLister{courses: []model.Course{{ID: "1"}}}
	c, clk := newTestCache(l, nil, DefaultConfig())
	ctx := context.Background()

	c.GetCourses(ctx)
	l.err = errors.New("boom")
	clk.t = clk.t.Add(time.Hour)
	if got := c.GetCourses(ctx); len(got) != 0 {
		t.Errorf("expected empty list, got %+v", got)
	}
}

func TestGetCourses_LoadsPersistedRecord(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "data", "courses_cache.json"))
	ctx := context.Background()

	l1 := &fakeLister{courses: []model.Course{{ID: "7", Title: "Move"}}}
	c1, clk := newTestCache(l1, store, DefaultConfig())
	c1.GetCourses(ctx)

	l2 := &fakeLister{}
	c2 := New(l2, store, DefaultConfig()).WithClock(func() time.Time { return clk.t.Add(time.Minute) })
	got := c2.GetCourses(ctx)

	if l2.calls != 0 {
		t.Errorf("persisted fresh record should avoid a network call, got %d calls", l2.calls)
	}
	if len(got) != 1 || got[0].Title != "Move" {
		t.Errorf("unexpected courses %+v", got)
	}
}

func TestFileStore_MissingFile(t *testing.T) {
	list, err := NewFileStore(filepath.Join(t.TempDir(), "none.json")).Load(context.Background())
	if err != nil || list != nil {
		t.Errorf("expected nil, nil; got %v, %v", list, err)
	}
}

func TestInvalidate_ForcesRefresh(t *testing.T) {
	l := &fakeLister{courses: []model.Course{{ID: "1"}}}
	c, _ := newTestCache(l, nil, DefaultConfig())
	ctx := context.Background()
	c.GetCourses(ctx)
	c.Invalidate()
	c.GetCourses(ctx)
	if l.calls != 2 {
		t.Errorf("lister called %d times, want 2", l.calls)
	}
}
