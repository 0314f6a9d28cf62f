// Package cache holds the time-bounded course list cache.
package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"LiquiMind/internal/collector"
	"LiquiMind/internal/model"
)

// Config is the refresh policy of an ActivityCache.
type Config struct {
	// TTL is how long a fetched list is served without a network call.
	TTL time.Duration
	// Grace extends TTL for serving a stale list while the lister is failing.
	// Zero disables stale serving.
	Grace time.Duration
	// Timeout bounds each lister call.
	Timeout time.Duration
}

// DefaultConfig is a one hour TTL with no stale grace.
func DefaultConfig() Config {
	return Config{TTL: time.Hour, Timeout: 30 * time.Second}
}

// Store persists the single global cache record.
type Store interface {
	Load(ctx context.Context) (*model.CachedCourseList, error)
	Save(ctx context.Context, list *model.CachedCourseList) error
}

// ActivityCache serves the course list, calling the lister at most once per TTL.
// The cached entry is only ever replaced wholesale and only on a successful fetch.
type ActivityCache struct {
	mu     sync.Mutex
	cfg    Config
	lister collector.CourseLister
	store  Store
	now    func() time.Time

	entry  *model.CachedCourseList
	loaded bool
}

// New creates a cache. store may be nil for a memory-only cache.
func New(lister collector.CourseLister, store Store, cfg Config) *ActivityCache {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &ActivityCache{cfg: cfg, lister: lister, store: store, now: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (c *ActivityCache) WithClock(now func() time.Time) *ActivityCache {
	c.now = now
	return c
}

// GetCourses returns the cached list when fresh, otherwise refreshes it.
// A failed refresh returns the previous list while within TTL+Grace, else an
// empty list: callers never see an error from the course collaborator.
func (c *ActivityCache) GetCourses(ctx context.Context) []model.Course {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadOnce(ctx)
	now := c.now()
	if c.entry.FreshAt(now, c.cfg.TTL) {
		return copyCourses(c.entry.Courses)
	}

	courses, err := c.fetch(ctx)
	if err != nil {
		if c.cfg.Grace > 0 && c.entry.FreshAt(now, c.cfg.TTL+c.cfg.Grace) {
			log.Printf("[WARN] course refresh failed, serving stale list from %s: %v", c.entry.FetchedAt.Format(time.RFC3339), err)
			return copyCourses(c.entry.Courses)
		}
		log.Printf("[WARN] course refresh failed, returning empty list: %v", err)
		return []model.Course{}
	}

	c.entry = &model.CachedCourseList{FetchedAt: now, Courses: courses}
	if c.store != nil {
		if err := c.store.Save(ctx, c.entry); err != nil {
			log.Printf("[ERROR] persist course cache: %v", err)
		}
	}
	return copyCourses(courses)
}

// Snapshot returns the current entry without refreshing it.
func (c *ActivityCache) Snapshot() (model.CachedCourseList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return model.CachedCourseList{}, false
	}
	return model.CachedCourseList{FetchedAt: c.entry.FetchedAt, Courses: copyCourses(c.entry.Courses)}, true
}

// Invalidate drops the in-memory entry so the next call refreshes.
func (c *ActivityCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
	c.loaded = true
}

func (c *ActivityCache) loadOnce(ctx context.Context) {
	if c.loaded {
		return
	}
	c.loaded = true
	if c.store == nil {
		return
	}
	entry, err := c.store.Load(ctx)
	if err != nil {
		log.Printf("[WARN] load course cache: %v", err)
		return
	}
	c.entry = entry
}

func (c *ActivityCache) fetch(ctx context.Context) ([]model.Course, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	courses, err := c.lister.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

func copyCourses(in []model.Course) []model.Course {
	out := make([]model.Course, len(in))
	copy(out, in)
	return out
}
