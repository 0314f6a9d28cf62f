package model

import "time"

// Course is one entry of the external course listing.
type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// CachedCourseList is the single global course cache record.
type CachedCourseList struct {
	FetchedAt time.Time `json:"timestamp"`
	Courses   []Course  `json:"courses"`
}

// FreshAt reports whether the entry is still within ttl at now.
func (c *CachedCourseList) FreshAt(now time.Time, ttl time.Duration) bool {
	return c != nil && now.Sub(c.FetchedAt) < ttl
}
