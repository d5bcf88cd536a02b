package adapter

import (
	"strconv"
	"sync/atomic"
	"time"
)

// SlugSource derives resume slugs from the candidate id and a millisecond
// timestamp that is strictly increasing within the process, so two resumes
// created in the same millisecond still get distinct slugs.
type SlugSource struct {
	last atomic.Int64
	now  func() time.Time
}

func NewSlugSource(now func() time.Time) *SlugSource {
	if now == nil {
		now = time.Now
	}
	return &SlugSource{now: now}
}

func (s *SlugSource) Next(candidateID string) string {
	for {
		prev := s.last.Load()
		next := s.now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if s.last.CompareAndSwap(prev, next) {
			return candidateID + "-" + strconv.FormatInt(next, 10)
		}
	}
}
