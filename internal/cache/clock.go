package cache

import "time"

// Clock abstracts wall-clock time so TTL expiry is testable with a
// fake rather than timing-dependent sleeps.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }
