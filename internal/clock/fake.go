package clock

import "time"

// FakeClock is a Clock pinned to a chosen instant. It only moves when a
// test calls Advance.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start.UTC()}
}

func (f *FakeClock) Now() time.Time { return f.now }

// Advance moves the clock forward by d.
func (f *FakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}
