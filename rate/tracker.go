package rate

import "time"

// Tracker records admission timestamps and computes how much of the
// current sliding window has been consumed. Entries older than the
// window are pruned lazily on every utilization query.
//
// Tracker assumes non-decreasing timestamps from its caller and does
// no time measurement of its own. It is not safe for concurrent use;
// Windowed wraps it behind a mutex.
type Tracker struct {
	stamps []time.Time
	total  int64
}

// Record appends one admitted attempt.
func (t *Tracker) Record(ts time.Time) {
	t.stamps = append(t.stamps, ts)
	t.total++
}

// Utilization prunes entries older than now minus the window and
// returns count / MaxRequests. The result may transiently exceed 1.0
// under concurrent over-admission.
func (t *Tracker) Utilization(now time.Time, cfg Config) float64 {
	t.prune(now.Add(-cfg.Window))
	return float64(len(t.stamps)) / float64(cfg.MaxRequests)
}

// Len returns the number of timestamps currently inside the window,
// as of the last prune.
func (t *Tracker) Len() int {
	return len(t.stamps)
}

// Total returns the number of attempts recorded over the Tracker's
// lifetime, pruned or not.
func (t *Tracker) Total() int64 {
	return t.total
}

// Oldest returns the earliest timestamp still inside the window, as of
// the last prune. ok is false when the window is empty.
func (t *Tracker) Oldest() (time.Time, bool) {
	if len(t.stamps) == 0 {
		return time.Time{}, false
	}
	return t.stamps[0], true
}

func (t *Tracker) prune(cutoff time.Time) {
	// strictly older only; an entry exactly one window old still counts
	i := 0
	for i < len(t.stamps) && t.stamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		t.stamps = append(t.stamps[:0], t.stamps[i:]...)
	}
}
