package listquery

import "time"

// debounced is the time-lagged shadow of one raw field. At most one timer is live;
// every restart stops the previous timer first. gen guards against a timer that
// fired concurrently with Stop: only the callback of the newest generation settles.
type debounced[T any] struct {
	value T
	timer *time.Timer
	gen   uint64
}

// restart (re)arms the timer. fire receives the generation it was armed with.
func (d *debounced[T]) restart(wait time.Duration, fire func(gen uint64)) {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(wait, func() { fire(gen) })
}

// settle stores v if gen is current and reports whether it did.
func (d *debounced[T]) settle(gen uint64, v T) bool {
	if gen != d.gen || d.timer == nil {
		return false
	}
	d.timer = nil
	d.value = v
	return true
}

// flush cancels the pending timer and stores v immediately.
func (d *debounced[T]) flush(v T) {
	d.stop()
	d.value = v
}

func (d *debounced[T]) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *debounced[T]) pending() bool {
	return d.timer != nil
}
