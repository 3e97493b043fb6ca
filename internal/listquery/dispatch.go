package listquery

import "sync"

// dispatcher runs queued callbacks one at a time on a single goroutine, in the
// order they were queued. The queue is unbounded so pushing never blocks and a
// running callback may push more work.
type dispatcher struct {
	mu    sync.Mutex
	queue []func()

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *dispatcher) push(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) run() {
	for {
		d.mu.Lock()
		batch := d.queue
		d.queue = nil
		d.mu.Unlock()

		for _, fn := range batch {
			select {
			case <-d.done:
				return
			default:
			}
			fn()
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-d.wake:
		case <-d.done:
			return
		}
	}
}

// stop ends the loop. Queued callbacks that have not started are dropped.
func (d *dispatcher) stop() {
	d.once.Do(func() { close(d.done) })
}
