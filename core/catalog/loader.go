package catalog

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Loader runs Interface.Load callbacks for async requests on a single
// background goroutine shared by every catalog built on it.
//
// Create one Loader per process, hand it to each catalog and call Poll once
// per tick from the goroutine that owns those catalogs. The background
// goroutine starts with the first catalog and runs until Close.
type Loader struct {
	logger *zap.Logger

	mu    sync.Mutex
	queue []request

	// pending counts enqueued requests the background goroutine has not
	// picked up; completed counts finished requests Poll has not drained.
	pending   *semaphore
	completed *semaphore

	once    sync.Once
	started atomic.Bool
	done    chan struct{}
}

// NewLoader creates an idle loader. A nil logger disables logging.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger:    logger,
		pending:   newSemaphore(),
		completed: newSemaphore(),
		done:      make(chan struct{}),
	}
}

func (l *Loader) start() {
	l.once.Do(func() {
		l.started.Store(true)
		go l.run()
	})
}

func (l *Loader) enqueue(r request) {
	l.mu.Lock()
	l.queue = append(l.queue, r)
	l.mu.Unlock()
	l.pending.Add(1)
}

func (l *Loader) run() {
	defer close(l.done)

	for l.pending.Wait() {
		l.mu.Lock()
		i := l.newestPending()
		r := l.queue[i]
		l.mu.Unlock()

		err := r.load()

		l.mu.Lock()
		if err != nil {
			l.queue[i].state = stateFailed
			l.queue[i].err = err
		} else {
			l.queue[i].state = stateValid
		}
		l.mu.Unlock()

		l.completed.Add(1)
	}
}

// newestPending returns the index of the most recently enqueued request that
// has not been processed. Callers hold l.mu and have taken a pending unit, so
// one exists.
func (l *Loader) newestPending() int {
	for i := len(l.queue) - 1; i >= 0; i-- {
		if l.queue[i].state == statePending {
			return i
		}
	}
	panic("catalog: invariant violated: pending semaphore without a pending request")
}

// load runs on the loader goroutine. The descriptor buffer is written in
// place; it shares its backing array with the queued copy.
func (r *request) load() (err error) {
	if r.err != nil {
		return r.err
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("load callback panicked: %v", p)
		}
	}()
	return r.catalog.iface.Load(r.raw, r.descriptor)
}

// Poll drains finished requests and completes them on the calling goroutine:
// successful loads are merged into their slots, failed ones receive the
// fallback asset. It never blocks and returns the number of requests handled.
func (l *Loader) Poll() int {
	if !l.completed.TryWait() {
		return 0
	}

	l.mu.Lock()
	var done []request
	allHandled := true
	for i := range l.queue {
		switch l.queue[i].state {
		case stateValid, stateFailed:
			done = append(done, l.queue[i])
			l.queue[i].state = stateHandled
		case statePending:
			allHandled = false
		}
	}
	if allHandled {
		clear(l.queue)
		l.queue = l.queue[:0]
	}
	// Completion callbacks may enqueue more loads, so the lock must be
	// released before any of them runs.
	l.mu.Unlock()

	for i := range done {
		done[i].catalog.complete(&done[i])
	}
	return len(done)
}

// Queued returns the number of requests not yet drained by Poll.
func (l *Loader) Queued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for i := range l.queue {
		if l.queue[i].state != stateHandled {
			n++
		}
	}
	return n
}

// Close stops the background goroutine after its current request. Requests
// still queued are never completed.
func (l *Loader) Close() {
	l.pending.Close()
	if l.started.Load() {
		<-l.done
	}
}
