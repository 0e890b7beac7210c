package shard

// Executor runs every operation against one Shard on a single goroutine, so
// that an operation always runs to completion before any other operation on
// the same shard observes intermediate state (spec §5's "single-operation
// atomicity per shard without locks"). This is the Go degradation of the
// reference implementation's one-reactor-per-core Seastar scheduling,
// chosen per spec §9: a goroutine draining a bounded channel inbox instead
// of a pinned-thread reactor.
type Executor struct {
	inbox chan func()
	done  chan struct{}
}

// NewExecutor starts an Executor with the given inbox capacity. inboxSize
// <= 0 is treated as 1 so the executor always has somewhere to enqueue the
// in-flight task.
func NewExecutor(inboxSize int) *Executor {
	if inboxSize <= 0 {
		inboxSize = 1
	}
	e := &Executor{
		inbox: make(chan func(), inboxSize),
		done:  make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Executor) run() {
	for {
		select {
		case task, ok := <-e.inbox:
			if !ok {
				return
			}
			task()
		case <-e.done:
			return
		}
	}
}

// Submit enqueues fn to run on the executor goroutine and blocks until it
// has completed, returning its error. If the inbox is full, Submit returns
// ErrOverloaded immediately without enqueuing (spec §5 "Backpressure").
func Submit[T any](e *Executor, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	resultCh := make(chan result, 1)
	task := func() {
		v, err := fn()
		resultCh <- result{value: v, err: err}
	}
	select {
	case e.inbox <- task:
	default:
		var zero T
		return zero, ErrOverloaded
	}
	r := <-resultCh
	return r.value, r.err
}

// SubmitVoid is Submit for operations with no return value besides an
// error.
func SubmitVoid(e *Executor, fn func() error) error {
	_, err := Submit(e, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Close stops the executor's goroutine. Tasks already enqueued are not
// guaranteed to run.
func (e *Executor) Close() {
	close(e.done)
}
