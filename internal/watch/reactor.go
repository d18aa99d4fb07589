package watch

import (
	"context"
	"os"
	"time"

	"typewatch/internal/checker"
)

// state is the reactor's explicit mode. Transitions:
//
//	idle       --event-->  debouncing
//	debouncing --event-->  debouncing (timer restarts)
//	debouncing --timer-->  checking
//	checking   --done-->   idle (pending events re-enter as debouncing)
type state int

const (
	stateIdle state = iota
	stateDebouncing
	stateChecking
)

// Runner is the checking surface the reactor drives. The production
// implementation is checker.Checker.
type Runner interface {
	CheckFile(path string) (*checker.Result, error)
	CheckSet(paths []string) (*checker.Result, error)
}

// Event is one completed check cycle, the unit of watch-mode output.
type Event struct {
	Kind      string          `json:"event"`     // always "check"
	Timestamp int64           `json:"timestamp"` // unix milliseconds
	Result    *checker.Result `json:"result"`
}

// Reactor debounces a stream of changed paths into check cycles. It
// owns the session for the duration of Run: checks execute inline on
// the reactor goroutine, so a burst arriving mid-check queues up and
// never interrupts the cycle in flight. No partial or overlapping
// events are ever emitted.
type Reactor struct {
	paths    <-chan string
	runner   Runner
	debounce time.Duration
	emit     func(Event)
	report   func(error)

	state   state
	pending []string
	member  map[string]bool
}

func NewReactor(paths <-chan string, runner Runner, debounce time.Duration, emit func(Event), report func(error)) *Reactor {
	if debounce <= 0 {
		debounce = 50 * time.Millisecond
	}
	return &Reactor{
		paths:    paths,
		runner:   runner,
		debounce: debounce,
		emit:     emit,
		report:   report,
		state:    stateIdle,
		member:   make(map[string]bool),
	}
}

// Run processes events until ctx is cancelled. Cancellation during a
// debounce window discards the pending batch; cancellation cannot
// interrupt a cycle already executing.
func (r *Reactor) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case p, ok := <-r.paths:
			if !ok {
				return
			}
			r.add(p)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(r.debounce)
			r.state = stateDebouncing

		case <-timer.C:
			r.state = stateChecking
			batch := r.pending
			r.pending = nil
			r.member = make(map[string]bool)
			r.runCycle(batch)
			r.state = stateIdle
		}
	}
}

func (r *Reactor) add(p string) {
	if r.member[p] {
		return
	}
	r.member[p] = true
	r.pending = append(r.pending, p)
}

func (r *Reactor) runCycle(batch []string) {
	if len(batch) == 0 {
		return
	}

	var res *checker.Result
	var err error
	if len(batch) == 1 && stillExists(batch[0]) {
		res, err = r.runner.CheckFile(batch[0])
	} else {
		// Multi-path batches and vanished files go through the set
		// query, whose skip rules treat a deletion as nothing left to
		// check rather than a failure.
		res, err = r.runner.CheckSet(batch)
	}
	if err != nil {
		// A failed cycle is reported and the reactor keeps running.
		if r.report != nil {
			r.report(err)
		}
		return
	}

	r.emit(Event{
		Kind:      "check",
		Timestamp: time.Now().UnixMilli(),
		Result:    res,
	})
}

// stillExists reports whether a pending path survived the debounce
// window. Watchers routinely deliver a write for a file an editor
// removes a moment later.
func stillExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
