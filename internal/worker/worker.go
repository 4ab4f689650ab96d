// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package worker

import (
	"container/heap"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Priority orders ready tasks. Higher priorities run first.
type Priority uint8

const (
	// PriorityLow is used for deferred housekeeping such as catch-up ticks.
	PriorityLow Priority = iota

	// PriorityHigh is used for sampling work and control-plane signals.
	PriorityHigh

	numPriorities
)

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Worker is a single goroutine with a serial task queue.
//
// Thread safety: Post, Len and Close are safe for concurrent use.
type Worker struct {
	mu      sync.Mutex
	ready   [numPriorities][]func()
	delayed delayQueue
	seq     uint64
	stopped bool // set under mu once drain has emptied the queues

	// wake nudges the loop after a Post. Buffered so Post never blocks.
	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup

	running atomic.Bool
	logger  func() *slog.Logger
}

// New starts a worker goroutine. logger supplies the logger used to report
// recovered task panics; nil disables reporting.
func New(logger func() *slog.Logger) *Worker {
	if logger == nil {
		logger = func() *slog.Logger { return slog.New(slog.DiscardHandler) }
	}
	w := &Worker{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
	w.running.Store(true)
	w.wg.Add(1)
	go w.loop()
	return w
}

// Post schedules fn to run on the worker after delay.
// A zero or negative delay makes the task ready immediately.
// Returns false if fn is nil or the worker is closed.
func (w *Worker) Post(fn func(), prio Priority, delay time.Duration) bool {
	if fn == nil || !w.running.Load() {
		return false
	}
	if prio >= numPriorities {
		prio = PriorityHigh
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return false
	}
	if delay <= 0 {
		w.ready[prio] = append(w.ready[prio], fn)
	} else {
		w.seq++
		heap.Push(&w.delayed, &delayedTask{
			fn:   fn,
			prio: prio,
			due:  time.Now().Add(delay),
			seq:  w.seq,
		})
	}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return true
}

// Len returns the number of tasks waiting to run, delayed ones included.
func (w *Worker) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := w.delayed.Len()
	for _, q := range w.ready {
		n += len(q)
	}
	return n
}

// IsRunning reports whether the worker still accepts tasks.
func (w *Worker) IsRunning() bool {
	return w.running.Load()
}

// Close stops accepting tasks, runs every task that is already due and
// waits for the goroutine to exit. Delayed tasks that are not yet due are
// dropped. Close is safe to call multiple times.
func (w *Worker) Close() {
	if !w.running.CompareAndSwap(true, false) {
		return
	}
	close(w.done)
	w.wg.Wait()
}

func (w *Worker) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		fn, wait := w.next(time.Now())
		if fn != nil {
			w.run(fn)
			continue
		}

		var timeout <-chan time.Time
		if wait > 0 {
			if timer == nil {
				timer = time.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}
			timeout = timer.C
		}

		select {
		case <-w.done:
			w.drain()
			return
		case <-w.wake:
		case <-timeout:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// next promotes due delayed tasks and pops the highest-priority ready task.
// When nothing is ready it returns the time until the earliest delayed task,
// or zero if there is none.
func (w *Worker) next(now time.Time) (func(), time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.nextLocked(now)
}

func (w *Worker) nextLocked(now time.Time) (func(), time.Duration) {
	for w.delayed.Len() > 0 && !w.delayed[0].due.After(now) {
		t := heap.Pop(&w.delayed).(*delayedTask)
		w.ready[t.prio] = append(w.ready[t.prio], t.fn)
	}

	for p := numPriorities - 1; ; p-- {
		if q := w.ready[p]; len(q) > 0 {
			fn := q[0]
			q[0] = nil
			w.ready[p] = q[1:]
			return fn, 0
		}
		if p == 0 {
			break
		}
	}

	if w.delayed.Len() > 0 {
		return nil, w.delayed[0].due.Sub(now)
	}
	return nil, 0
}

// drain runs every due task. The final empty check and the stop happen
// under one lock, so a racing Post either lands in a queue drained here or
// is refused.
func (w *Worker) drain() {
	for {
		w.mu.Lock()
		fn, _ := w.nextLocked(time.Now())
		if fn == nil {
			w.stopped = true
			w.delayed = nil
			w.mu.Unlock()
			return
		}
		w.mu.Unlock()
		w.run(fn)
	}
}

func (w *Worker) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.logger().Warn("worker: task panicked", "panic", r)
		}
	}()
	fn()
}

type delayedTask struct {
	fn   func()
	prio Priority
	due  time.Time
	seq  uint64
}

// delayQueue is a min-heap ordered by due time, then posting order.
type delayQueue []*delayedTask

func (q delayQueue) Len() int { return len(q) }

func (q delayQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q delayQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *delayQueue) Push(x any) { *q = append(*q, x.(*delayedTask)) }

func (q *delayQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
