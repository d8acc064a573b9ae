// Package network provides the simulated peer-to-peer transport: a
// discrete-event scheduler, delay-bearing links between named peers, and
// topology builders (fully connected, hub-and-spoke, partitioned) used to
// wire a PeerDirectory for the consensus engine.
package network

import (
	"container/heap"
	"sync"
	"time"
)

// SimTime is simulated time as a duration from epoch.
type SimTime time.Duration

// SimDuration is an alias for time.Duration used throughout the simulation.
type SimDuration = time.Duration

type event struct {
	when    SimTime
	seq     uint64
	handler func()
	index   int
}

type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].when == h[j].when {
		return h[i].seq < h[j].seq
	}
	return h[i].when < h[j].when
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x interface{}) {
	e := x.(*event)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Scheduler is a single-threaded discrete event scheduler: events run in
// time order with no real delay between them, so a whole simulation run
// advances deterministically regardless of wall-clock speed.
type Scheduler struct {
	mu      sync.Mutex
	now     SimTime
	events  eventHeap
	nextSeq uint64
}

// NewScheduler creates a scheduler starting at time 0.
func NewScheduler() *Scheduler {
	s := &Scheduler{events: make(eventHeap, 0)}
	heap.Init(&s.events)
	return s
}

// Now returns the current simulated time, implementing consensus.Clock via
// the float64 adapter in Driver.
func (s *Scheduler) Now() SimTime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// In schedules handler after duration d and returns a cancel function.
func (s *Scheduler) In(d SimDuration, handler func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &event{when: s.now + SimTime(d), seq: s.nextSeq, handler: handler}
	s.nextSeq++
	heap.Push(&s.events, e)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e.index >= 0 {
			heap.Remove(&s.events, e.index)
		}
	}
}

// At schedules handler at an absolute simulated time.
func (s *Scheduler) At(when SimTime, handler func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &event{when: when, seq: s.nextSeq, handler: handler}
	s.nextSeq++
	heap.Push(&s.events, e)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e.index >= 0 {
			heap.Remove(&s.events, e.index)
		}
	}
}

// StepOne processes a single due event. Returns false if the queue is empty.
func (s *Scheduler) StepOne() bool {
	s.mu.Lock()
	if s.events.Len() == 0 {
		s.mu.Unlock()
		return false
	}
	e := heap.Pop(&s.events).(*event)
	s.now = e.when
	handler := e.handler
	s.mu.Unlock()

	handler()
	return true
}

// StepUntil processes events until the given simulated time, advancing Now
// to until even if no events remain.
func (s *Scheduler) StepUntil(until SimTime) int {
	count := 0
	for {
		s.mu.Lock()
		if s.events.Len() == 0 || s.events[0].when > until {
			s.now = until
			s.mu.Unlock()
			break
		}
		e := heap.Pop(&s.events).(*event)
		s.now = e.when
		handler := e.handler
		s.mu.Unlock()

		handler()
		count++
	}
	return count
}

// StepFor processes events for the given duration of simulated time.
func (s *Scheduler) StepFor(d SimDuration) int {
	s.mu.Lock()
	until := s.now + SimTime(d)
	s.mu.Unlock()
	return s.StepUntil(until)
}

// StepWhile processes events while pred returns true.
func (s *Scheduler) StepWhile(pred func() bool) int {
	count := 0
	for pred() {
		if !s.StepOne() {
			break
		}
		count++
	}
	return count
}

// Empty reports whether any events are pending.
func (s *Scheduler) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.Len() == 0
}
