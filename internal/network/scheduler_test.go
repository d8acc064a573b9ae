package network_test

import (
	"testing"
	"time"

	"github.com/jaimedvw/stellar-simulator/internal/network"
)

func TestSchedulerOrdersEventsByTimeThenSequence(t *testing.T) {
	s := network.NewScheduler()
	var order []int

	s.In(10*time.Millisecond, func() { order = append(order, 2) })
	s.In(5*time.Millisecond, func() { order = append(order, 1) })
	s.In(10*time.Millisecond, func() { order = append(order, 3) })

	s.StepUntil(network.SimTime(20 * time.Millisecond))

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %d, want %d", i, order[i], want[i])
		}
	}
}

func TestSchedulerInCancelFunc(t *testing.T) {
	s := network.NewScheduler()
	fired := false
	cancel := s.In(time.Millisecond, func() { fired = true })
	cancel()
	s.StepUntil(network.SimTime(time.Second))
	if fired {
		t.Errorf("expected a cancelled event not to fire")
	}
}

func TestSchedulerStepForAdvancesEvenWithNoEvents(t *testing.T) {
	s := network.NewScheduler()
	s.StepFor(time.Second)
	if s.Now() != network.SimTime(time.Second) {
		t.Errorf("expected Now() to reach the requested duration even with an empty queue")
	}
}

func TestSchedulerEmpty(t *testing.T) {
	s := network.NewScheduler()
	if !s.Empty() {
		t.Errorf("expected a fresh scheduler to be empty")
	}
	s.In(time.Millisecond, func() {})
	if s.Empty() {
		t.Errorf("expected a scheduler with a pending event not to be empty")
	}
}
