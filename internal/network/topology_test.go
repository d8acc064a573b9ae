package network_test

import (
	"testing"
	"time"

	"github.com/jaimedvw/stellar-simulator/internal/network"
)

func TestFullyConnectedLinksEveryPair(t *testing.T) {
	s := network.NewScheduler()
	links := network.NewLinks(s)
	ids := []string{"a", "b", "c"}
	network.FullyConnected(links, ids, time.Millisecond)

	for _, from := range ids {
		for _, to := range ids {
			if from == to {
				continue
			}
			if !links.Connected(from, to) {
				t.Errorf("expected %s -> %s to be connected", from, to)
			}
		}
	}
}

func TestHubAndSpokeLeavesSpokesDisconnected(t *testing.T) {
	s := network.NewScheduler()
	links := network.NewLinks(s)
	network.HubAndSpoke(links, "hub", []string{"s1", "s2"}, time.Millisecond)

	if !links.Connected("hub", "s1") || !links.Connected("hub", "s2") {
		t.Errorf("expected the hub to be connected to every spoke")
	}
	if links.Connected("s1", "s2") {
		t.Errorf("expected spokes not to be connected to each other")
	}
}

func TestPartitionedIsolatesGroups(t *testing.T) {
	s := network.NewScheduler()
	links := network.NewLinks(s)
	network.Partitioned(links, []string{"a1", "a2"}, []string{"b1", "b2"}, time.Millisecond)

	if !links.Connected("a1", "a2") || !links.Connected("b1", "b2") {
		t.Errorf("expected each partition to be internally connected")
	}
	if links.Connected("a1", "b1") {
		t.Errorf("expected no links to cross partitions")
	}
}
