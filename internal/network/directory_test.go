package network_test

import (
	"testing"
	"time"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
	"github.com/jaimedvw/stellar-simulator/internal/network"
)

type stubPeerView struct{ name string }

func (s stubPeerView) Name() string                                    { return s.name }
func (s stubPeerView) NominateOutbox() []consensus.NominateEnvelope     { return nil }
func (s stubPeerView) PrepareOutbox() []consensus.PrepareEnvelope       { return nil }
func (s stubPeerView) CommitOutbox() []consensus.CommitEnvelope         { return nil }
func (s stubPeerView) ExternalizeOutbox() []consensus.ExternalizeRecord { return nil }

func TestDirectoryPeerRequiresLink(t *testing.T) {
	s := network.NewScheduler()
	links := network.NewLinks(s)
	dir := network.NewDirectory(links, 16)
	dir.Register("b", stubPeerView{"b"})

	if _, ok := dir.Peer("a", "b"); ok {
		t.Errorf("expected Peer to fail when a and b are not linked")
	}

	links.Connect("a", "b", time.Millisecond)
	view, ok := dir.Peer("a", "b")
	if !ok || view.Name() != "b" {
		t.Errorf("expected Peer to succeed once a and b are linked")
	}
}

func TestDirectoryPeerUnknownName(t *testing.T) {
	dir := network.NewDirectory(nil, 16)
	if _, ok := dir.Peer("a", "ghost"); ok {
		t.Errorf("expected an unregistered name to resolve to false")
	}
}

func TestDirectoryPeerWithoutLinksIsUngated(t *testing.T) {
	dir := network.NewDirectory(nil, 16)
	dir.Register("a", stubPeerView{"a"})

	view, ok := dir.Peer("caller", "a")
	if !ok || view.Name() != "a" {
		t.Errorf("expected a Directory with no Links to resolve any registered peer")
	}
}

func TestDirectoryPeerCaches(t *testing.T) {
	s := network.NewScheduler()
	links := network.NewLinks(s)
	links.Connect("a", "b", time.Millisecond)
	dir := network.NewDirectory(links, 16)
	dir.Register("b", stubPeerView{"b"})

	if _, ok := dir.Peer("a", "b"); !ok {
		t.Fatalf("expected first resolution to succeed")
	}
	links.Disconnect("a", "b")
	// A cached resolution should still be returned even after the link drops.
	if _, ok := dir.Peer("a", "b"); !ok {
		t.Errorf("expected a cached resolution to survive a later disconnect")
	}
}

func TestDirectoryPeerGatesPartitionedNodes(t *testing.T) {
	s := network.NewScheduler()
	links := network.NewLinks(s)
	dir := network.NewDirectory(links, 16)
	dir.Register("a", stubPeerView{"a"})
	dir.Register("b", stubPeerView{"b"})
	dir.Register("c", stubPeerView{"c"})

	network.Partitioned(links, []string{"a", "b"}, []string{"c"}, time.Millisecond)

	if _, ok := dir.Peer("a", "c"); ok {
		t.Errorf("expected a partitioned node to be unreachable across the partition")
	}
	if _, ok := dir.Peer("a", "b"); !ok {
		t.Errorf("expected nodes on the same side of the partition to reach each other")
	}
}
