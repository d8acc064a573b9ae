package network

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
)

// Directory is a consensus.PeerDirectory backed by a name -> PeerView
// registry, gated by the simulated topology: a peer is first resolved only
// by another peer it is actually linked to. Resolutions are cached in a
// bounded LRU so large simulations (hundreds of nodes, many slots) do not
// grow an unbounded lookup table in the hot path of every Nominate/Receive
// tick; a cached resolution is served without consulting the links again,
// so it keeps working after the link is removed.
type Directory struct {
	links    *Links
	registry map[PeerID]consensus.PeerView
	cache    *lru.Cache[string, consensus.PeerView]
}

// NewDirectory creates a Directory gated by links, caching up to
// cacheSize resolved (caller, target) lookups.
func NewDirectory(links *Links, cacheSize int) *Directory {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, _ := lru.New[string, consensus.PeerView](cacheSize)
	return &Directory{
		links:    links,
		registry: make(map[PeerID]consensus.PeerView),
		cache:    cache,
	}
}

// Register makes a node resolvable by name.
func (d *Directory) Register(name PeerID, view consensus.PeerView) {
	d.registry[name] = view
}

// Peer implements consensus.PeerDirectory: it resolves target as seen by
// caller. The (caller, target) cache is checked first; on a miss the
// lookup is gated by the simulated topology -- caller can only resolve a
// peer it is linked to at that moment. A Directory built with a nil Links (as
// tests that don't care about topology do) makes every registered peer
// reachable from any caller, since there is no topology to gate on.
func (d *Directory) Peer(caller, target PeerID) (consensus.PeerView, bool) {
	key := caller + ">" + target
	if view, ok := d.cache.Get(key); ok {
		return view, true
	}
	if d.links != nil && !d.links.Connected(caller, target) {
		return nil, false
	}
	view, ok := d.registry[target]
	if ok {
		d.cache.Add(key, view)
	}
	return view, ok
}
