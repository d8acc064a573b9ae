package network

// Group is a named set of peer IDs, used to describe and build topologies
// in bulk (connect every member of one group to every member of another).
type Group struct {
	ids []PeerID
}

// NewGroup creates a group from the given peer IDs.
func NewGroup(ids ...PeerID) *Group {
	return &Group{ids: append([]PeerID(nil), ids...)}
}

// IDs returns the group's member IDs.
func (g *Group) IDs() []PeerID { return g.ids }

// Connect links every member of g to every member of other with the given
// delay, skipping self-links.
func (g *Group) Connect(links *Links, other *Group, delay SimDuration) {
	for _, from := range g.ids {
		for _, to := range other.ids {
			if from != to {
				links.Connect(from, to, delay)
			}
		}
	}
}

// FullyConnected links every peer in ids to every other peer, both
// directions, with the given delay.
func FullyConnected(links *Links, ids []PeerID, delay SimDuration) {
	g := NewGroup(ids...)
	g.Connect(links, g, delay)
}

// HubAndSpoke links hub to every spoke and every spoke to hub, but leaves
// spokes disconnected from each other.
func HubAndSpoke(links *Links, hub PeerID, spokes []PeerID, delay SimDuration) {
	hubGroup := NewGroup(hub)
	spokeGroup := NewGroup(spokes...)
	hubGroup.Connect(links, spokeGroup, delay)
	spokeGroup.Connect(links, hubGroup, delay)
}

// Partitioned fully connects groupA and groupB internally but creates no
// links between them, useful for exercising the quorum-intersection edge
// cases a federated network can hit under a network split.
func Partitioned(links *Links, groupA, groupB []PeerID, delay SimDuration) {
	FullyConnected(links, groupA, delay)
	FullyConnected(links, groupB, delay)
}
