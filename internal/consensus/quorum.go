package consensus

import (
	"math"
	"math/rand"
)

// DefaultThresholdPercent is THRESHOLD_DEFAULT from the source: a 55%
// quorum threshold used whenever a QuorumSet is not configured with one.
const DefaultThresholdPercent = 55.0

// QuorumSet is a node's collection of quorum slices: a flat list of
// validator names plus arbitrarily nested inner quorum sets. Per the
// cyclic-reference design note, members are stable peer names resolved
// on demand through a PeerDirectory rather than owned pointers; inner sets
// are a tagged variant at the QuorumSet level (a member is either a
// top-level Validator name or a Nested *QuorumSet), so flattening is a
// total recursive traversal instead of a heterogeneous list walk.
type QuorumSet struct {
	owner     string
	threshold float64 // percentile in (0,100] or fraction in (0,1]
	validators []string
	innerSets  []*QuorumSet
}

// NewQuorumSet creates a QuorumSet owned by the given node name with the
// default threshold. No consensus operation may run until Set is called.
func NewQuorumSet(owner string) *QuorumSet {
	return &QuorumSet{owner: owner, threshold: DefaultThresholdPercent}
}

// Set configures the quorum membership: validators, nested inner sets, and
// an optional threshold override (percentile in (0,100] or fraction in
// (0,1]; zero means "leave unchanged").
func (q *QuorumSet) Set(validators []string, innerSets []*QuorumSet, threshold float64) {
	q.validators = append([]string(nil), validators...)
	q.innerSets = append([]*QuorumSet(nil), innerSets...)
	if threshold > 0 {
		q.threshold = threshold
	}
}

// Owner returns the name of the node this quorum set belongs to.
func (q *QuorumSet) Owner() string { return q.owner }

// Validators returns a copy of the top-level validator names.
func (q *QuorumSet) Validators() []string {
	return append([]string(nil), q.validators...)
}

// InnerSets returns the nested inner quorum sets.
func (q *QuorumSet) InnerSets() []*QuorumSet {
	return append([]*QuorumSet(nil), q.innerSets...)
}

// flatten returns every validator name transitively reachable through
// nested inner sets, in slice order (duplicates preserved; callers that
// need distinct peers dedupe separately since a name may legitimately
// repeat across slices and threshold counting must still treat it as one
// peer).
func (q *QuorumSet) flatten() []string {
	out := append([]string(nil), q.validators...)
	for _, inner := range q.innerSets {
		out = append(out, inner.flatten()...)
	}
	return out
}

// FlattenDistinct returns the distinct (deduplicated) set of peer names
// transitively reachable through validators and nested inner sets.
func (q *QuorumSet) FlattenDistinct() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, name := range q.flatten() {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Size is the number of quorum members as walked by flatten(): the
// top-level validators together with every validator of the nested inner
// sets (flatten() already includes the top level, so this is not
// validators-plus-flatten). A name listed in several slices counts once
// per listing.
func (q *QuorumSet) Size() int {
	return len(q.flatten())
}

// MinimumQuorum returns ceil(size * threshold_fraction), normalising a
// percentile threshold (0,100] to a fraction.
func (q *QuorumSet) MinimumQuorum() int {
	size := q.Size()
	frac := q.thresholdFraction()
	return int(math.Ceil(float64(size) * frac))
}

func (q *QuorumSet) thresholdFraction() float64 {
	if q.threshold > 0 && q.threshold <= 1 {
		return q.threshold
	}
	return q.threshold / 100.0
}

// Weight returns the fraction of top-level slices (validators + inner
// sets, each counted once) that contain v, with the owning node itself
// always weighted 1.0. This is the authoritative weight definition per the
// spec's design notes -- Node-level weight() in the source returns a
// constant 1.0 and is not reproduced here.
func (q *QuorumSet) Weight(v string) float64 {
	if v == q.owner {
		return 1.0
	}

	totalSlices := len(q.validators) + len(q.innerSets)
	if totalSlices == 0 {
		return 0.0
	}

	count := 0
	for _, name := range q.validators {
		if name == v {
			count++
		}
	}
	for _, inner := range q.innerSets {
		if inner.isInside(v) {
			count++
		}
	}
	return float64(count) / float64(totalSlices)
}

func (q *QuorumSet) isInside(v string) bool {
	for _, name := range q.validators {
		if name == v {
			return true
		}
	}
	for _, inner := range q.innerSets {
		if inner.isInside(v) {
			return true
		}
	}
	return false
}

// RetrieveRandomPeer uniformly samples one peer from validators union
// flattened inner sets, excluding caller. Returns ("", false) if no
// candidate remains.
func (q *QuorumSet) RetrieveRandomPeer(caller string, rng *rand.Rand) (string, bool) {
	var candidates []string
	for _, name := range q.flatten() {
		if name != caller {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// signedSet is the shared shape of a statement-counter entry: peer names
// that voted or accepted a given value/ballot.
type signedSet struct {
	Voted    map[string]struct{}
	Accepted map[string]struct{}
}

func emptySignedSet() signedSet {
	return signedSet{Voted: map[string]struct{}{}, Accepted: map[string]struct{}{}}
}

// CheckThreshold counts distinct peers in the flattened quorum whose name
// appears in entry.Voted or entry.Accepted, and reports whether that count
// meets k. An unknown value (no counter entry) never throws: it is treated
// as zero signatures.
func (q *QuorumSet) CheckThreshold(entry signedSet, k int) bool {
	signed := 0
	seen := make(map[string]struct{})
	for _, peer := range q.flatten() {
		if _, dup := seen[peer]; dup {
			continue
		}
		if _, voted := entry.Voted[peer]; voted {
			seen[peer] = struct{}{}
			signed++
			continue
		}
		if _, accepted := entry.Accepted[peer]; accepted {
			seen[peer] = struct{}{}
			signed++
		}
	}
	return signed >= k
}

// CheckInnerSetBlockingThreshold returns the count of distinct peers in
// slice (excluding caller) that appear in callerEntry's voted union
// accepted sets -- the contribution a single nested inner set makes toward
// a v-blocking determination.
func CheckInnerSetBlockingThreshold(caller string, callerEntry signedSet, slice *QuorumSet) int {
	count := 0
	seen := make(map[string]struct{})
	for _, peer := range slice.flatten() {
		if peer == caller {
			continue
		}
		if _, dup := seen[peer]; dup {
			continue
		}
		_, voted := callerEntry.Voted[peer]
		_, accepted := callerEntry.Accepted[peer]
		if voted || accepted {
			seen[peer] = struct{}{}
			count++
		}
	}
	return count
}
