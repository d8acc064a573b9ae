package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaimedvw/stellar-simulator/internal/config"
	"github.com/jaimedvw/stellar-simulator/internal/consensus"
	"github.com/jaimedvw/stellar-simulator/internal/ledger"
	"github.com/jaimedvw/stellar-simulator/internal/mempool"
	"github.com/jaimedvw/stellar-simulator/internal/network"
	"github.com/jaimedvw/stellar-simulator/internal/sim"
	"github.com/jaimedvw/stellar-simulator/internal/storage/ledgerstore"
	"github.com/jaimedvw/stellar-simulator/internal/storage/mempoolstore"
)

// nodeLedger is the surface run needs from either ledger implementation:
// the consensus.Ledger contract plus Height for progress reporting.
type nodeLedger interface {
	consensus.Ledger
	Height() int
}

// nodeMempool is the surface run needs from either mempool implementation:
// the consensus.Mempool contract plus Submit for seeding/injection.
type nodeMempool interface {
	consensus.Mempool
	Submit(consensus.Transaction)
}

// persistentMempool wraps an in-memory mempool.Mempool with a mempoolstore
// snapshot, so pending (not-yet-finalised) transactions survive a process
// restart between runs: Submit/Remove keep the on-disk snapshot in lockstep
// with the in-memory pool the engine actually drains from.
type persistentMempool struct {
	mem   *mempool.Mempool
	store *mempoolstore.Store
}

// newPersistentMempool opens store's existing snapshot (if any) into a
// fresh in-memory pool and returns a mempool ready to Submit/Remove from.
func newPersistentMempool(store *mempoolstore.Store) (*persistentMempool, error) {
	mem := mempool.New()
	txs, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("persistentMempool: load snapshot: %w", err)
	}
	for _, tx := range txs {
		mem.Submit(tx)
	}
	return &persistentMempool{mem: mem, store: store}, nil
}

func (p *persistentMempool) Submit(tx consensus.Transaction) {
	p.mem.Submit(tx)
	_ = p.store.Put(tx)
}

func (p *persistentMempool) GetTransaction() (consensus.Transaction, bool) {
	return p.mem.GetTransaction()
}

func (p *persistentMempool) GetAllTransactions() []consensus.Transaction {
	return p.mem.GetAllTransactions()
}

func (p *persistentMempool) Remove(tx consensus.Transaction) {
	p.mem.Remove(tx)
	_ = p.store.Delete(tx)
}

// runCmd runs a simulation from CLI flags (and an optional --config file),
// printing each node's ledger height once the target slot count is
// reached on every node or the tick budget runs out.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an SCP node simulation",
	Long: `run constructs a synthetic network of nodes sharing one mempool,
wires their quorum sets per --topology, and drives the four-phase SCP
protocol until every node has externalized --slots slots.`,
	RunE: runSimulation,
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	pool, closePool, err := newRunMempool(cfg)
	if err != nil {
		return err
	}
	defer closePool()
	seedTransactions(pool, cfg)

	scheduler := network.NewScheduler()
	links := network.NewLinks(scheduler)
	directory := network.NewDirectory(links, 4096)

	ids := nodeIDs(cfg.Nodes)
	delay := time.Duration(cfg.LinkDelayMillis) * time.Millisecond
	wireTopology(cfg.Topology, links, ids, delay)

	driver := sim.NewDriver(scheduler, directory, links)
	ledgers := make(map[string]nodeLedger, len(ids))

	for _, name := range ids {
		qs := consensus.NewQuorumSet(name)
		qs.Set(peersOf(ids, name), nil, cfg.QuorumThreshold)

		led, err := newNodeLedger(cfg, name)
		if err != nil {
			return fmt.Errorf("run: open ledger for %s: %w", name, err)
		}
		ledgers[name] = led
		engine := consensus.NewEngine(name, qs, pool, led, driver.Clock(), directory, sim.NewRNG(cfg.Seed, name))
		driver.AddNode(engine)
	}

	if verbose {
		fmt.Printf("run: %d nodes, topology=%s, quorum threshold=%d%%, persistent=%v\n", len(ids), cfg.Topology, cfg.QuorumThreshold, cfg.Persistent)
	}

	ctx := context.Background()
	roundDuration := time.Duration(cfg.RoundBaseSeconds * float64(time.Second))
	maxTicks := cfg.Slots * 64 // generous headroom; the loop also exits early once every node reaches target

	for tick := 0; tick < maxTicks; tick++ {
		if err := driver.Tick(ctx); err != nil {
			return fmt.Errorf("run: tick %d: %w", tick, err)
		}
		scheduler.StepFor(roundDuration)
		if verbose && tick%16 == 0 {
			fmt.Printf("run: tick %d, heights=%v\n", tick, heights(ledgers, ids))
		}
		if allAtHeight(ledgers, cfg.Slots) {
			break
		}
	}

	for _, name := range ids {
		fmt.Printf("%s: ledger height %d\n", name, ledgers[name].Height())
	}
	return nil
}

// newRunMempool builds the shared mempool per cfg.Persistent: an ephemeral
// in-memory pool, or one backed by a mempoolstore snapshot under
// cfg.DataDir that is loaded from and kept in sync with. The returned
// closer releases any store handle opened; it is always safe to call.
func newRunMempool(cfg *config.Config) (nodeMempool, func(), error) {
	if !cfg.Persistent {
		return mempool.New(), func() {}, nil
	}
	store, err := mempoolstore.Open(filepath.Join(cfg.DataDir, "mempool"))
	if err != nil {
		return nil, nil, fmt.Errorf("run: open mempool store: %w", err)
	}
	pool, err := newPersistentMempool(store)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("run: restore mempool snapshot: %w", err)
	}
	return pool, func() { store.Close() }, nil
}

// heights snapshots every node's current ledger height, for verbose
// progress reporting.
func heights(ledgers map[string]nodeLedger, ids []string) []int {
	out := make([]int, len(ids))
	for i, name := range ids {
		out[i] = ledgers[name].Height()
	}
	return out
}

func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("nodes") {
		cfg.Nodes = nodes
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("slots") {
		cfg.Slots = slots
	}
	if flags.Changed("topology") {
		cfg.Topology = config.Topology(topology)
	}
	return cfg, config.Validate(cfg)
}

func newNodeLedger(cfg *config.Config, name string) (nodeLedger, error) {
	if !cfg.Persistent {
		return ledger.New(), nil
	}
	store, err := ledgerstore.Open(ledgerstore.DefaultConfig(filepath.Join(cfg.DataDir, name)))
	if err != nil {
		return nil, err
	}
	return store, nil
}

func nodeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("node-%d", i)
	}
	return ids
}

func peersOf(ids []string, self string) []string {
	out := make([]string, 0, len(ids)-1)
	for _, id := range ids {
		if id != self {
			out = append(out, id)
		}
	}
	return out
}

func wireTopology(t config.Topology, links *network.Links, ids []string, delay time.Duration) {
	switch t {
	case config.TopologyHubAndSpoke:
		if len(ids) == 0 {
			return
		}
		network.HubAndSpoke(links, ids[0], ids[1:], delay)
	case config.TopologyPartitioned:
		mid := len(ids) / 2
		network.Partitioned(links, ids[:mid], ids[mid:], delay)
	default:
		network.FullyConnected(links, ids, delay)
	}
}

func seedTransactions(pool nodeMempool, cfg *config.Config) {
	for i := 0; i < cfg.Slots*consensus.MaxSlotTransactions/4+16; i++ {
		pool.Submit(consensus.NewTransaction([]byte(fmt.Sprintf("tx-%d", i))))
	}
}

func allAtHeight(ledgers map[string]nodeLedger, target int) bool {
	for _, l := range ledgers {
		if l.Height() < target {
			return false
		}
	}
	return true
}
