package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaimedvw/stellar-simulator/internal/config"
)

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := config.LoadDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Nodes)
	assert.Equal(t, int64(1), cfg.Seed)
	assert.Equal(t, 10, cfg.Slots)
	assert.Equal(t, config.TopologyFullyConnected, cfg.Topology)
	assert.Equal(t, 55.0, cfg.QuorumThreshold)
	assert.False(t, cfg.Persistent)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scpsim.yaml")
	content := "nodes: 7\nslots: 3\ntopology: hub-and-spoke\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Nodes)
	assert.Equal(t, 3, cfg.Slots)
	assert.Equal(t, config.TopologyHubAndSpoke, cfg.Topology)
	assert.Equal(t, path, cfg.GetConfigPath())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SCPSIM_NODES", "9")
	cfg, err := config.LoadDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Nodes)
}

func TestValidateRejectsNonPositiveNodes(t *testing.T) {
	cfg := &config.Config{Nodes: 0, Slots: 1, QuorumThreshold: 50, Topology: config.TopologyFullyConnected}
	err := config.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nodes")
}

func TestValidateRejectsOutOfRangeThreshold(t *testing.T) {
	cfg := &config.Config{Nodes: 1, Slots: 1, QuorumThreshold: 150, Topology: config.TopologyFullyConnected}
	err := config.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quorum_threshold")
}

func TestValidateRejectsUnknownTopology(t *testing.T) {
	cfg := &config.Config{Nodes: 1, Slots: 1, QuorumThreshold: 50, Topology: "mesh"}
	err := config.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topology")
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := &config.Config{Nodes: 3, Slots: 5, QuorumThreshold: 67, Topology: config.TopologyPartitioned}
	assert.NoError(t, config.Validate(cfg))
}
