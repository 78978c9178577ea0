// Copyright (C) 2019-2024 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atlasdb/atlasdb/util/codecs"
)

// GenesisJSONFile is the name of the genesis file expected under a node's
// data directory.
const GenesisJSONFile = "genesis.json"

// ConfigFilename is the name of a node's configuration file, if present in
// its data directory.
const ConfigFilename = "config.json"

// Local holds the per-node-instance configuration settings for a validator
// or observer. Unlike the multi-network, multi-upgrade consensus parameters
// of the system this configuration layer was adapted from, AtlasDB runs a
// single fixed chain with a static validator set: there is no protocol
// version table and no config migration machinery.
type Local struct {
	// Version records the version of the defaults a config was written
	// against. It is carried as data only; no code migrates between versions.
	Version uint32

	// ChainID identifies the chain this node will admit transactions and
	// blocks for; messages and transactions carrying a different chain id
	// are rejected at admission.
	ChainID string

	// NodeType names this node's role (ValidatorNode or ObserverNode). It is
	// carried in the config only; no component reads it, and every node runs
	// the consensus worker.
	NodeType string

	// QuorumFraction is the minimum fraction of total validator weight that
	// must vote Yes for a proposal to commit. Must be >= 0.5.
	QuorumFraction float64

	// MinVoters is an absolute floor on the total Yes weight required,
	// applied alongside QuorumFraction (see QuorumThreshold).
	MinVoters uint32

	// ValidatorWeights maps validator id to voting weight for the current
	// term. Weights are fixed within a term; updating them is the
	// responsibility of an external staking vault, out of scope here.
	ValidatorWeights map[string]uint64

	// ElectionTimeoutLowMillis and ElectionTimeoutHighMillis bound the
	// randomized election timeout window [T_lo, T_hi], used to avoid split
	// votes among simultaneously-timing-out followers.
	ElectionTimeoutLowMillis  uint64
	ElectionTimeoutHighMillis uint64

	// HeartbeatIntervalMillis is the leader's heartbeat period. Must be
	// strictly less than ElectionTimeoutLowMillis.
	HeartbeatIntervalMillis uint64

	// RoundTimeoutMillis bounds how long a leader waits to collect quorum
	// on a proposal before incrementing the round and retrying.
	RoundTimeoutMillis uint64

	// MaxRoundsPerTerm is R_max: the number of round failures within a term
	// before a term change is triggered via the election path.
	MaxRoundsPerTerm uint32

	// SchedulerJitterMillis bounds the jitter applied to scheduled
	// broadcasts (heartbeats, ticks) to avoid thundering-herd effects.
	SchedulerJitterMillis uint64

	// SegmentMaxBytes and SegmentMaxEvents bound an AEC segment's size; a
	// segment is closed when either threshold is reached or on a
	// block-height boundary, whichever comes first.
	SegmentMaxBytes  uint64
	SegmentMaxEvents uint64

	// MempoolMaxSize bounds the global number of pending transactions.
	MempoolMaxSize uint64

	// MempoolMaxPerSender bounds the number of pending transactions
	// admitted per sender address.
	MempoolMaxPerSender uint32

	// NetAddress is the P2P listen multiaddr for this node (--listen).
	NetAddress string

	// DialPeers is the bootstrap peer set to dial on startup (--dial, may
	// repeat); peer discovery beyond this set is handled by the transport.
	DialPeers []string

	// EndpointAddress is the RPC listen address (--grpc-port combines into
	// this, e.g. "0.0.0.0:4160").
	EndpointAddress string

	// RestReadTimeoutSeconds and RestWriteTimeoutSeconds bound RPC handler
	// deadlines.
	RestReadTimeoutSeconds  uint64
	RestWriteTimeoutSeconds uint64

	// IncomingConnectionsLimit bounds concurrent inbound peer connections.
	IncomingConnectionsLimit int

	// BaseLoggerDebugLevel selects the default log verbosity (0=Panic
	// through 5=Debug, mirrors logging.Level).
	BaseLoggerDebugLevel uint32

	// LogSizeLimit bounds the live log file before it is cycled to the
	// archive path (see logging.MakeCyclicFileWriter).
	LogSizeLimit uint64

	// DeadlockDetection enables go-deadlock's lock-order checking; 0
	// disables, a positive value sets the detection threshold in seconds.
	DeadlockDetection int

	// EnableMetricReporting starts the Prometheus metrics endpoint.
	EnableMetricReporting bool

	// DevMode relaxes quorum to a single node and disables election
	// timeouts, for running a one-node development chain.
	DevMode bool

	// AnnounceParticipationKey, when true, advertises this node as a
	// voting participant to peers during handshake.
	AnnounceParticipationKey bool

	// ReservedFDs is subtracted from the process's file descriptor rlimit
	// before computing how many the networking and storage layers may use.
	ReservedFDs uint64
}

// defaultLocal holds the hardcoded default configuration values.
var defaultLocal = Local{
	Version:                   0,
	ChainID:                   "atlasdb-devnet",
	NodeType:                  "validator",
	QuorumFraction:            0.667,
	MinVoters:                 1,
	ValidatorWeights:          map[string]uint64{},
	ElectionTimeoutLowMillis:  150,
	ElectionTimeoutHighMillis: 300,
	HeartbeatIntervalMillis:   50,
	RoundTimeoutMillis:        1000,
	MaxRoundsPerTerm:          5,
	SchedulerJitterMillis:     25,
	SegmentMaxBytes:           16 << 20,
	SegmentMaxEvents:          100000,
	MempoolMaxSize:            50000,
	MempoolMaxPerSender:       64,
	NetAddress:                "",
	DialPeers:                 nil,
	EndpointAddress:           "127.0.0.1:4160",
	RestReadTimeoutSeconds:    15,
	RestWriteTimeoutSeconds:   120,
	IncomingConnectionsLimit:  800,
	BaseLoggerDebugLevel:      3, // logging.Warn
	LogSizeLimit:              1 << 30,
	DeadlockDetection:         0,
	EnableMetricReporting:     false,
	DevMode:                   false,
	AnnounceParticipationKey:  true,
	ReservedFDs:               256,
}

// GetDefaultLocal returns a copy of the default configuration.
func GetDefaultLocal() Local {
	return defaultLocal
}

// alwaysInclude lists field names that SaveToFile will always persist, even
// when they happen to match the default value.
var alwaysInclude = []string{"Version", "ChainID"}

// LoadConfigFromFile loads the node's local configuration, merging any
// config.json found in dataDir over the defaults. A missing file is not an
// error: the node simply runs with defaults.
func LoadConfigFromFile(dataDir string) (Local, error) {
	cfg := defaultLocal
	err := mergeConfigFromDir(dataDir, &cfg)
	if err != nil && !os.IsNotExist(err) {
		return defaultLocal, err
	}
	return cfg, nil
}

// mergeConfigFromDir merges data_dir/config.json (if present) over cfg.
func mergeConfigFromDir(dataDir string, cfg *Local) error {
	return mergeConfigFromFile(filepath.Join(dataDir, ConfigFilename), cfg)
}

// mergeConfigFromFile merges the json file at path over cfg, leaving cfg
// unmodified if the file does not exist.
func mergeConfigFromFile(path string, cfg *Local) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	return dec.Decode(cfg)
}

// SaveToFile writes cfg to path as JSON, restricted to fields that differ
// from the defaults (plus alwaysInclude), so that a saved config.json
// clearly documents what a deployment has customized.
func SaveToFile(path string, cfg Local) error {
	return codecs.SaveNonDefaultValuesToFile(path, cfg, defaultLocal, alwaysInclude, true)
}

// Validate checks internal consistency of a loaded configuration that
// SaveNonDefaultValuesToFile/json decoding cannot enforce on their own.
func (cfg Local) Validate() error {
	if cfg.ChainID == "" {
		return fmt.Errorf("config: chain_id must not be empty")
	}
	if cfg.QuorumFraction < 0.5 {
		return fmt.Errorf("config: quorum_fraction must be >= 0.5, got %v", cfg.QuorumFraction)
	}
	if cfg.HeartbeatIntervalMillis >= cfg.ElectionTimeoutLowMillis {
		return fmt.Errorf("config: heartbeat_interval_millis (%d) must be < election_timeout_low_millis (%d)",
			cfg.HeartbeatIntervalMillis, cfg.ElectionTimeoutLowMillis)
	}
	if cfg.ElectionTimeoutLowMillis >= cfg.ElectionTimeoutHighMillis {
		return fmt.Errorf("config: election_timeout_low_millis must be < election_timeout_high_millis")
	}
	if !cfg.DevMode && len(cfg.ValidatorWeights) == 0 {
		return fmt.Errorf("config: validator_weights must not be empty outside dev mode")
	}
	return nil
}

// ElectionTimeoutLow and ElectionTimeoutHigh return the election timeout
// bounds as time.Durations for direct use by the scheduler.
func (cfg Local) ElectionTimeoutLow() time.Duration {
	return time.Duration(cfg.ElectionTimeoutLowMillis) * time.Millisecond
}

func (cfg Local) ElectionTimeoutHigh() time.Duration {
	return time.Duration(cfg.ElectionTimeoutHighMillis) * time.Millisecond
}

// HeartbeatInterval returns the heartbeat period as a time.Duration.
func (cfg Local) HeartbeatInterval() time.Duration {
	return time.Duration(cfg.HeartbeatIntervalMillis) * time.Millisecond
}

// RoundTimeout returns the per-round quorum-collection deadline.
func (cfg Local) RoundTimeout() time.Duration {
	return time.Duration(cfg.RoundTimeoutMillis) * time.Millisecond
}

// SchedulerJitter returns the jitter bound applied to scheduled broadcasts.
func (cfg Local) SchedulerJitter() time.Duration {
	return time.Duration(cfg.SchedulerJitterMillis) * time.Millisecond
}

// TotalWeight sums the configured validator weight table.
func (cfg Local) TotalWeight() uint64 {
	var total uint64
	for _, w := range cfg.ValidatorWeights {
		total += w
	}
	return total
}

// QuorumThreshold returns the minimum Yes weight required to commit, given
// the configured QuorumFraction, MinVoters and the current total weight.
func (cfg Local) QuorumThreshold() uint64 {
	total := cfg.TotalWeight()
	byFraction := uint64(float64(total)*cfg.QuorumFraction + 0.999999)
	if byFraction < uint64(cfg.MinVoters) {
		return uint64(cfg.MinVoters)
	}
	return byFraction
}
