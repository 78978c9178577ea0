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

package main

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/gofrs/flock"

	"github.com/atlasdb/atlasdb/accounts"
	"github.com/atlasdb/atlasdb/aec"
	"github.com/atlasdb/atlasdb/asset"
	"github.com/atlasdb/atlasdb/block"
	"github.com/atlasdb/atlasdb/config"
	"github.com/atlasdb/atlasdb/consensus"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/genesis"
	"github.com/atlasdb/atlasdb/logging"
	"github.com/atlasdb/atlasdb/mempool"
	"github.com/atlasdb/atlasdb/metrics"
	"github.com/atlasdb/atlasdb/orchestrator"
	"github.com/atlasdb/atlasdb/rpcapi"
	"github.com/atlasdb/atlasdb/serr"
	"github.com/atlasdb/atlasdb/stateroot"
	"github.com/atlasdb/atlasdb/transport"
	"github.com/atlasdb/atlasdb/util/kvstore"
)

// multiFlag collects a CLI flag that may repeat, e.g. --dial.
type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

var (
	dataDirFlag = flag.String("config", "", "node data directory (config.json, genesis.json, state); falls back to ATLASDB_DATA")
	listenFlag  = flag.String("listen", "", "P2P listen multiaddr, overrides config.json's net_address")
	grpcPort    = flag.Uint("grpc-port", 0, "RPC listen port, overrides config.json's endpoint_address port")
	keypairFlag = flag.String("keypair", "", "path to this node's identity keypair; generated on first run if missing")
	testAuth    = flag.Bool("test-auth", false, "run a self-contained sign/verify smoke test and exit 0/1")
	dialFlag    multiFlag
)

func init() {
	flag.Var(&dialFlag, "dial", "bootstrap peer to dial on startup (may repeat)")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

// run follows spec.md §6/§7's exit code contract: 0 normal shutdown, 1
// configuration error, 2 unrecoverable consensus halt, 3 I/O corruption.
func run() int {
	if *testAuth {
		return runTestAuth()
	}

	dataDir := config.ResolveDataDir(*dataDirFlag)
	if err := config.EnsureDataDirs(dataDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	lockPath := filepath.Join(dataDir, "atlasnode.lock")
	fileLock := flock.New(lockPath)
	locked, err := fileLock.TryLock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "unexpected failure acquiring atlasnode.lock: %v\n", err)
		return 1
	}
	if !locked {
		fmt.Fprintln(os.Stderr, "failed to lock atlasnode.lock; is another atlasnode already running against this data directory?")
		return 1
	}
	defer fileLock.Unlock()

	cfg, err := config.LoadConfigFromFile(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		return 1
	}
	if *listenFlag != "" {
		cfg.NetAddress = *listenFlag
	}
	if *grpcPort != 0 {
		host, _, splitErr := net.SplitHostPort(cfg.EndpointAddress)
		if splitErr != nil {
			host = "0.0.0.0"
		}
		cfg.EndpointAddress = fmt.Sprintf("%s:%d", host, *grpcPort)
	}
	cfg.DialPeers = append(cfg.DialPeers, dialFlag...)

	log := logging.Base()
	logPath := filepath.Join(dataDir, "node.log")
	archivePath := logPath + ".archive"
	log.SetOutput(logging.MakeCyclicFileWriter(logPath, archivePath, cfg.LogSizeLimit))
	log.SetLevel(logging.Level(cfg.BaseLoggerDebugLevel))

	gen, err := genesis.Load(config.GenesisPath(dataDir))
	if err != nil {
		log.Errorf("atlasnode: loading genesis: %v", err)
		fmt.Fprintf(os.Stderr, "loading genesis: %v\n", err)
		return 1
	}
	// genesis.json is the authoritative weight table; config.json cannot
	// override the chain a node is actually joining.
	cfg.ValidatorWeights = gen.Validators
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	validatorKeys, err := gen.PublicKeys()
	if err != nil {
		log.Errorf("atlasnode: %v", err)
		return 1
	}

	keypairPath := *keypairFlag
	if keypairPath == "" {
		keypairPath = filepath.Join(config.KeysPath(dataDir), "node.key")
	}
	auth, err := loadOrCreateKeypair(keypairPath)
	if err != nil {
		log.Errorf("atlasnode: loading keypair: %v", err)
		fmt.Fprintf(os.Stderr, "loading keypair: %v\n", err)
		return 1
	}

	selfID, ok := selfValidatorID(auth, validatorKeys)
	if !ok {
		if cfg.DevMode {
			selfID = soleValidatorID(gen)
		}
		if selfID == "" {
			fmt.Fprintln(os.Stderr, "this node's keypair does not match any validator in genesis.json")
			return 1
		}
	}

	store, err := accounts.Open(filepath.Join(config.StatePath(dataDir), "accounts.db"))
	if err != nil {
		log.Errorf("atlasnode: opening account store: %v", err)
		return 3
	}
	defer store.Close()

	assets := asset.NewRegistry()
	gen.RegisterAssets(assets)

	tipHeader, hasTip, err := block.LoadTip(config.BlocksPath(dataDir))
	if err != nil {
		log.Errorf("atlasnode: loading tip: %v", err)
		return 3
	}
	if !hasTip {
		gen.Seed(store)
	}

	index, err := kvstore.NewPebbleDB(config.IndexPath(dataDir), false)
	if err != nil {
		log.Errorf("atlasnode: opening index: %v", err)
		return 3
	}
	defer index.Close()

	chain, err := aec.Open(config.SegmentsPath(dataDir), index, int64(cfg.SegmentMaxBytes), int(cfg.SegmentMaxEvents))
	if err != nil {
		log.Errorf("atlasnode: opening event chain: %v", err)
		return 3
	}
	defer chain.Close()

	mode := stateroot.ModeReal
	if cfg.DevMode {
		mode = stateroot.ModeDevZero
	}
	asm := block.NewAssembler(assets, auth, mode)
	exec := block.NewExecutor(store, assets, chain, mode)

	pool := mempool.New(mempool.Config{
		ChainID:      cfg.ChainID,
		MaxSize:      int(cfg.MempoolMaxSize),
		MaxPerSender: int(cfg.MempoolMaxPerSender),
	}, store)

	tport, err := transport.NewTCPNetwork(selfID, cfg.NetAddress, buildPeerAddrs(gen, selfID, cfg.DialPeers), log)
	if err != nil {
		log.Errorf("atlasnode: starting transport: %v", err)
		return 1
	}

	engine := consensus.New(cfg, selfID, auth, validatorKeys, tport, pool, store, asm, exec, nil, log, tipHeader)
	met := metrics.New()
	engine.SetMetrics(met)
	blocks := block.NewFileBlockSink(config.BlocksPath(dataDir))
	engine.SetBlockSink(blocks)
	engine.SetBlockArchive(blocks)

	svc := rpcapi.NewService(pool, store, assets, chain, engine, cfg.ChainID)
	router := rpcapi.NewRouter(svc, log, met)

	orch := orchestrator.New(cfg, engine, router, log)
	engine.SetObserver(orch)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("atlasnode: received shutdown signal")
		cancel()
	}()

	runErr := orch.Run(ctx)
	signal.Stop(sigCh)
	if runErr == nil {
		log.Info("atlasnode: shut down cleanly")
		return 0
	}
	log.Errorf("atlasnode: %v", runErr)
	if serr.IsFatal(runErr) {
		return 2
	}
	switch {
	case serr.Is(runErr, serr.KindSegmentChecksumFail), serr.Is(runErr, serr.KindIndexCorrupt):
		return 3
	default:
		return 1
	}
}

// loadOrCreateKeypair reads a 32-byte ed25519 seed from path, generating and
// persisting a fresh one on first run. Mirrors the teacher's
// tokens.ValidateOrGenerateAPIToken generate-if-missing pattern.
func loadOrCreateKeypair(path string) (*crypto.Ed25519Authenticator, error) {
	seed, err := os.ReadFile(path)
	if err == nil {
		return crypto.NewEd25519Authenticator(seed)
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	seed = make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generating keypair: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, seed, 0600); err != nil {
		return nil, fmt.Errorf("persisting keypair: %w", err)
	}
	return crypto.NewEd25519Authenticator(seed)
}

// selfValidatorID matches auth's public key against genesis's validator
// key table, identifying which validator this process is.
func selfValidatorID(auth crypto.Authenticator, validatorKeys map[string]crypto.PublicKey) (string, bool) {
	pub := auth.PublicKey()
	for id, key := range validatorKeys {
		if bytes.Equal(pub, key) {
			return id, true
		}
	}
	return "", false
}

// soleValidatorID returns the only validator id in gen, for DevMode's
// single-node chain. Returns "" if gen names more than one validator.
func soleValidatorID(gen genesis.Genesis) string {
	if len(gen.Validators) != 1 {
		return ""
	}
	for id := range gen.Validators {
		return id
	}
	return ""
}

// buildPeerAddrs pairs each non-self validator id from gen, in sorted
// order, with the addresses passed via --dial/DialPeers, positionally.
// genesis.json names the cluster's validator ids; config.json's
// DialPeers only lists bare addresses, so the two are zipped here rather
// than teaching config.Local to carry ids it has no other use for.
func buildPeerAddrs(gen genesis.Genesis, selfID string, dialPeers []string) map[string]string {
	ids := make([]string, 0, len(gen.Validators))
	for id := range gen.Validators {
		if id != selfID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	peerAddrs := make(map[string]string, len(ids))
	for i, id := range ids {
		if i >= len(dialPeers) {
			break
		}
		peerAddrs[id] = dialPeers[i]
	}
	return peerAddrs
}

// runTestAuth exercises --test-auth: generate a keypair, sign a message,
// verify it, and report success without touching any data directory.
func runTestAuth() int {
	auth, err := crypto.GenerateEd25519Authenticator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "test-auth: generating keypair: %v\n", err)
		return 1
	}
	msg := []byte("atlasnode-test-auth")
	sig := auth.SignBytes(msg)
	if err := auth.Verifier().VerifyBytes(msg, sig); err != nil {
		fmt.Fprintf(os.Stderr, "test-auth: verification failed: %v\n", err)
		return 1
	}
	fmt.Println("test-auth: sign/verify round trip OK")
	return 0
}
