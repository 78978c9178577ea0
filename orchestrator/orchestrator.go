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

// Package orchestrator implements C10/§4.10: the top-level event loop that
// joins the consensus worker, the RPC surface, and the node's lifecycle.
package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/atlasdb/atlasdb/config"
	"github.com/atlasdb/atlasdb/consensus"
	"github.com/atlasdb/atlasdb/logging"
)

// Orchestrator drives one node's process lifetime: it starts the consensus
// worker (which itself owns the network-ingress and scheduler-tick loop of
// §5), serves the RPC surface, and logs leadership transitions; it does not
// itself change what the RPC surface admits. Read endpoints remain
// reachable regardless of role, per §4.9's "all read endpoints are
// available on every node"; only SubmitTransaction's own binding-policy
// check (consensus.Engine.IsLeader, surfaced to rpcapi as a LeaderChecker)
// depends on role.
type Orchestrator struct {
	cfg    config.Local
	engine *consensus.Engine
	router http.Handler
	log    logging.Logger

	mu         sync.Mutex
	httpServer *http.Server
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// New constructs an Orchestrator. router is the rpcapi HTTP handler built
// by rpcapi.NewRouter over a LedgerService backed by the same consensus
// Engine passed here, so engine must be a LeaderChecker for that service's
// SubmitTransaction path (it satisfies rpcapi.LeaderChecker directly).
func New(cfg config.Local, engine *consensus.Engine, router http.Handler, log logging.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, engine: engine, router: router, log: log}
}

// OnBecomeLeader implements consensus.LeadershipObserver. The RPC listener
// is already up (read endpoints must survive a leadership change without a
// connection drop); this only logs the transition so operators can
// correlate downtime with leadership churn.
func (o *Orchestrator) OnBecomeLeader() {
	if o.log != nil {
		o.log.Info("orchestrator: assumed leadership, accepting transaction submissions")
	}
}

// OnStepDown implements consensus.LeadershipObserver.
func (o *Orchestrator) OnStepDown() {
	if o.log != nil {
		o.log.Info("orchestrator: stepped down, submissions will redirect to the new leader")
	}
}

// Run starts the consensus worker and the RPC HTTP server and blocks until
// ctx is cancelled, then performs a graceful Shutdown. It returns the first
// error encountered bringing either component up, or the shutdown error.
func (o *Orchestrator) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.cancel = cancel
	o.httpServer = &http.Server{
		Addr:         o.cfg.EndpointAddress,
		Handler:      o.router,
		ReadTimeout:  time.Duration(o.cfg.RestReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(o.cfg.RestWriteTimeoutSeconds) * time.Second,
	}
	srv := o.httpServer
	o.mu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.engine.Run(runCtx)
	}()

	serveErr := make(chan error, 1)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		return o.Shutdown(context.Background())
	case err := <-serveErr:
		o.Shutdown(context.Background())
		return err
	}
}

// Shutdown closes the RPC listener and stops the consensus worker,
// blocking until both have exited. Mirrors the teacher node's Stop: tear
// down the outward-facing surface first, then cancel the internal worker.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	srv := o.httpServer
	cancel := o.cancel
	o.mu.Unlock()

	var shutdownErr error
	if srv != nil {
		shutdownErr = srv.Shutdown(ctx)
	}
	if cancel != nil {
		cancel()
	}
	o.wg.Wait()
	if o.log != nil {
		o.log.Info("orchestrator: shutdown complete")
	}
	return shutdownErr
}
