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

package rpcapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atlasdb/atlasdb/logging"
	"github.com/atlasdb/atlasdb/metrics"
)

// Route is one entry of the fixed route table, mirroring the teacher's
// flat Method/Path/HandlerFunc route list rather than per-verb builder
// chains.
type Route struct {
	Name        string
	Method      string
	Path        string
	HandlerFunc func(ctx *reqContext, w http.ResponseWriter, r *http.Request)
}

// reqContext is threaded into every handler, the same way the teacher's
// lib.ReqContext carries the node reference into v1 handlers.
type reqContext struct {
	svc LedgerService
	log logging.Logger
	met *metrics.Registry
}

// routes is the full LedgerService surface (§4.9), both leader-only write
// endpoints and always-available read endpoints; binding policy is
// enforced inside LedgerService.SubmitTransaction, not by withholding the
// route.
var routes = []Route{
	{Name: "submit-transaction", Method: "POST", Path: "/v1/transactions", HandlerFunc: submitTransaction},
	{Name: "get-balance", Method: "GET", Path: "/v1/accounts/{address}/balance", HandlerFunc: getBalance},
	{Name: "get-statement", Method: "GET", Path: "/v1/accounts/{address}/statement", HandlerFunc: getStatement},
	{Name: "get-accounts", Method: "GET", Path: "/v1/accounts", HandlerFunc: getAccounts},
	{Name: "get-tokens", Method: "GET", Path: "/v1/tokens", HandlerFunc: getTokens},
}

// NewRouter builds the HTTP router for the LedgerService surface, plus a
// /metrics endpoint when met is non-nil.
func NewRouter(svc LedgerService, log logging.Logger, met *metrics.Registry) http.Handler {
	ctx := &reqContext{svc: svc, log: log, met: met}
	r := mux.NewRouter()
	for _, route := range routes {
		route := route
		r.HandleFunc(route.Path, func(w http.ResponseWriter, req *http.Request) {
			route.HandlerFunc(ctx, w, req)
		}).Methods(route.Method).Name(route.Name)
	}
	if met != nil {
		r.Handle("/metrics", met.Handler()).Methods("GET")
	}
	return r
}
