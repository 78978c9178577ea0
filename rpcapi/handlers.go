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
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/txn"
)

const defaultStatementLimit = 20

var (
	errFailedToParseRequestBody = "failed to parse request body"
	errNoAddressSpecified       = "no address was specified"
	errFailedToParseLimit       = "failed to parse limit, must be a positive integer"
)

// errorBody is the fixed error envelope of §4.9/§6: every failed call
// returns success=false with a human-readable message, never a bare HTTP
// status with no body.
type errorBody struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Success: false, ErrorMessage: message})
}

// submitTransaction handles POST /v1/transactions. The binding policy of
// §4.9 (leader-only admission) is enforced inside LedgerService, not here:
// a follower still answers with a 200 carrying success=false and the
// current leader's id, so callers can retry without guessing.
func submitTransaction(ctx *reqContext, w http.ResponseWriter, r *http.Request) {
	var tx txn.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		writeError(w, http.StatusBadRequest, errFailedToParseRequestBody)
		return
	}
	result := ctx.svc.SubmitTransaction(tx)
	if !result.Success && ctx.met != nil {
		ctx.met.TransactionsRejected.WithLabelValues("rejected").Inc()
	}
	if result.Success && ctx.met != nil {
		ctx.met.TransactionsAdmitted.Inc()
	}
	writeJSON(w, http.StatusOK, result)
}

// getBalance handles GET /v1/accounts/{address}/balance?asset=....
func getBalance(ctx *reqContext, w http.ResponseWriter, r *http.Request) {
	addr := mux.Vars(r)["address"]
	if addr == "" {
		writeError(w, http.StatusBadRequest, errNoAddressSpecified)
		return
	}
	assetID := basics.AssetID(r.URL.Query().Get("asset"))
	result, err := ctx.svc.GetBalance(basics.Address(addr), assetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// getStatement handles GET /v1/accounts/{address}/statement?limit=....
func getStatement(ctx *reqContext, w http.ResponseWriter, r *http.Request) {
	addr := mux.Vars(r)["address"]
	if addr == "" {
		writeError(w, http.StatusBadRequest, errNoAddressSpecified)
		return
	}
	limit := defaultStatementLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, errFailedToParseLimit)
			return
		}
		limit = n
	}
	entries, err := ctx.svc.GetStatement(basics.Address(addr), limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": entries})
}

// getAccounts handles GET /v1/accounts: full state export for admin and
// explorer tooling.
func getAccounts(ctx *reqContext, w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ctx.svc.GetAccounts())
}

// getTokens handles GET /v1/tokens.
func getTokens(ctx *reqContext, w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ctx.svc.GetTokens())
}
