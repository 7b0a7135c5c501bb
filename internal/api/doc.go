// Package api serves the account ledger over HTTP.
//
// Routes:
//
//	POST /accounts        create one account      201 / 400 / 409 / 500
//	POST /accounts/bulk   create a batch          201 / 400 / 500
//	GET  /accounts        list ledger by id       200 / 500
//	GET  /health          ledger reachability     200 / 503
//	GET  /metrics         Prometheus exposition
//
// Every error response has the body {"error": "..."}; storage details are
// logged, never returned.
package api
