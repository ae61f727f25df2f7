// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/accounts"
	"github.com/vechain/stakepool/api/certificates"
	"github.com/vechain/stakepool/api/debug"
	"github.com/vechain/stakepool/api/doc"
	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/governance"
	"github.com/vechain/stakepool/api/middleware"
	"github.com/vechain/stakepool/api/network"
	"github.com/vechain/stakepool/api/pool"
	"github.com/vechain/stakepool/api/subscriptions"
	"github.com/vechain/stakepool/api/validators"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/node"

	nodeAPI "github.com/vechain/stakepool/api/node"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	Version              string
	PprofOn              bool
	SkipLogs             bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	EnableMetrics        bool
	LogsLimit            uint64
	SoloMode             bool
}

// New return api router
func New(n *node.Node, gen *genesis.Genesis, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/stakepool.yaml", http.StatusTemporaryRedirect)
		})

	pool.New(n).
		Mount(router, "/pool")
	accounts.New(n).
		Mount(router, "/accounts")
	certificates.New(n).
		Mount(router, "/certificates")
	validators.New(n).
		Mount(router, "/validators")
	governance.New(n).
		Mount(router, "/governance")
	if !opts.SkipLogs && n.LogDB() != nil {
		events.New(n.LogDB(), opts.LogsLimit).
			Mount(router, "/logs/event")
	}
	if opts.SoloMode {
		network.New(n).
			Mount(router, "/network")
	}
	nodeAPI.New(n, gen, opts.Version, opts.SoloMode).
		Mount(router, "/node")
	debug.New(n).
		Mount(router, "/debug")
	subs := subscriptions.New(n, origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{"x-revert-code", middleware.RequestIDHeader}),
	)(handler)

	if opts.EnableReqLogger != nil {
		handler = middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
