// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/api/doc"
	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/cmd/poold/httpserver"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/logdb"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/node"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	v := version
	if v == "" {
		v = doc.Version()
	}
	return fmt.Sprintf("%s-%s-%s", v, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Stakepool",
		Usage:     "Liquid staking pool node",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			skipLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			epochIntervalFlag,
			epochRewardFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "single node pool with the dev genesis, for test & dev",
				Flags: []cli.Flag{
					genesisFlag,
					dataDirFlag,
					cacheFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiLogsLimitFlag,
					enableAPILogsFlag,
					apiSlowQueriesThresholdFlag,
					apiLog5xxErrorsFlag,
					verbosityFlag,
					jsonLogsFlag,
					pprofFlag,
					skipLogsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					enableAdminFlag,
					adminAddrFlag,
					epochIntervalFlag,
					epochRewardFlag,
					persistFlag,
				},
				Action: soloAction,
			},
			{
				Name:      "export",
				Usage:     "write the pool state to a snapshot file",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{genesisFlag, dataDirFlag, cacheFlag, verbosityFlag, jsonLogsFlag},
				Action:    exportAction,
			},
			{
				Name:      "import",
				Usage:     "restore the pool state from a snapshot file into an empty instance",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{genesisFlag, dataDirFlag, cacheFlag, verbosityFlag, jsonLogsFlag},
				Action:    importAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	gen := loadGenesis(ctx)
	instanceDir := makeInstanceDir(ctx, gen)

	mainDB := openMainDB(ctx, instanceDir)
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	var logDB *logdb.LogDB
	if !ctx.Bool(skipLogsFlag.Name) {
		logDB = openLogDB(instanceDir)
		defer func() { logger.Info("closing log database..."); logDB.Close() }()
	}

	return run(exitSignal, ctx, logLevel, gen, mainDB, logDB, false, instanceDir)
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	gen := genesis.Dev()
	if ctx.IsSet(genesisFlag.Name) {
		gen = loadGenesis(ctx)
	}

	var (
		mainDB      kv.Store
		logDB       *logdb.LogDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		instanceDir = makeInstanceDir(ctx, gen)
		db := openMainDB(ctx, instanceDir)
		defer func() { logger.Info("closing main database..."); db.Close() }()
		mainDB = db
		if !ctx.Bool(skipLogsFlag.Name) {
			logDB = openLogDB(instanceDir)
		}
	} else {
		instanceDir = "Memory"
		db := openMemMainDB()
		defer func() { logger.Info("closing main database..."); db.Close() }()
		mainDB = db
		if !ctx.Bool(skipLogsFlag.Name) {
			logDB = openMemLogDB()
		}
	}
	if logDB != nil {
		defer func() { logger.Info("closing log database..."); logDB.Close() }()
	}

	return run(exitSignal, ctx, logLevel, gen, mainDB, logDB, true, instanceDir)
}

func run(
	exitSignal context.Context,
	ctx *cli.Context,
	logLevel *slog.LevelVar,
	gen *genesis.Genesis,
	mainDB kv.Store,
	logDB *logdb.LogDB,
	soloMode bool,
	instanceDir string,
) error {
	metricsEnabled := ctx.Bool(enableMetricsFlag.Name)
	if metricsEnabled {
		metrics.InitializePrometheusMetrics()
	}

	st, deploy, err := gen.Instantiate(mainDB)
	if err != nil {
		return err
	}
	n := node.New(st, deploy, logDB)
	defer func() { logger.Info("closing subscriptions..."); n.Close() }()

	epochInterval := time.Duration(ctx.Uint64(epochIntervalFlag.Name)) * time.Second
	if epochInterval <= 0 {
		return fmt.Errorf("--%s must be positive", epochIntervalFlag.Name)
	}

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	apiHandler, apiClose := api.New(n, gen, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		Version:              fullVersion(),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		SkipLogs:             ctx.Bool(skipLogsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        metricsEnabled,
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		SoloMode:             soloMode,
	})
	defer func() { logger.Info("closing API..."); apiClose() }()

	apiURL, srvCloser, err := httpserver.StartAPIServer(
		ctx.String(apiAddrFlag.Name),
		apiHandler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	if metricsEnabled {
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		logger.Info("metrics server started", "url", url)
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
	}

	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(
			ctx.String(adminAddrFlag.Name),
			logLevel,
			n,
			apiLogs,
			epochInterval,
		)
		if err != nil {
			return fmt.Errorf("unable to start admin server - %w", err)
		}
		logger.Info("admin server started", "url", url)
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
	}

	if soloMode {
		printSoloStartupMessage(gen, instanceDir, apiURL)
	} else {
		printStartupMessage(gen, instanceDir, apiURL)
	}

	g, runCtx := errgroup.WithContext(exitSignal)
	g.Go(func() error {
		n.RunEpochs(runCtx, epochInterval, ctx.Uint64(epochRewardFlag.Name))
		return nil
	})
	g.Go(func() error {
		houseKeeping(runCtx, epochInterval)
		return nil
	})
	return g.Wait()
}

func printStartupMessage(gen *genesis.Genesis, instanceDir, apiURL string) {
	fmt.Printf(`Starting %v
    Genesis      [ %v ]
    Pool         [ %v ]
    Directory    [ %v ]
    Certificates [ %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
`,
		common.MakeName("Stakepool", fullVersion()),
		gen.ID(),
		gen.PoolAddress,
		gen.DirectoryAddress,
		gen.CertificatesAddress,
		instanceDir,
		apiURL)
}

func printSoloStartupMessage(gen *genesis.Genesis, instanceDir, apiURL string) {
	tableHead := `
┌────────────────────────────────────────────┬──────────────────────────────┐
│                   Address                  │           Balance            │`
	tableContent := `
├────────────────────────────────────────────┼──────────────────────────────┤
│ %v │ %28v │`
	tableEnd := `
└────────────────────────────────────────────┴──────────────────────────────┘`

	info := fmt.Sprintf(`Starting %v
    Genesis     [ %v ]
    Pool        [ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]`,
		common.MakeName("Stakepool solo", fullVersion()),
		gen.ID(),
		gen.PoolAddress,
		instanceDir,
		apiURL)

	info += tableHead
	for _, a := range gen.Accounts {
		tokens := new(big.Int).Quo(a.Balance.Int(), base.ToWei(1))
		info += fmt.Sprintf(tableContent, a.Address, tokens.String())
	}
	info += tableEnd + "\r\n"

	fmt.Print(info)
}
