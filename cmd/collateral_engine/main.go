package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"frizo/collateral_engine/common"
	"frizo/collateral_engine/internal/config"
	"frizo/collateral_engine/internal/engine"
	"frizo/collateral_engine/internal/fixedpoint"
	"frizo/collateral_engine/internal/logger"
	"frizo/collateral_engine/internal/oracle"
	"frizo/collateral_engine/internal/position"
	"frizo/collateral_engine/internal/registry"
	"frizo/collateral_engine/internal/token"
	"frizo/collateral_engine/internal/version"
	"frizo/collateral_engine/pkg/utils"
)

func main() {
	// Command line flags
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		healthCheck = flag.Bool("health-check", false, "Perform health check")
		engineFile  = flag.String("engine-file", "", "Path to the engine bootstrap file")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	// Handle version flag
	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Handle help flag
	if *showHelp {
		fmt.Printf("Collateral Engine %s\n\n", version.Short())
		fmt.Println("Usage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// Handle health check
	if *healthCheck {
		fmt.Println("OK")
		os.Exit(0)
	}

	// Load configuration
	cfg := config.Load()

	// Override from command line
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *engineFile != "" {
		cfg.EngineFile = *engineFile
	}

	// Initialize logger
	log := logger.NewWithWriter(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.SetDefault(log)

	// Log startup information
	log.Info("Starting Collateral Engine",
		"version", version.Short(),
		"environment", cfg.Environment,
	)

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if err := run(cfg, log); err != nil {
		log.Error("Application error", "error", err)
		os.Exit(1)
	}

	// Wait for shutdown signal
	<-quit
	log.Info("Shutting down Collateral Engine...")
	log.Info("Collateral Engine stopped")
}

// run bootstraps the engine and walks a scripted scenario so the moving
// parts are observable from the logs.
func run(cfg *config.Config, log *logger.Logger) error {
	eng, vault, stable, feeds, err := bootstrap(cfg, log)
	if err != nil {
		return err
	}
	return demo(eng, vault, stable, feeds, log)
}

// defaultEngineFile is the fallback deployment: one 8-decimal feed
// quoting $2000 per unit.
func defaultEngineFile() *config.EngineFile {
	return &config.EngineFile{
		Oracle: config.OracleConfig{FreshnessTimeout: "3h"},
		Assets: []config.AssetConfig{
			{ID: "WETH", Feed: config.FeedConfig{Price: "200000000000", Decimals: 8}},
		},
	}
}

// bootstrap builds the registry, oracle gateway, ledger and engine from
// the engine file, or from built-in defaults when the file is absent.
func bootstrap(cfg *config.Config, log *logger.Logger) (*engine.Engine, *token.Vault, *token.StableToken, map[common.AssetID]*oracle.StaticFeed, error) {
	ef := defaultEngineFile()
	if utils.FileExists(cfg.EngineFile) {
		loaded, err := config.LoadEngineFile(cfg.EngineFile)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		ef = loaded
		log.Info("engine file loaded", "path", cfg.EngineFile, "assets", len(ef.Assets))
	} else {
		log.Warn("engine file not found, using built-in defaults", "path", cfg.EngineFile)
	}

	assets := make([]common.AssetID, 0, len(ef.Assets))
	feedRefs := make([]oracle.PriceFeed, 0, len(ef.Assets))
	feeds := make(map[common.AssetID]*oracle.StaticFeed, len(ef.Assets))
	for _, ac := range ef.Assets {
		price, err := ac.Feed.ParsePrice()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		feed := oracle.NewStaticFeed(price, ac.Feed.Decimals)
		assets = append(assets, common.AssetID(ac.ID))
		feedRefs = append(feedRefs, feed)
		feeds[common.AssetID(ac.ID)] = feed
	}

	reg, err := registry.New(assets, feedRefs)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	gateway := oracle.NewGateway(reg)
	if timeout, err := ef.Oracle.ParseTimeout(); err != nil {
		return nil, nil, nil, nil, err
	} else if timeout > 0 {
		gateway.SetTimeout(timeout)
	}

	self := common.Account("engine")
	vault := token.NewVault(self)
	stable := token.NewStableToken(self)
	store := position.NewStore(reg, vault)
	store.SetLogger(log)

	eng := engine.New(self, reg, gateway, store, stable, vault)
	eng.SetLogger(log)
	return eng, vault, stable, feeds, nil
}

// demo deposits, mints, drops the price and liquidates, logging each
// step.
func demo(eng *engine.Engine, vault *token.Vault, stable *token.StableToken, feeds map[common.AssetID]*oracle.StaticFeed, log *logger.Logger) error {
	assets := eng.ListSupportedAssets()
	if len(assets) == 0 {
		return fmt.Errorf("no supported assets")
	}
	asset := assets[0]

	alice := common.Account("alice")
	bob := common.Account("bob")

	ten := new(big.Int).Mul(big.NewInt(10), fixedpoint.Wad)
	vault.Fund(alice, asset, ten)

	mintAmount := new(big.Int).Mul(big.NewInt(8000), fixedpoint.Wad)
	if err := eng.DepositAndMint(alice, asset, ten, mintAmount); err != nil {
		return err
	}
	logSummary(eng, alice, log)

	// Crash the price so alice goes unsafe, then have bob liquidate.
	feed, ok := feeds[asset]
	if !ok {
		return fmt.Errorf("no feed for %s", asset)
	}
	crashed := new(big.Int).Mul(big.NewInt(1500), fixedpoint.Pow10(uint(feed.Decimals())))
	feed.SetPrice(crashed)
	log.Info("price crashed", "asset", asset.String(), "price", crashed.String())

	cover := new(big.Int).Mul(big.NewInt(4000), fixedpoint.Wad)
	if !stable.Mint(eng.Self(), bob, cover) {
		return fmt.Errorf("funding liquidator failed")
	}
	if err := stable.Approve(bob, eng.Self(), cover); err != nil {
		return err
	}
	if err := eng.Liquidate(bob, asset, alice, cover); err != nil {
		return err
	}
	logSummary(eng, alice, log)
	log.Info("liquidator paid", "account", bob.String(), "collateral", vault.BalanceOf(bob, asset).String())
	return nil
}

func logSummary(eng *engine.Engine, account common.Account, log *logger.Logger) {
	summary, err := eng.AccountSummary(account)
	if err != nil {
		log.Warn("account summary unavailable", "account", account.String(), "error", err)
		return
	}
	log.Info("account summary", "account", account.String(), "summary", fmt.Sprintf("%v", summary))
}
