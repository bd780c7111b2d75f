package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"pokertable.io/server/game"
	"pokertable.io/server/logging"
	"pokertable.io/server/nats"
	"pokertable.io/server/rest"
	"pokertable.io/server/scoring"
	"pokertable.io/server/test"
	"pokertable.io/server/util"
)

var runScriptTests *bool
var tableScriptsFileOrDir *string
var tableConfigFile *string
var testName *string
var mainLogger = logging.GetZeroLogger("main::main", nil)

func init() {
	runScriptTests = flag.Bool("script-tests", false, "runs table script tests")
	tableScriptsFileOrDir = flag.String("table-script", util.Env.GetScriptTestsDir(), "table script file or directory")
	tableConfigFile = flag.String("config", util.Env.GetTableConfigFile(), "YAML file containing the table config")
	testName = flag.String("testname", "", "runs a specific test")
}

func main() {
	err := run()
	if err != nil {
		mainLogger.Error().Msg(err.Error())
		os.Exit(1)
	}
}

func run() error {
	logLevel := util.Env.GetZeroLogLogLevel()
	fmt.Printf("Setting log level to %s\n", logLevel)
	zerolog.SetGlobalLevel(logLevel)
	flag.Parse()

	if *runScriptTests {
		return test.RunTableScriptTests(*tableScriptsFileOrDir, *testName)
	}

	config, err := loadTableConfig(*tableConfigFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := createTableStore(ctx)
	if err != nil {
		return errors.Wrap(err, "Error while creating table store")
	}
	defer closeStore()

	baseScorer, err := createScorer()
	if err != nil {
		return err
	}
	scorer := scoring.NewRetryScorer(baseScorer, config.ScoringAttempts, config.ScoringRetryInterval(), config.ScoringTimeout())
	manager, err := game.NewManager(store, scorer, config)
	if err != nil {
		return errors.Wrap(err, "Error while creating table manager")
	}

	hub := rest.NewHub()
	manager.AddListener(hub)

	if natsURL := util.Env.GetNatsURL(); natsURL != "" {
		nc, err := runWithNats(natsURL, manager)
		if err != nil {
			return err
		}
		defer nc.Close()
	}

	addr := fmt.Sprintf(":%d", util.Env.GetRestPort())
	err = rest.RunRestServer(ctx, addr, manager, hub)
	if err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "REST server failed")
	}
	mainLogger.Info().Msg("Server stopped")
	return nil
}

// loadTableConfig falls back to the defaults when the config file is absent.
func loadTableConfig(configFile string) (game.TableConfig, error) {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		mainLogger.Warn().Msgf("Table config %s is not found. Using defaults.", configFile)
		return game.DefaultTableConfig(), nil
	}
	config, err := game.ParseTableConfig(configFile)
	if err != nil {
		return config, errors.Wrap(err, "Error while parsing table config")
	}
	return config, nil
}

func createTableStore(ctx context.Context) (game.TableStore, func(), error) {
	method := util.Env.GetPersistMethod()
	mainLogger.Info().Msgf("Persist method: %s", method)
	switch method {
	case "memory":
		return game.NewMemoryTableStore(), func() {}, nil
	case "redis":
		store := game.NewRedisTableStore(util.Env.GetRedisAddr(), util.Env.GetRedisPW(), util.Env.GetRedisDB())
		return store, func() { store.Close() }, nil
	case "postgres":
		store, err := game.NewPostgresTableStore(ctx, util.Env.GetPostgresConnStr())
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("Unsupported persist method: %s", method)
}

func createScorer() (scoring.Scorer, error) {
	if util.Env.GetScoringMethod() == "http" {
		url := util.Env.GetScoringURL()
		format, err := scoring.ParseCardFormat(util.Env.GetScoringCardFormat())
		if err != nil {
			return nil, err
		}
		mainLogger.Info().Msgf("Scoring hands with %s (%s cards)", url, format)
		return scoring.NewHTTPScorer(url, &http.Client{Timeout: 10 * time.Second}).WithCardFormat(format), nil
	}
	return scoring.NewLocalScorer(), nil
}

func runWithNats(natsURL string, manager *game.Manager) (*natsgo.Conn, error) {
	mainLogger.Info().Msgf("NATS URL: %s", natsURL)
	nc, err := natsgo.Connect(natsURL)
	if err != nil {
		return nil, errors.Wrap(err, "Error connecting to NATS server")
	}
	manager.AddListener(nats.NewTablePublisher(nc))
	handler := nats.NewActionHandler(manager)
	if err := handler.Subscribe(nc); err != nil {
		nc.Close()
		return nil, errors.Wrap(err, "Error subscribing to player actions")
	}
	return nc, nil
}
