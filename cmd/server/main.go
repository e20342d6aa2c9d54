// Package main is the entry point of the application
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tecu23/chess-server/pkg/config"
	"github.com/tecu23/chess-server/pkg/events"
	"github.com/tecu23/chess-server/pkg/manager"
	"github.com/tecu23/chess-server/pkg/repository"
	"github.com/tecu23/chess-server/pkg/rules"
	"github.com/tecu23/chess-server/pkg/server"
)

// App encapsulates global dependencies
type application struct {
	Logger    *zap.Logger
	Config    *config.Config
	Publisher *events.Publisher
	Hub       *server.Hub
	NATS      *events.NATSSink
	Server    *http.Server

	upgrader websocket.Upgrader

	StartTime time.Time
}

func main() {
	// A missing .env is fine; the environment may already be set.
	envErr := godotenv.Load()

	if err := newCommand(envErr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newCommand builds the root command. Its help lists the environment
// variables the config understands.
func newCommand(envErr error) *cli.Command {
	envHelp, err := config.Usage()
	if err != nil {
		envHelp = ""
	}

	return &cli.Command{
		Name:        "chess-server",
		Usage:       "websocket server coordinating two-player chess games",
		Description: envHelp,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "server port",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, envErr)
		},
	}
}

func run(ctx context.Context, cmd *cli.Command, envErr error) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if cmd.IsSet("debug") {
		cfg.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.String("port")
	}

	// Initialize logger
	logger := initLogger(cfg.Debug)
	defer func() { _ = logger.Sync() }()

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("loading env error", zap.Error(envErr))
	}

	app, err := newApplication(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.NATS.URL != "" {
		app.connectNATS()
	}

	return app.serve(ctx)
}

// newApplication wires the registries, the coordinator and the hub.
func newApplication(cfg *config.Config, logger *zap.Logger) (*application, error) {
	tc, err := cfg.TimeControl()
	if err != nil {
		return nil, err
	}

	// Initialize event publisher
	publisher := events.NewPublisher()

	// Initialize registries
	sessions := repository.NewSessionRegistry()
	games := repository.NewInMemoryRepository(logger)
	connections := repository.NewConnectionIndex()

	dispatcher := server.NewDispatcher(connections, sessions, logger)

	// Initialize game manager
	gm := manager.NewManager(
		sessions, games, connections,
		rules.NewStandard(),
		dispatcher,
		publisher,
		logger,
		manager.WithDefaultTimeControl(tc),
	)

	hub := server.NewHub(gm, logger,
		server.WithSyncInterval(cfg.TimeSyncInterval),
		server.WithSendBuffer(cfg.SendBuffer),
	)

	app := &application{
		Logger:    logger,
		Config:    cfg,
		Publisher: publisher,
		Hub:       hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg.FrontendOrigins),
		},
		StartTime: time.Now(),
	}

	publisher.SubscribeAll(func(e events.Event) {
		logger.Debug("event", zap.String("type", string(e.Type)), zap.String("game_id", e.GameID))
	})

	return app, nil
}

// connectNATS attaches the NATS sink. A broker that cannot be reached is
// logged and the server runs without it.
func (app *application) connectNATS() {
	sink, err := events.ConnectNATS(app.Config.NATS.URL, app.Config.NATS.SubjectPrefix, app.Logger)
	if err != nil {
		app.Logger.Warn("nats unavailable, lifecycle events stay in process",
			zap.String("url", app.Config.NATS.URL),
			zap.Error(err))
		return
	}

	app.NATS = sink
	app.Publisher.SubscribeAll(sink.Handle)
	app.Logger.Info("publishing lifecycle events to nats", zap.String("url", app.Config.NATS.URL))
}

func initLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	return logger
}

// Shutdown cleans up resources
func (app *application) Shutdown() {
	// Shut down hub
	if app.Hub != nil {
		app.Hub.Shutdown()
	}

	if app.NATS != nil {
		if err := app.NATS.Close(); err != nil {
			app.Logger.Warn("nats drain failed", zap.Error(err))
		}
	}

	app.Logger.Info("All components shut down successfully")
}
