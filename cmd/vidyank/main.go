// Vidyank Core serves role-based sign-in for the Vidyank school platform:
// credential checks, session tokens, the per-role route table, and the
// account and institute administration behind them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	_ "github.com/vidyank/vidyank-core/migrations"

	"github.com/vidyank/vidyank-core/internal/api"
	"github.com/vidyank/vidyank-core/internal/audit"
	"github.com/vidyank/vidyank-core/internal/auth"
	"github.com/vidyank/vidyank-core/internal/infrastructure/config"
	"github.com/vidyank/vidyank-core/internal/infrastructure/database"
	"github.com/vidyank/vidyank-core/internal/infrastructure/influxdb"
	"github.com/vidyank/vidyank-core/internal/infrastructure/logging"
	"github.com/vidyank/vidyank-core/internal/infrastructure/mqtt"
	"github.com/vidyank/vidyank-core/internal/institute"
)

// Version information, set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

// auditDrainTimeout bounds how long shutdown waits for queued audit events.
const auditDrainTimeout = 10 * time.Second

// options are the command-line flags.
type options struct {
	configPath  string
	showVersion bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Printf("vidyank %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts.configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags reads the command line. The config path comes from --config,
// then VIDYANK_CONFIG, then the default.
func parseFlags(args []string) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("vidyank", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file (default: $VIDYANK_CONFIG or "+defaultConfigPath+")")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if opts.configPath == "" {
		opts.configPath = os.Getenv("VIDYANK_CONFIG")
	}
	if opts.configPath == "" {
		opts.configPath = defaultConfigPath
	}
	return opts, nil
}

// run wires every component and blocks until ctx is cancelled.
func run(ctx context.Context, configPath string) error {
	log := logging.Default()
	log.Info("starting Vidyank Core", "version", version, "commit", commit, "build_date", date)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "level", cfg.Logging.Level)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	accountRepo := auth.NewAccountRepository(db.DB)
	accounts := auth.NewAccountService(accountRepo)
	institutes := institute.NewSQLiteRepository(db.DB)

	if cfg.Seed.DemoAccounts {
		created, seedErr := auth.SeedDemoAccounts(ctx, accounts, log.Logger)
		if seedErr != nil {
			return fmt.Errorf("seeding demo accounts: %w", seedErr)
		}
		log.Info("demo accounts seeded", "created", created)

		if _, seedErr := institute.SeedDemoInstitute(ctx, institutes, accounts, log.Logger); seedErr != nil {
			return fmt.Errorf("seeding demo institute: %w", seedErr)
		}
	}

	issuer, err := auth.NewTokenIssuer(cfg.Security.JWT.Secret, cfg.Security.JWT.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}

	var sinks []audit.Sink

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log)
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		sinks = append(sinks, audit.NewMQTTSink(mqttClient, mqttClient.Topics().AuthEvent, byte(cfg.MQTT.QoS))) //nolint:gosec // validated 0..2
		log.Info("MQTT connected", "broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port))
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		sinks = append(sinks, audit.NewInfluxSink(influxClient))
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// The recorder outlives ctx so events from requests still in flight at
	// shutdown are written.
	auditRepo := audit.NewSQLiteRepository(db.DB)
	recorder := audit.NewRecorder(auditRepo, log.Logger, audit.DefaultQueueSize, sinks...)
	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	go recorder.Run(recorderCtx)
	defer func() {
		stopRecorder()
		select {
		case <-recorder.Done():
		case <-time.After(auditDrainTimeout):
			log.Warn("audit recorder did not drain in time")
		}
	}()

	server, err := api.New(api.Deps{
		Config:     cfg.API,
		Metrics:    cfg.Metrics,
		Logger:     log,
		Auth:       auth.NewAuthenticator(accountRepo, issuer),
		Accounts:   accounts,
		Institutes: institutes,
		AuditRepo:  auditRepo,
		Recorder:   recorder,
		Database:   db,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal", "address", server.Addr())

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}

func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
