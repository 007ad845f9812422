package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spigell/job-scout/internal/ingest"
	"github.com/spigell/job-scout/internal/journal"
	"github.com/spigell/job-scout/internal/logger"
	"github.com/spigell/job-scout/internal/merging"
	"github.com/spigell/job-scout/internal/notify"
	"github.com/spigell/job-scout/internal/secrets"
	"github.com/spigell/job-scout/internal/store"
)

// runtime bundles what every command needs.
type runtime struct {
	config *Config
	logger *zap.Logger
	store  *store.Store
}

// newRuntime builds the logger, loads the config and opens the store.
// Failures are fatal, as for any command entry point.
func newRuntime(ctx context.Context, command string) *runtime {
	base, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	base = logger.ForCommand(base, command)

	config, err := getConfig()
	if err != nil {
		base.Fatal("getting a config", zap.Error(err))
	}

	base.Debug("starting", zap.String("version", version), zap.Any("config", config))

	st, err := openStore(ctx, config)
	if err != nil {
		base.Fatal("opening the store", zap.Error(err), zap.String("backend", config.Store.Backend))
	}

	return &runtime{
		config: config,
		logger: logger.Tee(base, journal.NewCore(st, zapcore.InfoLevel)),
		store:  st,
	}
}

func (r *runtime) close() {
	r.logger.Sync()
	if err := r.store.Close(); err != nil {
		r.logger.Warn("closing the store", zap.Error(err))
	}
}

func openStore(ctx context.Context, config *Config) (*store.Store, error) {
	var backend store.Backend
	switch strings.ToLower(strings.TrimSpace(config.Store.Backend)) {
	case "", "file":
		b, err := store.NewFileBackend(config.DataDir)
		if err != nil {
			return nil, err
		}
		backend = b
	case "redis":
		rc := config.Store.Redis
		password, err := secrets.Load(secrets.Source{
			Name:     "redis password",
			Value:    rc.Password,
			File:     rc.PasswordFile,
			Optional: true,
		})
		if err != nil {
			return nil, err
		}
		b, err := store.NewRedisBackend(ctx, store.RedisOptions{
			Addr:     rc.Addr,
			DB:       rc.DB,
			Password: password,
			Prefix:   rc.Prefix,
			LockTTL:  rc.LockTTL,
		})
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", config.Store.Backend)
	}

	return store.New(backend, config.Log.Retention), nil
}

func newNotifier(config *Config, l *zap.Logger) notify.Notifier {
	kc := config.Notify.Kafka
	if kc == nil || !kc.Enabled {
		return notify.Nop{}
	}
	l.Info("publishing new jobs to kafka", zap.String("broker", kc.Broker), zap.String("topic", kc.Topic))
	return notify.NewKafkaNotifier(kc.Broker, kc.Topic)
}

func newEngine(r *runtime, query string, notifier notify.Notifier) *ingest.Engine {
	c := r.config
	return ingest.New(r.store, ingest.Options{
		Profile:          c.Scoring,
		ExcludeCompanies: c.Filters.ExcludeCompanies,
		ExcludeFile:      c.Filters.ExcludeFile,
		Merge:            merging.Options{PreservePipelineState: c.Merge.PreservePipelineState},
		Query:            query,
	}, notifier, r.logger)
}
