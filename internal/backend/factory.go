package backend

import (
	"context"
	"errors"
	"fmt"

	"timesheet/internal/adapters"
	"timesheet/internal/amqp"
	"timesheet/internal/cache"
	applog "timesheet/internal/log"
	gsheet "timesheet/internal/sheets/google"
	"timesheet/internal/sheets/memory"
	"timesheet/internal/storage"
)

// eventPublisher is the part of the AMQP client the SQLite backend needs.
type eventPublisher interface {
	adapters.Publisher
	Close() error
}

type dialFunc func(url, exchange, queue string) (eventPublisher, error)

func dialAMQP(url, exchange, queue string) (eventPublisher, error) {
	c, err := amqp.NewClient(url, exchange, queue)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
	dial   dialFunc
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
		dial:   dialAMQP,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case SheetsBackend:
		res, err = f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.CacheTTL > 0 {
		size := config.CacheSize
		if size <= 0 {
			size = defaultCacheSize
		}
		cached := cache.NewEntryStore(res.Backend, size, config.CacheTTL)
		res.Backend = cached
		res.Cache = cached.Recent()
	}
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	var store Backend = repo
	var pub eventPublisher
	if config.AMQPURL != "" {
		pub, err = f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", applog.FieldError, err)
			pub = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			store = adapters.NewPublishingStore(repo, pub)
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", pub != nil)

	return &BackendResult{
		Backend: store,
		Cleanup: func() error {
			var errs []error
			if pub != nil {
				errs = append(errs, pub.Close())
			}
			errs = append(errs, repo.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, config.Sheets)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	if err := cli.EnsureHeader(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare sheet %q: %w", config.Sheets.SheetName, err)
	}

	f.logger.Info("Initialized Google Sheets backend", "sheet", config.Sheets.SheetName)
	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store := memory.NewFromFiles(dataDir, config.DefaultUserID)

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return &BackendResult{Backend: store}, nil
}
