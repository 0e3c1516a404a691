package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jonathan/resume-reader/internal/config"
	"github.com/jonathan/resume-reader/internal/db"
	"github.com/jonathan/resume-reader/internal/db/sqlite"
	"github.com/jonathan/resume-reader/internal/events"
	"github.com/jonathan/resume-reader/internal/service"
	"github.com/jonathan/resume-reader/internal/storage"
	"github.com/jonathan/resume-reader/internal/store"
	"github.com/jonathan/resume-reader/internal/store/memory"
)

// backends holds the stores and publisher selected by the configuration.
type backends struct {
	records   store.RecordStore
	blobs     store.BlobStore
	publisher events.Publisher
	closers   []io.Closer
}

// Close releases every opened backend, returning the first error.
func (b *backends) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}

// openBackends connects the configured record store, blob store and event publisher.
// Postgres schemas are migrated on open.
func openBackends(ctx context.Context, cfg *config.Config) (_ *backends, err error) {
	b := &backends{publisher: events.NopPublisher{}}
	defer func() {
		if err != nil {
			_ = b.Close()
		}
	}()

	var local *sqlite.Store
	if cfg.RecordStore == config.StoreSQLite || cfg.BlobStore == config.StoreSQLite {
		local, err = sqlite.NewStore(cfg.SQLiteDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		b.closers = append(b.closers, local)
		logger.Info("store.sqlite.open", "path", local.Path())
	}

	switch cfg.RecordStore {
	case config.StorePostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		b.closers = append(b.closers, database)
		if err := database.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		b.records = database
	case config.StoreSQLite:
		b.records = local.Records()
	case config.StoreMemory:
		b.records = memory.NewRecordStore()
	default:
		return nil, fmt.Errorf("unknown record store %q", cfg.RecordStore)
	}

	switch cfg.BlobStore {
	case config.StoreS3:
		s3Store, err := storage.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 store: %w", err)
		}
		b.blobs = s3Store
	case config.StoreSQLite:
		b.blobs = local.Blobs()
	case config.StoreMemory:
		b.blobs = memory.NewBlobStore()
	default:
		return nil, fmt.Errorf("unknown blob store %q", cfg.BlobStore)
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := events.DialAMQP(cfg.RabbitMQURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		b.publisher = publisher
		b.closers = append(b.closers, publisher)
	}

	logger.Info("backends.ready", "records", cfg.RecordStore, "blobs", cfg.BlobStore, "events", cfg.RabbitMQURL != "")
	return b, nil
}

// newService builds the resume service over b.
func newService(b *backends, validate bool) *service.ResumeService {
	return service.New(b.records, b.blobs,
		service.WithPublisher(b.publisher),
		service.WithLogger(logger),
		service.WithSchemaValidation(validate),
	)
}
