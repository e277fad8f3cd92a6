// Package app builds the render pipeline and its collaborators from
// configuration. Both binaries start here.
package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"resume-builder/internal/accesskey"
	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/assemble"
	"resume-builder/internal/capture"
	"resume-builder/internal/config"
	"resume-builder/internal/domain"
	"resume-builder/internal/infrastructure/migration"
	"resume-builder/internal/usecase"
	infra "resume-builder/pkg/infrastructure"
	"resume-builder/pkg/pdfinfo"
)

type SnapshotStore interface {
	Save(ctx context.Context, s *repository.Snapshot) error
	Get(ctx context.Context, id uuid.UUID) (*repository.Snapshot, error)
}

// App holds the wired pipeline. Keys is nil when no access secret is set.
type App struct {
	Config    *config.Config
	Exporter  *usecase.Exporter
	Snapshots SnapshotStore
	Keys      *accesskey.Service
	Logger    *slog.Logger

	pool *pgxpool.Pool
}

type Option func(*options)

type options struct {
	launcher capture.Launcher
}

// WithLauncher swaps the headless Chrome launcher.
func WithLauncher(l capture.Launcher) Option { return func(o *options) { o.launcher = l } }

func New(ctx context.Context, cfg *config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if log == nil {
		log = slog.Default()
	}
	if o.launcher == nil {
		o.launcher = infra.NewChromedpLauncher(cfg.Render.ChromePath, log)
	}

	assembler, err := assemble.New(cfg.Render.FontsDir, log)
	if err != nil {
		return nil, err
	}
	captureOpts := append(cfg.CaptureOptions(), capture.WithVerifier(pdfinfo.Pages), capture.WithLogger(log))
	controller := capture.NewController(o.launcher, captureOpts...)

	store, err := ArtifactStore(ctx, cfg.Artifacts)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: log}
	if cfg.Access.Secret != "" {
		if a.Keys, err = accesskey.NewService(cfg.Access.Secret, cfg.Access.TTL); err != nil {
			return nil, err
		}
	}

	a.Snapshots = repository.NewMemorySnapshots()
	if cfg.Database.URL != "" {
		pool, err := infra.NewSnapshotPool(ctx, cfg.Database.URL)
		if err != nil {
			log.Warn("snapshot DB not available, using memory store", "error", err)
		} else if err := migration.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			log.Warn("migrations failed, using memory store", "error", err)
		} else {
			a.pool = pool
			a.Snapshots = repository.NewSnapshotsRepo(pool)
		}
	}

	a.Exporter = usecase.NewExporter(usecase.Config{
		Assembler:       assembler,
		Capturer:        controller,
		Store:           store,
		DefaultTemplate: cfg.DefaultTemplate(),
		Strategy:        domain.InjectStrategy(cfg.Render.Strategy),
		PublicURL:       cfg.Server.PublicURL,
		Logger:          log,
	})
	return a, nil
}

// ArtifactStore picks S3 when a bucket is set, else a local directory, else
// nothing.
func ArtifactStore(ctx context.Context, cfg config.ArtifactsConfig) (usecase.ArtifactStore, error) {
	switch {
	case cfg.S3Bucket != "":
		s3, err := infra.NewS3Artifacts(ctx, cfg.Region, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, err
		}
		return s3, nil
	case cfg.Dir != "":
		return infra.NewLocalArtifacts(cfg.Dir), nil
	}
	return nil, nil
}

func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
