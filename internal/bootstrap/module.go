package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"datenwerk/internal/bootstrap/config"
	"datenwerk/internal/bootstrap/database"
	"datenwerk/internal/bootstrap/logging"
	sqliterepo "datenwerk/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "datenwerk/internal/infrastructure/persistence/sqlite/uow"
	snapshotinfra "datenwerk/internal/infrastructure/snapshot"
	"datenwerk/internal/ports"
	"datenwerk/internal/usecase/generate"
	"datenwerk/internal/usecase/pipeline"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewRunRepository,
			fx.As(new(ports.RunRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			snapshotinfra.NewSQLiteStore,
			fx.As(new(ports.SnapshotStore)),
		),
	),
	fx.Provide(generate.NewService),
	fx.Provide(pipeline.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}
