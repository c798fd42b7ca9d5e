package gameparty

import (
	"context"
	"log/slog"
	"time"

	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/database"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/database/repositories"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/pool"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/services"
)

const summaryCacheExpiry = 2 * time.Second

func New(cfg Config, version string, commit string) *App {
	return &App{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
	}
}

// App owns the coordinator and everything it needs. Wiring lives here so
// main.go stays a thin shell and tests can assemble the same graph around
// a memory store.
type App struct {
	Cfg     Config
	Version string
	Commit  string

	DB             *database.DB
	PoolRepository *repositories.PoolRepository
	AnswerRepo     *repositories.AnswerRepository
	Notifier       *pool.Notifier
	Coordinator    *pool.Coordinator
	Invalidator    *pool.Invalidator
	Guard          *pool.Guard
	SummaryCache   *services.SummaryCache
	CampaignSearch *services.CampaignSearchService
	ArchiveService *services.SpacesArchiveService
}

// Setup connects the database and assembles the claim pipeline.
func (a *App) Setup(ctx context.Context) error {
	db, err := database.New(ctx, a.Cfg.DB)
	if err != nil {
		return err
	}
	a.DB = db

	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	a.PoolRepository = repositories.NewPoolRepository(db.BunDB())
	a.AnswerRepo = repositories.NewAnswerRepository(db.BunDB())
	a.Notifier = pool.NewNotifier()
	a.Guard = pool.NewGuard(a.AnswerRepo)

	a.Coordinator = pool.NewCoordinator(a.PoolRepository, pool.WithNotifier(a.Notifier))

	invOpts := []pool.InvalidatorOption{pool.WithInvalidatorNotifier(a.Notifier)}
	if a.Cfg.Spaces.Bucket != "" {
		archive, err := services.NewSpacesArchiveService(
			a.Cfg.Spaces.Key,
			a.Cfg.Spaces.Secret,
			a.Cfg.Spaces.Region,
			a.Cfg.Spaces.Bucket,
			a.Cfg.Spaces.KeyRoot,
		)
		if err != nil {
			return err
		}
		a.ArchiveService = archive
		invOpts = append(invOpts, pool.WithArchiver(archive))
		slog.Info("Pool archive enabled",
			slog.String("bucket", a.Cfg.Spaces.Bucket),
			slog.String("region", a.Cfg.Spaces.Region))
	}
	a.Invalidator = pool.NewInvalidator(a.PoolRepository, invOpts...)

	a.SummaryCache = services.NewSummaryCache(a.Coordinator, summaryCacheExpiry)
	a.CampaignSearch = services.NewCampaignSearchService(a.PoolRepository)
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
