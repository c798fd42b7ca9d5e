package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/Heng-789/GAMEPARTY-sub002/backend/middleware"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/pool"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/services"
)

// Claimer is the claim surface handlers call into.
type Claimer interface {
	Claim(ctx context.Context, campaignID, userID string) (pool.ClaimOutcome, error)
}

// Replacer is the admin code-replacement surface.
type Replacer interface {
	ReplaceCodes(ctx context.Context, campaignID string, codes []string) (int64, error)
}

// WebApp represents the web application with all dependencies
type WebApp struct {
	Claimer        Claimer
	Replacer       Replacer
	Peeker         services.Peeker
	SummaryCache   *services.SummaryCache
	Guard          *pool.Guard
	Notifier       *pool.Notifier
	CampaignSearch *services.CampaignSearchService
	AdminToken     string
	RateLimit      int
	Version        string
	Commit         string
}

// FromApp wires the web surface over an assembled application.
func FromApp(a *gameparty.App) *WebApp {
	return &WebApp{
		Claimer:        a.Coordinator,
		Replacer:       a.Invalidator,
		Peeker:         a.Coordinator,
		SummaryCache:   a.SummaryCache,
		Guard:          a.Guard,
		Notifier:       a.Notifier,
		CampaignSearch: a.CampaignSearch,
		AdminToken:     a.Cfg.Server.AdminToken,
		RateLimit:      a.Cfg.Server.RateLimit,
		Version:        a.Version,
		Commit:         a.Commit,
	}
}

// SetupRoutes registers the public and admin API on the Fiber app.
func (webApp *WebApp) SetupRoutes(app *fiber.App) {
	app.Get("/health", webApp.HealthCheck)

	api := app.Group("/api")

	campaigns := api.Group("/campaigns")
	campaigns.Post("/:id/claim", middleware.ClaimRateLimit(webApp.RateLimit), webApp.ClaimCode)
	campaigns.Get("/:id/peek", webApp.PeekCampaign)
	campaigns.Get("/:id/events", webApp.CampaignEvents)

	adminAuth := middleware.AdminRequired(webApp.AdminToken)
	campaigns.Get("/", adminAuth, middleware.AuditLogMiddleware("list_campaigns"), webApp.ListCampaigns)
	campaigns.Put("/:id/codes", adminAuth, middleware.AuditLogMiddleware("replace_codes"), webApp.ReplaceCodes)
}
