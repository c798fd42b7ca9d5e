package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Heng-789/GAMEPARTY-sub002/backend/models"
	"github.com/Heng-789/GAMEPARTY-sub002/backend/utils"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/logger"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/pool"
)

// ClaimCode hands the next reward code of a campaign to a user. Game
// validators call this only after accepting the user's submission; the
// endpoint itself never judges answers. Exhausted and already_claimed are
// 200s with a status field, not errors.
func (webApp *WebApp) ClaimCode(c *fiber.Ctx) error {
	campaignID := utils.CampaignIDParam(c)

	var req models.ClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, "Invalid request body", nil)
	}
	userID := utils.NormalizeUserID(req.UserID)

	start := time.Now()
	outcome, err := webApp.Claimer.Claim(c.Context(), campaignID, userID)
	logger.LogClaim(campaignID, userID, string(outcome.Status), time.Since(start), err)
	if err != nil {
		return utils.SendPoolError(c, err)
	}

	if webApp.Guard != nil && req.Answer != "" && outcome.Status == pool.StatusClaimed {
		webApp.Guard.RecordAnswer(c.Context(), campaignID, userID, req.Answer)
	}

	return utils.SendSuccess(c, outcome, claimMessage(outcome.Status))
}

func claimMessage(status pool.ClaimStatus) string {
	switch status {
	case pool.StatusClaimed:
		return "Code claimed"
	case pool.StatusAlreadyClaimed:
		// Re-display the code the user already owns; never hide it.
		return "You already claimed your code"
	case pool.StatusExhausted:
		return "All rewards are gone"
	default:
		return ""
	}
}

// PeekCampaign reports the display counter. Cached briefly; never a basis
// for claim decisions.
func (webApp *WebApp) PeekCampaign(c *fiber.Ctx) error {
	campaignID := utils.CampaignIDParam(c)

	peeker := webApp.Peeker
	if webApp.SummaryCache != nil {
		peeker = webApp.SummaryCache
	}
	summary, err := peeker.Peek(c.Context(), campaignID)
	if err != nil {
		return utils.SendPoolError(c, err)
	}
	return utils.SendSuccess(c, summary, "")
}

// CampaignEvents is the polling endpoint behind the live counter: it
// returns the last published summary, falling back to a direct peek when
// nothing has been published since startup.
func (webApp *WebApp) CampaignEvents(c *fiber.Ctx) error {
	campaignID := utils.CampaignIDParam(c)

	if webApp.Notifier != nil {
		if summary, ok := webApp.Notifier.Latest(campaignID); ok {
			return utils.SendSuccess(c, summary, "")
		}
	}

	summary, err := webApp.Peeker.Peek(c.Context(), campaignID)
	if err != nil {
		return utils.SendPoolError(c, err)
	}
	return utils.SendSuccess(c, summary, "")
}

// ReplaceCodes installs a new code list for a campaign. Operator-only.
func (webApp *WebApp) ReplaceCodes(c *fiber.Ctx) error {
	campaignID := utils.CampaignIDParam(c)

	var req models.ReplaceCodesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, "Invalid request body", nil)
	}

	codes, problem := utils.ValidateCodes(req.Codes)
	if problem != "" {
		return utils.SendBadRequest(c, problem, nil)
	}

	version, err := webApp.Replacer.ReplaceCodes(c.Context(), campaignID, codes)
	if err != nil {
		return utils.SendPoolError(c, err)
	}

	if webApp.SummaryCache != nil {
		webApp.SummaryCache.Invalidate(campaignID)
	}

	return utils.SendSuccess(c, models.ReplaceCodesResponse{Version: version}, "Codes replaced")
}

// ListCampaigns returns campaigns matching the ?q= fragment with their
// counters, for the admin picker.
func (webApp *WebApp) ListCampaigns(c *fiber.Ctx) error {
	query := c.Query("q")
	limit := c.QueryInt("limit", 50)

	ids, err := webApp.CampaignSearch.Search(c.Context(), query, limit)
	if err != nil {
		return utils.SendPoolError(c, err)
	}

	items := make([]models.CampaignListItem, 0, len(ids))
	for _, id := range ids {
		summary, err := webApp.Peeker.Peek(c.Context(), id)
		if err != nil {
			return utils.SendPoolError(c, err)
		}
		items = append(items, models.CampaignListItem{
			CampaignID: id,
			Version:    summary.Version,
			Total:      summary.Total,
			Remaining:  summary.Remaining,
		})
	}
	return utils.SendSuccess(c, items, "")
}

// HealthCheck reports service liveness.
func (webApp *WebApp) HealthCheck(c *fiber.Ctx) error {
	health := models.NewHealthCheck(webApp.Version)
	health.AddComponent("coordinator", "healthy", "")
	return utils.SendJSON(c, fiber.StatusOK, health)
}
