package utils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const maxCodesPerReplace = 10000

// NormalizeUserID lowercases and trims a user id. The coordinator treats
// user ids as opaque, so case normalization happens here at the edge.
func NormalizeUserID(userID string) string {
	return strings.ToLower(strings.TrimSpace(userID))
}

// CampaignIDParam extracts and trims the :id route parameter.
func CampaignIDParam(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Params("id"))
}

// ValidateCodes sanity-checks a replacement code list: trims entries,
// drops empty lines (operators paste with trailing newlines) and caps the
// list size. Duplicate strings are preserved; the coordinator tolerates
// them.
func ValidateCodes(codes []string) ([]string, string) {
	if len(codes) > maxCodesPerReplace {
		return nil, "too many codes in one replacement"
	}
	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		cleaned = append(cleaned, code)
	}
	return cleaned, ""
}

// GetIPAddress extracts the client IP, preferring proxy headers.
func GetIPAddress(c *fiber.Ctx) string {
	if ip := c.Get("X-Forwarded-For"); ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			return strings.TrimSpace(ip[:i])
		}
		return ip
	}
	if ip := c.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return c.IP()
}

// GetUserAgent returns the request's user agent string.
func GetUserAgent(c *fiber.Ctx) string {
	return c.Get("User-Agent")
}
