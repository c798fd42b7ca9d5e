package services

import (
	"context"

	"github.com/sahilm/fuzzy"
)

// CampaignLister is the slice of the pool store the search needs.
type CampaignLister interface {
	ListCampaignIDs(ctx context.Context) ([]string, error)
}

// campaignIDs implements fuzzy.Source for campaign searching
type campaignIDs []string

func (ids campaignIDs) Len() int            { return len(ids) }
func (ids campaignIDs) String(i int) string { return ids[i] }

// CampaignSearchService powers the admin campaign picker: operators type a
// fragment of a campaign id ("loy", "hw-day2") and get ranked matches.
type CampaignSearchService struct {
	lister CampaignLister
}

func NewCampaignSearchService(lister CampaignLister) *CampaignSearchService {
	return &CampaignSearchService{lister: lister}
}

// Search returns campaign ids matching query, best match first. An empty
// query returns everything in store order.
func (s *CampaignSearchService) Search(ctx context.Context, query string, limit int) ([]string, error) {
	ids, err := s.lister.ListCampaignIDs(ctx)
	if err != nil {
		return nil, err
	}

	if query == "" {
		if limit > 0 && len(ids) > limit {
			ids = ids[:limit]
		}
		return ids, nil
	}

	matches := fuzzy.FindFrom(query, campaignIDs(ids))

	results := make([]string, 0, len(matches))
	for _, m := range matches {
		results = append(results, ids[m.Index])
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}
