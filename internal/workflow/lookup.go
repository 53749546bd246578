package workflow

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/claimloop/ecwcoder/internal/browser"
	perrors "github.com/claimloop/ecwcoder/internal/errors"
)

var (
	lookupButtonSelectors = []string{
		`text=Lookup`,
		`#btnclaimlookup`,
		`[ng-click*="getClaimsListFromLookup"]`,
	}
	claimStatusSelectors = []string{
		`#claimStatusCodeId`,
	}
)

// claimRowSelectors builds the candidate list for the claim's row in the
// search results.
func claimRowSelectors(claimID string) []string {
	return []string{
		"text=" + claimID,
		"text*=" + claimID,
		`[href*="` + claimID + `"]`,
	}
}

// ClaimsLookup searches for a claim by ID and opens it: open the lookup panel,
// widen the status filter to all claims, run the search, and click the claim
// row. The claim row not being present is a DialogNotFound-class failure the
// runner reports and survives.
func ClaimsLookup(ctx context.Context, page browser.Page, claimID string) error {
	log.Info().Str("claim_id", claimID).Msg("starting claims lookup")

	if _, err := page.FindAndClick(ctx, lookupButtonSelectors); err != nil {
		return perrors.NewNavigationFailed("claims lookup button")
	}
	page.Wait(ctx, 2*time.Second)

	if _, err := page.SelectOption(ctx, claimStatusSelectors, "All Claims"); err != nil {
		return perrors.NewNavigationFailed("claim status dropdown")
	}
	page.Wait(ctx, time.Second)

	if _, err := page.FindAndClick(ctx, lookupButtonSelectors); err != nil {
		return perrors.NewNavigationFailed("claims search")
	}
	page.Wait(ctx, 3*time.Second)

	if _, err := page.FindAndClick(ctx, claimRowSelectors(claimID)); err != nil {
		log.Warn().Str("claim_id", claimID).Msg("claim not found in search results")
		return perrors.NewNavigationFailed("claim row " + claimID)
	}
	page.Wait(ctx, 3*time.Second)

	log.Info().Str("claim_id", claimID).Msg("claim opened")
	return nil
}
