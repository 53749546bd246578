package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/claimloop/ecwcoder/internal/browser"
	"github.com/claimloop/ecwcoder/internal/coding"
	perrors "github.com/claimloop/ecwcoder/internal/errors"
)

// The billing grid exposes one writable "*" row; typing a procedure code and
// pressing Tab commits it and grows a fresh "*" row, so every code goes
// through the same two selectors.
var (
	starRowSelectors = []string{
		`input[ng-model="newCPT"]`,
		`#billingClaimIpt34`,
	}
	icdFieldSelectors = []string{
		`input[ng-model="newICD"]`,
		`input[class*="claimICDInput"]`,
		`input[id*="txtnewIcd"]`,
		`input[ng-keydown*="lookupICDCode"]`,
	}
)

func modifier1Selectors(row int) []string {
	return []string{
		fmt.Sprintf(`table tbody tr:nth-child(%d) td:nth-child(8) input`, row),
		fmt.Sprintf(`table tbody tr:nth-child(%d) input[data-fieldname*="MOD1"]`, row),
		fmt.Sprintf(`table tbody tr:nth-child(%d) input[data-fieldname*="M1"]`, row),
	}
}

func modifier2Selectors(row int) []string {
	return []string{
		fmt.Sprintf(`table tbody tr:nth-child(%d) td:nth-child(9) input`, row),
		fmt.Sprintf(`table tbody tr:nth-child(%d) input[data-fieldname*="MOD2"]`, row),
		fmt.Sprintf(`table tbody tr:nth-child(%d) input[data-fieldname*="M2"]`, row),
	}
}

// PopulateCodes types the predicted procedure codes into the billing grid and
// sets the diagnosis code. A field that cannot be located skips that value and
// moves on; population is best-effort per field so one bad selector does not
// strand the rest of the claim.
func PopulateCodes(ctx context.Context, page browser.Page, records []coding.Record, icdCode string) error {
	if len(records) == 0 {
		log.Warn().Msg("no procedure codes to populate")
	}
	log.Info().Int("codes", len(records)).Msg("populating billing grid")

	for i, rec := range records {
		row := i + 1
		log.Info().Int("row", row).Str("code", rec.Code).Msg("entering procedure code")

		closeAnyDialogs(ctx, page)

		if err := enterStarRowCode(ctx, page, rec.Code); err != nil {
			log.Warn().Int("row", row).Str("code", rec.Code).
				Msg("star row field not found, skipping code")
			continue
		}

		if rec.Modifier1 != "" {
			if err := fillGridField(ctx, page, modifier1Selectors(row), rec.Modifier1); err != nil {
				log.Warn().Int("row", row).Str("modifier", rec.Modifier1).
					Msg("M1 field not found, skipping modifier")
			}
		}
		if rec.Modifier2 != "" {
			if err := fillGridField(ctx, page, modifier2Selectors(row), rec.Modifier2); err != nil {
				log.Warn().Int("row", row).Str("modifier", rec.Modifier2).
					Msg("M2 field not found, skipping modifier")
			}
		}

		// Click clear of the grid so the next star row focuses cleanly.
		page.ClickAt(ctx, 200, 200)
		page.Wait(ctx, time.Second)
	}

	if icdCode != "" {
		if err := addICDCode(ctx, page, icdCode); err != nil {
			log.Warn().Str("icd", icdCode).Msg("diagnosis code field not found")
			return err
		}
	}
	return nil
}

// enterStarRowCode clicks the star row, types the code, and commits it with
// Tab. The Tab both triggers the grid's auto-population and creates the next
// star row.
func enterStarRowCode(ctx context.Context, page browser.Page, code string) error {
	if _, err := page.FindAndClick(ctx, starRowSelectors); err != nil {
		return perrors.NewFieldNotFound("star row procedure code")
	}
	page.Wait(ctx, 300*time.Millisecond)

	if err := page.TypeText(ctx, code); err != nil {
		return perrors.NewInternal(err)
	}
	if err := page.PressKey(ctx, "Tab"); err != nil {
		return perrors.NewInternal(err)
	}
	// Row creation in the grid is slow.
	page.Wait(ctx, 4*time.Second)
	return nil
}

func fillGridField(ctx context.Context, page browser.Page, candidates []string, value string) error {
	if _, err := page.FillField(ctx, candidates, value); err != nil {
		return perrors.NewFieldNotFound(candidates[0])
	}
	return nil
}

// addICDCode fills the diagnosis code input and commits it with Tab.
func addICDCode(ctx context.Context, page browser.Page, icdCode string) error {
	log.Info().Str("icd", icdCode).Msg("entering diagnosis code")
	page.Wait(ctx, 2*time.Second)

	if _, err := page.FillField(ctx, icdFieldSelectors, icdCode); err != nil {
		return perrors.NewFieldNotFound("diagnosis code")
	}
	if err := page.PressKey(ctx, "Tab"); err != nil {
		return perrors.NewInternal(err)
	}
	page.Wait(ctx, 2*time.Second)
	return nil
}

// closeAnyDialogs dismisses a stray dialog left over from the previous step.
func closeAnyDialogs(ctx context.Context, page browser.Page) {
	if sel, err := page.FindAndClick(ctx, dialogCloseSelectors); err == nil {
		log.Debug().Str("selector", sel).Msg("closed stray dialog")
		page.Wait(ctx, time.Second)
	}
}
