package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClaimsLookupHappyPath(t *testing.T) {
	page := newFakePage()
	page.clickable[`text=Lookup`] = true
	page.clickable[`text=38939`] = true
	page.selectable[`#claimStatusCodeId`] = true

	err := ClaimsLookup(context.Background(), page, "38939")
	require.NoError(t, err)
	require.Equal(t, []string{`text=Lookup`, `text=Lookup`, `text=38939`}, page.clicks)
	require.Equal(t, "All Claims", page.selections[`#claimStatusCodeId`])
}

func TestClaimsLookupClaimRowFallsBackToSubstring(t *testing.T) {
	page := newFakePage()
	page.clickable[`text=Lookup`] = true
	page.clickable[`text*=38939`] = true
	page.selectable[`#claimStatusCodeId`] = true

	err := ClaimsLookup(context.Background(), page, "38939")
	require.NoError(t, err)
	require.Contains(t, page.clicks, `text*=38939`)
}

func TestClaimsLookupMissingClaim(t *testing.T) {
	page := newFakePage()
	page.clickable[`text=Lookup`] = true
	page.selectable[`#claimStatusCodeId`] = true

	err := ClaimsLookup(context.Background(), page, "99999")
	require.Error(t, err)
}

func TestNavigateToClaims(t *testing.T) {
	page := newFakePage()
	page.clickable[`#jellybean-panelLink4.navgator.mainMenu`] = true
	page.clickable[`.icon.nav-label.icon-label-bill`] = true
	page.clickable[`.svgicon.svg-document1`] = true

	err := NavigateToClaims(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, page.clicks, 3)
}

func TestSetServiceDates(t *testing.T) {
	page := newFakePage()
	page.clickable[`nth=0|.icon.icon-inputcalender`] = true
	page.clickable[`nth=1|.icon.icon-inputcalender`] = true
	page.clickable[`text=17`] = true
	page.selectable[`select.datepicker-months`] = true

	err := SetServiceDates(context.Background(), page, "08-17-2026")
	require.NoError(t, err)
	// Both pickers get the month set and the day clicked.
	require.Equal(t, "Aug", page.selections[`select.datepicker-months`])
	require.Equal(t, []string{
		`nth=0|.icon.icon-inputcalender`, `text=17`,
		`nth=1|.icon.icon-inputcalender`, `text=17`,
	}, page.clicks)
}

func TestSetServiceDatesBadFormat(t *testing.T) {
	page := newFakePage()
	for _, bad := range []string{"", "2026-08-17-x", "13-01-2026", "08-40-2026"} {
		if err := SetServiceDates(context.Background(), page, bad); err == nil {
			t.Errorf("date %q: expected error", bad)
		}
	}
}

func TestParseTargetDate(t *testing.T) {
	month, day, year, err := parseTargetDate("09-03-2025")
	require.NoError(t, err)
	require.Equal(t, 9, month)
	require.Equal(t, 3, day)
	require.Equal(t, 2025, year)
}
