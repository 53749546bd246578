package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/claimloop/ecwcoder/internal/browser"
	perrors "github.com/claimloop/ecwcoder/internal/errors"
)

var (
	hamburgerSelectors = []string{
		`#jellybean-panelLink4.navgator.mainMenu`,
		`#jellybean-panelLink4`,
	}
	billingMenuSelectors = []string{
		`.icon.nav-label.icon-label-bill`,
	}
	claimsIconSelectors = []string{
		`.svgicon.svg-document1`,
	}
	monthDropdownSelectors = []string{
		`select.datepicker-months`,
		`select[class*="month"]`,
		`.datepicker select:first-child`,
		`.datepicker select`,
		`[class*="datepicker"] select`,
	}
)

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthShortNames = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// NavigateToClaims walks the hamburger menu into Billing > Claims.
func NavigateToClaims(ctx context.Context, page browser.Page) error {
	log.Info().Msg("navigating to claims via main menu")

	if _, err := page.FindAndClick(ctx, hamburgerSelectors); err != nil {
		return perrors.NewNavigationFailed("main menu")
	}
	page.Wait(ctx, 2*time.Second)

	if _, err := page.FindAndClick(ctx, billingMenuSelectors); err != nil {
		return perrors.NewNavigationFailed("billing menu")
	}
	page.Wait(ctx, 2*time.Second)

	if _, err := page.FindAndClick(ctx, claimsIconSelectors); err != nil {
		return perrors.NewNavigationFailed("claims icon")
	}
	page.Wait(ctx, 3*time.Second)

	log.Info().Msg("claims page open")
	return nil
}

// SetServiceDates sets the claims search FROM and TO dates to targetDate,
// given in MM-DD-YYYY form. A failure here is reported but the caller may
// choose to continue with whatever range the page already shows.
func SetServiceDates(ctx context.Context, page browser.Page, targetDate string) error {
	month, day, _, err := parseTargetDate(targetDate)
	if err != nil {
		return perrors.NewInvalidRequest(err.Error())
	}
	log.Info().Str("target_date", targetDate).Msg("setting service date range")

	// The FROM and TO pickers are the first two calendar icons on the page.
	for i, which := range []string{"FROM", "TO"} {
		icon := fmt.Sprintf("nth=%d|.icon.icon-inputcalender", i)
		if _, err := page.FindAndClick(ctx, []string{icon}); err != nil {
			return perrors.NewNavigationFailed(which + " date calendar")
		}
		page.Wait(ctx, 2*time.Second)

		if err := selectCalendarMonth(ctx, page, month); err != nil {
			log.Warn().Str("date", which).Int("month", month).
				Msg("could not set month, proceeding with current month")
		}

		if _, err := page.FindAndClick(ctx, []string{"text=" + strconv.Itoa(day)}); err != nil {
			return perrors.NewNavigationFailed(fmt.Sprintf("%s date day %d", which, day))
		}
		page.Wait(ctx, time.Second)
		log.Info().Str("date", which).Int("day", day).Msg("service date set")
	}
	return nil
}

// selectCalendarMonth tries the month dropdown with several label spellings
// the datepicker is known to use.
func selectCalendarMonth(ctx context.Context, page browser.Page, month int) error {
	labels := []string{
		monthShortNames[month-1],
		monthNames[month-1],
		strconv.Itoa(month),
		fmt.Sprintf("%02d", month),
	}
	for _, label := range labels {
		if _, err := page.SelectOption(ctx, monthDropdownSelectors, label); err == nil {
			page.Wait(ctx, 1500*time.Millisecond)
			return nil
		}
	}
	return browser.ErrNoCandidate
}

func parseTargetDate(targetDate string) (month, day, year int, err error) {
	parts := strings.Split(strings.TrimSpace(targetDate), "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("target date %q is not MM-DD-YYYY", targetDate)
	}
	month, err = strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("target date %q has invalid month", targetDate)
	}
	day, err = strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("target date %q has invalid day", targetDate)
	}
	year, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("target date %q has invalid year", targetDate)
	}
	return month, day, year, nil
}
