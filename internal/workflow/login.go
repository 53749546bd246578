// Package workflow implements the billing automation flows against the EHR:
// login, claims navigation and lookup, progress notes extraction, and code
// population. Every flow drives the page through a browser.Page so it can run
// against live Chrome or a fake.
package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/claimloop/ecwcoder/internal/browser"
	perrors "github.com/claimloop/ecwcoder/internal/errors"
)

// The EHR renders its login form inconsistently across deployments, so each
// field is located by a candidate list tried in order.
var (
	usernameSelectors = []string{
		`input[name="username"]`,
		`input[name="userName"]`,
		`input[name="user"]`,
		`input[id="username"]`,
		`input[id="userName"]`,
		`input[id="user"]`,
		`input[type="text"]`,
		`#username`,
		`#userName`,
		`#user`,
	}
	passwordSelectors = []string{
		`input[name="password"]`,
		`input[name="pwd"]`,
		`input[id="password"]`,
		`input[id="pwd"]`,
		`input[type="password"]`,
		`#password`,
		`#pwd`,
	}
	loginButtonSelectors = []string{
		`input[type="submit"]`,
		`button[type="submit"]`,
		`input[value*="Login"]`,
		`input[value*="Sign"]`,
		`text=Login`,
		`text=Sign In`,
		`#login`,
		`#loginButton`,
		`.login-button`,
		`.btn-login`,
	}
)

// LoginInput carries the credentials and entry URL for a login attempt.
type LoginInput struct {
	URL      string
	Username string
	Password string
}

// Login signs into the EHR. The flow tolerates both single-page and two-step
// forms: if no password field is visible alongside the username, the password
// is entered on the follow-up page. Success is judged by the post-submit URL
// no longer being a login page.
func Login(ctx context.Context, page browser.Page, in LoginInput) error {
	log.Info().Str("url", in.URL).Msg("opening login page")
	if err := page.Navigate(ctx, in.URL); err != nil {
		return perrors.NewLoginFailed("could not open login page: " + err.Error())
	}
	page.Wait(ctx, 2*time.Second)

	if _, err := page.FillField(ctx, usernameSelectors, in.Username); err != nil {
		return perrors.NewLoginFailed("username field not found")
	}

	// Password may or may not be on the first page.
	passwordFilled := true
	if _, err := page.FillField(ctx, passwordSelectors, in.Password); err != nil {
		passwordFilled = false
		log.Debug().Msg("no password field on first page, assuming two-step login")
	}

	if _, err := page.FindAndClick(ctx, loginButtonSelectors); err != nil {
		return perrors.NewLoginFailed("login button not found")
	}
	page.Wait(ctx, 3*time.Second)

	loc, err := page.URL(ctx)
	if err != nil {
		return perrors.NewLoginFailed("could not read page location: " + err.Error())
	}

	if strings.Contains(loc, "getPwdPage") || !passwordFilled {
		log.Info().Msg("on password page, completing second step")
		page.Wait(ctx, 2*time.Second)
		if _, err := page.FillField(ctx, passwordSelectors, in.Password); err != nil {
			return perrors.NewLoginFailed("password field not found on password page")
		}
		if _, err := page.FindAndClick(ctx, loginButtonSelectors); err != nil {
			return perrors.NewLoginFailed("login button not found on password page")
		}
		page.Wait(ctx, 3*time.Second)

		loc, err = page.URL(ctx)
		if err != nil {
			return perrors.NewLoginFailed("could not read page location: " + err.Error())
		}
	}

	if strings.Contains(strings.ToLower(loc), "login") {
		return perrors.NewLoginFailed("still on login page after submit")
	}
	log.Info().Str("url", loc).Msg("login successful")
	return nil
}
