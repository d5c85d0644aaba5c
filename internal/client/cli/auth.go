package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/client/client"
	"github.com/dmitrijs2005/clickpass/internal/client/flows"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
)

// getSimpleText is an indirection used to facilitate testing.
var getSimpleText = GetSimpleText

// entryFlow is what Register and Login have in common.
type entryFlow interface {
	Step() flows.Step
	SetUsername(raw string) error
	Active() *pattern.Recorder
	Back() error
	Cancel()
}

// report prints err the way the user should see it.
func (a *App) report(ctx context.Context, err error) {
	var fe *flows.Error
	switch {
	case errors.As(err, &fe):
		fmt.Fprintln(a.out, fe.Message)
	case errors.Is(err, flows.ErrBusy):
		fmt.Fprintln(a.out, "Please wait for the previous request to finish.")
	default:
		a.log.Error(ctx, "command failed", "error", err)
		fmt.Fprintln(a.out, "Something went wrong. Please try again.")
	}
}

// waitReady holds protected commands until the initial session refresh
// has completed.
func (a *App) waitReady(ctx context.Context) error {
	select {
	case <-a.binding.Ready():
		return nil
	default:
	}
	fmt.Fprintln(a.out, "Restoring session...")
	return a.binding.WaitReady(ctx)
}

func (a *App) Register(ctx context.Context) error {
	if err := a.waitReady(ctx); err != nil {
		return err
	}
	if u := a.binding.CurrentUser(); u != nil {
		fmt.Fprintf(a.out, "Already signed in as %s. Log out first.\n", u.Username)
		return nil
	}
	f := flows.NewRegistration(a.client, a.binding, a.settings, a.log, pattern.WithObserver(a.progress))
	return a.runEntry(ctx, f, f.Submit, "Choose your click pattern")
}

func (a *App) Login(ctx context.Context) error {
	if err := a.waitReady(ctx); err != nil {
		return err
	}
	if u := a.binding.CurrentUser(); u != nil {
		fmt.Fprintf(a.out, "Already signed in as %s. Log out first.\n", u.Username)
		return nil
	}
	f := flows.NewLogin(a.client, a.binding, a.settings, a.log, pattern.WithObserver(a.progress))
	return a.runEntry(ctx, f, f.Submit, "Repeat your click pattern")
}

func (a *App) runEntry(ctx context.Context, f entryFlow, submit func(context.Context) (*client.AuthResult, error), title string) error {
	for {
		switch f.Step() {
		case flows.StepCollectUsername:
			name, err := getSimpleText(a.reader, "Enter username (empty line to cancel)", a.out)
			if err != nil {
				f.Cancel()
				return err
			}
			if name == "" {
				f.Cancel()
				fmt.Fprintln(a.out, "Cancelled.")
				return nil
			}
			if err := f.SetUsername(name); err != nil {
				a.report(ctx, err)
			}

		case flows.StepCaptureClicks:
			act, err := a.capture(f.Active(), title)
			if err != nil {
				f.Cancel()
				return err
			}
			switch act {
			case actionBack:
				_ = f.Back()
			case actionCancel:
				f.Cancel()
				fmt.Fprintln(a.out, "Cancelled.")
				return nil
			case actionDone:
				res, err := submit(ctx)
				if err != nil {
					a.report(ctx, err)
					continue
				}
				fmt.Fprintf(a.out, "Welcome, %s!\n", res.Profile.Username)
				return nil
			}

		default:
			return nil
		}
	}
}

func (a *App) Passwd(ctx context.Context) error {
	if err := a.waitReady(ctx); err != nil {
		return err
	}
	if !a.binding.IsAuthenticated() {
		fmt.Fprintln(a.out, "Sign in first.")
		return nil
	}

	f := flows.NewPasswordChange(a.client, a.binding, a.settings, a.log, pattern.WithObserver(a.progress))
	for {
		var (
			title string
			next  func() error
		)
		switch f.Step() {
		case flows.StepVerifyCurrent:
			title = "Enter your CURRENT click pattern"
			next = func() error { return f.SubmitCurrent(ctx) }
		case flows.StepCaptureNew:
			title = fmt.Sprintf("Enter the NEW click pattern (at least %d clicks)", a.settings.MinNewClicks)
			next = f.AcceptNew
		case flows.StepConfirmNew:
			title = "Repeat the NEW click pattern"
			next = f.Confirm
		case flows.StepCommit:
			if err := f.Commit(ctx); err != nil {
				a.report(ctx, err)
				if f.Step() == flows.StepCommit && !a.confirm("Retry saving?") {
					f.Cancel()
					fmt.Fprintln(a.out, "Cancelled.")
					return nil
				}
			}
			continue
		case flows.StepDone:
			fmt.Fprintln(a.out, "Click pattern changed.")
			return nil
		}

		act, err := a.capture(f.Active(), title)
		if err != nil {
			f.Cancel()
			return err
		}
		switch act {
		case actionCancel:
			f.Cancel()
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		case actionBack:
			if f.Step() == flows.StepVerifyCurrent {
				f.Cancel()
				fmt.Fprintln(a.out, "Cancelled.")
				return nil
			}
			_ = f.Back()
		case actionDone:
			if err := next(); err != nil {
				a.report(ctx, err)
			}
		}
	}
}

func (a *App) confirm(question string) bool {
	answer, err := getSimpleText(a.reader, question+" [y/N]", a.out)
	return err == nil && (answer == "y" || answer == "Y" || answer == "yes")
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.waitReady(ctx); err != nil {
		return err
	}
	if !a.binding.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	if err := a.binding.Logout(ctx); err != nil {
		a.log.Warn(ctx, "logout incomplete", "error", err)
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	if err := a.waitReady(ctx); err != nil {
		return err
	}
	u := a.binding.CurrentUser()
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}

	p, err := a.client.GetProfile(ctx, u.ID)
	if err != nil {
		a.log.Warn(ctx, "get profile failed", "error", err)
		fmt.Fprintf(a.out, "username: %s (profile unavailable)\n", u.Username)
		return nil
	}
	fmt.Fprintf(a.out, "username:   %s\n", p.Username)
	fmt.Fprintf(a.out, "member since: %s\n", formatTime(p.CreatedAt))
	if p.LastLogin != nil {
		fmt.Fprintf(a.out, "last login: %s\n", formatTime(*p.LastLogin))
	}
	if p.ImageURL != "" {
		fmt.Fprintf(a.out, "picture:    %s\n", p.ImageURL)
	}
	return nil
}

// Status re-validates the session and prints connectivity and auth state.
func (a *App) Status(ctx context.Context) error {
	if err := a.waitReady(ctx); err != nil {
		return err
	}
	a.checkOnline(ctx)
	if err := a.binding.Refresh(ctx); err != nil {
		a.log.Warn(ctx, "refresh failed", "error", err)
	}

	fmt.Fprintf(a.out, "server: %s (%s)\n", a.config.ServerEndpointAddr, a.Mode())
	if u := a.binding.CurrentUser(); u != nil {
		fmt.Fprintf(a.out, "signed in as %s until %s\n", u.Username, formatTime(u.ExpiresAt))
	} else {
		fmt.Fprintln(a.out, "not signed in")
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
