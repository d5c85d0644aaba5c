package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/clickpass/internal/pattern"
)

type captureAction int

const (
	actionDone captureAction = iota
	actionBack
	actionCancel
)

var errBadPoint = errors.New(`expected "x,y"`)

// parsePoint reads "x,y" (or "x y") in display coordinates.
func parsePoint(s string) (pattern.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		fields := strings.Fields(s)
		if len(fields) != 2 {
			return pattern.Point{}, errBadPoint
		}
		xs, ys = fields[0], fields[1]
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return pattern.Point{}, errBadPoint
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return pattern.Point{}, errBadPoint
	}
	return pattern.Point{X: x, Y: y}, nil
}

func (a *App) readCaptureLine() (string, error) {
	if a.hidden {
		return GetHiddenText(a.out, "click> ")
	}
	fmt.Fprint(a.out, "click> ")
	return readLine(a.reader)
}

// capture feeds typed clicks into rec until the user finishes the step.
func (a *App) capture(rec *pattern.Recorder, title string) (captureAction, error) {
	fmt.Fprintf(a.out, "%s\nImage is %gx%g. Type x,y per click, then 'done' (also: undo <n>, clear, back, cancel).\n",
		title, a.rendered.Width, a.rendered.Height)

	for {
		line, err := a.readCaptureLine()
		if err != nil {
			return actionCancel, err
		}
		cmd, arg, _ := strings.Cut(line, " ")

		switch strings.ToLower(cmd) {
		case "":
			continue
		case "done":
			return actionDone, nil
		case "back":
			return actionBack, nil
		case "cancel":
			return actionCancel, nil
		case "clear":
			rec.Clear()
			fmt.Fprintln(a.out, "Cleared.")
		case "undo":
			if !rec.Editable() {
				fmt.Fprintln(a.out, "Clicks cannot be removed here; use 'clear'.")
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(arg))
			if err != nil || !rec.Remove(n-1) {
				fmt.Fprintf(a.out, "No click %q to remove.\n", arg)
			}
		default:
			a.addClick(rec, line)
		}
	}
}

func (a *App) addClick(rec *pattern.Recorder, line string) {
	display, err := parsePoint(line)
	if err != nil {
		fmt.Fprintln(a.out, "Unknown input:", err)
		return
	}
	p, err := pattern.ToIntrinsic(display, a.rendered, a.intrinsic)
	if err != nil {
		fmt.Fprintln(a.out, "The reference image size is not configured.")
		return
	}
	if !rec.Add(p) {
		fmt.Fprintf(a.out, "Already %d clicks; extra clicks are ignored.\n", rec.Capacity())
		return
	}
	if rec.State() == pattern.StateFull {
		fmt.Fprintln(a.out, "Pattern is full; type 'done' to submit.")
	}
}

// progress is installed as the recorder observer. Coordinates are never
// echoed.
func (a *App) progress(p pattern.Pattern) {
	fmt.Fprintf(a.out, "clicks: %d/%d\n", len(p), a.settings.MaxClicks)
}
