package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/filex"
	"github.com/dmitrijs2005/clickpass/internal/netx"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
)

const imageFetchTimeout = 15 * time.Second

// Image downloads the reference image into the state directory and adopts
// the intrinsic size the server reports for it. Clicks are mapped with the
// new size from then on.
func (a *App) Image(ctx context.Context) error {
	if a.config.ReferenceImageURL == "" {
		fmt.Fprintln(a.out, "No reference image URL configured.")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, imageFetchTimeout)
	defer cancel()

	img, err := netx.FetchImage(ctx, a.httpClient, a.config.ReferenceImageURL)
	if err != nil {
		a.log.Warn(ctx, "reference image download failed", "url", a.config.ReferenceImageURL, "error", err)
		fmt.Fprintln(a.out, "Could not download the reference image. Please try again.")
		return nil
	}

	path := filepath.Join(a.stateDir, "reference"+img.Extension())
	if err := filex.WriteFileAtomic(path, img.Data, 0o600); err != nil {
		return fmt.Errorf("save reference image: %w", err)
	}

	next := pattern.Dimensions{Width: img.Width, Height: img.Height}
	if next != a.intrinsic {
		a.log.Info(ctx, "intrinsic size changed",
			"from", fmt.Sprintf("%gx%g", a.intrinsic.Width, a.intrinsic.Height),
			"to", fmt.Sprintf("%gx%g", next.Width, next.Height))
		a.intrinsic = next
	}

	fmt.Fprintf(a.out, "Reference image saved to %s (%gx%g, shown at %gx%g).\n",
		path, next.Width, next.Height, a.rendered.Width, a.rendered.Height)
	return nil
}
