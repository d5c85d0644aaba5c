package config

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clickpass/internal/pattern"
)

// Validate rejects pattern parameters and image sizes the capture and
// normalization steps cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if err := pattern.CheckTolerance(c.Tolerance); err != nil {
		errs = append(errs, err)
	}
	if err := (pattern.Limits{Min: c.MinClicks, Max: c.MaxClicks}).Check(); err != nil {
		errs = append(errs, fmt.Errorf("click count: %w", err))
	}
	if err := (pattern.Limits{Min: c.MinNewClicks, Max: c.MaxClicks}).Check(); err != nil {
		errs = append(errs, fmt.Errorf("new credential click count: %w", err))
	}
	if !(c.RenderedWidth > 0) || !(c.RenderedHeight > 0) {
		errs = append(errs, fmt.Errorf("rendered size %vx%v must be positive", c.RenderedWidth, c.RenderedHeight))
	}
	if !(c.IntrinsicWidth > 0) || !(c.IntrinsicHeight > 0) {
		errs = append(errs, fmt.Errorf("intrinsic size %vx%v must be positive", c.IntrinsicWidth, c.IntrinsicHeight))
	}
	return errors.Join(errs...)
}
