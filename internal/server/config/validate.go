package config

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clickpass/internal/pattern"
)

// Validate reports every pattern setting that would make verification
// unusable. It does not touch connectivity settings.
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
	if !(c.ImageWidth > 0) || !(c.ImageHeight > 0) {
		errs = append(errs, fmt.Errorf("image size %vx%v must be positive", c.ImageWidth, c.ImageHeight))
	}
	if c.MaxFailedAttempts < 1 {
		errs = append(errs, fmt.Errorf("max failed attempts %d is below 1", c.MaxFailedAttempts))
	}
	return errors.Join(errs...)
}
