package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/clickpass/internal/flagx"
	"github.com/dmitrijs2005/clickpass/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. Absent fields leave the
// current value untouched.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	StateDir            string         `json:"state_dir"`
	ReferenceImageURL   string         `json:"reference_image_url"`
	Tolerance           float64        `json:"tolerance"`
	MinClicks           int            `json:"min_clicks"`
	MaxClicks           int            `json:"max_clicks"`
	MinNewClicks        int            `json:"min_new_clicks"`
	RenderedWidth       float64        `json:"rendered_width"`
	RenderedHeight      float64        `json:"rendered_height"`
	IntrinsicWidth      float64        `json:"intrinsic_width"`
	IntrinsicHeight     float64        `json:"intrinsic_height"`
}

// parseJson overlays Config with values loaded from the file named by
// -c / -config. Nothing happens when neither flag is given.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setNonZero(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setNonZero(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval.Duration)
	setNonZero(&cfg.RequestTimeout, jc.RequestTimeout.Duration)
	setNonZero(&cfg.StateDir, jc.StateDir)
	setNonZero(&cfg.ReferenceImageURL, jc.ReferenceImageURL)
	setNonZero(&cfg.Tolerance, jc.Tolerance)
	setNonZero(&cfg.MinClicks, jc.MinClicks)
	setNonZero(&cfg.MaxClicks, jc.MaxClicks)
	setNonZero(&cfg.MinNewClicks, jc.MinNewClicks)
	setNonZero(&cfg.RenderedWidth, jc.RenderedWidth)
	setNonZero(&cfg.RenderedHeight, jc.RenderedHeight)
	setNonZero(&cfg.IntrinsicWidth, jc.IntrinsicWidth)
	setNonZero(&cfg.IntrinsicHeight, jc.IntrinsicHeight)
}

func setNonZero[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
