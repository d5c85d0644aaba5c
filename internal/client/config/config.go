package config

import "time"

// Config holds runtime settings for the clickpass CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - RequestTimeout: deadline applied to every backend call.
//   - StateDir: directory (relative to the working directory) holding the
//     local SQLite state. "~/" is expanded to the home directory.
//   - ReferenceImageURL: HTTP address of the reference image; its size
//     headers override IntrinsicWidth/IntrinsicHeight once downloaded.
//   - Tolerance, MinClicks, MaxClicks, MinNewClicks: pattern parameters; they
//     must agree with the server.
//   - RenderedWidth/RenderedHeight: size at which the reference image is
//     shown, i.e. the space typed coordinates are given in.
//   - IntrinsicWidth/IntrinsicHeight: native size of the reference image.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	StateDir            string
	ReferenceImageURL   string
	Tolerance           float64
	MinClicks           int
	MaxClicks           int
	MinNewClicks        int
	RenderedWidth       float64
	RenderedHeight      float64
	IntrinsicWidth      float64
	IntrinsicHeight     float64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.StateDir = ".clickpass"
	c.ReferenceImageURL = "http://127.0.0.1:8080/v1/reference-image"
	c.Tolerance = 50
	c.MinClicks = 1
	c.MaxClicks = 5
	c.MinNewClicks = 3
	c.RenderedWidth = 400
	c.RenderedHeight = 300
	c.IntrinsicWidth = 800
	c.IntrinsicHeight = 600
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
