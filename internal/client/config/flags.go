package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the backend server
//	-i int      online check interval in seconds
//	-x float    match tolerance
//	-m int      maximum clicks per pattern
//	-s string   local state directory
//	-u string   reference image URL
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-x", "-m", "-s", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.Float64Var(&cfg.Tolerance, "x", cfg.Tolerance, "match tolerance (intrinsic pixels)")
	fs.IntVar(&cfg.MaxClicks, "m", cfg.MaxClicks, "maximum clicks per pattern")
	fs.StringVar(&cfg.StateDir, "s", cfg.StateDir, "local state directory")
	fs.StringVar(&cfg.ReferenceImageURL, "u", cfg.ReferenceImageURL, "reference image URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
