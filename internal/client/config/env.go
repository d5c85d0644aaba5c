package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "CLICKPASS_"

// parseEnv loads the dotenv file (-env, or ./.env when present) and overlays
// CLICKPASS_* variables. Empty variables are ignored; malformed numbers panic.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFilePath(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v, ok := lookup("SERVER_ADDR"); ok {
		cfg.ServerEndpointAddr = v
	}
	if v, ok := lookup("STATE_DIR"); ok {
		cfg.StateDir = v
	}
	if v, ok := lookup("IMAGE_URL"); ok {
		cfg.ReferenceImageURL = v
	}
	envParse(&cfg.OnlineCheckInterval, "ONLINE_CHECK_INTERVAL", time.ParseDuration)
	envParse(&cfg.RequestTimeout, "REQUEST_TIMEOUT", time.ParseDuration)
	envParse(&cfg.Tolerance, "TOLERANCE", parseFloat)
	envParse(&cfg.MinClicks, "MIN_CLICKS", strconv.Atoi)
	envParse(&cfg.MaxClicks, "MAX_CLICKS", strconv.Atoi)
	envParse(&cfg.MinNewClicks, "MIN_NEW_CLICKS", strconv.Atoi)
	envParse(&cfg.RenderedWidth, "RENDERED_WIDTH", parseFloat)
	envParse(&cfg.RenderedHeight, "RENDERED_HEIGHT", parseFloat)
	envParse(&cfg.IntrinsicWidth, "IMAGE_WIDTH", parseFloat)
	envParse(&cfg.IntrinsicHeight, "IMAGE_HEIGHT", parseFloat)
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func envParse[T any](dst *T, name string, parse func(string) (T, error)) {
	v, ok := lookup(name)
	if !ok {
		return
	}
	parsed, err := parse(v)
	if err != nil {
		panic(err)
	}
	*dst = parsed
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
