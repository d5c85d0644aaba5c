package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "CLICKPASS_"

// parseEnv loads the dotenv file (the -env flag, or ./.env when present) and
// overlays CLICKPASS_* variables. Already exported variables win over the
// file. Malformed numeric values panic, as with the other sources.
func parseEnv(config *Config) {
	if path := flagx.EnvFilePath(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	envString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "SECRET_KEY")
	envDuration(&config.SessionValidityDuration, "SESSION_VALIDITY")
	envDuration(&config.SessionPurgeInterval, "SESSION_PURGE_INTERVAL")
	envFloat(&config.Tolerance, "TOLERANCE")
	envInt(&config.MinClicks, "MIN_CLICKS")
	envInt(&config.MaxClicks, "MAX_CLICKS")
	envInt(&config.MinNewClicks, "MIN_NEW_CLICKS")
	envFloat(&config.ImageWidth, "IMAGE_WIDTH")
	envFloat(&config.ImageHeight, "IMAGE_HEIGHT")
	envString(&config.ReferenceImagePath, "REFERENCE_IMAGE")
	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = strings.Split(v, ",")
	}
	envInt(&config.MaxFailedAttempts, "MAX_FAILED_ATTEMPTS")
	envDuration(&config.FailedAttemptsWindow, "FAILED_ATTEMPTS_WINDOW")
	envString(&config.RedisURL, "REDIS_URL")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func envString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func envInt(dst *int, name string) {
	if v, ok := lookup(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func envFloat(dst *float64, name string) {
	if v, ok := lookup(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(err)
		}
		*dst = f
	}
}

func envDuration(dst *time.Duration, name string) {
	if v, ok := lookup(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}
