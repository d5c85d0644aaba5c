package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/clickpass/internal/flagx"
	"github.com/dmitrijs2005/clickpass/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations are
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Absent fields leave the current value untouched.
type JsonConfig struct {
	EndpointAddrGRPC        string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	SessionPurgeInterval    timex.Duration `json:"session_purge_interval"`
	Tolerance               float64        `json:"tolerance"`
	MinClicks               int            `json:"min_clicks"`
	MaxClicks               int            `json:"max_clicks"`
	MinNewClicks            int            `json:"min_new_clicks"`
	ImageWidth              float64        `json:"image_width"`
	ImageHeight             float64        `json:"image_height"`
	ReferenceImagePath      string         `json:"reference_image_path"`
	AllowedOrigins          []string       `json:"allowed_origins"`
	MaxFailedAttempts       int            `json:"max_failed_attempts"`
	FailedAttemptsWindow    timex.Duration `json:"failed_attempts_window"`
	RedisURL                string         `json:"redis_url"`
	LogLevel                string         `json:"log_level"`
	S3RootUser              string         `json:"s3_root_user"`
	S3RootPassword          string         `json:"s3_root_password"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
}

// parseJson overlays the file named by -c / -config, if any.
// It panics when the file cannot be read or parsed.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setNonZero(&config.SessionValidityDuration, c.SessionValidityDuration.Duration)
	setNonZero(&config.SessionPurgeInterval, c.SessionPurgeInterval.Duration)
	setNonZero(&config.Tolerance, c.Tolerance)
	setNonZero(&config.MinClicks, c.MinClicks)
	setNonZero(&config.MaxClicks, c.MaxClicks)
	setNonZero(&config.MinNewClicks, c.MinNewClicks)
	setNonZero(&config.ImageWidth, c.ImageWidth)
	setNonZero(&config.ImageHeight, c.ImageHeight)
	setString(&config.ReferenceImagePath, c.ReferenceImagePath)
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	setNonZero(&config.MaxFailedAttempts, c.MaxFailedAttempts)
	setNonZero(&config.FailedAttemptsWindow, c.FailedAttemptsWindow.Duration)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setNonZero[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
