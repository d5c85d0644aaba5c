// Package config loads runtime configuration for the clickpass CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment: CLICKPASS_* variables, optionally loaded from a dotenv
//     file given with -env (or ./.env).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-i int      online status check interval (seconds)
//	-x float    match tolerance used for the local confirmation step
//	-m int      maximum clicks per pattern
//	-s string   local state directory
//	-u string   reference image URL
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "reference_image_url": "http://127.0.0.1:8080/v1/reference-image",
//	  "rendered_width": 400,
//	  "rendered_height": 300
//	}
//
// # Environment
//
//	CLICKPASS_SERVER_ADDR, CLICKPASS_ONLINE_CHECK_INTERVAL,
//	CLICKPASS_REQUEST_TIMEOUT, CLICKPASS_STATE_DIR, CLICKPASS_TOLERANCE,
//	CLICKPASS_MIN_CLICKS, CLICKPASS_MAX_CLICKS, CLICKPASS_MIN_NEW_CLICKS,
//	CLICKPASS_RENDERED_WIDTH, CLICKPASS_RENDERED_HEIGHT,
//	CLICKPASS_IMAGE_URL, CLICKPASS_IMAGE_WIDTH, CLICKPASS_IMAGE_HEIGHT
package config
