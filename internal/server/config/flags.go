package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-l string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   secret key
//	-t int      session validity, minutes
//	-x float    match tolerance, intrinsic pixels
//	-m int      maximum clicks per pattern
//	-i string   reference image path
//	-n int      failed attempts before lockout
//	-r string   Redis URL for the throttle
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// os.Args is filtered with flagx.FilterArgs first, so flags owned by other
// components do not fail the parse.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-l", "-d", "-s", "-t", "-x", "-m", "-i", "-n", "-r", "-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "l", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")

	fs.Float64Var(&config.Tolerance, "x", config.Tolerance, "match tolerance (intrinsic pixels)")
	fs.IntVar(&config.MaxClicks, "m", config.MaxClicks, "maximum clicks per pattern")
	fs.StringVar(&config.ReferenceImagePath, "i", config.ReferenceImagePath, "reference image path")
	fs.IntVar(&config.MaxFailedAttempts, "n", config.MaxFailedAttempts, "failed attempts before lockout")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
}
