// Package client contains the client-side transport for clickpass.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Register, Verify, ChangeCredential, InvalidateSession, GetSession,
//     GetProfile and Ping.
//  2. A concrete gRPC implementation (see GRPCClient) that attaches the
//     session token from a TokenSource via a unary interceptor and maps
//     gRPC status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Transport conditions are ErrUnavailable, ErrUnauthorized and
// ErrInvalidArgument. Credential outcomes use the shared sentinels
// common.ErrUsernameTaken, common.ErrInvalidCredentials,
// common.ErrVerificationFailed and common.ErrTooManyAttempts. Match all of
// them with errors.Is.
package client
