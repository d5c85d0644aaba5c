// Package netx contains the plain HTTP helpers the client uses next to its
// gRPC connection, such as downloading the reference image.
package netx
