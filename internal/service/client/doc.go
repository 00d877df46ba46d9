// Package client implements the catpoint-ctl operations.
//
// Every operation runs against a Backend, normally the gRPC client from
// package common, and prints a human-readable result.
package client
