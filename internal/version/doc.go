// Package version exposes build metadata for the project.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Left unset, they fall back to the VCS information the Go
// toolchain stamps into the binary.
package version
