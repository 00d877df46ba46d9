// Package config defines the settings used by the catpoint binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Config holds the server gRPC address, the state file location, the cat
// detector choice, the MQTT publisher and the watcher settings.
package config
