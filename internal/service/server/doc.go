// Package server runs the catpoint security engine behind a gRPC listener.
//
// Run wires the settings file, the state repository, the cat detector and the
// status listeners (log and optional MQTT) into one process.
package server
