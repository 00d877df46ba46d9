// Package security is the decision engine of the home security monitor.
//
// Service reconciles three signal sources (sensor activation, arming
// commands and camera cat detection) into one alarm status held by a
// Repository, and fans every change out to registered StatusListeners.
// It keeps no status of its own apart from the last cat verdict.
package security
