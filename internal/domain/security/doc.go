// Package security contains core domain types for the home security monitor.
//
// It defines Sensor (a monitored door, window or motion point), the alarm and
// arming status enumerations, and the Status snapshot returned to callers.
// Clone helpers keep repository-held values from leaking.
package security
