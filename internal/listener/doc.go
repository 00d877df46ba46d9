// Package listener provides StatusListener implementations for the engine.
//
// Logging writes every change to the context logger. MQTT publishes alarm
// status, cat detection and sensor change events to a broker so that home
// automation systems can follow the monitor.
package listener
