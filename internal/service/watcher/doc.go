// Package watcher polls the security server and reacts when the alarm starts ringing.
//
// On every transition into ALARM it starts the command listed under
// watcher.on_alarm, passing the observed status through CATPOINT_* variables.
package watcher
