// Package camera provides stand-in cat detectors for the security engine.
//
// Real classification is out of scope; RandomDetector flips a coin the way a
// demo camera feed would, and StaticDetector always answers the same.
package camera
