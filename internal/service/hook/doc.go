// Package hook starts operator-defined commands when the alarm goes off.
package hook
