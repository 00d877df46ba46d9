// Package logger wraps zap with a global sugared console logger and
// context helpers (ToContext, FromContext, WithName, WithKV).
//
// Services take a context and log through it, so every line carries the
// name and fields of the component that produced it.
package logger
