// Package logger provides a zap-based logging facility with
// context-aware helpers.
//
// A logger travels through context.Context; call sites use the
// package-level helpers (Info, InfoKV, Errorf, ...) which resolve the
// logger from the context and fall back to a process-wide default.
package logger
