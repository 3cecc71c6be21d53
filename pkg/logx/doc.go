// Package logx is feedwatch's logging layer: a small value-type Logger over
// zerolog with human-readable console output, size-rotated JSON files and an
// optional Telegram sink for warnings and errors.
package logx
