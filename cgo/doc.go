// Package cgo groups native library bindings. Each subdirectory wraps
// one C library behind a Go API and ships a pure-Go stub selected by
// the cgo build tag, so the CLI always builds even where the native
// dependency is absent.
package cgo
