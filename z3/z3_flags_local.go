//go:build cgo
// +build cgo

package z3

/*
// You can set CGO_CFLAGS and CGO_LDFLAGS at build time to point to your Z3.
// This file intentionally provides no defaults to avoid hard-coding local paths.
*/
import "C"
