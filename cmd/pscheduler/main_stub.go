//go:build !cgo
// +build !cgo

package main

import "fmt"

func main() {
	fmt.Println("pscheduler requires cgo and a Z3 installation. Enable CGO_ENABLED=1 and run `go run ./cmd/pscheduler -problem=helloworld`.")
}
