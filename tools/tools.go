//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// They are installed with `go install` and not tracked in go.mod.
package tools

// mockgen regenerates internal/mocks from the ports in internal/core:
//
//	go install go.uber.org/mock/mockgen@v0.6.0
//	go generate ./internal/mocks/...
//
// Air reloads cmd/jobdispatch on change during local development:
//
//	go install github.com/air-verse/air@v1.63.0
