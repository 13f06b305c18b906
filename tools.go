//go:build tools

package tools

// This file tracks versions of CLI tool dependencies.
// It is not compiled into the binary.
//
// - github.com/pressly/goose/v3/cmd/goose (tool directive in go.mod)
// - github.com/matryer/moq (service mocks in *_mock_test.go)
