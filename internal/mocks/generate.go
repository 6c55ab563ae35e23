// Package mocks provides mock implementations for testing the careconnect client.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := mocks.NewMockCredentialStore(ctrl)
//	store.EXPECT().Get(gomock.Any()).Return(creds, nil)
package mocks

// Generate mock for CredentialStore interface from internal/ports package.
// This creates MockCredentialStore with methods for all CredentialStore interface methods:
// Get, Set, Clear
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=credential_store_mock.go github.com/careconnect/careconnect-go/internal/ports CredentialStore
